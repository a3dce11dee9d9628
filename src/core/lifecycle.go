package main

import "fmt"

// Report lifecycle state machine:
//
//	Pending -> UnderReview -> {Approved, Rejected}
//	Pending -> {Approved, Rejected}
//
// Approve and Reject are accepted from Pending or UnderReview; PutUnderReview
// only from Pending. Approved and Rejected are terminal: the status guard in
// each transition rejects any further transition, which also guarantees each
// stake settles exactly once.

// Reward multiplier parameters
const (
	BaseRewardMultiplier = 10

	// quality bonus applies when the report carries 3 or more evidence files
	QualityBonusEvidence = 3
	QualityBonus         = 2

	// stake bonus tiers
	HighStakeThreshold = 50
	HighStakeBonus     = 3
	MidStakeThreshold  = 20
	MidStakeBonus      = 1
)

// rewardMultiplier computes the integer payout factor for an approval
func rewardMultiplier(stakeAmount uint64, evidenceCount int) uint64 {
	multiplier := uint64(BaseRewardMultiplier)
	if evidenceCount >= QualityBonusEvidence {
		multiplier += QualityBonus
	}
	switch {
	case stakeAmount >= HighStakeThreshold:
		multiplier += HighStakeBonus
	case stakeAmount >= MidStakeThreshold:
		multiplier += MidStakeBonus
	}
	return multiplier
}

// getOrCreateUser fetches the caller's account, creating it with the
// starting token grant on first touch. Runs under the node lock.
func (n *WhisprNode) getOrCreateUser(id Principal) User {
	user, ok := n.store.GetUser(id)
	if !ok {
		user = User{ID: id, TokenBalance: n.cfg.StartingGrant}
		n.store.CreateOrUpdateUser(user)
		logger.Info("Created user account", "user", id, "startingGrant", n.cfg.StartingGrant)
	}
	return user
}

// SubmitReport validates and files a new report, staking the caller's tokens.
// Returns the new report ID.
func (n *WhisprNode) SubmitReport(caller Principal, sub ReportSubmission) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	caller, err := n.ensureAuthenticated(caller)
	if err != nil {
		return 0, err
	}

	if err := validateReportSubmission(sub); err != nil {
		return 0, err
	}

	user := n.getOrCreateUser(caller)

	if user.TokenBalance < sub.StakeAmount {
		return 0, errInsufficientBalance("insufficient token balance for staking")
	}

	pending := 0
	for _, r := range n.store.GetUserReports(caller) {
		if r.Status == StatusPending {
			pending++
		}
	}
	if pending >= MaxPendingReports {
		return 0, errLimitExceeded("too many pending reports, wait for review")
	}

	report := Report{
		SubmitterID:   caller,
		Title:         trimmed(sub.Title),
		Description:   trimmed(sub.Description),
		Category:      lowered(sub.Category),
		Location:      sub.Location,
		DateSubmitted: n.now().Unix(),
		IncidentDate:  sub.IncidentDate,
		EvidenceRefs:  []string{},
		EvidenceCount: sub.EvidenceCount,
		StakeAmount:   sub.StakeAmount,
		Status:        StatusPending,
	}

	reportID := n.store.CreateReport(report)

	report.ID = reportID
	report.Pseudonym = GeneratePseudonym(caller, reportID)
	if err := n.store.UpdateReport(report); err != nil {
		return 0, err
	}

	deductStake(&user, sub.StakeAmount)
	user.ReportsSubmitted = append(user.ReportsSubmitted, reportID)
	n.store.CreateOrUpdateUser(user)

	n.store.CreateMessage(Message{
		ReportID:  reportID,
		Sender:    systemSender(),
		Content:   fmt.Sprintf("Report submitted with a stake of %d tokens. Your report is now pending review.", sub.StakeAmount),
		Timestamp: n.now().Unix(),
	})

	reportsSubmittedTotal.WithLabelValues(report.Category).Inc()
	tokensStakedTotal.Add(float64(sub.StakeAmount))

	logger.Info("Report submitted",
		"reportId", reportID,
		"submitter", caller,
		"category", report.Category,
		"stake", sub.StakeAmount)

	return reportID, nil
}

// PutUnderReview moves a pending report into review
func (n *WhisprNode) PutUnderReview(caller Principal, reportID uint64, notes string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	authorityID, err := n.ensureAuthority(caller)
	if err != nil {
		return err
	}

	report, ok := n.store.GetReport(reportID)
	if !ok {
		return errNotFound("report %d not found", reportID)
	}
	if report.Status != StatusPending {
		return errInvalidTransition("report %d is already in %s state", reportID, report.Status)
	}

	report.Status = StatusUnderReview
	report.Reviewer = authorityID
	report.ReviewNotes = notes
	if err := n.store.UpdateReport(report); err != nil {
		return err
	}

	content := "Your report is now under review by authorities."
	if notes != "" {
		content += " Authority notes: " + notes
	}
	n.store.CreateMessage(Message{
		ReportID:  reportID,
		Sender:    systemSender(),
		Content:   content,
		Timestamp: n.now().Unix(),
	})

	reportsReviewedTotal.WithLabelValues("under_review").Inc()
	logger.Info("Report put under review", "reportId", reportID, "authority", authorityID)
	return nil
}

// ApproveReport verifies a report, returning the stake and paying the reward
func (n *WhisprNode) ApproveReport(caller Principal, reportID uint64, notes string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.approveLocked(caller, reportID, notes)
}

// approveLocked is ApproveReport without the lock, for reuse by BulkApproveReports
func (n *WhisprNode) approveLocked(caller Principal, reportID uint64, notes string) error {
	authorityID, err := n.ensureAuthority(caller)
	if err != nil {
		return err
	}

	report, ok := n.store.GetReport(reportID)
	if !ok {
		return errNotFound("report %d not found", reportID)
	}
	if report.Status != StatusPending && report.Status != StatusUnderReview {
		return errInvalidTransition("report %d is already in %s state", reportID, report.Status)
	}

	reward := report.StakeAmount * rewardMultiplier(report.StakeAmount, report.EvidenceCount)

	report.Status = StatusApproved
	report.Reviewer = authorityID
	report.ReviewDate = n.now().Unix()
	report.ReviewNotes = notes
	report.RewardAmount = reward
	if err := n.store.UpdateReport(report); err != nil {
		return err
	}

	submitter, ok := n.store.GetUser(report.SubmitterID)
	if !ok {
		return errNotFound("report submitter not found")
	}
	settleApproved(&submitter, report.StakeAmount, reward)
	n.store.CreateOrUpdateUser(submitter)

	content := fmt.Sprintf(
		"Report has been verified and approved! %d tokens returned + %d tokens reward = %d total tokens added to your account.",
		report.StakeAmount, reward, report.StakeAmount+reward)
	if notes != "" {
		content += " Authority notes: " + notes
	}
	n.store.CreateMessage(Message{
		ReportID:  reportID,
		Sender:    systemSender(),
		Content:   content,
		Timestamp: n.now().Unix(),
	})

	n.recordReview(authorityID, reportID)

	reportsReviewedTotal.WithLabelValues("approved").Inc()
	tokensRewardedTotal.Add(float64(reward))

	logger.Info("Report approved",
		"reportId", reportID,
		"authority", authorityID,
		"stake", report.StakeAmount,
		"reward", reward)
	return nil
}

// RejectReport rejects a report, forfeiting the stake. Notes are required.
func (n *WhisprNode) RejectReport(caller Principal, reportID uint64, notes string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	authorityID, err := n.ensureAuthority(caller)
	if err != nil {
		return err
	}

	if trimmed(notes) == "" {
		return errValidation("rejection reason must be provided")
	}

	report, ok := n.store.GetReport(reportID)
	if !ok {
		return errNotFound("report %d not found", reportID)
	}
	if report.Status != StatusPending && report.Status != StatusUnderReview {
		return errInvalidTransition("report %d is already in %s state", reportID, report.Status)
	}

	report.Status = StatusRejected
	report.Reviewer = authorityID
	report.ReviewDate = n.now().Unix()
	report.ReviewNotes = notes
	if err := n.store.UpdateReport(report); err != nil {
		return err
	}

	submitter, ok := n.store.GetUser(report.SubmitterID)
	if !ok {
		return errNotFound("report submitter not found")
	}
	settleRejected(&submitter, report.StakeAmount)
	n.store.CreateOrUpdateUser(submitter)

	n.store.CreateMessage(Message{
		ReportID: reportID,
		Sender:   systemSender(),
		Content: fmt.Sprintf(
			"Report has been reviewed and rejected. Your staked %d tokens have been forfeited. Reason: %s",
			report.StakeAmount, notes),
		Timestamp: n.now().Unix(),
	})

	n.recordReview(authorityID, reportID)

	reportsReviewedTotal.WithLabelValues("rejected").Inc()
	tokensForfeitedTotal.Add(float64(report.StakeAmount))

	logger.Info("Report rejected",
		"reportId", reportID,
		"authority", authorityID,
		"stake", report.StakeAmount)
	return nil
}

// BulkApproveReports applies ApproveReport to each ID independently and
// returns the IDs that succeeded. Failures are skipped; each transition is
// already atomic, so no rollback is needed.
func (n *WhisprNode) BulkApproveReports(caller Principal, reportIDs []uint64, notes string) ([]uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.ensureAuthority(caller); err != nil {
		return nil, err
	}
	if len(reportIDs) > MaxBulkBatchSize {
		return nil, errLimitExceeded("cannot bulk approve more than %d reports at once", MaxBulkBatchSize)
	}

	approved := make([]uint64, 0, len(reportIDs))
	for _, reportID := range reportIDs {
		if err := n.approveLocked(caller, reportID, notes); err != nil {
			logger.Debug("Bulk approve skipped report", "reportId", reportID, "error", err)
			continue
		}
		approved = append(approved, reportID)
	}
	return approved, nil
}

// recordReview appends the report to the authority's reviewed list and
// recomputes the approval rate by re-scanning the list. O(n) per review;
// fine at registry scale.
func (n *WhisprNode) recordReview(authorityID Principal, reportID uint64) {
	authority, ok := n.store.GetAuthority(authorityID)
	if !ok {
		return
	}
	authority.ReportsReviewed = append(authority.ReportsReviewed, reportID)

	approvedCount := 0
	for _, id := range authority.ReportsReviewed {
		if r, ok := n.store.GetReport(id); ok && r.Status == StatusApproved {
			approvedCount++
		}
	}
	authority.ApprovalRate = float64(approvedCount) / float64(len(authority.ReportsReviewed))

	if err := n.store.UpdateAuthority(authority); err != nil {
		logger.Error("Failed to update authority review record", "authority", authorityID, "error", err)
	}
}

// GetReport returns the report only when the caller may view it; otherwise
// an empty result, so unauthorized callers cannot probe for existence.
func (n *WhisprNode) GetReport(caller Principal, reportID uint64) (Report, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	report, ok := n.store.GetReport(reportID)
	if !ok || !n.canViewReport(caller, report) {
		return Report{}, false
	}
	return report, true
}

// GetUserReports returns the caller's own reports; empty for anonymous callers
func (n *WhisprNode) GetUserReports(caller Principal) []Report {
	n.mu.Lock()
	defer n.mu.Unlock()

	if caller == AnonymousPrincipal {
		return []Report{}
	}
	return n.store.GetUserReports(caller)
}

// GetAllReports returns every report; authorities only
func (n *WhisprNode) GetAllReports(caller Principal) ([]Report, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.ensureAuthority(caller); err != nil {
		return nil, err
	}
	return n.store.GetAllReports(), nil
}

// GetReportsByStatus returns reports in one status; authorities only
func (n *WhisprNode) GetReportsByStatus(caller Principal, status ReportStatus) ([]Report, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.ensureAuthority(caller); err != nil {
		return nil, err
	}
	return n.store.GetReportsByStatus(status), nil
}
