package main

import "strings"

// Authority-facing aggregation, search and pagination over the report
// collection. All of it is read-only filtering of the same maps the
// lifecycle mutates.

// GetDetailedAnalytics aggregates registry-wide report statistics.
// Authorities only.
func (n *WhisprNode) GetDetailedAnalytics(caller Principal) (DetailedAnalytics, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.ensureAuthority(caller); err != nil {
		return DetailedAnalytics{}, err
	}

	reports := n.store.GetAllReports()

	analytics := DetailedAnalytics{
		TotalReports:      uint64(len(reports)),
		CategoryBreakdown: make(map[string]CategoryCounts),
	}

	var stakeSum uint64
	for _, r := range reports {
		stakeSum += r.StakeAmount

		counts := analytics.CategoryBreakdown[r.Category]
		switch r.Status {
		case StatusPending:
			analytics.PendingReports++
			counts.Pending++
		case StatusUnderReview:
			analytics.UnderReviewReports++
		case StatusApproved:
			analytics.ApprovedReports++
			analytics.TotalRewardsDistributed += r.RewardAmount
			counts.Approved++
		case StatusRejected:
			analytics.RejectedReports++
			counts.Rejected++
		}
		analytics.CategoryBreakdown[r.Category] = counts
	}

	analytics.TotalStakedAmount = stakeSum
	if len(reports) > 0 {
		analytics.AverageStakeAmount = float64(stakeSum) / float64(len(reports))
	}

	return analytics, nil
}

// HealthCheck returns the registry's health snapshot. Open to all callers.
func (n *WhisprNode) HealthCheck() SystemHealth {
	n.mu.Lock()
	defer n.mu.Unlock()

	return SystemHealth{
		Status:         "healthy",
		TotalReports:   uint64(len(n.store.GetAllReports())),
		PendingReports: uint64(len(n.store.GetReportsByStatus(StatusPending))),
		SystemTime:     n.now().Unix(),
	}
}

// SearchReports filters reports by keyword, category, status, date range
// and stake range. Authorities only.
func (n *WhisprNode) SearchReports(caller Principal, filter SearchFilter) ([]Report, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.ensureAuthority(caller); err != nil {
		return nil, err
	}

	results := make([]Report, 0)
	keyword := strings.ToLower(filter.Keyword)
	category := strings.ToLower(filter.Category)

	for _, r := range n.store.GetAllReports() {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(r.Title), keyword) &&
			!strings.Contains(strings.ToLower(r.Description), keyword) {
			continue
		}
		if category != "" && r.Category != category {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.DateFrom != 0 && r.DateSubmitted < filter.DateFrom {
			continue
		}
		if filter.DateTo != 0 && r.DateSubmitted > filter.DateTo {
			continue
		}
		if r.StakeAmount < filter.MinStake {
			continue
		}
		if filter.HasMaxStake && r.StakeAmount > filter.MaxStake {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// GetReportsPaginated returns one page of the report collection plus the
// total count. Authorities only. Pages are zero-based.
func (n *WhisprNode) GetReportsPaginated(caller Principal, page, pageSize int) ([]Report, int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.ensureAuthority(caller); err != nil {
		return nil, 0, err
	}
	if page < 0 || pageSize <= 0 {
		return nil, 0, errValidation("page must be >= 0 and pageSize > 0")
	}

	reports := n.store.GetAllReports()
	total := len(reports)

	start := page * pageSize
	if start >= total {
		return []Report{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return reports[start:end], total, nil
}
