package main

// Per-report append-only conversation log between the reporter, the
// reviewing authorities and the system.

// SendMessageAsReporter appends a reporter-tagged message. The caller must
// be the report's submitter.
func (n *WhisprNode) SendMessageAsReporter(caller Principal, reportID uint64, content string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	caller, err := n.ensureAuthenticated(caller)
	if err != nil {
		return err
	}
	if err := validateMessageContent(content); err != nil {
		return err
	}

	report, ok := n.store.GetReport(reportID)
	if !ok {
		return errNotFound("report %d not found", reportID)
	}
	if report.SubmitterID != caller {
		return errForbidden("you can only send messages for your own reports")
	}

	n.store.CreateMessage(Message{
		ReportID:  reportID,
		Sender:    reporterSender(caller),
		Content:   trimmed(content),
		Timestamp: n.now().Unix(),
	})

	messagesSentTotal.WithLabelValues(string(SenderReporter)).Inc()
	logger.Debug("Reporter message appended", "reportId", reportID, "sender", caller)
	return nil
}

// SendMessageAsAuthority appends an authority-tagged message
func (n *WhisprNode) SendMessageAsAuthority(caller Principal, reportID uint64, content string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	authorityID, err := n.ensureAuthority(caller)
	if err != nil {
		return err
	}
	if err := validateMessageContent(content); err != nil {
		return err
	}

	if _, ok := n.store.GetReport(reportID); !ok {
		return errNotFound("report %d not found", reportID)
	}

	n.store.CreateMessage(Message{
		ReportID:  reportID,
		Sender:    authoritySender(authorityID),
		Content:   trimmed(content),
		Timestamp: n.now().Unix(),
	})

	messagesSentTotal.WithLabelValues(string(SenderAuthority)).Inc()
	logger.Debug("Authority message appended", "reportId", reportID, "sender", authorityID)
	return nil
}

// GetMessages returns the report's full ordered message log when the caller
// is the submitter or an authority. Any other caller gets an empty list, not
// an error, so message access cannot leak report existence.
func (n *WhisprNode) GetMessages(caller Principal, reportID uint64) []Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	report, ok := n.store.GetReport(reportID)
	if !ok {
		return []Message{}
	}
	if !n.canViewReport(caller, report) {
		return []Message{}
	}
	return n.store.GetReportMessages(reportID)
}
