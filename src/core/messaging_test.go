package main

import (
	"strings"
	"testing"
)

func TestSendMessageAsReporter(t *testing.T) {
	node := newTestNode()
	reportID := submitTestReport(t, node, "user1", 10, 0)

	if err := node.SendMessageAsReporter("user1", reportID, "I have more details to add."); err != nil {
		t.Fatalf("SendMessageAsReporter failed: %v", err)
	}

	messages := node.store.GetReportMessages(reportID)
	// submission system message plus the reporter message
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	last := messages[1]
	if last.Sender.Kind != SenderReporter || last.Sender.ID != "user1" {
		t.Errorf("Unexpected sender: %+v", last.Sender)
	}
	if last.Timestamp != testClockEpoch {
		t.Errorf("Expected timestamp %d, got %d", testClockEpoch, last.Timestamp)
	}
}

func TestSendMessageAsReporterOnlyOwnReports(t *testing.T) {
	node := newTestNode()
	reportID := submitTestReport(t, node, "user1", 10, 0)

	err := node.SendMessageAsReporter("user2", reportID, "not my report")
	if KindOf(err) != KindForbidden {
		t.Errorf("Expected forbidden, got %v", err)
	}

	err = node.SendMessageAsReporter(AnonymousPrincipal, reportID, "hello")
	if KindOf(err) != KindUnauthorized {
		t.Errorf("Expected unauthorized, got %v", err)
	}

	err = node.SendMessageAsReporter("user1", 999, "missing")
	if KindOf(err) != KindNotFound {
		t.Errorf("Expected not_found, got %v", err)
	}
}

func TestSendMessageAsAuthority(t *testing.T) {
	node := newTestNode()
	addTestAuthority(node, "auth1")
	reportID := submitTestReport(t, node, "user1", 10, 0)

	if err := node.SendMessageAsAuthority("auth1", reportID, "Please provide the incident date."); err != nil {
		t.Fatalf("SendMessageAsAuthority failed: %v", err)
	}

	messages := node.store.GetReportMessages(reportID)
	last := messages[len(messages)-1]
	if last.Sender.Kind != SenderAuthority || last.Sender.ID != "auth1" {
		t.Errorf("Unexpected sender: %+v", last.Sender)
	}

	if err := node.SendMessageAsAuthority("user1", reportID, "imposter"); KindOf(err) != KindForbidden {
		t.Errorf("Expected forbidden for non-authority, got %v", KindOf(err))
	}
}

func TestMessageContentValidation(t *testing.T) {
	node := newTestNode()
	reportID := submitTestReport(t, node, "user1", 10, 0)

	if err := node.SendMessageAsReporter("user1", reportID, "   "); KindOf(err) != KindValidation {
		t.Errorf("Expected validation_error for blank content, got %v", err)
	}

	long := strings.Repeat("a", MaxMessageLength+1)
	if err := node.SendMessageAsReporter("user1", reportID, long); KindOf(err) != KindValidation {
		t.Errorf("Expected validation_error for oversize content, got %v", err)
	}

	if err := node.SendMessageAsReporter("user1", reportID, "bad\x00byte"); KindOf(err) != KindValidation {
		t.Errorf("Expected validation_error for control characters, got %v", err)
	}
}

func TestGetMessagesVisibility(t *testing.T) {
	node := newTestNode()
	addTestAuthority(node, "auth1")
	reportID := submitTestReport(t, node, "user1", 10, 0)
	node.SendMessageAsReporter("user1", reportID, "extra context")

	if got := len(node.GetMessages("user1", reportID)); got != 2 {
		t.Errorf("Expected submitter to see 2 messages, got %d", got)
	}
	if got := len(node.GetMessages("auth1", reportID)); got != 2 {
		t.Errorf("Expected authority to see 2 messages, got %d", got)
	}

	// outsiders and anonymous callers get an empty log, not an error
	if got := len(node.GetMessages("stranger", reportID)); got != 0 {
		t.Errorf("Expected empty log for stranger, got %d", got)
	}
	if got := len(node.GetMessages(AnonymousPrincipal, reportID)); got != 0 {
		t.Errorf("Expected empty log for anonymous, got %d", got)
	}
	if got := len(node.GetMessages("user1", 999)); got != 0 {
		t.Errorf("Expected empty log for missing report, got %d", got)
	}
}

func TestMessagesPreserveAppendOrder(t *testing.T) {
	node := newTestNode()
	addTestAuthority(node, "auth1")
	reportID := submitTestReport(t, node, "user1", 10, 0)

	node.SendMessageAsReporter("user1", reportID, "first")
	node.SendMessageAsAuthority("auth1", reportID, "second")
	node.SendMessageAsReporter("user1", reportID, "third")

	messages := node.GetMessages("user1", reportID)
	if len(messages) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(messages))
	}
	want := []string{"first", "second", "third"}
	for i, content := range want {
		if messages[i+1].Content != content {
			t.Errorf("Expected message %d content %q, got %q", i+1, content, messages[i+1].Content)
		}
	}
}
