package main

import (
	"testing"
	"time"
)

// testClockEpoch is the fixed instant every test node's clock returns
const testClockEpoch int64 = 1700000000

func newTestNode() *WhisprNode {
	initLogger("error")

	node := NewWhisprNode(defaultConfig())
	node.now = func() time.Time { return time.Unix(testClockEpoch, 0) }
	return node
}

// addTestAuthority registers an authority directly, bypassing the
// authority-only AddAuthority gate
func addTestAuthority(node *WhisprNode, id Principal) {
	node.store.AddAuthority(Authority{ID: id, ReportsReviewed: []uint64{}})
}

// fundTestUser sets a user's balance directly
func fundTestUser(node *WhisprNode, id Principal, balance uint64) {
	user, ok := node.store.GetUser(id)
	if !ok {
		user = User{ID: id}
	}
	user.TokenBalance = balance
	node.store.CreateOrUpdateUser(user)
}

// submitTestReport files a minimal valid report and fails the test on error
func submitTestReport(t *testing.T, node *WhisprNode, caller Principal, stake uint64, evidenceCount int) uint64 {
	t.Helper()

	reportID, err := node.SubmitReport(caller, ReportSubmission{
		Title:         "Illegal dumping at riverside plant",
		Description:   "Observed repeated chemical discharge into the river at night.",
		Category:      "environmental",
		StakeAmount:   stake,
		EvidenceCount: evidenceCount,
	})
	if err != nil {
		t.Fatalf("SubmitReport failed: %v", err)
	}
	return reportID
}

func TestNewWhisprNodeStartsEmpty(t *testing.T) {
	node := newTestNode()

	if len(node.store.GetAllReports()) != 0 {
		t.Errorf("Expected empty report collection, got %d", len(node.store.GetAllReports()))
	}
	if node.store.AuthorityCount() != 0 {
		t.Errorf("Expected no authorities, got %d", node.store.AuthorityCount())
	}
	if !node.evidence.IsAvailable() {
		t.Error("Expected evidence store to be available")
	}
}

func TestNodeClockInjection(t *testing.T) {
	node := newTestNode()

	health := node.HealthCheck()
	if health.SystemTime != testClockEpoch {
		t.Errorf("Expected system time %d, got %d", testClockEpoch, health.SystemTime)
	}
}
