package main

import (
	"strings"
	"testing"
)

func validSubmission() ReportSubmission {
	return ReportSubmission{
		Title:       "Hazardous waste dumping",
		Description: "Trucks unloading drums behind the plant every Friday night.",
		Category:    "environmental",
		StakeAmount: 10,
	}
}

func TestValidateReportSubmission(t *testing.T) {
	if err := validateReportSubmission(validSubmission()); err != nil {
		t.Fatalf("Expected valid submission to pass, got %v", err)
	}
}

func TestValidateReportSubmissionFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ReportSubmission)
		kind   ErrorKind
	}{
		{"empty title", func(s *ReportSubmission) { s.Title = "   " }, KindValidation},
		{"title too long", func(s *ReportSubmission) { s.Title = strings.Repeat("x", MaxTitleLength+1) }, KindValidation},
		{"title control chars", func(s *ReportSubmission) { s.Title = "bad\x01title" }, KindValidation},
		{"empty description", func(s *ReportSubmission) { s.Description = "" }, KindValidation},
		{"description too long", func(s *ReportSubmission) { s.Description = strings.Repeat("x", MaxDescriptionLength+1) }, KindValidation},
		{"invalid category", func(s *ReportSubmission) { s.Category = "gossip" }, KindValidation},
		{"stake below minimum", func(s *ReportSubmission) { s.StakeAmount = MinStakeAmount - 1 }, KindValidation},
		{"stake above maximum", func(s *ReportSubmission) { s.StakeAmount = MaxStakeAmount + 1 }, KindValidation},
		{"negative evidence count", func(s *ReportSubmission) { s.EvidenceCount = -1 }, KindValidation},
		{"too many evidence files", func(s *ReportSubmission) { s.EvidenceCount = MaxEvidenceFiles + 1 }, KindLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)
			err := validateReportSubmission(sub)
			if KindOf(err) != tt.kind {
				t.Errorf("Expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestStakeBoundsAccepted(t *testing.T) {
	for _, stake := range []uint64{MinStakeAmount, MaxStakeAmount} {
		sub := validSubmission()
		sub.StakeAmount = stake
		if err := validateReportSubmission(sub); err != nil {
			t.Errorf("Expected stake %d to be accepted, got %v", stake, err)
		}
	}
}

func TestIsValidCategory(t *testing.T) {
	valid := []string{"environmental", "fraud", "cybercrime", "corruption", "safety", "other", "FRAUD", "Safety"}
	for _, c := range valid {
		if !IsValidCategory(c) {
			t.Errorf("Expected category %q to be valid", c)
		}
	}

	invalid := []string{"", "gossip", "fraud ", "environ"}
	for _, c := range invalid {
		if IsValidCategory(c) {
			t.Errorf("Expected category %q to be invalid", c)
		}
	}
}

func TestContainsControlCharacters(t *testing.T) {
	if ContainsControlCharacters("normal text with\nnewlines\tand tabs\r") {
		t.Error("Expected whitespace control characters to be allowed")
	}
	if !ContainsControlCharacters("null\x00byte") {
		t.Error("Expected null byte to be rejected")
	}
	if !ContainsControlCharacters("escape\x1bsequence") {
		t.Error("Expected escape character to be rejected")
	}
}

func TestValidateStringField(t *testing.T) {
	if !ValidateStringField("fine", 10) {
		t.Error("Expected short clean string to pass")
	}
	if ValidateStringField("toolongfield", 5) {
		t.Error("Expected over-length string to fail")
	}
	if ValidateStringField("bad\x00", 10) {
		t.Error("Expected control characters to fail")
	}
}

func TestValidateMessageContent(t *testing.T) {
	if err := validateMessageContent("a perfectly fine message"); err != nil {
		t.Errorf("Expected valid message to pass, got %v", err)
	}
	if err := validateMessageContent(""); KindOf(err) != KindValidation {
		t.Error("Expected empty message to fail")
	}
	if err := validateMessageContent(strings.Repeat("m", MaxMessageLength+1)); KindOf(err) != KindValidation {
		t.Error("Expected oversize message to fail")
	}
	if err := validateMessageContent(strings.Repeat("m", MaxMessageLength)); err != nil {
		t.Errorf("Expected message at the limit to pass, got %v", err)
	}
}
