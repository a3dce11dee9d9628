package main

import (
	"strings"
	"unicode"
)

// Field limits for report submission and messaging
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxMessageLength     = 2000
	MinStakeAmount       = 5
	MaxStakeAmount       = 1000
	MaxEvidenceFiles     = 10
	MaxPendingReports    = 5
	MaxBulkBatchSize     = 10
)

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func lowered(s string) string {
	return strings.ToLower(s)
}

// validCategories is the fixed lowercase category enumeration
var validCategories = map[string]bool{
	"environmental": true,
	"fraud":         true,
	"cybercrime":    true,
	"corruption":    true,
	"safety":        true,
	"other":         true,
}

// IsValidCategory checks membership in the category enumeration
// (case-insensitive; categories are stored lowercased)
func IsValidCategory(category string) bool {
	return validCategories[strings.ToLower(category)]
}

// ContainsControlCharacters checks if a string contains invalid control characters
func ContainsControlCharacters(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return true
		}
	}
	return false
}

// ValidateStringField checks for max length and control characters
func ValidateStringField(s string, maxLength int) bool {
	if len(s) > maxLength {
		return false
	}
	return !ContainsControlCharacters(s)
}

// validateReportSubmission checks every field-level constraint of a new
// report. Balance and pending-count checks live in the lifecycle, not here.
func validateReportSubmission(sub ReportSubmission) error {
	if strings.TrimSpace(sub.Title) == "" {
		return errValidation("title cannot be empty")
	}
	if len(sub.Title) > MaxTitleLength {
		return errValidation("title too long (max %d characters)", MaxTitleLength)
	}
	if ContainsControlCharacters(sub.Title) {
		return errValidation("title contains control characters")
	}
	if strings.TrimSpace(sub.Description) == "" {
		return errValidation("description cannot be empty")
	}
	if len(sub.Description) > MaxDescriptionLength {
		return errValidation("description too long (max %d characters)", MaxDescriptionLength)
	}
	if ContainsControlCharacters(sub.Description) {
		return errValidation("description contains control characters")
	}
	if !IsValidCategory(sub.Category) {
		return errValidation("invalid category: %s", sub.Category)
	}
	if sub.StakeAmount < MinStakeAmount {
		return errValidation("minimum stake amount is %d tokens", MinStakeAmount)
	}
	if sub.StakeAmount > MaxStakeAmount {
		return errValidation("maximum stake amount is %d tokens", MaxStakeAmount)
	}
	if sub.EvidenceCount < 0 {
		return errValidation("evidence count cannot be negative")
	}
	if sub.EvidenceCount > MaxEvidenceFiles {
		return errLimitExceeded("maximum %d evidence files allowed", MaxEvidenceFiles)
	}
	return nil
}

// validateMessageContent checks the shared content constraints of reporter
// and authority messages
func validateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errValidation("message content cannot be empty")
	}
	if len(content) > MaxMessageLength {
		return errValidation("message too long (max %d characters)", MaxMessageLength)
	}
	if ContainsControlCharacters(content) {
		return errValidation("message contains control characters")
	}
	return nil
}
