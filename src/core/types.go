package main

// Principal is an opaque caller identity. The empty string is the anonymous
// sentinel: callers that present no identity are anonymous.
type Principal string

// AnonymousPrincipal is the identity of unauthenticated callers.
const AnonymousPrincipal Principal = ""

// ReportStatus tracks a report through its lifecycle
type ReportStatus string

const (
	StatusPending     ReportStatus = "pending"
	StatusUnderReview ReportStatus = "under_review"
	StatusApproved    ReportStatus = "approved"
	StatusRejected    ReportStatus = "rejected"
)

// isTerminal reports whether no further lifecycle transition is permitted.
func (s ReportStatus) isTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Location is an optional structured place reference attached to a report
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description,omitempty"`
}

// Report is a whistleblower report with its staking and review state
type Report struct {
	ID            uint64       `json:"id"`
	SubmitterID   Principal    `json:"submitterId"`
	Pseudonym     string       `json:"pseudonym"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Category      string       `json:"category"`
	Location      *Location    `json:"location,omitempty"`
	DateSubmitted int64        `json:"dateSubmitted"`
	IncidentDate  string       `json:"incidentDate,omitempty"`
	EvidenceRefs  []string     `json:"evidenceRefs"`
	EvidenceCount int          `json:"evidenceCount"`
	StakeAmount   uint64       `json:"stakeAmount"`
	RewardAmount  uint64       `json:"rewardAmount"`
	Status        ReportStatus `json:"status"`
	Reviewer      Principal    `json:"reviewer,omitempty"`
	ReviewDate    int64        `json:"reviewDate,omitempty"`
	ReviewNotes   string       `json:"reviewNotes,omitempty"`
}

// ReportSubmission carries the caller-supplied fields of a new report
type ReportSubmission struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Location      *Location `json:"location,omitempty"`
	IncidentDate  string    `json:"incidentDate,omitempty"`
	StakeAmount   uint64    `json:"stakeAmount"`
	EvidenceCount int       `json:"evidenceCount"`
}

// User is a reporter account with its token ledger accumulators
type User struct {
	ID               Principal `json:"id"`
	TokenBalance     uint64    `json:"tokenBalance"`
	ReportsSubmitted []uint64  `json:"reportsSubmitted"`
	RewardsEarned    uint64    `json:"rewardsEarned"`
	StakesActive     uint64    `json:"stakesActive"`
	StakesLost       uint64    `json:"stakesLost"`
}

// Authority is an identity permitted to review reports and manage authorities
type Authority struct {
	ID              Principal `json:"id"`
	ReportsReviewed []uint64  `json:"reportsReviewed"`
	ApprovalRate    float64   `json:"approvalRate"`
}

// SenderKind tags who authored a message
type SenderKind string

const (
	SenderSystem    SenderKind = "system"
	SenderReporter  SenderKind = "reporter"
	SenderAuthority SenderKind = "authority"
)

// MessageSender is a closed tagged variant: System carries no identity,
// Reporter and Authority carry the sender's principal.
type MessageSender struct {
	Kind SenderKind `json:"kind"`
	ID   Principal  `json:"id,omitempty"`
}

func systemSender() MessageSender {
	return MessageSender{Kind: SenderSystem}
}

func reporterSender(id Principal) MessageSender {
	return MessageSender{Kind: SenderReporter, ID: id}
}

func authoritySender(id Principal) MessageSender {
	return MessageSender{Kind: SenderAuthority, ID: id}
}

// Message is one entry in a report's append-only conversation log
type Message struct {
	ID        uint64        `json:"id"`
	ReportID  uint64        `json:"reportId"`
	Sender    MessageSender `json:"sender"`
	Content   string        `json:"content"`
	Timestamp int64         `json:"timestamp"`
}

// EvidenceFile is a stored evidence blob addressed by an opaque reference
type EvidenceFile struct {
	Ref         string `json:"ref"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
	UploadDate  int64  `json:"uploadDate"`
}

// DetailedAnalytics aggregates registry-wide report statistics for authorities
type DetailedAnalytics struct {
	TotalReports            uint64                    `json:"totalReports"`
	PendingReports          uint64                    `json:"pendingReports"`
	UnderReviewReports      uint64                    `json:"underReviewReports"`
	ApprovedReports         uint64                    `json:"approvedReports"`
	RejectedReports         uint64                    `json:"rejectedReports"`
	CategoryBreakdown       map[string]CategoryCounts `json:"categoryBreakdown"`
	AverageStakeAmount      float64                   `json:"averageStakeAmount"`
	TotalStakedAmount       uint64                    `json:"totalStakedAmount"`
	TotalRewardsDistributed uint64                    `json:"totalRewardsDistributed"`
}

// CategoryCounts breaks report totals down by lifecycle outcome
type CategoryCounts struct {
	Pending  uint64 `json:"pending"`
	Approved uint64 `json:"approved"`
	Rejected uint64 `json:"rejected"`
}

// SystemHealth is the health-check snapshot
type SystemHealth struct {
	Status         string `json:"status"`
	TotalReports   uint64 `json:"totalReports"`
	PendingReports uint64 `json:"pendingReports"`
	SystemTime     int64  `json:"systemTime"`
}

// SearchFilter holds the optional predicates of a report search.
// Zero-valued fields are not applied; HasMaxStake disambiguates an
// explicit MaxStake of zero from an absent one.
type SearchFilter struct {
	Keyword     string
	Category    string
	Status      ReportStatus
	DateFrom    int64
	DateTo      int64
	MinStake    uint64
	MaxStake    uint64
	HasMaxStake bool
}
