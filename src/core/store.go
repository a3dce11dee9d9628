package main

import (
	"sort"
)

// Store owns the four entity collections and the monotonic ID allocators.
// It is pure data access with no policy; callers hold the node lock, so no
// internal locking is needed. IDs start at 1 and are never reused: creation
// happens only after validation, so failed operations never burn an ID.
type Store struct {
	reports     map[uint64]Report
	users       map[Principal]User
	authorities map[Principal]Authority
	messages    map[uint64]Message

	nextReportID  uint64
	nextMessageID uint64
}

// NewStore initializes an empty ledger store
func NewStore() *Store {
	return &Store{
		reports:       make(map[uint64]Report),
		users:         make(map[Principal]User),
		authorities:   make(map[Principal]Authority),
		messages:      make(map[uint64]Message),
		nextReportID:  1,
		nextMessageID: 1,
	}
}

// CreateReport assigns the next report ID and stores the report
func (s *Store) CreateReport(report Report) uint64 {
	report.ID = s.nextReportID
	s.nextReportID++
	s.reports[report.ID] = report
	return report.ID
}

// GetReport returns a copy of the report, if present
func (s *Store) GetReport(id uint64) (Report, bool) {
	report, ok := s.reports[id]
	return report, ok
}

// UpdateReport replaces an existing report
func (s *Store) UpdateReport(report Report) error {
	if _, ok := s.reports[report.ID]; !ok {
		return errNotFound("report %d not found", report.ID)
	}
	s.reports[report.ID] = report
	return nil
}

// GetAllReports returns all reports ordered by ID ascending
func (s *Store) GetAllReports() []Report {
	reports := make([]Report, 0, len(s.reports))
	for _, r := range s.reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID < reports[j].ID })
	return reports
}

// GetReportsByStatus returns reports in the given status, ordered by ID
func (s *Store) GetReportsByStatus(status ReportStatus) []Report {
	reports := make([]Report, 0)
	for _, r := range s.reports {
		if r.Status == status {
			reports = append(reports, r)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID < reports[j].ID })
	return reports
}

// GetUserReports returns the reports submitted by one user, ordered by ID
func (s *Store) GetUserReports(submitter Principal) []Report {
	reports := make([]Report, 0)
	for _, r := range s.reports {
		if r.SubmitterID == submitter {
			reports = append(reports, r)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID < reports[j].ID })
	return reports
}

// GetUser returns a copy of the user account, if present
func (s *Store) GetUser(id Principal) (User, bool) {
	user, ok := s.users[id]
	return user, ok
}

// CreateOrUpdateUser upserts a user account
func (s *Store) CreateOrUpdateUser(user User) {
	s.users[user.ID] = user
}

// IsAuthority reports whether the identity is a registered authority
func (s *Store) IsAuthority(id Principal) bool {
	_, ok := s.authorities[id]
	return ok
}

// GetAuthority returns a copy of the authority record, if present
func (s *Store) GetAuthority(id Principal) (Authority, bool) {
	authority, ok := s.authorities[id]
	return authority, ok
}

// AddAuthority registers a new authority
func (s *Store) AddAuthority(authority Authority) {
	s.authorities[authority.ID] = authority
}

// UpdateAuthority replaces an existing authority record
func (s *Store) UpdateAuthority(authority Authority) error {
	if _, ok := s.authorities[authority.ID]; !ok {
		return errNotFound("authority %s not found", authority.ID)
	}
	s.authorities[authority.ID] = authority
	return nil
}

// RemoveAuthority deletes an authority registration
func (s *Store) RemoveAuthority(id Principal) error {
	if _, ok := s.authorities[id]; !ok {
		return errNotFound("authority %s not found", id)
	}
	delete(s.authorities, id)
	return nil
}

// GetAllAuthorities returns all authorities ordered by ID
func (s *Store) GetAllAuthorities() []Authority {
	authorities := make([]Authority, 0, len(s.authorities))
	for _, a := range s.authorities {
		authorities = append(authorities, a)
	}
	sort.Slice(authorities, func(i, j int) bool { return authorities[i].ID < authorities[j].ID })
	return authorities
}

// AuthorityCount returns the number of registered authorities
func (s *Store) AuthorityCount() int {
	return len(s.authorities)
}

// CreateMessage assigns the next message ID and appends the message
func (s *Store) CreateMessage(message Message) uint64 {
	message.ID = s.nextMessageID
	s.nextMessageID++
	s.messages[message.ID] = message
	return message.ID
}

// GetReportMessages returns a report's messages ordered by ID ascending.
// Message IDs are allocated monotonically, so ID order is append order.
func (s *Store) GetReportMessages(reportID uint64) []Message {
	messages := make([]Message, 0)
	for _, m := range s.messages {
		if m.ReportID == reportID {
			messages = append(messages, m)
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages
}
