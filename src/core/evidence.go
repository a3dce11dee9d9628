package main

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

// Package-level errors for evidence storage operations
var (
	ErrEvidenceNotConfigured = errors.New("evidence storage not configured")
	ErrInvalidEvidenceRef    = errors.New("invalid evidence reference format")
	ErrEvidenceTooLarge      = errors.New("evidence file exceeds size limit")
)

// EvidenceStore is the blob-store collaborator for report evidence. Blobs
// are keyed by opaque reference strings that also carry the content type.
type EvidenceStore interface {
	// Store saves a blob and returns its reference
	Store(file EvidenceFile) (ref string, err error)
	// Get retrieves a blob by its reference
	Get(ref string) (EvidenceFile, error)
	// IsAvailable checks if evidence storage is configured
	IsAvailable() bool
}

// evidenceRefRegex: 16 hex chars, a dash, then the content type with "/"
// folded to "_" (e.g. "a1b2c3d4e5f60718-image_jpeg")
var evidenceRefRegex = regexp.MustCompile(`^[a-f0-9]{16}-[A-Za-z0-9._+-]+(_[A-Za-z0-9._+-]+)?$`)

// IsValidEvidenceRef validates an evidence reference string
func IsValidEvidenceRef(ref string) bool {
	return evidenceRefRegex.MatchString(ref)
}

// EvidenceContentType recovers the content type embedded in a reference
func EvidenceContentType(ref string) (string, bool) {
	idx := strings.Index(ref, "-")
	if idx < 0 || idx == len(ref)-1 {
		return "", false
	}
	return strings.ReplaceAll(ref[idx+1:], "_", "/"), true
}

// MemoryEvidenceStore keeps evidence blobs in process memory, the single
// authoritative replica the registry runs with.
type MemoryEvidenceStore struct {
	blobs    map[string]EvidenceFile
	maxBytes int64
	seq      uint64
}

// NewMemoryEvidenceStore creates an in-memory evidence store.
// maxBytes <= 0 means no per-blob size limit.
func NewMemoryEvidenceStore(maxBytes int64) *MemoryEvidenceStore {
	return &MemoryEvidenceStore{
		blobs:    make(map[string]EvidenceFile),
		maxBytes: maxBytes,
	}
}

// Store saves the blob under a hash-derived reference that embeds the
// content type. The sequence number keeps references unique even for
// identical payloads.
func (s *MemoryEvidenceStore) Store(file EvidenceFile) (string, error) {
	if s.maxBytes > 0 && int64(len(file.Data)) > s.maxBytes {
		return "", ErrEvidenceTooLarge
	}

	s.seq++
	h := sha256.New()
	h.Write(file.Data)
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], s.seq)
	h.Write(seqBytes[:])
	digest := h.Sum(nil)

	ref := hex.EncodeToString(digest[:8]) + "-" + strings.ReplaceAll(file.ContentType, "/", "_")
	file.Ref = ref
	s.blobs[ref] = file
	return ref, nil
}

// Get retrieves a blob by reference
func (s *MemoryEvidenceStore) Get(ref string) (EvidenceFile, error) {
	if !IsValidEvidenceRef(ref) {
		return EvidenceFile{}, ErrInvalidEvidenceRef
	}
	file, ok := s.blobs[ref]
	if !ok {
		return EvidenceFile{}, errNotFound("evidence %s not found", ref)
	}
	return file, nil
}

// IsAvailable always returns true for the in-memory store
func (s *MemoryEvidenceStore) IsAvailable() bool {
	return true
}

// NoOpEvidenceStore implements EvidenceStore for when evidence storage is disabled
type NoOpEvidenceStore struct{}

// NewNoOpEvidenceStore creates a no-op evidence store
func NewNoOpEvidenceStore() *NoOpEvidenceStore {
	return &NoOpEvidenceStore{}
}

// Store returns an error indicating evidence storage is not configured
func (s *NoOpEvidenceStore) Store(file EvidenceFile) (string, error) {
	return "", ErrEvidenceNotConfigured
}

// Get returns an error indicating evidence storage is not configured
func (s *NoOpEvidenceStore) Get(ref string) (EvidenceFile, error) {
	return EvidenceFile{}, ErrEvidenceNotConfigured
}

// IsAvailable always returns false for the no-op store
func (s *NoOpEvidenceStore) IsAvailable() bool {
	return false
}

// UploadEvidence stores an evidence blob and attaches its reference to the
// report. Only the report's submitter may upload, and a report carries at
// most MaxEvidenceFiles references.
func (n *WhisprNode) UploadEvidence(caller Principal, reportID uint64, name, contentType string, data []byte) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	caller, err := n.ensureAuthenticated(caller)
	if err != nil {
		return "", err
	}

	report, ok := n.store.GetReport(reportID)
	if !ok {
		return "", errNotFound("report %d not found", reportID)
	}
	if report.SubmitterID != caller {
		return "", errForbidden("you can only upload evidence for your own reports")
	}
	if len(report.EvidenceRefs) >= MaxEvidenceFiles {
		return "", errLimitExceeded("maximum %d evidence files allowed", MaxEvidenceFiles)
	}
	if len(data) == 0 {
		return "", errValidation("evidence data cannot be empty")
	}
	if contentType == "" {
		return "", errValidation("evidence content type is required")
	}

	ref, err := n.evidence.Store(EvidenceFile{
		Name:        name,
		ContentType: contentType,
		Data:        data,
		UploadDate:  n.now().Unix(),
	})
	if err != nil {
		return "", errValidation("failed to store evidence: %v", err)
	}

	report.EvidenceRefs = append(report.EvidenceRefs, ref)
	report.EvidenceCount = len(report.EvidenceRefs)
	if err := n.store.UpdateReport(report); err != nil {
		return "", err
	}

	logger.Info("Evidence uploaded", "reportId", reportID, "ref", ref, "bytes", len(data))
	return ref, nil
}

// GetEvidence retrieves an evidence blob. Only the owning report's submitter
// and authorities may read it; anyone else gets NotFound, never a hint that
// the reference exists.
func (n *WhisprNode) GetEvidence(caller Principal, ref string) (EvidenceFile, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	caller, err := n.ensureAuthenticated(caller)
	if err != nil {
		return EvidenceFile{}, err
	}

	var owner *Report
	for _, report := range n.store.GetAllReports() {
		for _, r := range report.EvidenceRefs {
			if r == ref {
				owner = &report
				break
			}
		}
		if owner != nil {
			break
		}
	}
	if owner == nil {
		return EvidenceFile{}, errNotFound("evidence %s not found", ref)
	}
	if !n.canViewReport(caller, *owner) {
		return EvidenceFile{}, errNotFound("evidence %s not found", ref)
	}

	return n.evidence.Get(ref)
}
