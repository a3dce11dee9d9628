package main

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/mr-tron/base58"
)

// PseudonymPrefix marks derived reporter labels
const PseudonymPrefix = "Whispr_"

// GeneratePseudonym derives a stable display label for a reporter on one
// report. The label is a non-secret hash, for display only: it hides the
// principal from casual readers but offers no cryptographic anonymity
// against the ledger operator.
func GeneratePseudonym(submitter Principal, reportID uint64) string {
	h := sha256.New()
	h.Write([]byte(submitter))

	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], reportID)
	h.Write(idBytes[:])

	digest := h.Sum(nil)
	return PseudonymPrefix + base58.Encode(digest[:6])
}
