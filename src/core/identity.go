package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

// The identity provider is a trusted front door that stamps each request
// with the caller's opaque principal. An absent header is the anonymous
// sentinel. When caller auth is required, the header must be accompanied by
// an HMAC signature proving the front door issued it.

// Caller identity header names
const (
	CallerIDHeader        = "X-Caller-ID"
	CallerSignatureHeader = "X-Caller-Signature"
	CallerTimestampHeader = "X-Caller-Timestamp"
)

// CallerAuthTimestampTolerance is the maximum age of a signed identity (5 minutes)
const CallerAuthTimestampTolerance = 5 * time.Minute

// CallerFromRequest extracts the caller principal from the request
func CallerFromRequest(r *http.Request) Principal {
	return Principal(r.Header.Get(CallerIDHeader))
}

// SignCallerID creates an HMAC-SHA256 signature binding a caller identity
// to a timestamp
func SignCallerID(caller Principal, timestamp int64, secret string) string {
	message := fmt.Sprintf("%s\n%d", caller, timestamp)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyCallerID verifies the HMAC-SHA256 signature of a caller identity.
// Returns false if the timestamp is stale or the signature doesn't match.
func VerifyCallerID(caller Principal, timestamp int64, signature, secret string) bool {
	now := time.Now().Unix()
	toleranceSec := int64(CallerAuthTimestampTolerance.Seconds())
	if timestamp < now-toleranceSec || timestamp > now+toleranceSec {
		return false
	}

	expectedSig := SignCallerID(caller, timestamp, secret)

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expectedSig)) == 1
}
