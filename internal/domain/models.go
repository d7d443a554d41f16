package domain

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"strconv"
	"time"
)

// Snapshot is the classified state of one watched endpoint at a point in time.
type Snapshot struct {
	WatchID    string    `json:"watch_id" yaml:"watch_id"`
	Path       string    `json:"path" yaml:"path"`
	Outcome    string    `json:"outcome" yaml:"outcome"`
	StatusCode int       `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Body       string    `json:"body,omitempty" yaml:"body,omitempty"`
	Digest     string    `json:"digest" yaml:"digest"`
	ObservedAt time.Time `json:"observed_at" yaml:"observed_at"`
}

// NewSnapshot builds a snapshot and fingerprints its outcome, status and body.
func NewSnapshot(watchID, path, outcome string, statusCode int, body string) Snapshot {
	return Snapshot{
		WatchID:    watchID,
		Path:       path,
		Outcome:    outcome,
		StatusCode: statusCode,
		Body:       body,
		Digest:     Digest(outcome, strconv.Itoa(statusCode), body),
		ObservedAt: time.Now().UTC(),
	}
}

// Digest hashes parts into a hex string. Parts are NUL separated.
func Digest(parts ...string) string {
	h := sha1.New() //nolint:gosec
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
