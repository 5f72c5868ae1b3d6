package idempotency

import (
	"context"
	"time"
)

// Key is the caller-provided Idempotency-Key header.
type Key string

// Fingerprint identifies a create request for replay.
//
// Actor is the token holder ("member:12", "captain:1") and Route the chi route pattern. An empty
// BodyHash addresses the key's metadata record, which remembers the first payload hash seen.
type Fingerprint struct {
	Key      Key
	Actor    string
	Method   string
	Route    string
	BodyHash string
}

// Meta returns the fingerprint of the key's metadata record.
func (f Fingerprint) Meta() Fingerprint {
	f.BodyHash = ""
	return f
}

// Record is a stored response that can be replayed for a retried request.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records. Records may expire; an expired record reads as absent.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
