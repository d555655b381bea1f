/*
Package store is the durable home of assessment records.

Records live in SQLite (modernc.org/sqlite, CGo-free). The resolver only
needs GetExact and GetFuzzy; the HTTP handlers create and enrich records.
*/
package store

import (
	"context"
	"encoding/json"
	"errors"

	"skillbridge/internal/assessment"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("store: record not found")

// Store defines the durable operations on assessment records.
type Store interface {
	// Create inserts a new record for rawInput with a fresh id.
	Create(ctx context.Context, rawInput string) (assessment.Record, error)

	// GetExact returns the record with exactly this id, or ErrNotFound.
	GetExact(ctx context.Context, id string) (assessment.Record, error)

	// GetFuzzy returns up to limit records whose id contains pattern,
	// most recently updated first. A blank pattern matches nothing.
	GetFuzzy(ctx context.Context, pattern string, limit int) ([]assessment.Record, error)

	// AttachArtifact sets the structured assessment on a record.
	AttachArtifact(ctx context.Context, id string, a assessment.Assessment) error

	// AttachSecondary sets the secondary artifact (latest test results).
	AttachSecondary(ctx context.Context, id string, raw json.RawMessage) error

	Ping(ctx context.Context) error
	Close() error
}
