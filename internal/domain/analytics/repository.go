package analytics

import (
	"context"
	"time"

	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
)

// OverrideRepository defines the contract for the manual test-account flag
// store. An empty map is a valid result; the engine treats it identically
// to a populated one.
type OverrideRepository interface {
	// LoadAll returns every manual flag, keyed by composite or legacy id.
	LoadAll(ctx context.Context) (map[string]bool, error)

	// Set records a manual flag for an account key.
	Set(ctx context.Context, key string, isTest bool) error

	// Clear removes a manual flag, returning the account to automatic
	// classification.
	Clear(ctx context.Context, key string) error
}

// Note is a free-text annotation attached to an account by an operator.
type Note struct {
	AccountID string    `json:"accountId"`
	Body      string    `json:"note"`
	Author    string    `json:"author"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteRepository defines the contract for per-account operator notes.
type NoteRepository interface {
	Upsert(ctx context.Context, note *Note) error
	FindByAccount(ctx context.Context, accountID string) (*Note, error)
}

// SnapshotRepository archives fetched raw snapshots for audit and replay.
type SnapshotRepository interface {
	Archive(ctx context.Context, snap *snapshot.Snapshot) error
	FindLatest(ctx context.Context) (*snapshot.Snapshot, error)
}
