package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/persistence/database"
)

// SnapshotRepository archives fetched raw snapshots for audit and replay.
type SnapshotRepository struct {
	db     *database.Database
	logger *logging.ChanneledLogger
}

var _ analytics.SnapshotRepository = (*SnapshotRepository)(nil)

func NewSnapshotRepository(db *database.Database, logger *logging.ChanneledLogger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

func (r *SnapshotRepository) Archive(ctx context.Context, snap *snapshot.Snapshot) error {
	payload, err := json.Marshal(snap.Records)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", snap.ID, err)
	}

	_, err = r.db.Conn.ExecContext(ctx, `
		INSERT INTO snapshots (id, fetched_at, source, row_count, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		snap.ID, snap.FetchedAt.UTC().Format(time.RFC3339), snap.Source, snap.RowCount, string(payload))
	if err != nil {
		return fmt.Errorf("failed to archive snapshot %s: %w", snap.ID, err)
	}

	r.logger.Database().Info("Archived snapshot", "snapshotId", snap.ID, "rows", snap.RowCount)
	return nil
}

func (r *SnapshotRepository) FindLatest(ctx context.Context) (*snapshot.Snapshot, error) {
	row := r.db.Conn.QueryRowContext(ctx, `
		SELECT id, fetched_at, source, row_count, payload
		FROM snapshots ORDER BY fetched_at DESC LIMIT 1`)

	var snap snapshot.Snapshot
	var fetchedAt, payload string
	if err := row.Scan(&snap.ID, &fetchedAt, &snap.Source, &snap.RowCount, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		snap.FetchedAt = t
	}
	if err := json.Unmarshal([]byte(payload), &snap.Records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s payload: %w", snap.ID, err)
	}
	return &snap, nil
}
