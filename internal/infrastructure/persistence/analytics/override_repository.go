// Package analytics implements the persistence repositories for manual
// flags, operator notes, and the snapshot archive.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/persistence/database"
)

// OverrideRepository persists manual test-account flags.
type OverrideRepository struct {
	db     *database.Database
	logger *logging.ChanneledLogger
}

var _ analytics.OverrideRepository = (*OverrideRepository)(nil)

func NewOverrideRepository(db *database.Database, logger *logging.ChanneledLogger) *OverrideRepository {
	return &OverrideRepository{db: db, logger: logger}
}

func (r *OverrideRepository) LoadAll(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.Conn.QueryContext(ctx, `SELECT account_key, is_test FROM override_flags`)
	if err != nil {
		return nil, fmt.Errorf("failed to load override flags: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]bool)
	for rows.Next() {
		var key string
		var isTest int
		if err := rows.Scan(&key, &isTest); err != nil {
			return nil, fmt.Errorf("failed to scan override flag: %w", err)
		}
		overrides[key] = isTest != 0
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate override flags: %w", err)
	}
	return overrides, nil
}

func (r *OverrideRepository) Set(ctx context.Context, key string, isTest bool) error {
	flag := 0
	if isTest {
		flag = 1
	}
	_, err := r.db.Conn.ExecContext(ctx, `
		INSERT INTO override_flags (account_key, is_test, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(account_key) DO UPDATE SET is_test = excluded.is_test, updated_at = excluded.updated_at`,
		key, flag, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set override flag for %s: %w", key, err)
	}

	r.logger.Database().Info("Stored override flag", "key", key, "isTest", isTest)
	return nil
}

func (r *OverrideRepository) Clear(ctx context.Context, key string) error {
	_, err := r.db.Conn.ExecContext(ctx, `DELETE FROM override_flags WHERE account_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to clear override flag for %s: %w", key, err)
	}

	r.logger.Database().Info("Cleared override flag", "key", key)
	return nil
}
