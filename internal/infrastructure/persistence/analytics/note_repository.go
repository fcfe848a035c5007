package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/persistence/database"
)

// NoteRepository persists per-account operator notes.
type NoteRepository struct {
	db     *database.Database
	logger *logging.ChanneledLogger
}

var _ analytics.NoteRepository = (*NoteRepository)(nil)

func NewNoteRepository(db *database.Database, logger *logging.ChanneledLogger) *NoteRepository {
	return &NoteRepository{db: db, logger: logger}
}

func (r *NoteRepository) Upsert(ctx context.Context, note *analytics.Note) error {
	note.UpdatedAt = time.Now().UTC()
	_, err := r.db.Conn.ExecContext(ctx, `
		INSERT INTO account_notes (account_id, body, author, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET body = excluded.body, author = excluded.author, updated_at = excluded.updated_at`,
		note.AccountID, note.Body, note.Author, note.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert note for account %s: %w", note.AccountID, err)
	}

	r.logger.Database().Info("Upserted account note", "accountId", note.AccountID)
	return nil
}

func (r *NoteRepository) FindByAccount(ctx context.Context, accountID string) (*analytics.Note, error) {
	row := r.db.Conn.QueryRowContext(ctx, `
		SELECT account_id, body, author, updated_at FROM account_notes WHERE account_id = ?`, accountID)

	var note analytics.Note
	var updatedAt string
	if err := row.Scan(&note.AccountID, &note.Body, &note.Author, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load note for account %s: %w", accountID, err)
	}

	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		note.UpdatedAt = t
	}
	return &note, nil
}
