package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/interfaces"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// AdminService handles the operator surface: manual test-account flags and
// per-account notes.
type AdminService struct {
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	cache        interfaces.Cache
	overrideRepo analytics.OverrideRepository
	noteRepo     analytics.NoteRepository
}

func NewAdminService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	cache interfaces.Cache,
	overrideRepo analytics.OverrideRepository,
	noteRepo analytics.NoteRepository,
) *AdminService {
	return &AdminService{
		logger:       logger,
		perfTracker:  perfTracker,
		cache:        cache,
		overrideRepo: overrideRepo,
		noteRepo:     noteRepo,
	}
}

// SetFlag stores a manual classification for an account key and drops the
// cached override map so the next pass sees it.
func (s *AdminService) SetFlag(ctx context.Context, key string, isTest bool) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("account key is required")
	}

	if err := s.overrideRepo.Set(ctx, key, isTest); err != nil {
		return err
	}

	s.cache.InvalidateOverrides()
	s.cache.InvalidateDashboards()
	return nil
}

// ClearFlag removes a manual classification, returning the account to
// automatic rules.
func (s *AdminService) ClearFlag(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("account key is required")
	}

	if err := s.overrideRepo.Clear(ctx, key); err != nil {
		return err
	}

	s.cache.InvalidateOverrides()
	s.cache.InvalidateDashboards()
	return nil
}

// UpsertNote stores or replaces the operator note for an account.
func (s *AdminService) UpsertNote(ctx context.Context, note *analytics.Note) error {
	note.AccountID = strings.TrimSpace(note.AccountID)
	if note.AccountID == "" {
		return fmt.Errorf("account id is required")
	}
	if strings.TrimSpace(note.Body) == "" {
		return fmt.Errorf("note body is required")
	}
	return s.noteRepo.Upsert(ctx, note)
}

// GetNote returns the note for an account, or nil when none exists.
func (s *AdminService) GetNote(ctx context.Context, accountID string) (*analytics.Note, error) {
	return s.noteRepo.FindByAccount(ctx, accountID)
}
