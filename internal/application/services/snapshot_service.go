package services

import (
	"context"
	"fmt"

	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/interfaces"
	"github.com/kladi/pulso-go/internal/infrastructure/ingestion"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// SnapshotService owns the ingest sequencing around the pure engine: fetch
// the raw snapshot and override map, fall back to the last good data on
// upstream failure, and archive what was fetched.
type SnapshotService struct {
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	upstream     *ingestion.UpstreamClient
	cache        interfaces.Cache
	snapshotRepo analytics.SnapshotRepository
	overrideRepo analytics.OverrideRepository
}

func NewSnapshotService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	upstream *ingestion.UpstreamClient,
	cache interfaces.Cache,
	snapshotRepo analytics.SnapshotRepository,
	overrideRepo analytics.OverrideRepository,
) *SnapshotService {
	return &SnapshotService{
		logger:       logger,
		perfTracker:  perfTracker,
		upstream:     upstream,
		cache:        cache,
		snapshotRepo: snapshotRepo,
		overrideRepo: overrideRepo,
	}
}

// GetSnapshot returns the current snapshot, fetching from upstream when the
// cached one is stale. Fallback order on fetch failure: stale cache entry,
// then the latest archived snapshot.
func (s *SnapshotService) GetSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	if snap, ok := s.cache.GetSnapshot(); ok {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Refresh forces an upstream fetch, bypassing snapshot freshness.
func (s *SnapshotService) Refresh(ctx context.Context) (*snapshot.Snapshot, error) {
	snap, err := s.upstream.FetchSnapshot(ctx)
	if err == nil {
		s.cache.SetSnapshot(snap)
		if archiveErr := s.snapshotRepo.Archive(ctx, snap); archiveErr != nil {
			// The archive is audit data; a failed write must not block
			// serving the fresh snapshot.
			s.logger.Ingest().Warn("Snapshot archive failed", "snapshotId", snap.ID, "error", archiveErr)
		}
		return snap, nil
	}

	if stale, ok := s.cache.GetSnapshotAny(); ok {
		s.logger.Ingest().Warn("Serving stale snapshot after upstream failure",
			"snapshotId", stale.ID, "error", err)
		return stale, nil
	}

	archived, repoErr := s.snapshotRepo.FindLatest(ctx)
	if repoErr == nil && archived != nil {
		s.logger.Ingest().Warn("Serving archived snapshot after upstream failure",
			"snapshotId", archived.ID, "error", err)
		s.cache.SetSnapshot(archived)
		return archived, nil
	}

	return nil, fmt.Errorf("no snapshot available: %w", err)
}

// GetOverrides returns the merged override map: the upstream flag map
// overlaid with locally stored flags. Either source failing degrades to
// its empty contribution; the engine treats an empty map as valid.
func (s *SnapshotService) GetOverrides(ctx context.Context) map[string]bool {
	if overrides, ok := s.cache.GetOverrides(); ok {
		return overrides
	}

	merged := make(map[string]bool)

	if upstream, err := s.upstream.FetchOverrides(ctx); err == nil {
		for k, v := range upstream {
			merged[k] = v
		}
	}

	if local, err := s.overrideRepo.LoadAll(ctx); err == nil {
		// Local flags win: they are the operator's latest word.
		for k, v := range local {
			merged[k] = v
		}
	} else {
		s.logger.Ingest().Warn("Local override load failed", "error", err)
	}

	s.cache.SetOverrides(merged)
	return merged
}
