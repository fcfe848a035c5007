package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// UpstreamClient pulls raw snapshots and manual flags from the upstream
// webhook. The webhook multiplexes on an action query parameter.
type UpstreamClient struct {
	baseURL     string
	httpClient  *http.Client
	parser      RowParser
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	entropy     *ulid.MonotonicEntropy
}

func NewUpstreamClient(baseURL string, timeout time.Duration, parser RowParser, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *UpstreamClient {
	return &UpstreamClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		parser:      parser,
		logger:      logger,
		perfTracker: perfTracker,
		entropy:     ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// FetchSnapshot pulls the current raw snapshot. Callers fall back to the
// last good snapshot on error; this client never invents data.
func (c *UpstreamClient) FetchSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	marker := c.perfTracker.StartOperationWithContext(ctx, "ingest:fetch_snapshot")
	defer c.perfTracker.CompleteOperation(marker)

	payload, err := c.get(ctx, "get_data")
	if err != nil {
		marker.SetError(err)
		c.logger.Ingest().Error("Upstream snapshot fetch failed", "error", err)
		return nil, err
	}

	records, err := c.parser.Parse(payload)
	if err != nil {
		marker.SetError(err)
		c.logger.Ingest().Error("Upstream snapshot parse failed", "error", err)
		return nil, err
	}

	snap := &snapshot.Snapshot{
		ID:        ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy).String(),
		FetchedAt: time.Now().UTC(),
		Source:    c.baseURL,
		Records:   records,
		RowCount:  len(records),
	}

	marker.AddMetadata("rows", len(records))
	marker.SetSuccess(true)
	c.logger.Ingest().Info("Fetched upstream snapshot", "snapshotId", snap.ID, "rows", snap.RowCount)

	return snap, nil
}

// FetchOverrides pulls the manual test-account flag map. Callers treat a
// failure as an empty map.
func (c *UpstreamClient) FetchOverrides(ctx context.Context) (map[string]bool, error) {
	marker := c.perfTracker.StartOperationWithContext(ctx, "ingest:fetch_overrides")
	defer c.perfTracker.CompleteOperation(marker)

	payload, err := c.get(ctx, "get_flags")
	if err != nil {
		marker.SetError(err)
		c.logger.Ingest().Warn("Upstream override fetch failed", "error", err)
		return nil, err
	}

	overrides := make(map[string]bool)
	if err := json.Unmarshal(payload, &overrides); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to decode override payload: %w", err)
	}

	marker.AddMetadata("overrides", len(overrides))
	marker.SetSuccess(true)

	return overrides, nil
}

func (c *UpstreamClient) get(ctx context.Context, action string) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL: %w", err)
	}
	q := u.Query()
	q.Set("action", action)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d for action %s", resp.StatusCode, action)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}
	return body, nil
}
