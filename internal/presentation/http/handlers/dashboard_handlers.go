// Package handlers provides the HTTP handlers for the dashboard API.
// Handlers parse parameters, call services, and shape JSON; all domain
// logic lives in the application layer.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kladi/pulso-go/internal/application/services"
	"github.com/kladi/pulso-go/internal/domain/analytics"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/interfaces"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/manager"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
	"github.com/kladi/pulso-go/pkg/config"
)

// DashboardHandlers contains the analytics-facing HTTP handlers
type DashboardHandlers struct {
	dashboardService *services.DashboardService
	snapshotService  *services.SnapshotService
	cache            interfaces.Cache
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

func NewDashboardHandlers(
	dashboardService *services.DashboardService,
	snapshotService *services.SnapshotService,
	cache interfaces.Cache,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *DashboardHandlers {
	return &DashboardHandlers{
		dashboardService: dashboardService,
		snapshotService:  snapshotService,
		cache:            cache,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// HandleDashboard handles GET /api/v1/dashboard
func (h *DashboardHandlers) HandleDashboard(c *gin.Context) {
	output, err := h.computeForRequest(c)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, output)
}

// HandleAccounts handles GET /api/v1/accounts
func (h *DashboardHandlers) HandleAccounts(c *gin.Context) {
	output, err := h.computeForRequest(c)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accounts":    output.Filtered,
		"generatedAt": output.GeneratedAt,
	})
}

// HandleTestAccounts handles GET /api/v1/accounts/test. Test accounts are
// excluded from every aggregate but stay visible here for the admin view.
func (h *DashboardHandlers) HandleTestAccounts(c *gin.Context) {
	output, err := h.computeForRequest(c)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	test := output.Accounts[:0:0]
	for _, a := range output.Accounts {
		if a.IsTest {
			test = append(test, a)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"accounts":    test,
		"generatedAt": output.GeneratedAt,
	})
}

// HandleRefresh handles POST /api/v1/refresh
func (h *DashboardHandlers) HandleRefresh(c *gin.Context) {
	snap, err := h.snapshotService.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshotId": snap.ID,
		"fetchedAt":  snap.FetchedAt,
		"rowCount":   snap.RowCount,
	})
}

// HandleHealth handles GET /api/v1/health
func (h *DashboardHandlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
		"cache":  h.cache.GetStats(),
	})
}

// computeForRequest builds the engine input from query parameters, serving
// from the dashboard cache when the input tuple was already computed.
func (h *DashboardHandlers) computeForRequest(c *gin.Context) (*analytics.EngineOutput, error) {
	ctx := c.Request.Context()

	snap, err := h.snapshotService.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	overrides := h.snapshotService.GetOverrides(ctx)

	input := &analytics.EngineInput{
		Snapshot: snap,
		// Truncated so repeated requests within the same second share a
		// cache key.
		Now:        time.Now().UTC().Truncate(time.Second),
		WindowDays: parseWindowDays(c),
		Filters:    parseFilters(c),
		Overrides:  overrides,
	}

	key := manager.DashboardKey(input)
	if cached, ok := h.cache.GetDashboard(key); ok {
		return cached, nil
	}

	output := h.dashboardService.ComputeDashboard(input)
	h.cache.SetDashboard(key, output)
	return output, nil
}

func parseWindowDays(c *gin.Context) int {
	raw := c.Query("window_days")
	if raw == "" {
		return config.DefaultWindowDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return config.DefaultWindowDays
	}
	return days
}

func parseFilters(c *gin.Context) analytics.Filters {
	filters := analytics.Filters{
		Plan:        c.Query("plan"),
		Status:      c.Query("status"),
		SearchQuery: c.Query("q"),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filters.DateTo = &t
		}
	}
	return filters
}
