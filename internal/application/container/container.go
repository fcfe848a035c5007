// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/kladi/pulso-go/internal/application/services"
	"github.com/kladi/pulso-go/internal/infrastructure/caching/manager"
	"github.com/kladi/pulso-go/internal/infrastructure/ingestion"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
	persistence "github.com/kladi/pulso-go/internal/infrastructure/persistence/analytics"
	"github.com/kladi/pulso-go/internal/infrastructure/persistence/database"
	"github.com/kladi/pulso-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Engine services (stateless singletons)
	DeduplicationService  *services.DeduplicationService
	NormalizationService  *services.NormalizationService
	ClassificationService *services.ClassificationService
	TrialService          *services.TrialService
	ActivityService       *services.ActivityService
	KPIService            *services.KPIService
	FunnelService         *services.FunnelService
	UsageService          *services.UsageService
	AdoptionService       *services.AdoptionService
	CohortService         *services.CohortService
	RiskService           *services.RiskService
	DashboardService      *services.DashboardService

	// Ingest and admin services
	SnapshotService *services.SnapshotService
	AdminService    *services.AdminService

	// Infrastructure dependencies
	Logger       *logging.ChanneledLogger
	PerfTracker  *performance.Tracker
	CacheManager *manager.Manager
	Database     *database.Database
	Rules        *config.Rules
}

// NewContainer creates and wires all singleton services
func NewContainer() (*Container, error) {
	logger, err := logging.NewChanneledLogger(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	perfTracker := performance.NewTracker(nil)
	cacheManager := manager.NewManager(logger)

	rules, err := config.LoadRules(config.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	db, err := database.New()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.EnsureSchema(); err != nil {
		return nil, err
	}

	overrideRepo := persistence.NewOverrideRepository(db, logger)
	noteRepo := persistence.NewNoteRepository(db, logger)
	snapshotRepo := persistence.NewSnapshotRepository(db, logger)

	upstream := ingestion.NewUpstreamClient(
		config.UpstreamWebhookURL,
		config.UpstreamTimeout,
		ingestion.NewRecordParser(),
		logger,
		perfTracker,
	)

	dedup := services.NewDeduplicationService(logger, perfTracker)
	normalizer := services.NewNormalizationService(logger, perfTracker, rules)
	classifier := services.NewClassificationService(logger, perfTracker, rules)
	trial := services.NewTrialService(logger, perfTracker, rules)
	activity := services.NewActivityService(logger, perfTracker)
	kpis := services.NewKPIService(logger, perfTracker)
	funnel := services.NewFunnelService(logger, perfTracker)
	usage := services.NewUsageService(logger, perfTracker)
	adoption := services.NewAdoptionService(logger, perfTracker)
	cohorts := services.NewCohortService(logger, perfTracker)
	risk := services.NewRiskService(logger, perfTracker, rules)

	dashboard := services.NewDashboardService(
		logger, perfTracker,
		dedup, normalizer, classifier, trial, activity,
		kpis, funnel, usage, adoption, cohorts, risk,
	)

	return &Container{
		DeduplicationService:  dedup,
		NormalizationService:  normalizer,
		ClassificationService: classifier,
		TrialService:          trial,
		ActivityService:       activity,
		KPIService:            kpis,
		FunnelService:         funnel,
		UsageService:          usage,
		AdoptionService:       adoption,
		CohortService:         cohorts,
		RiskService:           risk,
		DashboardService:      dashboard,

		SnapshotService: services.NewSnapshotService(logger, perfTracker, upstream, cacheManager, snapshotRepo, overrideRepo),
		AdminService:    services.NewAdminService(logger, perfTracker, cacheManager, overrideRepo, noteRepo),

		Logger:       logger,
		PerfTracker:  perfTracker,
		CacheManager: cacheManager,
		Database:     db,
		Rules:        rules,
	}, nil
}
