// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"time"

	"jobportal/internal/appinfo"
	"jobportal/internal/cache"
	"jobportal/internal/config"
	"jobportal/internal/database"
	"jobportal/internal/events"
	"jobportal/internal/repositories"
	"jobportal/internal/storage"

	"go.uber.org/zap"
)

// ServiceCollection holds all services with their shared infrastructure
type ServiceCollection struct {
	JobService         JobService
	ApplicationService ApplicationService
	ResumeService      ResumeService
	AuthService        AuthService
	DashboardService   DashboardService

	Repositories *repositories.Collection
	Cache        cache.Cache
	ResumeStore  storage.ResumeStore
	Events       events.EventBus
	Config       *config.Config
	Logger       *zap.Logger

	startTime time.Time
}

// ServiceHealth represents the health status of the service collection
type ServiceHealth struct {
	Status       string                   `json:"status"`
	Version      string                   `json:"version"`
	Timestamp    time.Time                `json:"timestamp"`
	Uptime       string                   `json:"uptime"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
}

// ServiceStatus represents the status of one dependency
type ServiceStatus struct {
	Status       string                 `json:"status"` // healthy, degraded, unhealthy
	ResponseTime time.Duration          `json:"response_time"`
	Error        string                 `json:"error,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// NewServiceCollection wires the services over repositories, cache and resume storage
func NewServiceCollection(
	repos *repositories.Collection,
	c cache.Cache,
	store storage.ResumeStore,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository collection is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if store == nil {
		return nil, fmt.Errorf("resume store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.NewMemoryCache(cache.DefaultConfig(), logger)
	}

	sc := &ServiceCollection{
		Repositories: repos,
		Cache:        c,
		ResumeStore:  store,
		Events:       events.NewInMemoryEventBus(events.DefaultEventBusConfig(), logger.Named("events")),
		Config:       cfg,
		Logger:       logger,
		startTime:    time.Now(),
	}

	if err := sc.Events.SubscribePattern("*", activityLog(logger.Named("activity"))); err != nil {
		return nil, fmt.Errorf("failed to subscribe activity log: %w", err)
	}
	if err := sc.Events.Start(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to start event bus: %w", err)
	}
	withEvents := WithEventBus(sc.Events)

	sc.ResumeService = NewResumeService(store, cfg.Resume.MaxBytes, cfg.Resume.AllowedExtensions, logger.Named("resume"))
	sc.JobService = NewJobService(repos.Job, c, cfg.Cache.TTL, cfg.Auth.AdminEmail, logger.Named("jobs"), withEvents)
	sc.ApplicationService = NewApplicationService(
		repos.Application,
		repos.Job,
		sc.ResumeService,
		cfg.Lifecycle.StrictTransitions,
		logger.Named("applications"),
		withEvents,
	)
	sc.AuthService = NewAuthService(repos.User, cfg.Auth, logger.Named("auth"))
	sc.DashboardService = NewDashboardService(repos.Job, repos.Application, repos.User, logger.Named("dashboard"))

	logger.Info("Service collection initialized",
		zap.Bool("strict_transitions", cfg.Lifecycle.StrictTransitions),
		zap.String("resume_storage", cfg.Resume.Storage),
		zap.String("cache_provider", cfg.Cache.Provider),
	)

	return sc, nil
}

// Health checks the database, the cache and the event bus
func (sc *ServiceCollection) Health(ctx context.Context) *ServiceHealth {
	health := &ServiceHealth{
		Status:       database.StatusHealthy,
		Version:      appinfo.Version(),
		Timestamp:    time.Now(),
		Uptime:       time.Since(sc.startTime).Round(time.Second).String(),
		Dependencies: make(map[string]ServiceStatus),
	}

	if db := sc.Repositories.DB(); db != nil {
		dbHealth := db.Health(ctx)
		status := ServiceStatus{
			Status:       dbHealth.Status,
			ResponseTime: dbHealth.ResponseTime,
			Metadata:     dbHealth.Details,
		}
		if len(dbHealth.Errors) > 0 {
			status.Error = dbHealth.Errors[0]
		}
		health.Dependencies["database"] = status
		health.Status = worse(health.Status, dbHealth.Status)
	}

	start := time.Now()
	cacheStatus := ServiceStatus{Status: database.StatusHealthy}
	if err := sc.Cache.Health(ctx); err != nil {
		cacheStatus.Status = database.StatusDegraded
		cacheStatus.Error = err.Error()
	}
	cacheStatus.ResponseTime = time.Since(start)
	stats := sc.Cache.Stats()
	cacheStatus.Metadata = map[string]interface{}{
		"hits":      stats.Hits,
		"misses":    stats.Misses,
		"hit_ratio": stats.HitRatio(),
	}
	health.Dependencies["cache"] = cacheStatus
	health.Status = worse(health.Status, cacheStatus.Status)

	if sc.Events != nil {
		eventStatus := ServiceStatus{Status: database.StatusHealthy}
		if err := sc.Events.Health(); err != nil {
			eventStatus.Status = database.StatusDegraded
			eventStatus.Error = err.Error()
		}
		eventStats := sc.Events.Stats()
		eventStatus.Metadata = map[string]interface{}{
			"published":   eventStats.EventsPublished,
			"failed":      eventStats.EventsFailed,
			"queue_depth": eventStats.QueueDepth,
		}
		health.Dependencies["events"] = eventStatus
		health.Status = worse(health.Status, eventStatus.Status)
	}

	return health
}

// Close drains pending events and releases the cache
func (sc *ServiceCollection) Close() error {
	if sc.Events != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sc.Events.Stop(ctx); err != nil {
			sc.Logger.Warn("Event bus did not drain", zap.Error(err))
		}
	}
	return sc.Cache.Close()
}

func worse(a, b string) string {
	rank := map[string]int{
		database.StatusHealthy:   0,
		database.StatusDegraded:  1,
		database.StatusUnhealthy: 2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
