package database

import (
	"context"
	"fmt"
	"time"
)

// HealthStatus represents the current health status of the database
type HealthStatus struct {
	Status       string                 `json:"status"`
	Timestamp    time.Time              `json:"timestamp"`
	ResponseTime time.Duration          `json:"response_time"`
	Errors       []string               `json:"errors,omitempty"`
	Details      map[string]interface{} `json:"details"`
}

// Health check statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker pings the pool and verifies the schema tables exist
type HealthChecker struct {
	manager        *Manager
	timeout        time.Duration
	criticalTables []string
}

// NewHealthChecker creates a checker for the manager's pool
func NewHealthChecker(manager *Manager) *HealthChecker {
	return &HealthChecker{
		manager:        manager,
		timeout:        5 * time.Second,
		criticalTables: []string{"jobs", "applications", "users"},
	}
}

// Check runs the health check
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: start,
		Details:   make(map[string]interface{}),
	}

	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	db := hc.manager.DB()
	if err := db.PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, fmt.Sprintf("ping failed: %v", err))
		status.ResponseTime = time.Since(start)
		return status
	}

	for _, table := range hc.criticalTables {
		var exists bool
		if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists); err != nil {
			status.Status = StatusUnhealthy
			status.Errors = append(status.Errors, fmt.Sprintf("table check %s failed: %v", table, err))
			continue
		}
		if !exists {
			status.Status = StatusUnhealthy
			status.Errors = append(status.Errors, fmt.Sprintf("table %s is missing", table))
		}
	}

	stats := db.Stats()
	status.Details["open_connections"] = stats.OpenConnections
	status.Details["in_use"] = stats.InUse
	status.Details["idle"] = stats.Idle
	status.Details["max_open_connections"] = stats.MaxOpenConnections
	status.Details["wait_count"] = stats.WaitCount

	if status.Status == StatusHealthy && stats.MaxOpenConnections > 0 &&
		float64(stats.InUse)/float64(stats.MaxOpenConnections) > 0.9 {
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "connection pool near capacity")
	}

	status.ResponseTime = time.Since(start)
	return status
}
