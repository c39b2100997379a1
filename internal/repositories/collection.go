// file: internal/repositories/collection.go
package repositories

import (
	"fmt"

	"jobportal/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	Job         JobRepository
	Application ApplicationRepository
	User        UserRepository

	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a repository collection over one database manager
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	collection := &Collection{
		Job:         NewJobRepository(db, logger),
		Application: NewApplicationRepository(db, logger),
		User:        NewUserRepository(db, logger),
		db:          db,
		logger:      logger,
	}

	logger.Info("Repository collection initialized")

	return collection, nil
}

// DB returns the underlying database manager
func (c *Collection) DB() *database.Manager {
	return c.db
}
