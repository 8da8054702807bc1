package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/terra-clan/archsim/internal/models"
)

// ErrPersistence wraps every store failure
var ErrPersistence = errors.New("persistence error")

// ProjectStore defines the interface for project persistence
type ProjectStore interface {
	// Save creates or fully replaces the project with the same id
	Save(ctx context.Context, p *models.Project) error
	// FindByID returns nil, nil when the project does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
