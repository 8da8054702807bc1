package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/terra-clan/archsim/internal/models"
)

// NopStore accepts saves without persisting anything. Used when no storage driver is configured.
type NopStore struct{}

func (NopStore) Save(context.Context, *models.Project) error { return nil }

func (NopStore) FindByID(context.Context, uuid.UUID) (*models.Project, error) { return nil, nil }

func (NopStore) Ping(context.Context) error { return nil }

func (NopStore) Close() error { return nil }

// IsPersistent reports whether saves to store survive the request
func IsPersistent(store ProjectStore) bool {
	_, nop := store.(NopStore)
	return !nop
}
