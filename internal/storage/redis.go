package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/archsim/internal/models"
)

const redisKeyPrefix = "archsim:project:"

// RedisStore implements ProjectStore as one JSON document per key
type RedisStore struct {
	client *redis.Client
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func projectKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

// Save replaces the project document; a single SET is atomic
func (s *RedisStore) Save(ctx context.Context, p *models.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal project: %v", ErrPersistence, err)
	}

	if err := s.client.Set(ctx, projectKey(p.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to save project: %v", ErrPersistence, err)
	}

	return nil
}

// FindByID retrieves a project by ID; nil, nil when absent
func (s *RedisStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	data, err := s.client.Get(ctx, projectKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to get project: %v", ErrPersistence, err)
	}

	var p models.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal project: %v", ErrPersistence, err)
	}
	p.Normalize()

	return &p, nil
}

// Ping checks Redis connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
