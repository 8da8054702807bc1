package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/archsim/internal/models"
)

// PostgresStore implements ProjectStore using PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MinConns     int32
	MaxLifetime  time.Duration
}

// NewPostgresStore creates a new PostgreSQL project store
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Pool exposes the connection pool for migrations
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Save upserts the project in a single statement
func (s *PostgresStore) Save(ctx context.Context, p *models.Project) error {
	diagramJSON, err := json.Marshal(p.Diagram)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal diagram: %v", ErrPersistence, err)
	}

	chatJSON, err := json.Marshal(p.ChatHistory)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal chat history: %v", ErrPersistence, err)
	}

	query := `
		INSERT INTO projects (id, title, scenario_id, diagram_data, chat_history, evaluation, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			scenario_id = EXCLUDED.scenario_id,
			diagram_data = EXCLUDED.diagram_data,
			chat_history = EXCLUDED.chat_history,
			evaluation = EXCLUDED.evaluation,
			last_modified = EXCLUDED.last_modified
	`

	_, err = s.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		string(p.ScenarioID),
		diagramJSON,
		chatJSON,
		nullJSON(p.Evaluation),
		p.LastModified,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to save project: %v", ErrPersistence, err)
	}

	return nil
}

// FindByID retrieves a project by ID
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, title, scenario_id, diagram_data, chat_history, evaluation, last_modified
		FROM projects
		WHERE id = $1
	`

	var p models.Project
	var scenarioID string
	var diagramJSON, chatJSON, evaluationJSON []byte

	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&scenarioID,
		&diagramJSON,
		&chatJSON,
		&evaluationJSON,
		&p.LastModified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("%w: failed to get project: %v", ErrPersistence, err)
	}

	p.ScenarioID = models.ScenarioID(scenarioID)

	if err := decodeProjectJSON(&p, diagramJSON, chatJSON, evaluationJSON); err != nil {
		return nil, err
	}

	return &p, nil
}

// decodeProjectJSON fills the structured columns; NULL columns become empty values
func decodeProjectJSON(p *models.Project, diagramJSON, chatJSON, evaluationJSON []byte) error {
	if len(diagramJSON) > 0 {
		if err := json.Unmarshal(diagramJSON, &p.Diagram); err != nil {
			return fmt.Errorf("%w: failed to unmarshal diagram: %v", ErrPersistence, err)
		}
	}

	if len(chatJSON) > 0 {
		if err := json.Unmarshal(chatJSON, &p.ChatHistory); err != nil {
			return fmt.Errorf("%w: failed to unmarshal chat history: %v", ErrPersistence, err)
		}
	}

	if len(evaluationJSON) > 0 && string(evaluationJSON) != "null" {
		p.Evaluation = json.RawMessage(evaluationJSON)
	}

	p.Normalize()
	return nil
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
