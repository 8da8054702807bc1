package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/terra-clan/archsim/internal/models"
)

// projectRow is the gorm model for the projects table
type projectRow struct {
	ID           string            `gorm:"primaryKey;type:varchar(36)"`
	Title        string            `gorm:"type:text;not null"`
	ScenarioID   string            `gorm:"type:varchar(64);not null"`
	DiagramData  models.Diagram    `gorm:"serializer:json;type:text"`
	ChatHistory  []models.ChatTurn `gorm:"serializer:json;type:text"`
	Evaluation   *string           `gorm:"type:text"`
	LastModified time.Time         `gorm:"not null;index"`
}

func (projectRow) TableName() string {
	return "projects"
}

// GormStore implements ProjectStore on SQLite or MySQL through gorm
type GormStore struct {
	db *gorm.DB
}

// OpenGorm opens a SQLite or MySQL database and migrates the projects table
func OpenGorm(driver, dsn string) (*GormStore, error) {
	var dialector gorm.Dialector

	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// every connection to an in-memory database sees its own copy
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return NewGormStore(db)
}

// NewGormStore wraps an open gorm connection and migrates the projects table
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&projectRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate projects table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Save upserts the project, replacing every column on conflict
func (s *GormStore) Save(ctx context.Context, p *models.Project) error {
	row := projectRow{
		ID:           p.ID.String(),
		Title:        p.Title,
		ScenarioID:   string(p.ScenarioID),
		DiagramData:  p.Diagram,
		ChatHistory:  p.ChatHistory,
		LastModified: p.LastModified,
	}
	if len(p.Evaluation) > 0 {
		evaluation := string(p.Evaluation)
		row.Evaluation = &evaluation
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: failed to save project: %v", ErrPersistence, err)
	}

	return nil
}

// FindByID retrieves a project by ID; nil, nil when absent
func (s *GormStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var row projectRow
	err := s.db.WithContext(ctx).Where("id = ?", id.String()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to get project: %v", ErrPersistence, err)
	}

	parsed, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: stored project id %q: %v", ErrPersistence, row.ID, err)
	}

	p := &models.Project{
		ID:           parsed,
		Title:        row.Title,
		ScenarioID:   models.ScenarioID(row.ScenarioID),
		Diagram:      row.DiagramData,
		ChatHistory:  row.ChatHistory,
		LastModified: row.LastModified,
	}
	if row.Evaluation != nil && *row.Evaluation != "" {
		p.Evaluation = json.RawMessage(*row.Evaluation)
	}
	p.Normalize()

	return p, nil
}

// Ping checks database connectivity
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
