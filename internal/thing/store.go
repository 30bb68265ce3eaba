package thing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/agenthands/simcomp/internal/config"
	"github.com/agenthands/simcomp/internal/logger"
)

// Open connects to the database named by cfg and migrates the things table.
func Open(cfg config.DatabaseConfig, log *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	log.Info("Connecting to database...", "driver", cfg.Driver)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Thing{}); err != nil {
		log.Error("Auto migration failed for things table", "error", err)
		return nil, fmt.Errorf("failed to migrate things table: %w", err)
	}
	return db, nil
}

// Store persists things.
type Store interface {
	// Create fails with gorm.ErrDuplicatedKey when (type, key) is taken.
	Create(ctx context.Context, tx *gorm.DB, t *Thing) error
	// GetByTypeAndKey returns nil without error when nothing matches.
	GetByTypeAndKey(ctx context.Context, tx *gorm.DB, thingType Type, thingKey string) (*Thing, error)
}

type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStore(db *gorm.DB, baseLog *logger.Logger) Store {
	return &gormStore{db: db, log: baseLog.With("repo", "ThingStore")}
}

func (s *gormStore) Create(ctx context.Context, tx *gorm.DB, t *Thing) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	if err := transaction.WithContext(ctx).Create(t).Error; err != nil {
		s.log.Warn("Failed to create thing", "thing_type", t.ThingType, "thing_key", t.ThingKey, "error", err)
		return err
	}
	return nil
}

func (s *gormStore) GetByTypeAndKey(ctx context.Context, tx *gorm.DB, thingType Type, thingKey string) (*Thing, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var t Thing
	err := transaction.WithContext(ctx).
		Where("thing_type = ? AND thing_key = ?", thingType, thingKey).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
