package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sqlitedriver "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quimo/inventario/internal/domain/models"
)

// Repository is the GORM-backed store over the quimo.db SQLite file.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the database file at path and makes sure every table exists.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path must not be empty")
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlitedriver.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	// SQLite has a single writer; one connection also keeps transactions and
	// PRAGMA state on the same handle.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	repo := NewRepository(db, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Info("database ready", zap.String("path", path))
	return repo, nil
}

// NewRepository wraps an existing connection.
func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{db: db, logger: logger}
}

// DB exposes the underlying connection for maintenance tooling.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Close releases the database handle.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// EnsureSchema creates missing tables with the legacy layout. Existing tables
// are left untouched; see Migrator for upgrading old files.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements() {
		if err := r.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}
