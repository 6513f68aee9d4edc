// Package gormstore implements the store.Store contract on top of GORM.
// The same implementation serves both backends: the embedded SQLite database
// (pure Go driver, the default) and a managed Postgres service selected when
// a DSN is configured. The only backend-divergent SQL, calendar-day
// bucketing, is isolated behind the dialect switch in stats.go.
package gormstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/store"
)

// Options configures backend selection and tracing.
type Options struct {
	// SQLitePath is the embedded database file, used when DSN is empty.
	SQLitePath string
	// DSN selects the managed Postgres backend when non-empty.
	DSN string
	// Tracing installs the GORM OpenTelemetry plugin.
	Tracing bool
}

// Store is the GORM-backed storage adapter.
type Store struct {
	db      *gorm.DB
	dialect string // "sqlite" or "postgres"
}

// Open selects the backend once, opens it, runs migrations, and returns the
// adapter. The local SQLite file is the default when no DSN is present.
func Open(opts Options) (*Store, error) {
	var (
		db  *gorm.DB
		err error
	)
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	dialect := "sqlite"
	if opts.DSN != "" {
		dialect = "postgres"
		db, err = gorm.Open(postgres.Open(opts.DSN), cfg)
	} else {
		// Fail early if the parent directory does not exist (instead of a
		// cryptic sqlite "out of memory (14)").
		if dir := filepath.Dir(opts.SQLitePath); dir != "." {
			if _, serr := os.Stat(dir); serr != nil {
				return nil, fmt.Errorf("%w: %v", store.ErrPersistence, serr)
			}
		}
		db, err = gorm.Open(sqlite.Open(opts.SQLitePath), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrPersistence, err)
	}

	if dialect == "sqlite" {
		db.Exec("PRAGMA journal_mode=WAL;")
		db.Exec("PRAGMA synchronous=NORMAL;")
		db.Exec("PRAGMA foreign_keys=ON;")
		db.Exec("PRAGMA busy_timeout=5000;")
	}

	if sqlDB, derr := db.DB(); derr == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if opts.Tracing {
		if perr := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); perr != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrPersistence, perr)
		}
	}

	s := &Store{db: db, dialect: dialect}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	err := s.db.AutoMigrate(
		&domain.Message{},
		&domain.Contact{},
		&domain.Credential{},
		&domain.Template{},
		&domain.Automation{},
		&domain.Invoice{},
		&domain.Subscription{},
		&domain.User{},
		&domain.Workspace{},
		&domain.SendReceipt{},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrPersistence, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}

// DB exposes the raw handle for wiring (e.g., router-side stat lookups in
// tests). Production code goes through the store.Store interface.
func (s *Store) DB() *gorm.DB { return s.db }

// wrap normalizes driver errors into the adapter's error taxonomy.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%w: %v", store.ErrPersistence, err)
}

var _ store.Store = (*Store)(nil)
