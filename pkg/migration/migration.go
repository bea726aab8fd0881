package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const (
	migrationsTable = "schema_migrations"
	lockTimeout     = 30 * time.Second
)

// ErrDirtySchema is returned when a previous migration failed half way.
// The schema has to be repaired by hand before the server can start.
var ErrDirtySchema = errors.New("database schema is dirty")

// Config selects the migration source. The zero value uses the embedded WordRush schema.
type Config struct {
	MigrationsPath string
	MigrationsFS   fs.FS
}

// Migrator applies the schema through golang-migrate on top of a pgx pool.
type Migrator struct {
	source fs.FS
	path   string
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewMigrator(config Config, pool *pgxpool.Pool, logger *zap.Logger) *Migrator {
	m := &Migrator{
		source: config.MigrationsFS,
		path:   config.MigrationsPath,
		pool:   pool,
		logger: logger.Named("Migrator"),
	}
	if m.source == nil {
		m.source, m.path = embeddedMigrations, "migrations"
	}
	return m
}

// Up brings the schema to the latest version.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "up", func(mg *migrate.Migrate) error { return mg.Up() })
}

// Down drops every table the migrations created.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "down", func(mg *migrate.Migrate) error { return mg.Down() })
}

// Version reports the applied schema version; 0 means nothing was applied yet.
func (m *Migrator) Version(ctx context.Context) (uint, bool, error) {
	mg, err := m.open(ctx)
	if err != nil {
		return 0, false, err
	}
	defer mg.Close()
	return currentVersion(mg)
}

func (m *Migrator) run(ctx context.Context, direction string, op func(*migrate.Migrate) error) error {
	mg, err := m.open(ctx)
	if err != nil {
		return err
	}
	defer mg.Close()

	from, dirty, err := currentVersion(mg)
	if err != nil {
		return err
	}
	if dirty {
		m.logger.Error("Refusing to migrate a dirty schema", zap.Uint("version", from))
		return fmt.Errorf("%w at version %d", ErrDirtySchema, from)
	}

	if err := op(mg); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("Schema is up to date", zap.Uint("version", from))
			return nil
		}
		return fmt.Errorf("migrate %s from version %d: %w", direction, from, err)
	}

	to, _, err := currentVersion(mg)
	if err != nil {
		return err
	}
	m.logger.Info("Schema migrated", zap.String("direction", direction), zap.Uint("from", from), zap.Uint("to", to))
	return nil
}

func (m *Migrator) open(ctx context.Context) (*migrate.Migrate, error) {
	if err := m.pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := postgres.WithInstance(stdlib.OpenDBFromPool(m.pool), &postgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(m.source, m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations from %q: %w", m.path, err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	mg.LockTimeout = lockTimeout
	mg.Log = zapMigrateLogger{m.logger}
	return mg, nil
}

func currentVersion(mg *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// zapMigrateLogger routes golang-migrate progress messages to zap at debug level.
type zapMigrateLogger struct {
	logger *zap.Logger
}

func (l zapMigrateLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l zapMigrateLogger) Verbose() bool {
	return l.logger.Core().Enabled(zap.DebugLevel)
}
