package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/jafarshop/storefront/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialect selects placeholder style and migration set
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQLStore keeps records in a single kv_records table
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

// NewSQLStore creates a new SQL-backed store
func NewSQLStore(db *sql.DB, dialect Dialect, logger *zap.Logger) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}
}

// NewPostgresConnection opens and pings a postgres database
func NewPostgresConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// NewSQLiteConnection opens a file-backed sqlite database
func NewSQLiteConnection(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate brings the kv_records schema up to date
func (s *SQLStore) Migrate() error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(s.dialect))
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	var m *migrate.Migrate
	switch s.dialect {
	case DialectPostgres:
		driver, err := migratepostgres.WithInstance(s.db, &migratepostgres.Config{})
		if err != nil {
			return fmt.Errorf("could not create migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "postgres", driver)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	case DialectSQLite:
		driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("could not create migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "sqlite", driver)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	default:
		return fmt.Errorf("unsupported dialect: %s", s.dialect)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := s.rebind(`
		SELECT record_value
		FROM kv_records
		WHERE record_key = ?
	`)

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("Failed to get record", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return []byte(value), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := s.rebind(`
		INSERT INTO kv_records (record_key, record_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (record_key) DO UPDATE
		SET record_value = excluded.record_value, updated_at = excluded.updated_at
	`)

	_, err := s.db.ExecContext(ctx, query, key, string(value), time.Now().UTC())
	if err != nil {
		s.logger.Error("Failed to set record", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	query := s.rebind(`DELETE FROM kv_records WHERE record_key = ?`)

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		s.logger.Error("Failed to remove record", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// rebind rewrites ? placeholders into $n for postgres
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
