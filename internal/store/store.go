package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/georgysavva/scany/sqlscan"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Namespace groups every key this application writes.
const Namespace = "deckbuilder"

//go:embed migrations/*.sql
var migrations embed.FS

// Store is the local key/value store backed by SQLite.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway store.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return &Store{db: db, log: logger}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	const query = `SELECT value FROM kv WHERE namespace = ? AND key = ?`
	var value []byte
	if err := sqlscan.Get(ctx, s.db, &value, query, namespace, key); err != nil {
		if sqlscan.NotFound(err) {
			return nil, false, nil
		}
		s.log.Error("failed to read key", zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
		return nil, false, err
	}
	return value, true, nil
}

func (s *Store) Put(ctx context.Context, namespace, key string, value []byte) error {
	const query = `
		INSERT INTO kv (namespace, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, query, namespace, key, value); err != nil {
		s.log.Error("failed to write key", zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
		return err
	}
	s.log.Debug("stored key", zap.String("namespace", namespace), zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	const query = `DELETE FROM kv WHERE namespace = ? AND key = ?`
	_, err := s.db.ExecContext(ctx, query, namespace, key)
	return err
}

// Keys lists the keys of a namespace in ascending order.
func (s *Store) Keys(ctx context.Context, namespace string) ([]string, error) {
	const query = `SELECT key FROM kv WHERE namespace = ? ORDER BY key`
	var keys []string
	if err := sqlscan.Select(ctx, s.db, &keys, query, namespace); err != nil {
		return nil, err
	}
	return keys, nil
}

// Bucket is a Store view fixed to one namespace.
type Bucket struct {
	s         *Store
	namespace string
}

func (s *Store) Bucket(namespace string) Bucket {
	return Bucket{s: s, namespace: namespace}
}

func (b Bucket) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return b.s.Get(ctx, b.namespace, key)
}

func (b Bucket) Put(ctx context.Context, key string, value []byte) error {
	return b.s.Put(ctx, b.namespace, key, value)
}

func (b Bucket) Delete(ctx context.Context, key string) error {
	return b.s.Delete(ctx, b.namespace, key)
}
