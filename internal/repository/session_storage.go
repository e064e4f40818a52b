package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/pkg/storage"
)

// FileSessionStorage keeps every key in one JSON document on disk.
type FileSessionStorage struct {
	mu    sync.Mutex
	files *storage.LocalStorage
	name  string
}

// NewFileSessionStorage stores state in the file at path.
func NewFileSessionStorage(path string) (*FileSessionStorage, error) {
	files, err := storage.NewLocalStorage(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return &FileSessionStorage{files: files, name: filepath.Base(path)}, nil
}

// Get returns the value under key, or nil when absent. An unreadable document
// is reported as an absent key.
func (s *FileSessionStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc[key], nil
}

// Set stores value under key.
func (s *FileSessionStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(value)
	return s.save(doc)
}

// Delete removes key.
func (s *FileSessionStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	delete(doc, key)
	return s.save(doc)
}

func (s *FileSessionStorage) load() (map[string]json.RawMessage, error) {
	raw, err := s.files.Read(s.name)
	if err != nil {
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return map[string]json.RawMessage{}, nil
	}
	return doc, nil
}

func (s *FileSessionStorage) save(doc map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session document: %w", err)
	}
	_, err = s.files.Save(s.name, raw)
	return err
}

// RedisSessionStorage keeps state in Redis under a key prefix.
type RedisSessionStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionStorage constructs a Redis-backed storage. A zero ttl keeps
// keys until they are deleted.
func NewRedisSessionStorage(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisSessionStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSessionStorage{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Get returns the value under key, or nil when absent.
func (r *RedisSessionStorage) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set stores value under key.
func (r *RedisSessionStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.logger.Debug("session persisted", zap.String("key", r.prefix+key))
	return nil
}

// Delete removes key.
func (r *RedisSessionStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (r *RedisSessionStorage) Close() error {
	return r.client.Close()
}

// SQLSessionStorage keeps state in a portal_sessions table on SQLite or
// PostgreSQL.
type SQLSessionStorage struct {
	db *sqlx.DB
}

// NewSQLSessionStorage constructs the storage over an open handle.
func NewSQLSessionStorage(db *sqlx.DB) *SQLSessionStorage {
	return &SQLSessionStorage{db: db}
}

// Migrate creates the table when missing.
func (r *SQLSessionStorage) Migrate(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS portal_sessions (
	session_key TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate portal_sessions: %w", err)
	}
	return nil
}

// Get returns the value under key, or nil when absent.
func (r *SQLSessionStorage) Get(ctx context.Context, key string) ([]byte, error) {
	query := r.db.Rebind(`SELECT payload FROM portal_sessions WHERE session_key = ?`)
	var payload string
	if err := r.db.GetContext(ctx, &payload, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session %s: %w", key, err)
	}
	return []byte(payload), nil
}

// Set upserts value under key.
func (r *SQLSessionStorage) Set(ctx context.Context, key string, value []byte) error {
	query := r.db.Rebind(`INSERT INTO portal_sessions (session_key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (session_key)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert session %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (r *SQLSessionStorage) Delete(ctx context.Context, key string) error {
	query := r.db.Rebind(`DELETE FROM portal_sessions WHERE session_key = ?`)
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}
