package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/zeebo/xxh3"
)

const (
	keyQueue      = "queue"
	keyQueueHash  = "queue_hash"
	keyCursor     = "cursor"
	keyModel      = "model"
	keyRepository = "repository"
)

// SaveQueue persists a freshly indexed queue and resets the cursor to zero.
// It returns false when the queue fingerprint matches the previously stored
// one, meaning the repository tree is unchanged since the last index.
func (s *Store) SaveQueue(ctx context.Context, queue []string) (bool, error) {
	serialized, err := json.Marshal(queue)
	if err != nil {
		return false, fmt.Errorf("failed to serialize queue: %w", err)
	}
	fingerprint := strconv.FormatUint(xxh3.Hash(serialized), 16)

	previous, err := s.get(ctx, keyQueueHash)
	if err != nil {
		return false, err
	}

	if err := s.set(ctx, keyQueue, string(serialized)); err != nil {
		return false, err
	}
	if err := s.set(ctx, keyQueueHash, fingerprint); err != nil {
		return false, err
	}
	if err := s.SaveCursor(ctx, 0); err != nil {
		return false, err
	}
	return previous != fingerprint, nil
}

// Queue loads the persisted work queue. The second return value reports
// whether a queue has ever been persisted.
func (s *Store) Queue(ctx context.Context) ([]string, bool, error) {
	serialized, err := s.get(ctx, keyQueue)
	if err != nil {
		return nil, false, err
	}
	if serialized == "" {
		return nil, false, nil
	}

	var queue []string
	if err := json.Unmarshal([]byte(serialized), &queue); err != nil {
		return nil, false, fmt.Errorf("failed to deserialize queue: %w", err)
	}
	return queue, true, nil
}

// SaveCursor persists the cursor. Called after every processed item.
func (s *Store) SaveCursor(ctx context.Context, cursor int) error {
	return s.set(ctx, keyCursor, strconv.Itoa(cursor))
}

// Cursor loads the persisted cursor, defaulting to zero.
func (s *Store) Cursor(ctx context.Context) (int, error) {
	value, err := s.get(ctx, keyCursor)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, nil
	}
	cursor, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("corrupt cursor value %q: %w", value, err)
	}
	return cursor, nil
}

// SaveModel persists the active model identifier, e.g. after a fallback
// demotion.
func (s *Store) SaveModel(ctx context.Context, model string) error {
	return s.set(ctx, keyModel, model)
}

// Model loads the persisted model identifier, or "" when none is stored.
func (s *Store) Model(ctx context.Context) (string, error) {
	return s.get(ctx, keyModel)
}

// SaveRepository persists the repository coordinates.
func (s *Store) SaveRepository(ctx context.Context, repository string) error {
	return s.set(ctx, keyRepository, repository)
}

// Repository loads the persisted repository coordinates, or "".
func (s *Store) Repository(ctx context.Context) (string, error) {
	return s.get(ctx, keyRepository)
}

func (s *Store) set(ctx context.Context, key string, value string) error {
	query := `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}
