package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Insight records one completed mutation for display. The core only ever
// writes these; nothing reads them back for control flow.
type Insight struct {
	ID        string
	Path      string
	CreatedAt time.Time
}

// RecentInsightLimit caps the display query.
const RecentInsightLimit = 15

// RecordMutation appends one insight for path.
func (s *Store) RecordMutation(ctx context.Context, path string) error {
	query := `INSERT INTO insights (id, path, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, uuid.NewString(), path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record insight: %w", err)
	}
	return nil
}

// Recent returns the most recent insights, newest first, at most limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Insight, error) {
	if limit <= 0 {
		limit = RecentInsightLimit
	}
	query := `
		SELECT id, path, created_at FROM insights
		ORDER BY created_at DESC, id
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var insights []Insight
	for rows.Next() {
		var insight Insight
		if err := rows.Scan(&insight.ID, &insight.Path, &insight.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		insights = append(insights, insight)
	}
	return insights, rows.Err()
}
