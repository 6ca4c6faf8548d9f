package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by Queries.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the application's SQL statements.
type Queries struct {
	db  DBTX
	now func() time.Time
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db, now: time.Now}
}

// UpsertRating stores the session's rating for a movie, replacing any earlier one.
func (q *Queries) UpsertRating(ctx context.Context, sessionID string, movieID, stars int) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO ratings (session_id, movie_id, stars, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, movie_id) DO UPDATE SET
			stars = excluded.stars,
			updated_at = excluded.updated_at
	`, sessionID, movieID, stars, q.now().Unix())
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// GetRating returns the session's rating for a movie and whether one exists.
func (q *Queries) GetRating(ctx context.Context, sessionID string, movieID int) (int, bool, error) {
	var stars int
	err := q.db.QueryRowContext(ctx,
		"SELECT stars FROM ratings WHERE session_id = ? AND movie_id = ?",
		sessionID, movieID,
	).Scan(&stars)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get rating: %w", err)
	}
	return stars, true, nil
}

// ListRatings returns all ratings of a session keyed by movie id.
func (q *Queries) ListRatings(ctx context.Context, sessionID string) (map[int]int, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT movie_id, stars FROM ratings WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[int]int)
	for rows.Next() {
		var movieID, stars int
		if err := rows.Scan(&movieID, &stars); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings[movieID] = stars
	}
	return ratings, rows.Err()
}

// CountRatings returns the number of stored ratings.
func (q *Queries) CountRatings(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ratings").Scan(&n); err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return n, nil
}
