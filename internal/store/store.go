// Package store persists analysis results.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nikhilbhutani/fluencycoach/internal/models"
)

var (
	ErrNotFound    = errors.New("analysis not found")
	ErrUnavailable = errors.New("result store unavailable")
)

// Store is an append-only log of analysis records.
type Store interface {
	Append(ctx context.Context, rec models.AnalysisRecord) error
	Get(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error)
	List(ctx context.Context, limit, offset int) ([]models.AnalysisRecord, error)
}

// DB is the subset of pgxpool.Pool used by the store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectColumns = `id, transcript, grammar_feedback, fluency_score, word_count, wpm, fillers, language, created_at`

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec models.AnalysisRecord) error {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO analysis_results (`+selectColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.Transcript, rec.GrammarFeedback, rec.FluencyScore, rec.WordCount,
		rec.WPM, JoinFillers(rec.Fillers), rec.Language, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert analysis %s: %w", rec.ID, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("insert analysis %s: %d rows affected", rec.ID, tag.RowsAffected())
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM analysis_results WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return rec, nil
}

// List returns records newest first.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]models.AnalysisRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+selectColumns+` FROM analysis_results
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	records := []models.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (*models.AnalysisRecord, error) {
	var (
		rec     models.AnalysisRecord
		fillers string
	)
	err := row.Scan(&rec.ID, &rec.Transcript, &rec.GrammarFeedback, &rec.FluencyScore,
		&rec.WordCount, &rec.WPM, &fillers, &rec.Language, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.Fillers = SplitFillers(fillers)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

// JoinFillers encodes a filler set as a comma-separated column value.
func JoinFillers(fillers []string) string {
	return strings.Join(fillers, ",")
}

// SplitFillers is the inverse of JoinFillers. The empty string decodes to an empty set.
func SplitFillers(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// Unavailable is used when the database could not be reached at startup.
type Unavailable struct {
	Cause error
}

func (u Unavailable) Append(context.Context, models.AnalysisRecord) error {
	return u.err()
}

func (u Unavailable) Get(context.Context, uuid.UUID) (*models.AnalysisRecord, error) {
	return nil, u.err()
}

func (u Unavailable) List(context.Context, int, int) ([]models.AnalysisRecord, error) {
	return nil, u.err()
}

func (u Unavailable) err() error {
	if u.Cause == nil {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, u.Cause)
}
