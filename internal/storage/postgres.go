package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vnmchuo/llm-compare/internal/compare"
)

type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) Store {
	return &PostgresStore{db: db}
}

// InitSchema creates the comparison tables if they do not exist yet. Safe
// to run on every startup.
func InitSchema(ctx context.Context, db DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS comparisons (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			prompt TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS model_responses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			comparison_id UUID REFERENCES comparisons(id) ON DELETE CASCADE,
			model_name VARCHAR(100) NOT NULL,
			response_text TEXT,
			prompt_tokens INTEGER,
			completion_tokens INTEGER,
			total_tokens INTEGER,
			response_time_ms INTEGER,
			estimated_cost DECIMAL(10, 6),
			error TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_model_responses_comparison
			ON model_responses(comparison_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, prompt string, results []compare.ModelResult) (string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var comparisonID string
	err = tx.QueryRow(ctx,
		`INSERT INTO comparisons (prompt) VALUES ($1) RETURNING id`,
		prompt,
	).Scan(&comparisonID)
	if err != nil {
		return "", fmt.Errorf("failed to insert comparison: %w", err)
	}

	for _, r := range results {
		var errMsg any
		if r.Error != "" {
			errMsg = r.Error
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO model_responses
				(comparison_id, model_name, response_text, prompt_tokens,
				 completion_tokens, total_tokens, response_time_ms, estimated_cost, error)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			comparisonID, r.ModelName, r.ResponseText, r.PromptTokens,
			r.CompletionTokens, r.TotalTokens, r.ResponseTimeMs, r.EstimatedCost, errMsg,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert model response: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit comparison: %w", err)
	}
	return comparisonID, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*ComparisonDetail, error) {
	var c Comparison
	err := s.db.QueryRow(ctx,
		`SELECT id, prompt, created_at FROM comparisons WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Prompt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison: %w", err)
	}

	responses, err := s.responsesFor(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &ComparisonDetail{Comparison: c, Responses: responses}, nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]ComparisonDetail, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, prompt, created_at FROM comparisons ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer rows.Close()

	var comparisons []Comparison
	for rows.Next() {
		var c Comparison
		if err := rows.Scan(&c.ID, &c.Prompt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		comparisons = append(comparisons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comparisons: %w", err)
	}

	history := make([]ComparisonDetail, 0, len(comparisons))
	for _, c := range comparisons {
		responses, err := s.responsesFor(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		history = append(history, ComparisonDetail{Comparison: c, Responses: responses})
	}
	return history, nil
}

// responsesFor reads the per-model rows of one comparison, sorted by model
// name. Rows are stored unordered; the ordering is a read-side contract.
func (s *PostgresStore) responsesFor(ctx context.Context, comparisonID string) ([]ModelResponse, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, comparison_id, model_name, response_text, prompt_tokens,
			completion_tokens, total_tokens, response_time_ms, estimated_cost,
			error, created_at
		FROM model_responses
		WHERE comparison_id = $1
		ORDER BY model_name`,
		comparisonID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query model responses: %w", err)
	}
	defer rows.Close()

	var responses []ModelResponse
	for rows.Next() {
		var r ModelResponse
		var errMsg *string
		err := rows.Scan(
			&r.ID, &r.ComparisonID, &r.ModelName, &r.ResponseText, &r.PromptTokens,
			&r.CompletionTokens, &r.TotalTokens, &r.ResponseTimeMs, &r.EstimatedCost,
			&errMsg, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model response: %w", err)
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating model responses: %w", err)
	}
	return responses, nil
}
