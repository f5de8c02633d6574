package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type resultRepository struct {
	db querier
}

var _ portsrepo.ResultRepository = (*resultRepository)(nil)

const resultColumns = `result_id, request_id, raw_text, edited_text, editor_notes, reviewer_id, reviewed_at, status, created_at, updated_at`

func scanResult(row pgx.Row) (*domain.GenerationResult, error) {
	var res domain.GenerationResult
	err := row.Scan(&res.ResultID, &res.RequestID, &res.RawText, &res.EditedText, &res.EditorNotes,
		&res.ReviewerID, &res.ReviewedAt, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resultRepository) SaveResult(ctx context.Context, result domain.GenerationResult) error {
	query := `
		INSERT INTO generation_results (result_id, request_id, raw_text, edited_text, editor_notes, reviewer_id, reviewed_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		result.ResultID,
		result.RequestID,
		result.RawText,
		result.EditedText,
		result.EditorNotes,
		result.ReviewerID,
		result.ReviewedAt,
		result.Status,
		result.CreatedAt,
		result.UpdatedAt,
	)
	return mapError(err, "failed to save result for request %s", result.RequestID)
}

func (r *resultRepository) FindResultByID(ctx context.Context, resultID string) (*domain.GenerationResult, error) {
	return r.findOne(ctx, `SELECT `+resultColumns+` FROM generation_results WHERE result_id = $1;`, resultID)
}

func (r *resultRepository) FindResultByIDForUpdate(ctx context.Context, resultID string) (*domain.GenerationResult, error) {
	return r.findOne(ctx, `SELECT `+resultColumns+` FROM generation_results WHERE result_id = $1 FOR UPDATE;`, resultID)
}

func (r *resultRepository) FindResultByRequestID(ctx context.Context, requestID string) (*domain.GenerationResult, error) {
	return r.findOne(ctx, `SELECT `+resultColumns+` FROM generation_results WHERE request_id = $1;`, requestID)
}

func (r *resultRepository) findOne(ctx context.Context, query string, id string) (*domain.GenerationResult, error) {
	res, err := scanResult(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "failed to find result %s", id)
	}
	return res, nil
}

func (r *resultRepository) UpdateResult(ctx context.Context, result domain.GenerationResult) error {
	query := `
		UPDATE generation_results
		SET edited_text = $1, editor_notes = $2, reviewer_id = $3, reviewed_at = $4, status = $5, updated_at = $6
		WHERE result_id = $7;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		result.EditedText,
		result.EditorNotes,
		result.ReviewerID,
		result.ReviewedAt,
		result.Status,
		result.UpdatedAt,
		result.ResultID,
	)
	if err != nil {
		return fmt.Errorf("failed to update result %s: %w", result.ResultID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("result %s: %w", result.ResultID, apperrors.ErrNotFound)
	}
	return nil
}

// ListResults returns results oldest first so reviewers work the backlog in order.
func (r *resultRepository) ListResults(ctx context.Context, status *domain.ResultStatus, limit int, offset int) ([]domain.GenerationResult, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM generation_results WHERE ($1::text IS NULL OR status = $1);`, status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting results: %w", err)
	}

	query := `
		SELECT ` + resultColumns + `
		FROM generation_results
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at ASC, result_id ASC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying results: %w", err)
	}
	defer rows.Close()

	var results []domain.GenerationResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning result row: %w", err)
		}
		results = append(results, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, total, nil
}

type publishedRepository struct {
	db querier
}

var _ portsrepo.PublishedRepository = (*publishedRepository)(nil)

func (r *publishedRepository) SavePublished(ctx context.Context, published domain.PublishedResult) error {
	query := `
		INSERT INTO published_results (published_id, request_id, final_text, approver_notes, approved_by, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.db.Exec(ctx, query,
		published.PublishedID,
		published.RequestID,
		published.FinalText,
		published.ApproverNotes,
		published.ApprovedBy,
		published.ApprovedAt,
	)
	return mapError(err, "failed to publish request %s", published.RequestID)
}

func (r *publishedRepository) FindPublishedByRequestID(ctx context.Context, requestID string) (*domain.PublishedResult, error) {
	query := `
		SELECT published_id, request_id, final_text, approver_notes, approved_by, approved_at
		FROM published_results
		WHERE request_id = $1;
	`
	var p domain.PublishedResult
	err := r.db.QueryRow(ctx, query, requestID).Scan(&p.PublishedID, &p.RequestID, &p.FinalText, &p.ApproverNotes, &p.ApprovedBy, &p.ApprovedAt)
	if err != nil {
		return nil, mapError(err, "failed to find published result for request %s", requestID)
	}
	return &p, nil
}
