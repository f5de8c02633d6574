package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type typeRepository struct {
	db querier
}

var _ portsrepo.RequestTypeRepository = (*typeRepository)(nil)

const typeColumns = `type_id, name, description, required_credits, is_active, input_schema, created_at, updated_at`

func scanType(row pgx.Row) (*domain.RequestType, error) {
	var t domain.RequestType
	var schema []byte
	if err := row.Scan(&t.TypeID, &t.Name, &t.Description, &t.RequiredCredits, &t.IsActive, &schema, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if len(schema) > 0 {
		if err := json.Unmarshal(schema, &t.InputSchema); err != nil {
			return nil, fmt.Errorf("error decoding input schema of type %s: %w", t.TypeID, err)
		}
	}
	return &t, nil
}

func (r *typeRepository) FindTypeByID(ctx context.Context, typeID string) (*domain.RequestType, error) {
	query := `SELECT ` + typeColumns + ` FROM request_types WHERE type_id = $1;`
	t, err := scanType(r.db.QueryRow(ctx, query, typeID))
	if err != nil {
		return nil, mapError(err, "failed to find request type %s", typeID)
	}
	return t, nil
}

func (r *typeRepository) ListActiveTypes(ctx context.Context) ([]domain.RequestType, error) {
	query := `SELECT ` + typeColumns + ` FROM request_types WHERE is_active ORDER BY name;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying request types: %w", err)
	}
	defer rows.Close()

	var types []domain.RequestType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning request type row: %w", err)
		}
		types = append(types, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request type rows: %w", err)
	}
	return types, nil
}

type requestRepository struct {
	db querier
}

var _ portsrepo.RequestRepository = (*requestRepository)(nil)

const requestColumns = `request_id, user_id, type_id, input_data, status, created_at, updated_at`

func scanRequest(row pgx.Row) (*domain.FortuneRequest, error) {
	var req domain.FortuneRequest
	var input []byte
	if err := row.Scan(&req.RequestID, &req.UserID, &req.TypeID, &input, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return nil, err
	}
	req.InputData = json.RawMessage(input)
	return &req, nil
}

func (r *requestRepository) SaveRequest(ctx context.Context, request domain.FortuneRequest) error {
	query := `
		INSERT INTO fortune_requests (request_id, user_id, type_id, input_data, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	input := []byte(request.InputData)
	if len(input) == 0 {
		input = []byte("{}")
	}
	_, err := r.db.Exec(ctx, query,
		request.RequestID,
		request.UserID,
		request.TypeID,
		input,
		request.Status,
		request.CreatedAt,
		request.UpdatedAt,
	)
	return mapError(err, "failed to save request %s", request.RequestID)
}

func (r *requestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.FortuneRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM fortune_requests WHERE request_id = $1;`
	req, err := scanRequest(r.db.QueryRow(ctx, query, requestID))
	if err != nil {
		return nil, mapError(err, "failed to find request %s", requestID)
	}
	return req, nil
}

func (r *requestRepository) UpdateRequestStatus(ctx context.Context, requestID string, from, to domain.RequestStatus, now time.Time) error {
	query := `UPDATE fortune_requests SET status = $1, updated_at = $2 WHERE request_id = $3 AND status = $4;`
	cmdTag, err := r.db.Exec(ctx, query, to, now, requestID, from)
	if err != nil {
		return fmt.Errorf("failed to move request %s from %s to %s: %w", requestID, from, to, err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM fortune_requests WHERE request_id = $1);`, requestID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check request %s: %w", requestID, err)
	}
	if !exists {
		return fmt.Errorf("request %s: %w", requestID, apperrors.ErrNotFound)
	}
	return fmt.Errorf("request %s is no longer %s: %w", requestID, from, apperrors.ErrStaleState)
}

func (r *requestRepository) ListRequests(ctx context.Context, filter domain.RequestFilter, limit int, offset int) ([]domain.FortuneRequest, int64, error) {
	where, args := requestWhere(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM fortune_requests` + where + `;`
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting requests: %w", err)
	}

	query := `SELECT ` + requestColumns + ` FROM fortune_requests` + where + requestOrder(filter) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d;`, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.FortuneRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning request row: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating request rows: %w", err)
	}
	return requests, total, nil
}

func requestOrder(filter domain.RequestFilter) string {
	if filter.OldestFirst {
		return ` ORDER BY created_at ASC, request_id ASC`
	}
	return ` ORDER BY created_at DESC, request_id DESC`
}

// requestWhere renders filter as a WHERE clause with positional arguments.
func requestWhere(filter domain.RequestFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.CreatedBefore != nil {
		add("created_at < $%d", *filter.CreatedBefore)
	}
	if filter.UpdatedBefore != nil {
		add("updated_at < $%d", *filter.UpdatedBefore)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
