package pgsql

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, "unused"))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows, "find %s", "x"), apperrors.ErrNotFound)

	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "payments_provider_ref_key"}
	err := mapError(dup, "save")
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Contains(t, err.Error(), "payments_provider_ref_key")

	boom := errors.New("connection reset")
	err = mapError(boom, "failed to save user %s", "u1")
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "failed to save user u1: connection reset")
}

func TestRequestWhere(t *testing.T) {
	where, args := requestWhere(domain.RequestFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	user := "u1"
	status := domain.RequestProcessing
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	where, args = requestWhere(domain.RequestFilter{UserID: &user, Status: &status, UpdatedBefore: &cutoff})
	assert.Equal(t, " WHERE user_id = $1 AND status = $2 AND updated_at < $3", where)
	assert.Equal(t, []any{"u1", domain.RequestProcessing, cutoff}, args)
}

func TestRequestOrder(t *testing.T) {
	assert.Equal(t, " ORDER BY created_at DESC, request_id DESC", requestOrder(domain.RequestFilter{}))
	assert.Equal(t, " ORDER BY created_at ASC, request_id ASC", requestOrder(domain.RequestFilter{OldestFirst: true}))
}
