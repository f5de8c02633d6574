package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
)

type typeRepo struct{ handle }

var _ portsrepo.RequestTypeRepository = (*typeRepo)(nil)

func (r *typeRepo) FindTypeByID(_ context.Context, typeID string) (*domain.RequestType, error) {
	var out *domain.RequestType
	err := r.do(func(st *state) error {
		t, ok := st.types[typeID]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *typeRepo) ListActiveTypes(_ context.Context) ([]domain.RequestType, error) {
	out := []domain.RequestType{}
	err := r.do(func(st *state) error {
		for _, t := range st.types {
			if t.IsActive {
				out = append(out, t)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

type requestRepo struct{ handle }

var _ portsrepo.RequestRepository = (*requestRepo)(nil)

func (r *requestRepo) SaveRequest(_ context.Context, request domain.FortuneRequest) error {
	return r.do(func(st *state) error {
		if _, ok := st.requests[request.RequestID]; ok {
			return fmt.Errorf("%w: request %s", apperrors.ErrDuplicate, request.RequestID)
		}
		if _, ok := st.users[request.UserID]; !ok {
			return fmt.Errorf("request owner %s: %w", request.UserID, apperrors.ErrNotFound)
		}
		st.requests[request.RequestID] = request
		return nil
	})
}

func (r *requestRepo) FindRequestByID(_ context.Context, requestID string) (*domain.FortuneRequest, error) {
	var out *domain.FortuneRequest
	err := r.do(func(st *state) error {
		req, ok := st.requests[requestID]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &req
		return nil
	})
	return out, err
}

func (r *requestRepo) UpdateRequestStatus(_ context.Context, requestID string, from, to domain.RequestStatus, now time.Time) error {
	return r.do(func(st *state) error {
		req, ok := st.requests[requestID]
		if !ok {
			return apperrors.ErrNotFound
		}
		if req.Status != from {
			return fmt.Errorf("%w: request %s is %s, expected %s", apperrors.ErrStaleState, requestID, req.Status, from)
		}
		req.Status = to
		req.UpdatedAt = now
		st.requests[requestID] = req
		return nil
	})
}

func (r *requestRepo) ListRequests(_ context.Context, filter domain.RequestFilter, limit int, offset int) ([]domain.FortuneRequest, int64, error) {
	var matched []domain.FortuneRequest
	err := r.do(func(st *state) error {
		for _, req := range st.requests {
			if matchesFilter(req, filter) {
				matched = append(matched, req)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if filter.OldestFirst {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.RequestID > b.RequestID
	})
	return page(matched, limit, offset), int64(len(matched)), nil
}

func matchesFilter(req domain.FortuneRequest, f domain.RequestFilter) bool {
	if f.UserID != nil && req.UserID != *f.UserID {
		return false
	}
	if f.Status != nil && req.Status != *f.Status {
		return false
	}
	if f.CreatedBefore != nil && !req.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	if f.UpdatedBefore != nil && !req.UpdatedAt.Before(*f.UpdatedBefore) {
		return false
	}
	return true
}
