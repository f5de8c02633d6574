package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
)

type resultRepo struct{ handle }

var _ portsrepo.ResultRepository = (*resultRepo)(nil)

func (r *resultRepo) SaveResult(_ context.Context, result domain.GenerationResult) error {
	return r.do(func(st *state) error {
		if _, ok := st.resultByReq[result.RequestID]; ok {
			return fmt.Errorf("%w: result for request %s", apperrors.ErrDuplicate, result.RequestID)
		}
		st.results[result.ResultID] = result
		st.resultByReq[result.RequestID] = result.ResultID
		return nil
	})
}

func (r *resultRepo) FindResultByID(_ context.Context, resultID string) (*domain.GenerationResult, error) {
	var out *domain.GenerationResult
	err := r.do(func(st *state) error {
		res, ok := st.results[resultID]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &res
		return nil
	})
	return out, err
}

func (r *resultRepo) FindResultByIDForUpdate(ctx context.Context, resultID string) (*domain.GenerationResult, error) {
	return r.FindResultByID(ctx, resultID)
}

func (r *resultRepo) FindResultByRequestID(_ context.Context, requestID string) (*domain.GenerationResult, error) {
	var out *domain.GenerationResult
	err := r.do(func(st *state) error {
		id, ok := st.resultByReq[requestID]
		if !ok {
			return apperrors.ErrNotFound
		}
		res := st.results[id]
		out = &res
		return nil
	})
	return out, err
}

func (r *resultRepo) UpdateResult(_ context.Context, result domain.GenerationResult) error {
	return r.do(func(st *state) error {
		if _, ok := st.results[result.ResultID]; !ok {
			return apperrors.ErrNotFound
		}
		st.results[result.ResultID] = result
		return nil
	})
}

func (r *resultRepo) ListResults(_ context.Context, status *domain.ResultStatus, limit int, offset int) ([]domain.GenerationResult, int64, error) {
	var matched []domain.GenerationResult
	err := r.do(func(st *state) error {
		for _, res := range st.results {
			if status == nil || res.Status == *status {
				matched = append(matched, res)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	// oldest first so reviewers work through the backlog in order
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ResultID < matched[j].ResultID
	})
	return page(matched, limit, offset), int64(len(matched)), nil
}

type publishedRepo struct{ handle }

var _ portsrepo.PublishedRepository = (*publishedRepo)(nil)

func (r *publishedRepo) SavePublished(_ context.Context, published domain.PublishedResult) error {
	return r.do(func(st *state) error {
		if _, ok := st.published[published.RequestID]; ok {
			return fmt.Errorf("%w: published result for request %s", apperrors.ErrDuplicate, published.RequestID)
		}
		st.published[published.RequestID] = published
		return nil
	})
}

func (r *publishedRepo) FindPublishedByRequestID(_ context.Context, requestID string) (*domain.PublishedResult, error) {
	var out *domain.PublishedResult
	err := r.do(func(st *state) error {
		p, ok := st.published[requestID]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}
