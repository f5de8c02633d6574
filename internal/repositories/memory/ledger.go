package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/fortune_desk/internal/apperrors"
	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
)

type ledgerRepo struct{ handle }

var _ portsrepo.LedgerRepository = (*ledgerRepo)(nil)

func (r *ledgerRepo) AppendEntry(_ context.Context, entry domain.LedgerEntry) error {
	return r.do(func(st *state) error {
		if _, ok := st.users[entry.UserID]; !ok {
			return apperrors.ErrNotFound
		}
		st.entries = append(st.entries, entry)
		return nil
	})
}

func (r *ledgerRepo) ListEntries(_ context.Context, userID string, after *portsrepo.LedgerCursor, limit int) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	err := r.do(func(st *state) error {
		for _, e := range st.entries {
			if e.UserID == userID {
				out = append(out, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i], out[j])
	})

	if after != nil {
		pivot := domain.LedgerEntry{CreatedAt: after.CreatedAt, EntryID: after.EntryID}
		i := sort.Search(len(out), func(i int) bool { return newer(pivot, out[i]) })
		out = out[i:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ledgerRepo) SumEntries(_ context.Context, userID string) (int64, int64, error) {
	var sum, count int64
	err := r.do(func(st *state) error {
		for _, e := range st.entries {
			if e.UserID == userID {
				sum += e.Amount
				count++
			}
		}
		return nil
	})
	return sum, count, err
}

// newer orders entries by (created_at, entry_id) descending.
func newer(a, b domain.LedgerEntry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.EntryID > b.EntryID
}

type paymentRepo struct{ handle }

var _ portsrepo.PaymentRepository = (*paymentRepo)(nil)

func (r *paymentRepo) SavePayment(_ context.Context, payment domain.PaymentRecord) error {
	return r.do(func(st *state) error {
		for _, p := range st.payments {
			if p.ProviderRef == payment.ProviderRef {
				return apperrors.ErrDuplicate
			}
		}
		st.payments = append(st.payments, payment)
		return nil
	})
}

func (r *paymentRepo) ListPaymentsByUser(_ context.Context, userID string, limit int, offset int) ([]domain.PaymentRecord, error) {
	var out []domain.PaymentRecord
	err := r.do(func(st *state) error {
		for i := len(st.payments) - 1; i >= 0; i-- {
			if st.payments[i].UserID == userID {
				out = append(out, st.payments[i])
			}
		}
		return nil
	})
	return page(out, limit, offset), err
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
