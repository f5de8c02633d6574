// Package memory is a process-local implementation of the repository ports.
// It backs tests and single-process development runs.
package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
)

type state struct {
	users       map[string]domain.User
	admins      map[string]domain.Admin
	entries     []domain.LedgerEntry
	payments    []domain.PaymentRecord
	types       map[string]domain.RequestType
	requests    map[string]domain.FortuneRequest
	results     map[string]domain.GenerationResult
	resultByReq map[string]string
	published   map[string]domain.PublishedResult
}

func newState() *state {
	return &state{
		users:       map[string]domain.User{},
		admins:      map[string]domain.Admin{},
		types:       map[string]domain.RequestType{},
		requests:    map[string]domain.FortuneRequest{},
		results:     map[string]domain.GenerationResult{},
		resultByReq: map[string]string{},
		published:   map[string]domain.PublishedResult{},
	}
}

// clone copies every table. Entities are stored by value and replaced
// wholesale on update, so copying the maps is enough.
func (s *state) clone() *state {
	c := &state{
		users:       make(map[string]domain.User, len(s.users)),
		admins:      make(map[string]domain.Admin, len(s.admins)),
		entries:     append([]domain.LedgerEntry(nil), s.entries...),
		payments:    append([]domain.PaymentRecord(nil), s.payments...),
		types:       make(map[string]domain.RequestType, len(s.types)),
		requests:    make(map[string]domain.FortuneRequest, len(s.requests)),
		results:     make(map[string]domain.GenerationResult, len(s.results)),
		resultByReq: make(map[string]string, len(s.resultByReq)),
		published:   make(map[string]domain.PublishedResult, len(s.published)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.admins {
		c.admins[k] = v
	}
	for k, v := range s.types {
		c.types[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.results {
		c.results[k] = v
	}
	for k, v := range s.resultByReq {
		c.resultByReq[k] = v
	}
	for k, v := range s.published {
		c.published[k] = v
	}
	return c
}

// Store serializes every transaction behind one mutex, which gives the
// same per-user ordering a row lock gives in Postgres.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore creates an empty store seeded with the given request types.
func NewStore(types ...domain.RequestType) *Store {
	s := &Store{st: newState()}
	for _, t := range types {
		s.st.types[t.TypeID] = t
	}
	return s
}

// WithinTx runs fn while holding the store lock. If fn fails every change
// it made is discarded.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(ctx, s.bound(true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) bound(inTx bool) portsrepo.TxRepositories {
	h := handle{store: s, inTx: inTx}
	return portsrepo.TxRepositories{
		Users:     &userRepo{h},
		Admins:    &adminRepo{h},
		Ledger:    &ledgerRepo{h},
		Payments:  &paymentRepo{h},
		Types:     &typeRepo{h},
		Requests:  &requestRepo{h},
		Results:   &resultRepo{h},
		Published: &publishedRepo{h},
	}
}

// Provider exposes the store through the repository ports.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	r := s.bound(false)
	return portsrepo.RepositoryProvider{
		TxManager:     s,
		UserRepo:      r.Users,
		AdminRepo:     r.Admins,
		LedgerRepo:    r.Ledger,
		PaymentRepo:   r.Payments,
		TypeRepo:      r.Types,
		RequestRepo:   r.Requests,
		ResultRepo:    r.Results,
		PublishedRepo: r.Published,
		ReportingRepo: &reportingRepo{handle{store: s}},
	}
}

// handle runs an operation against the current state, taking the lock
// unless it is already held by an enclosing WithinTx.
type handle struct {
	store *Store
	inTx  bool
}

func (h handle) do(fn func(st *state) error) error {
	if !h.inTx {
		h.store.mu.Lock()
		defer h.store.mu.Unlock()
	}
	return fn(h.store.st)
}

var _ portsrepo.TransactionManager = (*Store)(nil)
