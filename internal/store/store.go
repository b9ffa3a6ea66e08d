// Package store owns the transaction collection.
//
// The Store is the single source of truth every view reads from. It keeps
// transactions in insertion order, writes the whole collection through a
// Persister after each mutation, and tells subscribers what changed so a
// presentation layer can re-render. Readers only ever get copies.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

// ErrPersist wraps persistence failures. The in-memory mutation has
// already been applied when it is returned.
var ErrPersist = errors.New("persist transactions")

// Persister loads and saves the whole collection.
type Persister interface {
	Load(ctx context.Context) ([]core.Transaction, error)
	Save(ctx context.Context, txs []core.Transaction) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence warnings and mutations.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStore)
		}
	}
}

// WithIDGenerator replaces uuid.NewString for ID assignment.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

type observer struct {
	id int
	fn func(Event)
}

// Store is an in-memory transaction collection backed by a Persister.
type Store struct {
	mu        sync.Mutex
	persister Persister
	logger    *log.Logger
	newID     func() string

	items    []core.Transaction
	revision uint64

	obsMu     sync.Mutex
	observers []observer
	nextObsID int
}

// New creates a store and loads the persisted collection once. A nil
// persister keeps everything in memory. Load failures start the store
// empty; they are logged and never returned.
func New(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		logger:    log.Default().WithComponent(log.ComponentStore),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []core.Transaction {
	if s.persister == nil {
		return nil
	}
	items, err := s.readPersisted(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load persisted transactions, starting empty",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err)
		return nil
	}
	s.logger.DebugContext(ctx, "Loaded persisted transactions", log.FieldCount, len(items))
	return items
}

// readPersisted loads the collection and drops records whose id is missing
// or already seen, keeping ids unique.
func (s *Store) readPersisted(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.persister.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(txs))
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if _, dup := seen[t.ID]; dup || t.ID == "" {
			s.logger.WarnContext(ctx, "Dropping persisted transaction with missing or duplicate id",
				log.FieldTransactionID, t.ID)
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return core.Transaction{}, false
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Revision increases by one for every applied mutation or reload.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Add assigns a fresh id, trims the name and appends the transaction.
// Only a negative amount or an unknown type is rejected; the entry form is
// responsible for everything else.
func (s *Store) Add(ctx context.Context, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Amount.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	if err := n.Type.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.mu.Lock()
	id := s.newID()
	for s.indexOf(id) >= 0 {
		id = s.newID()
	}
	tx := n.WithID(id)
	tx.Name = strings.TrimSpace(tx.Name)
	s.items = append(s.items, tx)
	s.revision++
	ev := Event{Kind: Added, Transaction: tx, Revision: s.revision}
	err := s.persistLocked(ctx, log.OpCreate)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Transaction added",
		log.NewFields().WithOperation(log.OpCreate).
			WithTransaction(tx.ID, tx.Type.String(), tx.Category, tx.Amount.Cents).ToSlice()...)
	s.notify(ev)
	return tx, err
}

// Update merges p onto the transaction with the given id. It reports
// false, with no error, when the id is unknown.
func (s *Store) Update(ctx context.Context, id string, p core.Patch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, fmt.Errorf("update transaction %s: %w", id, err)
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	updated := p.Apply(s.items[i])
	s.items[i] = updated
	s.revision++
	ev := Event{Kind: Updated, Transaction: updated, Revision: s.revision}
	err := s.persistLocked(ctx, log.OpUpdate)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Transaction updated", log.FieldTransactionID, id)
	s.notify(ev)
	return true, err
}

// Delete removes the transaction with the given id. It reports false,
// with no error, when the id is unknown. There is no confirmation step.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	removed := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.revision++
	ev := Event{Kind: Deleted, Transaction: removed, Revision: s.revision}
	err := s.persistLocked(ctx, log.OpDelete)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	s.notify(ev)
	return true, err
}

// Reload replaces the in-memory collection with what the persister holds,
// picking up writes made by another process. A failed load keeps the
// current collection and returns the error.
func (s *Store) Reload(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	items, err := s.readPersisted(ctx)
	if err != nil {
		return fmt.Errorf("reload transactions: %w", err)
	}

	s.mu.Lock()
	s.items = items
	s.revision++
	ev := Event{Kind: Reloaded, Revision: s.revision}
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Transactions reloaded", log.FieldCount, len(items))
	s.notify(ev)
	return nil
}

// persistLocked saves the current collection. The caller holds s.mu so
// saves are written in mutation order.
func (s *Store) persistLocked(ctx context.Context, op string) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, clone(s.items)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist transactions",
			log.FieldOperation, op,
			log.FieldError, err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(in []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(in))
	copy(out, in)
	return out
}
