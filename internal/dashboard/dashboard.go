// Package dashboard assembles the derived views a dashboard renders from a
// snapshot of the store.
//
// Only the charts follow the selected range. Summary figures, the running
// balance, the per-type sparklines and the recent list always cover the
// whole collection. Snapshots are memoized per (store revision, range).
package dashboard

import (
	"time"

	"budgetplanner/internal/aggregate"
	"budgetplanner/internal/cache"
	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
	"budgetplanner/internal/query"
	"budgetplanner/internal/store"
	"budgetplanner/internal/window"
)

// RecentCount is how many transactions the recent list shows.
const RecentCount = 5

const (
	defaultMemoSize = 8
	// The cutoff moves with the clock, so memoized windows go stale.
	defaultMemoTTL = time.Minute
)

// Source is the read side of the store.
type Source interface {
	List() []core.Transaction
	Revision() uint64
}

// Snapshot is every derived view for one store revision and range. Its
// slices are shared with the memo and must not be modified.
type Snapshot struct {
	Revision uint64
	Range    window.Range
	Cutoff   time.Time

	Window     []core.Transaction
	Daily      []aggregate.DailyBucket
	Categories []aggregate.CategoryBucket

	Summary       aggregate.Summary
	Balance       []aggregate.BalancePoint
	IncomeSeries  []aggregate.Point
	ExpenseSeries []aggregate.Point
	Recent        []core.Transaction
}

// Project returns the category chart for sel.
func (s *Snapshot) Project(sel core.TypeFilter) aggregate.Projection {
	return aggregate.ProjectCategories(sel, s.Categories)
}

type memoKey struct {
	revision uint64
	rng      window.Range
}

type Option func(*Service)

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentDashboard)
		}
	}
}

// WithClock sets the clock used for window cutoffs and memo expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMemo sizes the snapshot memo.
func WithMemo(size int, ttl time.Duration) Option {
	return func(s *Service) {
		s.memoSize, s.memoTTL = size, ttl
	}
}

// Service computes snapshots from a Source.
type Service struct {
	src      Source
	logger   *log.Logger
	now      func() time.Time
	memoSize int
	memoTTL  time.Duration
	memo     *cache.LRU[memoKey, *Snapshot]
}

func New(src Source, opts ...Option) *Service {
	s := &Service{
		src:      src,
		logger:   log.Default().WithComponent(log.ComponentDashboard),
		now:      time.Now,
		memoSize: defaultMemoSize,
		memoTTL:  defaultMemoTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.memo = cache.NewLRU[memoKey, *Snapshot](s.memoSize, s.memoTTL).WithClock(s.now)
	return s
}

// Memo exposes the snapshot memo for periodic cleanup.
func (s *Service) Memo() cache.Cleaner {
	return s.memo
}

// Invalidate drops every memoized snapshot.
func (s *Service) Invalidate() {
	s.memo.Clear()
}

// Observe drops memoized snapshots when the store changes. It is meant to
// be passed to store.Subscribe.
func (s *Service) Observe(ev store.Event) {
	s.logger.Debug("Store changed, dropping memoized snapshots",
		log.FieldEvent, ev.Kind.String(),
		log.FieldRevision, ev.Revision)
	s.Invalidate()
}

// Snapshot returns the derived views for r.
func (s *Service) Snapshot(r window.Range) *Snapshot {
	rev := s.src.Revision()
	key := memoKey{revision: rev, rng: r}
	if snap, ok := s.memo.Get(key); ok {
		return snap
	}

	txs := s.src.List()
	snap := build(txs, r, s.now())
	snap.Revision = rev
	s.memo.Set(key, snap)

	s.logger.Debug("Dashboard snapshot computed",
		log.FieldOperation, log.OpRender,
		log.FieldRange, r.String(),
		log.FieldRevision, rev,
		log.FieldCount, len(snap.Window))
	return snap
}

func build(txs []core.Transaction, r window.Range, now time.Time) *Snapshot {
	cutoff := window.Cutoff(r, now)
	windowed := window.FilterSince(txs, cutoff)
	return &Snapshot{
		Range:         r,
		Cutoff:        cutoff,
		Window:        windowed,
		Daily:         aggregate.Daily(windowed),
		Categories:    aggregate.ByCategory(windowed),
		Summary:       aggregate.Summarize(txs),
		Balance:       aggregate.RunningBalance(txs),
		IncomeSeries:  aggregate.TypeSeries(txs, core.Income),
		ExpenseSeries: aggregate.TypeSeries(txs, core.Expense),
		Recent:        aggregate.Recent(txs, RecentCount),
	}
}

// Table filters, sorts and pages the whole collection for the table view.
func (s *Service) Table(c query.Criteria, pageSize, page int) query.Page {
	return query.Paginate(query.Apply(s.src.List(), c), pageSize, page)
}
