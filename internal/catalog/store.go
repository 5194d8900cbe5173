// Package catalog holds the in-memory projection of tools and reviews.
//
// Mutations follow a two-phase protocol. The local change is applied
// synchronously and any derived aggregate is recomputed in the same critical
// section. Then, for privileged sessions, a background Task persists the
// change and replaces the whole tool collection with a fresh server listing.
// A failed Task leaves the optimistic state in place; the failure is logged
// and kept on the Task, never raised to the caller.
package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/model"
	"github.com/Veraticus/toolshed/internal/service"
)

// ErrClosed is returned by tasks started after Close.
var ErrClosed = errors.New("catalog store closed")

// Session is the part of the session holder the store needs.
type Session interface {
	Token() string
	IsPrivileged() bool
}

// Progress observes the per-tool review fetches of Bootstrap.
type Progress interface {
	Start(total int)
	Advance()
	Finish()
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the provisional id generator.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithProgress reports Bootstrap progress to p.
func WithProgress(p Progress) Option {
	return func(s *Store) { s.progress = p }
}

// WithFanOut bounds the number of concurrent review fetches during Bootstrap.
func WithFanOut(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.fanOut = n
		}
	}
}

// Store is the single owner of the tool and review collections.
type Store struct {
	gw       service.Gateway
	session  Session
	progress Progress
	now      func() time.Time
	newID    func(prefix string) string
	tools    []model.Tool
	reviews  []model.Review
	filters  model.FilterState
	tasks    sync.WaitGroup
	inflight atomic.Int64
	fanOut   int
	// fetchSeq numbers tool listings by start order; appliedSeq is the newest one applied.
	fetchSeq   uint64
	appliedSeq uint64
	mu         sync.Mutex
	closed     bool
}

// New creates an empty store. A nil session is treated as a guest.
func New(gw service.Gateway, sess Session, opts ...Option) *Store {
	if sess == nil {
		sess = guest{}
	}
	s := &Store{
		gw:      gw,
		session: sess,
		now:     time.Now,
		newID:   provisionalID,
		fanOut:  8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func provisionalID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

type guest struct{}

func (guest) Token() string      { return "" }
func (guest) IsPrivileged() bool { return false }

// canPersist reports whether mutations should be sent to the server, and with which token.
func (s *Store) canPersist() (string, bool) {
	token := s.session.Token()
	return token, token != "" && s.session.IsPrivileged()
}

// spawn runs fn in the background and tracks it for Wait.
// fn gets a context detached from the caller's cancellation.
func (s *Store) spawn(ctx context.Context, op string, fields common.Fields, fn func(context.Context) error) *Task {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return completedTask(ErrClosed)
	}
	s.tasks.Add(1)
	s.inflight.Add(1)
	s.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	task := newTask()
	go func() {
		defer s.tasks.Done()
		defer s.inflight.Add(-1)
		err := fn(bg)
		if err != nil {
			common.LogDebug(bg, err, "Background sync failed; keeping local state", withOp(fields, op))
		}
		task.finish(err)
	}()
	return task
}

func withOp(fields common.Fields, op string) common.Fields {
	out := make(common.Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["op"] = op
	return out
}

// Syncing reports whether any background task is still running.
func (s *Store) Syncing() bool {
	return s.inflight.Load() > 0
}

// Wait blocks until every outstanding background task has finished.
func (s *Store) Wait() {
	s.tasks.Wait()
}

// Close stops accepting background work and waits for what is in flight.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.tasks.Wait()
}

// reconcileTools replaces the tool collection with a fresh listing.
// A listing that started before the last applied one is dropped.
func (s *Store) reconcileTools(ctx context.Context) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	tools, err := s.gw.ListTools(ctx, service.ToolQuery{})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.appliedSeq {
		return nil
	}
	s.tools = tools
	s.appliedSeq = seq
	return nil
}

// toolIndexLocked returns the position of id in s.tools, or -1.
func (s *Store) toolIndexLocked(id string) int {
	for i := range s.tools {
		if s.tools[i].ID == id {
			return i
		}
	}
	return -1
}

// reviewIndexLocked returns the position of id in s.reviews, or -1.
func (s *Store) reviewIndexLocked(id string) int {
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			return i
		}
	}
	return -1
}

// recomputeLocked rewrites the cached aggregate of toolID from the current review set.
func (s *Store) recomputeLocked(toolID string) {
	idx := s.toolIndexLocked(toolID)
	if idx < 0 {
		return
	}
	agg := model.AggregateFor(toolID, s.reviews)
	s.tools[idx].AverageRating = agg.AverageRating
	s.tools[idx].TotalReviews = agg.TotalReviews
}
