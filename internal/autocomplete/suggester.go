// Package autocomplete debounces per-field search requests and suppresses
// responses that a newer keystroke has superseded.
package autocomplete

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"vibecheck/internal/models"
)

// DefaultDebounceWindow is the quiet period before a search fires
const DefaultDebounceWindow = 400 * time.Millisecond

// minQueryLength matches the search chain: shorter queries never search
const minQueryLength = 3

// Searcher answers a suggestion query. *services.SearchChain satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) []models.Song
}

// SearchFunc adapts a function to Searcher
type SearchFunc func(ctx context.Context, query string) []models.Song

func (f SearchFunc) Search(ctx context.Context, query string) []models.Song {
	return f(ctx, query)
}

// DeliverFunc receives the suggestions for a field. Deliveries never overlap.
// It may call Type; it must not call Close.
type DeliverFunc func(field string, suggestions []models.Song)

type fieldState struct {
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
}

// Suggester schedules one search per field after the debounce window.
// The last call for a field wins.
type Suggester struct {
	searcher Searcher
	deliver  DeliverFunc
	window   time.Duration

	ctx    context.Context
	stop   context.CancelFunc
	fields map[string]*fieldState
	closed bool
	mu     sync.Mutex

	// Deliveries queued while another one runs; the running caller drains them
	queue      []pendingDelivery
	delivering bool
	idle       *sync.Cond
}

type pendingDelivery struct {
	field      string
	generation uint64
	results    []models.Song
}

// New creates a Suggester. A non-positive window uses DefaultDebounceWindow.
func New(searcher Searcher, deliver DeliverFunc, window time.Duration) *Suggester {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	ctx, stop := context.WithCancel(context.Background())
	s := &Suggester{
		searcher: searcher,
		deliver:  deliver,
		window:   window,
		ctx:      ctx,
		stop:     stop,
		fields:   make(map[string]*fieldState),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Type records a keystroke for field. Pending or in-flight work for the same
// field is cancelled. Short queries deliver an empty list immediately.
func (s *Suggester) Type(field, query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	state, ok := s.fields[field]
	if !ok {
		state = &fieldState{}
		s.fields[field] = state
	}
	state.generation++
	generation := state.generation
	state.halt()

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		s.mu.Unlock()
		s.deliverIfCurrent(field, generation, []models.Song{})
		return
	}

	state.timer = time.AfterFunc(s.window, func() {
		s.fire(field, generation, query)
	})
	s.mu.Unlock()
}

// Close cancels all pending timers and in-flight searches. Nothing is
// delivered after Close returns.
func (s *Suggester) Close() {
	s.mu.Lock()
	s.closed = true
	for _, state := range s.fields {
		state.halt()
	}
	// Wait out a delivery already past its stale check
	for s.delivering {
		s.idle.Wait()
	}
	s.queue = nil
	s.mu.Unlock()
	s.stop()
}

func (s *Suggester) fire(field string, generation uint64, query string) {
	s.mu.Lock()
	if !s.isCurrent(field, generation) {
		s.mu.Unlock()
		return
	}
	state := s.fields[field]
	ctx, cancel := context.WithCancel(s.ctx)
	state.cancel = cancel
	s.mu.Unlock()

	defer cancel()

	results := s.searcher.Search(ctx, query)
	if ctx.Err() != nil {
		return
	}
	s.deliverIfCurrent(field, generation, results)
}

// deliverIfCurrent queues results and, unless another caller is already
// delivering, drains the queue. The callback runs without holding mu, so it can
// call Type; each queued item is re-checked for staleness right before it runs.
func (s *Suggester) deliverIfCurrent(field string, generation uint64, results []models.Song) {
	if s.deliver == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append(s.queue, pendingDelivery{field: field, generation: generation, results: results})
	if s.delivering {
		return
	}

	s.delivering = true
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		if !s.isCurrent(next.field, next.generation) {
			continue
		}

		s.mu.Unlock()
		s.deliver(next.field, next.results)
		s.mu.Lock()
	}
	s.delivering = false
	s.idle.Broadcast()
}

// isCurrent reports whether generation is still the latest for field (caller holds mu)
func (s *Suggester) isCurrent(field string, generation uint64) bool {
	state := s.fields[field]
	return !s.closed && state != nil && state.generation == generation
}

// halt stops the pending timer and cancels an in-flight search (caller holds mu)
func (f *fieldState) halt() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}
