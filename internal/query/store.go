package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status is the lifecycle state of a cache entry.
type Status int

const (
	// Idle means no fetch has been issued for the key yet.
	Idle Status = iota
	// Fetching means a request is in flight.
	Fetching
	// Fresh means the last fetch succeeded and the value is current.
	Fresh
	// Errored means the last fetch failed; any prior value is retained.
	Errored
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Fresh:
		return "fresh"
	case Errored:
		return "errored"
	}
	return "unknown"
}

// Result is the observable state of a cache entry at one point in time.
// Value is the last-known data, which may be served while Stale or while
// a refetch is in flight.
type Result struct {
	Value  any
	Err    error
	Status Status
	Stale  bool
}

// Fetcher loads the value for a key from the network.
type Fetcher func(ctx context.Context) (any, error)

// Snapshotter receives successful fetch results for offline persistence.
// Implementations must tolerate being called from multiple goroutines.
type Snapshotter interface {
	Save(key Key, value any)
	Invalidate(prefix Key)
}

const defaultRetention = 5 * time.Minute

// Store is the process-wide cache. Only this package mutates entries;
// views and resource clients go through Subscribe, Get, Invalidate, and
// Mutate.
type Store struct {
	mu        sync.Mutex
	entries   map[string]*entry
	nextSeq   uint64
	nextSubID int
	retention time.Duration
	snap      Snapshotter
	log       zerolog.Logger
}

type entry struct {
	key      Key
	status   Status
	value    any
	hasValue bool
	err      error
	stale    bool
	fetcher  Fetcher
	seq      uint64 // issuance sequence of the most recent fetch
	refetch  bool   // invalidated while a fetch was in flight
	subs     map[int]chan Result
	waiters  []chan Result
	gc       *time.Timer
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRetention sets how long an entry without subscribers is kept.
func WithRetention(d time.Duration) StoreOption {
	return func(s *Store) { s.retention = d }
}

// WithSnapshotter enables write-through persistence of fetched values.
func WithSnapshotter(snap Snapshotter) StoreOption {
	return func(s *Store) { s.snap = snap }
}

// WithStoreLogger sets the cache logger.
func WithStoreLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore creates an empty cache store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		entries:   make(map[string]*entry),
		retention: defaultRetention,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of live cache entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) ensureLocked(key Key) *entry {
	ks := key.String()
	e := s.entries[ks]
	if e == nil {
		e = &entry{
			key:  key,
			subs: make(map[int]chan Result),
		}
		s.entries[ks] = e
	}
	return e
}

func resultOf(e *entry) Result {
	return Result{
		Value:  e.value,
		Err:    e.err,
		Status: e.status,
		Stale:  e.stale,
	}
}

// startFetchLocked issues a fetch for e unless one is already in flight.
// This is the deduplication point: one outstanding request per key.
func (s *Store) startFetchLocked(e *entry) {
	if e.status == Fetching || e.fetcher == nil {
		return
	}
	e.status = Fetching

	s.nextSeq++
	seq := s.nextSeq
	e.seq = seq

	fetch := e.fetcher
	key := e.key
	s.log.Debug().Str("key", fmt.Sprintf("%v", []string(key))).Uint64("seq", seq).Msg("cache fetch")

	// Deliberately not the caller's context: unsubscribing discards the
	// result but never aborts the request.
	go func() {
		v, err := fetch(context.Background())
		s.complete(key, seq, v, err)
	}()

	s.notifyLocked(e)
}

// complete applies a finished fetch. Completions whose issuance sequence
// is not the latest for the key are discarded, as are completions for
// entries already garbage-collected.
func (s *Store) complete(key Key, seq uint64, v any, err error) {
	s.mu.Lock()

	e := s.entries[key.String()]
	if e == nil || e.seq != seq {
		s.mu.Unlock()
		return
	}

	var saved any
	if err != nil {
		e.status = Errored
		e.err = err
	} else {
		e.status = Fresh
		e.value = v
		e.hasValue = true
		e.err = nil
		e.stale = false
		saved = v
	}

	// An invalidation raced the fetch: the result predates the write.
	// Subscribers see it as stale while the follow-up fetch runs; waiters
	// hold for that fetch so one-shot reads never settle on superseded
	// data.
	if e.refetch {
		e.refetch = false
		e.stale = true
		if len(e.subs) > 0 || len(e.waiters) > 0 {
			s.startFetchLocked(e)
		}
	} else {
		res := resultOf(e)
		for _, ch := range e.waiters {
			ch <- res
		}
		e.waiters = nil
	}

	s.notifyLocked(e)

	if len(e.subs) == 0 && e.status != Fetching {
		s.scheduleGCLocked(e)
	}
	s.mu.Unlock()

	if saved != nil && s.snap != nil {
		s.snap.Save(key, saved)
	}
}

func (s *Store) notifyLocked(e *entry) {
	res := resultOf(e)
	for _, ch := range e.subs {
		select {
		case ch <- res:
		default:
		}
	}
}

func (s *Store) scheduleGCLocked(e *entry) {
	if e.gc != nil {
		e.gc.Stop()
	}
	key := e.key
	e.gc = time.AfterFunc(s.retention, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		cur := s.entries[key.String()]
		if cur != nil && len(cur.subs) == 0 && len(cur.waiters) == 0 {
			delete(s.entries, key.String())
		}
	})
}

// Subscribe attaches a consumer to key. The subscription's channel
// receives every state change; the current state is always available via
// Current. A cold or stale entry triggers a fetch; a warm entry is served
// immediately. Passing an empty key returns a disabled subscription that
// never fetches ("enabled" gating).
func (s *Store) Subscribe(key Key, fetch Fetcher) *Subscription {
	if len(key) == 0 || fetch == nil {
		return &Subscription{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.ensureLocked(key)
	e.fetcher = fetch
	if e.gc != nil {
		e.gc.Stop()
		e.gc = nil
	}

	s.nextSubID++
	id := s.nextSubID
	ch := make(chan Result, 8)
	e.subs[id] = ch

	// Seed the channel so consumers render without waiting for a change.
	ch <- resultOf(e)

	if !e.hasValue || e.stale {
		s.startFetchLocked(e)
	}

	return &Subscription{s: s, key: key, id: id, ch: ch}
}

func (s *Store) unsubscribe(key Key, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key.String()]
	if e == nil {
		return
	}
	ch, ok := e.subs[id]
	if !ok {
		return
	}
	delete(e.subs, id)
	close(ch)

	if len(e.subs) == 0 {
		s.scheduleGCLocked(e)
	}
}

// Invalidate marks every entry under prefix stale. Entries with active
// subscribers refetch immediately; others keep serving their value as
// stale until the next subscriber or one-shot read refetches.
func (s *Store) Invalidate(prefix Key) {
	s.mu.Lock()
	for _, e := range s.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.stale = true
		if e.status == Fetching {
			e.refetch = true
			continue
		}
		if len(e.subs) > 0 {
			s.startFetchLocked(e)
		} else {
			s.notifyLocked(e)
		}
	}
	s.mu.Unlock()

	if s.snap != nil {
		s.snap.Invalidate(prefix)
	}
}

// Refetch forces a new fetch for key if one is not already in flight.
func (s *Store) Refetch(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key.String()]
	if e == nil || e.fetcher == nil {
		return
	}
	s.startFetchLocked(e)
}

// get is the one-shot read path: a fresh cached value is returned
// directly, anything else waits for the (shared) in-flight fetch.
func (s *Store) get(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	s.mu.Lock()

	e := s.ensureLocked(key)
	if fetch != nil {
		e.fetcher = fetch
	}

	if e.hasValue && e.status == Fresh && !e.stale {
		v := e.value
		s.mu.Unlock()
		return v, nil
	}

	ch := make(chan Result, 1)
	e.waiters = append(e.waiters, ch)
	s.startFetchLocked(e)
	s.mu.Unlock()

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Value, nil
	case <-ctx.Done():
		s.dropWaiter(key, ch)
		return nil, ctx.Err()
	}
}

func (s *Store) dropWaiter(key Key, ch chan Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[key.String()]
	if e == nil {
		return
	}
	kept := e.waiters[:0]
	for _, w := range e.waiters {
		if w != ch {
			kept = append(kept, w)
		}
	}
	e.waiters = kept
}

// Get reads key through the cache with a typed fetcher.
func Get[T any](ctx context.Context, s *Store, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := s.get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query: cached value for %q is %T", key.String(), v)
	}
	return t, nil
}

// Mutate runs a write and, on success, invalidates the declared key
// prefixes. Mutation errors are returned as-is and never retried.
func Mutate[T any](ctx context.Context, s *Store, fn func(context.Context) (T, error), invalidates ...Key) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	for _, k := range invalidates {
		s.Invalidate(k)
	}
	return v, nil
}

// Subscription is one consumer's attachment to a cache entry.
type Subscription struct {
	s      *Store
	key    Key
	id     int
	ch     chan Result
	closed bool
}

// Enabled reports whether the subscription is backed by a cache entry.
func (sub *Subscription) Enabled() bool {
	return sub.s != nil
}

// Updates returns the state-change channel. For a disabled subscription
// it returns nil, which blocks forever in a select.
func (sub *Subscription) Updates() <-chan Result {
	if sub.s == nil {
		return nil
	}
	return sub.ch
}

// Current returns the entry's state right now.
func (sub *Subscription) Current() Result {
	if sub.s == nil {
		return Result{Status: Idle}
	}
	sub.s.mu.Lock()
	defer sub.s.mu.Unlock()
	e := sub.s.entries[sub.key.String()]
	if e == nil {
		return Result{Status: Idle}
	}
	return resultOf(e)
}

// Refetch forces a refresh of the subscribed key.
func (sub *Subscription) Refetch() {
	if sub.s != nil {
		sub.s.Refetch(sub.key)
	}
}

// Close detaches the consumer. The underlying request, if any, keeps
// running; its result is simply no longer delivered here. The entry is
// garbage-collected after the retention window if nobody else holds it.
func (sub *Subscription) Close() {
	if sub.s == nil || sub.closed {
		return
	}
	sub.closed = true
	sub.s.unsubscribe(sub.key, sub.id)
}
