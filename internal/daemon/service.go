// Package daemon provides the long-running background statistics monitor.
// It polls the remote dashboard aggregate through the query cache and
// serves snapshots, deltas, and an SSE stream on a local HTTP API. The
// daemon never issues mutations.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pmdash/pmdash/internal/model"
	"github.com/pmdash/pmdash/internal/query"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Range        model.DateRange
}

// Snapshot is a compact financial state for status/event payloads.
type Snapshot struct {
	At             time.Time `json:"at"`
	Clients        int       `json:"clients"`
	Projects       int       `json:"projects"`
	PaymentsCount  int       `json:"payments_count"`
	ExpensesCount  int       `json:"expenses_count"`
	Revenue        float64   `json:"revenue"`
	Expenses       float64   `json:"expenses"`
	NetProfit      float64   `json:"net_profit"`
	GrossMarginPct float64   `json:"gross_margin_pct"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Clients       int     `json:"clients"`
	Projects      int     `json:"projects"`
	PaymentsCount int     `json:"payments_count"`
	ExpensesCount int     `json:"expenses_count"`
	Revenue       float64 `json:"revenue"`
	Expenses      float64 `json:"expenses"`
	NetProfit     float64 `json:"net_profit"`
}

func (d Delta) isZero() bool {
	return d.Clients == 0 &&
		d.Projects == 0 &&
		d.PaymentsCount == 0 &&
		d.ExpensesCount == 0 &&
		d.Revenue == 0 &&
		d.Expenses == 0 &&
		d.NetProfit == 0
}

// Event is emitted whenever the polled statistics change.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	cache *query.Cache
	log   zerolog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service polling through the given cache.
func New(cfg Config, cache *query.Cache, log zerolog.Logger) *Service {
	if cfg.Interval < 5*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8791"
	}

	return &Service{
		cfg:       cfg,
		cache:     cache,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/v1/status", s.handleStatus)
	r.Get("/v1/events", s.handleEvents)
	r.Get("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	// Force a refetch: the poll exists to observe server-side changes.
	s.cache.Store.Invalidate(query.StatisticsKey())

	stats, err := s.cache.DashboardStats(ctx, s.cfg.Range)
	now := time.Now()

	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("daemon poll failed")
		return
	}

	snap := snapshotFromStats(stats, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "stats_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromStats(stats *model.DashboardStats, at time.Time) Snapshot {
	return Snapshot{
		At:             at,
		Clients:        stats.Overview.TotalClients,
		Projects:       stats.Overview.TotalProjects,
		PaymentsCount:  stats.Overview.TotalPaymentsCount,
		ExpensesCount:  stats.Overview.TotalExpensesCount,
		Revenue:        stats.Financial.TotalRevenue,
		Expenses:       stats.Financial.TotalExpenses,
		NetProfit:      stats.Financial.NetProfit,
		GrossMarginPct: stats.Financial.GrossMargin.Percent,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Clients:       curr.Clients - prev.Clients,
		Projects:      curr.Projects - prev.Projects,
		PaymentsCount: curr.PaymentsCount - prev.PaymentsCount,
		ExpensesCount: curr.ExpensesCount - prev.ExpensesCount,
		Revenue:       curr.Revenue - prev.Revenue,
		Expenses:      curr.Expenses - prev.Expenses,
		NetProfit:     curr.NetProfit - prev.NetProfit,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
