// Package server provides the long-running plan service and its HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/moondogdev/reup-allotment-calculator/internal/planner"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr           string
	EventsBuffer   int
	Schedule       string // cron spec for re-checking the plan
	Allotment      string
	StartDate      string // empty means "today"
	AllowedOrigins []string
	Planner        *planner.Planner
	Logger         zerolog.Logger
}

// Status is served at /v1/status.
type Status struct {
	InstanceID      string    `json:"instance_id"` // changes on restart, when event IDs start over
	StartedAt       time.Time `json:"started_at"`
	LastCheckAt     time.Time `json:"last_check_at"`
	CheckCount      int64     `json:"check_count"`
	Schedule        string    `json:"schedule"`
	Allotment       string    `json:"allotment"`
	StartDate       string    `json:"start_date,omitempty"`
	Current         Snapshot  `json:"current"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the plan service runtime and HTTP API.
type Service struct {
	cfg        Config
	log        zerolog.Logger
	router     *chi.Mux
	instanceID string

	mu          sync.RWMutex
	startedAt   time.Time
	lastCheckAt time.Time
	checkCount  int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new service with the provided config.
func New(cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@midnight"
	}
	if cfg.Planner == nil {
		cfg.Planner = planner.New()
	}

	s := &Service{
		cfg:        cfg,
		router:     chi.NewRouter(),
		instanceID: uuid.NewString(),
		startedAt:  time.Now(),
		subs:       make(map[int]chan Event),
	}
	s.log = cfg.Logger.With().Str("component", "server").Str("instance", s.instanceID).Logger()
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Service) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:         300,
	}))
}

func (s *Service) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/plan", s.handlePlan)
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Run serves HTTP and re-checks the plan on schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, s.checkOnce); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.cfg.Schedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Str("schedule", s.cfg.Schedule).Msg("plan server listening")

	// Seed initial snapshot so status is useful immediately.
	s.checkOnce()
	c.Start()
	defer func() { <-c.Stop().Done() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down plan server")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("plan http server: %w", err)
	}
}

// checkOnce evaluates the configured plan and publishes an event when
// today's position in the cycle changed since the last check.
func (s *Service) checkOnce() {
	today := s.cfg.Planner.Today()
	start := s.cfg.StartDate
	if start == "" {
		start = planner.FormatDate(today)
	}
	res := planner.Evaluate(s.cfg.Allotment, start, today)
	now := time.Now()
	snap := snapshotFromResult(res, today, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastCheckAt = now
	s.checkCount++
	s.lastError = snap.Error

	kind := EventSnapshot
	if prevExists {
		kind = transition(prev, snap)
	}
	if kind != "" {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: kind, Timestamp: now, Snapshot: snap}
		if prevExists {
			p := prev
			ev.Previous = &p
		}
		publish = true
	}
	s.mu.Unlock()

	if snap.Error != "" {
		s.log.Warn().Str("error", snap.Error).Msg("configured plan is invalid")
	}
	if publish {
		s.log.Info().Str("event", ev.Type).Int("week", snap.CurrentWeek).Msg("plan event")
		s.publishEvent(ev)
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
		InstanceID:      s.instanceID,
		StartedAt:       s.startedAt,
		LastCheckAt:     s.lastCheckAt,
		CheckCount:      s.checkCount,
		Schedule:        s.cfg.Schedule,
		Allotment:       s.cfg.Allotment,
		StartDate:       s.cfg.StartDate,
		Current:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

// ─── Handlers ───────────────────────────────────────────────────

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// handlePlan evaluates a plan from query parameters, falling back to the
// configured allotment and start date. Validation failures are 422s with
// the same JSON shape as `reup --json`.
func (s *Service) handlePlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	today := s.cfg.Planner.Today()
	if raw := strings.TrimSpace(q.Get("today")); raw != "" {
		d, err := planner.ParseDate(raw)
		if err != nil {
			var pe *planner.PlanError
			errors.As(err, &pe)
			writeJSON(w, http.StatusUnprocessableEntity, planner.Result{Err: pe})
			return
		}
		today = d
	}

	allotment := q.Get("allotment")
	if !q.Has("allotment") {
		allotment = s.cfg.Allotment
	}
	start := q.Get("start_date")
	if !q.Has("start_date") {
		start = s.cfg.StartDate
	}
	if start == "" {
		start = planner.FormatDate(today)
	}

	res := planner.Evaluate(allotment, start, today)
	status := http.StatusOK
	if !res.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
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
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Current,
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
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

// loggingMiddleware logs HTTP requests.
func (s *Service) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
