package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moondogdev/reup-allotment-calculator/internal/planner"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) set(day string) {
	d, err := planner.ParseDate(day)
	if err != nil {
		panic(err)
	}
	c.mu.Lock()
	c.now = d.Add(12 * time.Hour)
	c.mu.Unlock()
}

func newTestService(t *testing.T, today string, buffer int) (*Service, *clock) {
	t.Helper()
	c := &clock{}
	c.set(today)
	s := New(Config{
		Allotment:    "3.25",
		StartDate:    "2024-03-01",
		EventsBuffer: buffer,
		Planner:      planner.New().WithClock(c.Now),
		Logger:       zerolog.Nop(),
	})
	return s, c
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestTransition(t *testing.T) {
	week := func(w, days int) Snapshot {
		return Snapshot{CycleStart: "2024-03-01", CurrentWeek: w, DaysIntoCycle: days}
	}

	tests := []struct {
		name       string
		prev, curr Snapshot
		want       string
	}{
		{"same week", week(2, 8), week(2, 9), ""},
		{"next week", week(1, 6), week(2, 7), EventWeekStarted},
		{"cycle begins", week(0, -1), week(1, 0), EventWeekStarted},
		{"cycle ends", week(5, 34), week(0, 35), EventCycleEnded},
		{"clock moved back", week(1, 0), week(0, -1), EventCycleUpcoming},
		{"error appears", week(1, 0), Snapshot{Error: "bad"}, EventSnapshot},
		{"error persists", Snapshot{Error: "bad"}, Snapshot{Error: "bad"}, ""},
		{"new cycle start", week(5, 34), Snapshot{CycleStart: "2024-04-05", CurrentWeek: 1}, EventSnapshot},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, transition(tt.prev, tt.curr), tt.name)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s, _ := newTestService(t, "2024-03-09", 2)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestCheckOncePublishesWeekTransitions(t *testing.T) {
	s, c := newTestService(t, "2024-03-06", 10)

	s.checkOnce() // week 1: initial snapshot
	s.checkOnce() // same day: nothing new
	c.set("2024-03-08")
	s.checkOnce() // week 2
	c.set("2024-04-05")
	s.checkOnce() // past day 35

	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, len(s.events))
	for i, ev := range s.events {
		types[i] = ev.Type
	}
	assert.Equal(t, []string{EventSnapshot, EventWeekStarted, EventCycleEnded}, types)
	assert.Equal(t, int64(4), s.checkCount)

	wk := s.events[1]
	assert.Equal(t, 2, wk.Snapshot.CurrentWeek)
	assert.Equal(t, int64(5), wk.Snapshot.UnitsThisWeek)
	require.NotNil(t, wk.Previous)
	assert.Equal(t, 1, wk.Previous.CurrentWeek)
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestService(t, "2024-03-09", 10)
	rec := get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestHandlePlanUsesConfigDefaults(t *testing.T) {
	s, _ := newTestService(t, "2024-03-09", 10)

	rec := get(t, s.Handler(), "/v1/plan")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK   bool `json:"ok"`
		Plan struct {
			TotalUnits  int64   `json:"total_purchasable_units"`
			Leftover    float64 `json:"grams_leftover"`
			CurrentWeek *int    `json:"current_week_index"`
			Weeks       []struct {
				Units int64 `json:"units_to_buy"`
			} `json:"weekly_allocations"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, int64(26), body.Plan.TotalUnits)
	assert.InDelta(t, 1.14, body.Plan.Leftover, 1e-9)
	require.NotNil(t, body.Plan.CurrentWeek)
	assert.Equal(t, 2, *body.Plan.CurrentWeek)
	require.Len(t, body.Plan.Weeks, 5)
	assert.Equal(t, int64(6), body.Plan.Weeks[0].Units)
}

func TestHandlePlanQueryOverrides(t *testing.T) {
	s, _ := newTestService(t, "2024-03-09", 10)

	rec := get(t, s.Handler(), "/v1/plan?allotment=1.0&start_date=2024-06-01&today=2024-06-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_purchasable_units":8`)
	assert.Contains(t, rec.Body.String(), `"current_week_index":1`)
}

func TestHandlePlanValidationErrors(t *testing.T) {
	s, _ := newTestService(t, "2024-03-09", 10)

	tests := []struct {
		query string
		kind  string
	}{
		{"allotment=-1", "invalid_allotment"},
		{"allotment=", "invalid_allotment"},
		{"start_date=13/32/2024", "invalid_date"},
		{"today=yesterday", "invalid_date"},
	}
	for _, tt := range tests {
		rec := get(t, s.Handler(), "/v1/plan?"+tt.query)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, tt.query)

		var body struct {
			OK    bool `json:"ok"`
			Error struct {
				Kind string `json:"kind"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), tt.query)
		assert.False(t, body.OK, tt.query)
		assert.Equal(t, tt.kind, body.Error.Kind, tt.query)
	}
}

func TestHandleStatusAndEvents(t *testing.T) {
	s, _ := newTestService(t, "2024-03-09", 10)
	s.checkOnce()

	rec := get(t, s.Handler(), "/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, int64(1), st.CheckCount)
	assert.Equal(t, 2, st.Current.CurrentWeek)
	assert.Equal(t, "2024-04-04", st.Current.CycleEnd)
	assert.Equal(t, 1, st.EventCount)
	assert.Equal(t, "@midnight", st.Schedule)
	assert.Len(t, st.InstanceID, 36)

	rec = get(t, s.Handler(), "/v1/events")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, EventSnapshot, events[0].Type)
}

func TestInvalidConfiguredPlanIsReported(t *testing.T) {
	s := New(Config{Allotment: "lots", StartDate: "2024-03-01", Logger: zerolog.Nop()})
	s.checkOnce()

	st := s.snapshotStatus()
	assert.Equal(t, "Allotment must be a positive number.", st.LastError)
	assert.Equal(t, st.LastError, st.Current.Error)
}

func TestStreamSendsCurrentSnapshot(t *testing.T) {
	s, _ := newTestService(t, "2024-03-09", 10)
	s.checkOnce()

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "event: snapshot", lines[0])
	assert.Contains(t, lines[1], `"current_week":2`)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestService(t, "2024-03-09", 10)

	req := httptest.NewRequest(http.MethodOptions, "/v1/plan", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
