package server

import (
	"time"

	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
)

// Event types.
const (
	EventSnapshot      = "snapshot"
	EventWeekStarted   = "week_started"
	EventCycleEnded    = "cycle_ended"
	EventCycleUpcoming = "cycle_upcoming"
)

// Snapshot is the compact plan state for status and event payloads.
type Snapshot struct {
	At            time.Time `json:"at"`
	Today         string    `json:"today"`
	CycleStart    string    `json:"cycle_start,omitempty"`
	CycleEnd      string    `json:"cycle_end,omitempty"`
	CurrentWeek   int       `json:"current_week"` // 0 outside the cycle
	DaysIntoCycle int       `json:"days_into_cycle"`
	UnitsThisWeek int64     `json:"units_this_week"`
	TotalUnits    int64     `json:"total_units"`
	Error         string    `json:"error,omitempty"`
}

// Event is emitted when the plan's position in the cycle changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Previous  *Snapshot `json:"previous,omitempty"`
}

func snapshotFromResult(res planner.Result, today time.Time, at time.Time) Snapshot {
	snap := Snapshot{At: at, Today: planner.FormatDate(today)}
	if !res.OK() {
		snap.Error = res.Err.Message
		return snap
	}
	p := res.Plan
	snap.CycleStart = planner.FormatDate(p.StartDate)
	snap.CycleEnd = planner.FormatDate(p.EndDate())
	snap.CurrentWeek = p.CurrentWeek
	snap.DaysIntoCycle = p.DaysIntoCycle
	snap.TotalUnits = p.TotalUnits
	if w, ok := p.Current(); ok {
		snap.UnitsThisWeek = w.Units
	}
	return snap
}

// transition names the event for moving from prev to curr, or "" when
// nothing worth announcing happened.
func transition(prev, curr Snapshot) string {
	if curr.Error != "" || prev.Error != "" {
		if curr.Error != prev.Error {
			return EventSnapshot
		}
		return ""
	}
	if prev.CycleStart != curr.CycleStart {
		return EventSnapshot
	}
	if curr.CurrentWeek == prev.CurrentWeek {
		return ""
	}
	switch {
	case curr.CurrentWeek > 0:
		return EventWeekStarted
	case curr.DaysIntoCycle < 0:
		return EventCycleUpcoming
	default:
		return EventCycleEnded
	}
}
