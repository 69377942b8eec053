// Package planner turns a 35-day allotment into a five-week purchase plan.
//
// The calculation is pure: given an allotment, a cycle start date and
// "today", ComputePlan always returns the same CyclePlan. Quantities use
// fixed-point decimals so that conversions such as 3.25 oz × 28.35 g/oz are
// exact before the plan is discretized into 3.5 g purchase units.
package planner

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// CycleWeeks is the number of weeks in one allotment cycle.
	CycleWeeks = 5
	// DaysPerWeek is the length of one plan week.
	DaysPerWeek = 7
	// CycleDays is the full cycle length.
	CycleDays = CycleWeeks * DaysPerWeek
)

var (
	// OunceToGrams converts ounce-equivalents to grams.
	OunceToGrams = decimal.RequireFromString("28.35")
	// PurchaseIncrement is the mass of the smallest purchasable unit (an eighth).
	PurchaseIncrement = decimal.RequireFromString("3.5")
	// maxUnits is the largest unit count a plan can represent.
	maxUnits = decimal.NewFromInt(math.MaxInt64)
)

// WeeklyAllocation is one week's share of the cycle.
type WeeklyAllocation struct {
	Week  int             // 1..CycleWeeks
	Units int64           // purchase units to buy this week
	Grams decimal.Decimal // Units × PurchaseIncrement
	Start time.Time       // first day of the week
	End   time.Time       // last day of the week (inclusive)
}

// Contains reports whether the calendar date d falls inside this week.
func (w WeeklyAllocation) Contains(d time.Time) bool {
	day := DateOf(d)
	return !day.Before(w.Start) && !day.After(w.End)
}

// CyclePlan is the full result of a calculation.
type CyclePlan struct {
	AllotmentOunces decimal.Decimal
	StartDate       time.Time
	TotalGrams      decimal.Decimal
	TotalUnits      int64
	Weeks           []WeeklyAllocation
	GramsPurchased  decimal.Decimal
	GramsLeftover   decimal.Decimal

	// DaysIntoCycle is today minus the start date; negative before the cycle begins.
	DaysIntoCycle int
	// CurrentWeek is the 1-based week containing today, or 0 outside the cycle.
	CurrentWeek int
}

// Current returns the allocation for today's week, if today is inside the cycle.
func (p CyclePlan) Current() (WeeklyAllocation, bool) {
	if p.CurrentWeek < 1 || p.CurrentWeek > len(p.Weeks) {
		return WeeklyAllocation{}, false
	}
	return p.Weeks[p.CurrentWeek-1], true
}

// InCycle reports whether today falls within the cycle window.
func (p CyclePlan) InCycle() bool {
	_, ok := p.Current()
	return ok
}

// EndDate is the last day of the cycle.
func (p CyclePlan) EndDate() time.Time {
	return p.StartDate.AddDate(0, 0, CycleDays-1)
}

// NextStartDate is the first day after the cycle ends.
func (p CyclePlan) NextStartDate() time.Time {
	return p.StartDate.AddDate(0, 0, CycleDays)
}

// DaysRemaining counts the cycle days left including today, 0 once the cycle has ended.
func (p CyclePlan) DaysRemaining() int {
	switch {
	case p.DaysIntoCycle < 0:
		return CycleDays
	case p.DaysIntoCycle >= CycleDays:
		return 0
	}
	return CycleDays - p.DaysIntoCycle
}

// Progress is the elapsed fraction of the cycle in [0, 1].
func (p CyclePlan) Progress() float64 {
	switch {
	case p.DaysIntoCycle <= 0:
		return 0
	case p.DaysIntoCycle >= CycleDays:
		return 1
	}
	return float64(p.DaysIntoCycle) / float64(CycleDays)
}

// ParseAllotment parses a user-typed allotment in ounces.
func ParseAllotment(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, invalidAllotment(msgInvalidAllotment, s)
	}
	if err := validateAllotment(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func validateAllotment(d decimal.Decimal) error {
	if !d.IsPositive() {
		return invalidAllotment(msgInvalidAllotment, d.String())
	}
	if units, _ := unitsOf(d); units.GreaterThan(maxUnits) {
		return invalidAllotment(msgAllotmentTooBig, d.String())
	}
	return nil
}

// unitsOf splits an allotment into whole purchase units and leftover grams.
// Both operands are positive so truncation is the floor.
func unitsOf(allotment decimal.Decimal) (units, leftover decimal.Decimal) {
	return allotment.Mul(OunceToGrams).QuoRem(PurchaseIncrement, 0)
}

// ComputePlan builds the five-week plan for an allotment (in ounces) and a
// cycle start date (YYYY-MM-DD), evaluated as of today.
//
// Units are spread as evenly as possible; when they do not divide by
// CycleWeeks the remainder goes one unit per week starting from week 1.
func ComputePlan(allotment decimal.Decimal, startDate string, today time.Time) (CyclePlan, error) {
	if err := validateAllotment(allotment); err != nil {
		return CyclePlan{}, err
	}
	start, err := ParseDate(startDate)
	if err != nil {
		return CyclePlan{}, err
	}

	totalGrams := allotment.Mul(OunceToGrams)
	unitsDec, leftover := unitsOf(allotment)
	totalUnits := unitsDec.IntPart()

	base := totalUnits / CycleWeeks
	extra := totalUnits % CycleWeeks

	weeks := make([]WeeklyAllocation, 0, CycleWeeks)
	for w := 1; w <= CycleWeeks; w++ {
		units := base
		if extra > 0 {
			units++
			extra--
		}
		weekStart := start.AddDate(0, 0, (w-1)*DaysPerWeek)
		weeks = append(weeks, WeeklyAllocation{
			Week:  w,
			Units: units,
			Grams: decimal.NewFromInt(units).Mul(PurchaseIncrement),
			Start: weekStart,
			End:   weekStart.AddDate(0, 0, DaysPerWeek-1),
		})
	}

	daysInto := DaysBetween(start, today)
	current := floorDiv(daysInto, DaysPerWeek) + 1
	if current < 1 || current > CycleWeeks {
		current = 0
	}

	return CyclePlan{
		AllotmentOunces: allotment,
		StartDate:       start,
		TotalGrams:      totalGrams,
		TotalUnits:      totalUnits,
		Weeks:           weeks,
		GramsPurchased:  unitsDec.Mul(PurchaseIncrement),
		GramsLeftover:   leftover,
		DaysIntoCycle:   daysInto,
		CurrentWeek:     current,
	}, nil
}

// Planner evaluates plans against a clock.
type Planner struct {
	now func() time.Time
}

// New returns a Planner that reads today from the system clock.
func New() *Planner {
	return &Planner{now: time.Now}
}

// WithClock returns a copy of the planner that reads today from fn.
func (p *Planner) WithClock(fn func() time.Time) *Planner {
	return &Planner{now: fn}
}

// Today returns the planner's current calendar date.
func (p *Planner) Today() time.Time {
	return DateOf(p.now())
}

// Plan computes the plan as of today.
func (p *Planner) Plan(allotment decimal.Decimal, startDate string) (CyclePlan, error) {
	return ComputePlan(allotment, startDate, p.Today())
}

// Evaluate parses string inputs and computes the plan as of today.
func (p *Planner) Evaluate(allotment, startDate string) Result {
	return Evaluate(allotment, startDate, p.Today())
}
