package planner

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Result is the outcome of evaluating user input: exactly one of Plan or Err is set.
type Result struct {
	Plan *CyclePlan
	Err  *PlanError
}

// OK reports whether the evaluation produced a plan.
func (r Result) OK() bool {
	return r.Err == nil && r.Plan != nil
}

// Error returns the failure as an error, or nil on success.
func (r Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// Evaluate parses the allotment and start date strings and computes the plan.
// Validation failures come back as Result.Err, never as a partial plan.
func Evaluate(allotment, startDate string, today time.Time) Result {
	oz, err := ParseAllotment(allotment)
	if err != nil {
		return failed(err)
	}
	plan, err := ComputePlan(oz, startDate, today)
	if err != nil {
		return failed(err)
	}
	return Result{Plan: &plan}
}

func failed(err error) Result {
	var pe *PlanError
	if errors.As(err, &pe) {
		return Result{Err: pe}
	}
	return Result{Err: &PlanError{Message: err.Error()}}
}

// roundDisplay rounds a quantity to two decimal places for reporting only.
func roundDisplay(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

type weekJSON struct {
	Week  int     `json:"week"`
	Units int64   `json:"units_to_buy"`
	Grams float64 `json:"grams_to_buy"`
	Start string  `json:"start_date"`
	End   string  `json:"end_date"`
}

type planJSON struct {
	AllotmentOunces float64    `json:"total_allotment_oz"`
	StartDate       string     `json:"cycle_start_date"`
	EndDate         string     `json:"cycle_end_date"`
	TotalGrams      float64    `json:"total_allotment_grams"`
	TotalUnits      int64      `json:"total_purchasable_units"`
	Weeks           []weekJSON `json:"weekly_allocations"`
	GramsPurchased  float64    `json:"total_grams_purchased"`
	GramsLeftover   float64    `json:"grams_leftover"`
	DaysIntoCycle   int        `json:"days_into_cycle"`
	CurrentWeek     *int       `json:"current_week_index"`
	Current         *weekJSON  `json:"current_week_allocation"`
}

func toWeekJSON(w WeeklyAllocation) weekJSON {
	return weekJSON{
		Week:  w.Week,
		Units: w.Units,
		Grams: roundDisplay(w.Grams),
		Start: FormatDate(w.Start),
		End:   FormatDate(w.End),
	}
}

// MarshalJSON renders the plan with quantities rounded to two decimals.
func (p CyclePlan) MarshalJSON() ([]byte, error) {
	out := planJSON{
		AllotmentOunces: roundDisplay(p.AllotmentOunces),
		StartDate:       FormatDate(p.StartDate),
		EndDate:         FormatDate(p.EndDate()),
		TotalGrams:      roundDisplay(p.TotalGrams),
		TotalUnits:      p.TotalUnits,
		Weeks:           make([]weekJSON, 0, len(p.Weeks)),
		GramsPurchased:  roundDisplay(p.GramsPurchased),
		GramsLeftover:   roundDisplay(p.GramsLeftover),
		DaysIntoCycle:   p.DaysIntoCycle,
	}
	for _, w := range p.Weeks {
		out.Weeks = append(out.Weeks, toWeekJSON(w))
	}
	if cur, ok := p.Current(); ok {
		week := cur.Week
		wj := toWeekJSON(cur)
		out.CurrentWeek = &week
		out.Current = &wj
	}
	return json.Marshal(out)
}

type errorJSON struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Input   string    `json:"input,omitempty"`
}

// MarshalJSON renders {"ok":true,"plan":…} or {"ok":false,"error":…}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.OK() {
		return json.Marshal(struct {
			OK   bool       `json:"ok"`
			Plan *CyclePlan `json:"plan"`
		}{true, r.Plan})
	}
	e := errorJSON{Kind: "internal", Message: "no plan computed"}
	if r.Err != nil {
		e = errorJSON{Kind: r.Err.Kind, Message: r.Err.Message, Input: r.Err.Input}
	}
	return json.Marshal(struct {
		OK    bool      `json:"ok"`
		Error errorJSON `json:"error"`
	}{false, e})
}
