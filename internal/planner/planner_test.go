package planner

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oz(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := ParseAllotment(s)
	require.NoError(t, err)
	return d
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func weekUnits(p CyclePlan) []int64 {
	out := make([]int64, len(p.Weeks))
	for i, w := range p.Weeks {
		out[i] = w.Units
	}
	return out
}

func TestComputePlan_ScenarioA(t *testing.T) {
	plan, err := ComputePlan(oz(t, "3.25"), "2024-03-01", day(t, "2024-03-09"))
	require.NoError(t, err)

	assert.Equal(t, "92.1375", plan.TotalGrams.String())
	assert.Equal(t, int64(26), plan.TotalUnits)
	assert.Equal(t, []int64{6, 5, 5, 5, 5}, weekUnits(plan))
	assert.True(t, plan.GramsPurchased.Equal(decimal.RequireFromString("91")))
	assert.Equal(t, "1.1375", plan.GramsLeftover.String())
	assert.Equal(t, 1.14, roundDisplay(plan.GramsLeftover))

	// 8 days in: second week.
	assert.Equal(t, 8, plan.DaysIntoCycle)
	assert.Equal(t, 2, plan.CurrentWeek)
	cur, ok := plan.Current()
	require.True(t, ok)
	assert.Equal(t, int64(5), cur.Units)
	assert.Equal(t, "17.5", cur.Grams.String())
}

func TestComputePlan_ScenarioB_StartsToday(t *testing.T) {
	today := day(t, "2025-06-10")
	plan, err := ComputePlan(oz(t, "1.0"), "2025-06-10", today)
	require.NoError(t, err)

	assert.Equal(t, 1, plan.CurrentWeek)
	assert.Equal(t, int64(8), plan.TotalUnits)
	assert.Equal(t, []int64{2, 2, 2, 1, 1}, weekUnits(plan))
}

func TestComputePlan_ScenarioC_InvalidDate(t *testing.T) {
	res := Evaluate("3.25", "13/32/2024", day(t, "2024-01-01"))
	require.False(t, res.OK())
	assert.Nil(t, res.Plan)
	require.NotNil(t, res.Err)
	assert.Equal(t, KindInvalidDate, res.Err.Kind)
	assert.ErrorIs(t, res.Error(), ErrInvalidDate)
}

func TestComputePlan_ScenarioD_NegativeAllotment(t *testing.T) {
	_, err := ComputePlan(decimal.NewFromInt(-1), "2024-01-01", day(t, "2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidAllotment)

	res := Evaluate("-1", "2024-01-01", day(t, "2024-01-01"))
	require.False(t, res.OK())
	assert.Equal(t, KindInvalidAllotment, res.Err.Kind)
}

func TestComputePlan_AllotmentCheckedBeforeDate(t *testing.T) {
	_, err := ComputePlan(decimal.Zero, "not-a-date", day(t, "2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidAllotment)
}

func TestParseAllotment_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "0", "-0.5", "1e", "2000000000000000000"} {
		_, err := ParseAllotment(in)
		assert.ErrorIs(t, err, ErrInvalidAllotment, "input %q", in)
	}
	d, err := ParseAllotment("  2.5 ")
	require.NoError(t, err)
	assert.Equal(t, "2.5", d.String())
}

func TestComputePlan_LargeAllotment(t *testing.T) {
	// 2,000,000 oz = 56,700,000 g = 16,200,000 eighths exactly.
	plan, err := ComputePlan(oz(t, "2000000"), "2024-01-01", day(t, "2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(16_200_000), plan.TotalUnits)
	assert.Equal(t, []int64{3_240_000, 3_240_000, 3_240_000, 3_240_000, 3_240_000}, weekUnits(plan))

	// Just under the int64 unit ceiling.
	plan, err = ComputePlan(oz(t, "1000000000000000000"), "2024-01-01", day(t, "2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(8_100_000_000_000_000_000), plan.TotalUnits)
}

func TestComputePlan_CenturiesApart(t *testing.T) {
	plan, err := ComputePlan(oz(t, "1"), "1700-01-01", day(t, "2026-10-19"))
	require.NoError(t, err)
	assert.Equal(t, 119360, plan.DaysIntoCycle)
	assert.Equal(t, 0, plan.CurrentWeek)

	plan, err = ComputePlan(oz(t, "1"), "9999-12-31", day(t, "2026-10-19"))
	require.NoError(t, err)
	assert.Equal(t, -2_912_151, plan.DaysIntoCycle)
	assert.Equal(t, 0, plan.CurrentWeek)
}

func TestParseDate(t *testing.T) {
	valid := []string{"2024-02-29", "2025-12-31", "2000-01-01"}
	for _, in := range valid {
		_, err := ParseDate(in)
		assert.NoError(t, err, "input %q", in)
	}

	invalid := []string{"2023-02-29", "2024-13-01", "2024-1-5", "13/32/2024", "", "2024-01-01T00:00:00Z", " 2025-12-31 ", "2025-12-31\n"}
	for _, in := range invalid {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %q", in)
	}
}

func TestComputePlan_ExactlyDivisibleHasNoLeftover(t *testing.T) {
	// 10 oz = 283.5 g = 81 eighths exactly.
	plan, err := ComputePlan(oz(t, "10"), "2024-01-01", day(t, "2024-01-01"))
	require.NoError(t, err)

	assert.Equal(t, int64(81), plan.TotalUnits)
	assert.True(t, plan.GramsLeftover.IsZero(), "leftover = %s", plan.GramsLeftover)
	assert.Equal(t, []int64{17, 16, 16, 16, 16}, weekUnits(plan))
}

func TestComputePlan_CurrentWeekBoundaries(t *testing.T) {
	start := "2024-01-01"
	cases := []struct {
		offset int
		week   int
	}{
		{-8, 0},
		{-7, 0},
		{-1, 0},
		{0, 1},
		{6, 1},
		{7, 2},
		{27, 4},
		{28, 5},
		{34, 5},
		{35, 0},
		{100, 0},
	}
	for _, tc := range cases {
		today := day(t, start).AddDate(0, 0, tc.offset)
		plan, err := ComputePlan(oz(t, "3.25"), start, today)
		require.NoError(t, err)
		assert.Equal(t, tc.offset, plan.DaysIntoCycle)
		assert.Equal(t, tc.week, plan.CurrentWeek, "offset %d", tc.offset)
		_, ok := plan.Current()
		assert.Equal(t, tc.week != 0, ok, "offset %d", tc.offset)
	}
}

func TestComputePlan_FutureStartIsOutsideCycle(t *testing.T) {
	plan, err := ComputePlan(oz(t, "3.25"), "2024-05-10", day(t, "2024-05-01"))
	require.NoError(t, err)

	assert.Equal(t, -9, plan.DaysIntoCycle)
	assert.False(t, plan.InCycle())
	assert.Equal(t, CycleDays, plan.DaysRemaining())
	assert.Equal(t, 0.0, plan.Progress())
	// The plan itself is still fully populated.
	assert.Len(t, plan.Weeks, CycleWeeks)
}

func TestComputePlan_TodayUsesCallerCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 23:30 on the 8th locally is already the 9th in UTC.
	today := time.Date(2024, 3, 8, 23, 30, 0, 0, loc)
	plan, err := ComputePlan(oz(t, "3.25"), "2024-03-01", today)
	require.NoError(t, err)
	assert.Equal(t, 7, plan.DaysIntoCycle)
	assert.Equal(t, 2, plan.CurrentWeek)
}

func TestComputePlan_WeekDates(t *testing.T) {
	plan, err := ComputePlan(oz(t, "3.25"), "2024-02-20", day(t, "2024-02-20"))
	require.NoError(t, err)

	assert.Equal(t, "2024-02-20", FormatDate(plan.Weeks[0].Start))
	assert.Equal(t, "2024-02-26", FormatDate(plan.Weeks[0].End))
	assert.Equal(t, "2024-02-27", FormatDate(plan.Weeks[1].Start))
	assert.Equal(t, "2024-03-19", FormatDate(plan.Weeks[4].Start))
	assert.Equal(t, "2024-03-25", FormatDate(plan.EndDate()))
	assert.Equal(t, "2024-03-26", FormatDate(plan.NextStartDate()))
	assert.True(t, plan.Weeks[1].Contains(day(t, "2024-02-29")))
	assert.False(t, plan.Weeks[1].Contains(day(t, "2024-03-05")))
}

func TestComputePlan_Properties(t *testing.T) {
	today := day(t, "2024-01-10")
	for cents := int64(1); cents <= 2500; cents++ {
		allot := decimal.New(cents, -2)
		plan, err := ComputePlan(allot, "2024-01-01", today)
		require.NoError(t, err)

		wantUnits := allot.Mul(OunceToGrams).Div(PurchaseIncrement).Floor().IntPart()
		require.Equal(t, wantUnits, plan.TotalUnits, "allotment %s", allot)

		var sum, lo, hi int64
		lo = plan.Weeks[0].Units
		for _, w := range plan.Weeks {
			sum += w.Units
			lo = min(lo, w.Units)
			hi = max(hi, w.Units)
		}
		require.Equal(t, plan.TotalUnits, sum, "allotment %s", allot)
		require.LessOrEqual(t, hi-lo, int64(1), "allotment %s", allot)

		require.False(t, plan.GramsLeftover.IsNegative(), "allotment %s", allot)
		require.True(t, plan.GramsLeftover.LessThan(PurchaseIncrement), "allotment %s", allot)
		require.True(t, plan.GramsPurchased.Add(plan.GramsLeftover).Equal(plan.TotalGrams))
		require.True(t, plan.GramsPurchased.LessThanOrEqual(plan.TotalGrams))
	}
}

func TestComputePlan_Idempotent(t *testing.T) {
	today := day(t, "2024-03-15")
	a, err := ComputePlan(oz(t, "3.25"), "2024-03-01", today)
	require.NoError(t, err)
	b, err := ComputePlan(oz(t, "3.25"), "2024-03-01", today)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, ja, jb)
}

func TestPlanner_UsesClock(t *testing.T) {
	p := New().WithClock(func() time.Time {
		return time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	})
	assert.Equal(t, "2024-03-09", FormatDate(p.Today()))

	res := p.Evaluate("3.25", "2024-03-01")
	require.True(t, res.OK())
	assert.Equal(t, 2, res.Plan.CurrentWeek)
}

func TestResult_JSON(t *testing.T) {
	res := Evaluate("3.25", "2024-03-01", day(t, "2024-03-09"))
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var doc struct {
		OK   bool `json:"ok"`
		Plan struct {
			TotalGrams    float64 `json:"total_allotment_grams"`
			TotalUnits    int64   `json:"total_purchasable_units"`
			Purchased     float64 `json:"total_grams_purchased"`
			Leftover      float64 `json:"grams_leftover"`
			CurrentWeek   *int    `json:"current_week_index"`
			WeeklyEntries []struct {
				Week  int     `json:"week"`
				Units int64   `json:"units_to_buy"`
				Grams float64 `json:"grams_to_buy"`
			} `json:"weekly_allocations"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.True(t, doc.OK)
	assert.Equal(t, 92.14, doc.Plan.TotalGrams)
	assert.Equal(t, int64(26), doc.Plan.TotalUnits)
	assert.Equal(t, 91.0, doc.Plan.Purchased)
	assert.Equal(t, 1.14, doc.Plan.Leftover)
	require.NotNil(t, doc.Plan.CurrentWeek)
	assert.Equal(t, 2, *doc.Plan.CurrentWeek)
	require.Len(t, doc.Plan.WeeklyEntries, CycleWeeks)
	assert.Equal(t, 21.0, doc.Plan.WeeklyEntries[0].Grams)
}

func TestResult_JSONOutsideCycleAndError(t *testing.T) {
	res := Evaluate("3.25", "2024-03-01", day(t, "2024-04-05"))
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"current_week_index":null`)
	assert.Contains(t, string(raw), `"current_week_allocation":null`)

	res = Evaluate("abc", "2024-03-01", day(t, "2024-04-05"))
	raw, err = json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"ok":false,"error":{"kind":"invalid_allotment","message":"Allotment must be a positive number.","input":"abc"}}`,
		string(raw))
}
