package conflict_test

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule-analytics/config"
	"schedule-analytics/conflict"
	"schedule-analytics/models"
	"schedule-analytics/overlap"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func shift(id string, start, end time.Time, employees ...string) models.Interval {
	staff := make([]models.Assignment, 0, len(employees))
	for _, e := range employees {
		staff = append(staff, models.Assignment{EmployeeID: e, Role: "Cashier"})
	}
	ids := slices.Clone(employees)
	slices.Sort(ids)
	return models.Interval{
		SourceID:    id,
		Kind:        models.KindShift,
		Start:       start,
		End:         end,
		Role:        "Cashier",
		EmployeeIDs: ids,
		Staff:       staff,
	}
}

func timeOff(id string, start, end time.Time, employee string) models.Interval {
	return models.Interval{SourceID: id, Kind: models.KindTimeOff, Start: start, End: end, EmployeeIDs: []string{employee}}
}

func withRequirement(iv models.Interval, r models.Requirement) models.Interval {
	r.ShiftID = iv.SourceID
	iv.Requirements = append(iv.Requirements, r)
	return iv
}

func newAnalyzer() *conflict.Analyzer {
	return conflict.NewAnalyzer(config.Default().Conflict, time.UTC)
}

func TestAnalyze_DoubleBooking(t *testing.T) {
	a := shift("A", at(11, 9), at(11, 17), "E1")
	b := shift("B", at(11, 16), at(11, 23), "E1")

	for name, input := range map[string][]models.Interval{
		"InOrder":  {a, b},
		"Reversed": {b, a},
	} {
		t.Run(name, func(t *testing.T) {
			got := newAnalyzer().Analyze(input)
			require.Len(t, got, 1)
			assert.Equal(t, models.ConflictDoubleBooking, got[0].Type)
			assert.Equal(t, models.SeverityCritical, got[0].Severity)
			assert.Equal(t, []string{"A", "B"}, got[0].AffectedShiftIDs)
			assert.Equal(t, []string{"E1"}, got[0].AffectedEmployeeIDs)
			assert.Equal(t, at(11, 16), got[0].Start)
			assert.False(t, got[0].IsResolved)
		})
	}
}

func TestAnalyze_TimeOffOverlap(t *testing.T) {
	off := timeOff("TO1", at(10, 0), at(13, 0), "E1")
	c := shift("C", at(11, 9), at(11, 17), "E1")

	got := newAnalyzer().Analyze([]models.Interval{off, c})
	require.Len(t, got, 1)
	assert.Equal(t, models.ConflictTimeOffOverlap, got[0].Type)
	assert.Equal(t, models.SeverityHigh, got[0].Severity)
	assert.Equal(t, []string{"C"}, got[0].AffectedShiftIDs)
	assert.Equal(t, []string{"TO1"}, got[0].AffectedTimeOffIDs)
	assert.Equal(t, []string{"E1"}, got[0].AffectedEmployeeIDs)
	assert.Equal(t, at(11, 9), got[0].Start)
}

func TestAnalyze(t *testing.T) {
	tests := map[string]struct {
		intervals []models.Interval
		expected  []models.ConflictType
	}{
		"Empty": {
			expected: nil,
		},
		"BackToBack": {
			intervals: []models.Interval{
				shift("A", at(11, 9), at(11, 17), "E1"),
				shift("B", at(11, 17), at(11, 23), "E1"),
			},
		},
		"DifferentEmployees": {
			intervals: []models.Interval{
				shift("A", at(11, 9), at(11, 17), "E1"),
				shift("B", at(11, 10), at(11, 18), "E2"),
			},
		},
		"TwoTimeOffRequestsNeverConflict": {
			intervals: []models.Interval{
				timeOff("T1", at(10, 0), at(13, 0), "E1"),
				timeOff("T2", at(11, 0), at(12, 0), "E1"),
			},
		},
		"Overtime": {
			intervals: []models.Interval{
				shift("S1", at(11, 6), at(11, 13), "E1"),
				shift("S2", at(11, 14), at(11, 20), "E1"),
			},
			expected: []models.ConflictType{models.ConflictOvertime},
		},
		"DoubleBookingCountsAsOneShiftTowardOvertime": {
			intervals: []models.Interval{
				shift("A", at(11, 6), at(11, 13), "E1"),
				shift("B", at(11, 10), at(11, 16), "E1"),
			},
			expected: []models.ConflictType{models.ConflictDoubleBooking},
		},
		"OvertimeBesideDoubleBooking": {
			intervals: []models.Interval{
				shift("A", at(11, 6), at(11, 8), "E1"),
				shift("B", at(11, 7), at(11, 9), "E1"),
				shift("C", at(11, 9), at(11, 22), "E1"),
			},
			expected: []models.ConflictType{models.ConflictDoubleBooking, models.ConflictOvertime},
		},
		"ThreeWayOverlap": {
			intervals: []models.Interval{
				shift("A", at(11, 9), at(11, 12), "E1"),
				shift("B", at(11, 10), at(11, 13), "E1"),
				shift("C", at(11, 11), at(11, 14), "E1"),
			},
			expected: []models.ConflictType{
				models.ConflictDoubleBooking,
				models.ConflictDoubleBooking,
				models.ConflictDoubleBooking,
			},
		},
		"Understaffed": {
			intervals: []models.Interval{
				withRequirement(shift("A", at(11, 9), at(11, 17), "E1"), models.Requirement{Role: "Cashier", Quantity: 2}),
			},
			expected: []models.ConflictType{models.ConflictUnderstaffed},
		},
		"FullyStaffed": {
			intervals: []models.Interval{
				withRequirement(shift("A", at(11, 9), at(11, 17), "E1", "E2"), models.Requirement{Role: "Cashier", Quantity: 2}),
			},
		},
		"SortedBySeverity": {
			intervals: []models.Interval{
				withRequirement(shift("D", at(11, 6), at(11, 8), "E3"), models.Requirement{Role: "Cashier", Quantity: 2}),
				timeOff("T1", at(11, 0), at(12, 0), "E2"),
				shift("C", at(11, 12), at(11, 14), "E2"),
				shift("A", at(11, 15), at(11, 17), "E1"),
				shift("B", at(11, 16), at(11, 18), "E1"),
			},
			expected: []models.ConflictType{
				models.ConflictDoubleBooking,
				models.ConflictTimeOffOverlap,
				models.ConflictUnderstaffed,
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := newAnalyzer().Analyze(tt.intervals)
			require.NotNil(t, got)

			var types []models.ConflictType
			for _, c := range got {
				types = append(types, c.Type)
			}
			assert.Equal(t, tt.expected, types)
		})
	}
}

func TestAnalyze_SharedPairMergesEmployees(t *testing.T) {
	a := shift("A", at(11, 9), at(11, 17), "E1", "E2")
	b := shift("B", at(11, 16), at(11, 23), "E2", "E1")

	got := newAnalyzer().Analyze([]models.Interval{a, b})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"E1", "E2"}, got[0].AffectedEmployeeIDs)
}

func TestAnalyze_Idempotent(t *testing.T) {
	intervals := []models.Interval{
		shift("A", at(11, 9), at(11, 17), "E1", "E2"),
		shift("B", at(11, 16), at(11, 23), "E1"),
		timeOff("T1", at(11, 0), at(12, 0), "E2"),
		withRequirement(shift("C", at(12, 9), at(12, 17), "E3"), models.Requirement{Role: "Cashier", Quantity: 3}),
	}
	analyzer := newAnalyzer()

	first := analyzer.Analyze(intervals)
	second := analyzer.Analyze(intervals)
	assert.Equal(t, first, second)

	reversed := slices.Clone(intervals)
	slices.Reverse(reversed)
	assert.Equal(t, first, analyzer.Analyze(reversed))
}

func TestAnalyze_UnderstaffedSeverity(t *testing.T) {
	tests := map[string]struct {
		requirement models.Requirement
		expected    models.Severity
	}{
		"Regular":  {requirement: models.Requirement{Role: "Cashier", Quantity: 2}, expected: models.SeverityLow},
		"Critical": {requirement: models.Requirement{Role: "Cashier", Quantity: 2, IsCritical: true}, expected: models.SeverityHigh},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			iv := withRequirement(shift("A", at(11, 9), at(11, 17), "E1"), tt.requirement)
			got := newAnalyzer().Analyze([]models.Interval{iv})
			require.Len(t, got, 1)
			assert.Equal(t, tt.expected, got[0].Severity)
			assert.Equal(t, []string{"A"}, got[0].AffectedShiftIDs)
			assert.Equal(t, []string{"E1"}, got[0].AffectedEmployeeIDs)
			assert.Equal(t, "Shift A needs 2 Cashier, has 1", got[0].Description)
		})
	}
}

func TestAnalyze_Overtime(t *testing.T) {
	cfg := config.Default().Conflict
	cfg.DailyHoursThreshold = 8
	analyzer := conflict.NewAnalyzer(cfg, time.UTC)

	got := analyzer.Analyze([]models.Interval{
		shift("S1", at(11, 8), at(11, 13), "E1"),
		shift("S2", at(11, 14), at(11, 19), "E1"),
	})
	require.Len(t, got, 1)
	assert.Equal(t, models.ConflictOvertime, got[0].Type)
	assert.Equal(t, models.SeverityMedium, got[0].Severity)
	assert.Equal(t, []string{"S1", "S2"}, got[0].AffectedShiftIDs)
	assert.Equal(t, []string{"E1"}, got[0].AffectedEmployeeIDs)
	assert.Equal(t, at(11, 0), got[0].Start)
}

func TestAnalyze_SkillMismatch(t *testing.T) {
	iv := withRequirement(shift("A", at(11, 9), at(11, 17), "E1"),
		models.Requirement{Role: "Cashier", Quantity: 1, Skills: []string{"pos"}})

	assert.Empty(t, newAnalyzer().Analyze([]models.Interval{iv}))

	got := newAnalyzer().WithSkills(overlap.Skills{"E1": {"forklift"}}).Analyze([]models.Interval{iv})
	require.Len(t, got, 1)
	assert.Equal(t, models.ConflictSkillMismatch, got[0].Type)
	assert.Equal(t, models.SeverityMedium, got[0].Severity)
	assert.Contains(t, got[0].Description, "pos")

	assert.Empty(t, newAnalyzer().WithSkills(overlap.Skills{"E1": {"pos"}}).Analyze([]models.Interval{iv}))
}

func TestSummarize(t *testing.T) {
	summary := conflict.Summarize(nil)
	assert.NotNil(t, summary.Conflicts)
	assert.Zero(t, summary.Total)
	assert.Len(t, summary.ByType, len(models.ConflictTypes))
	assert.Len(t, summary.BySeverity, 4)

	summary = conflict.Summarize([]models.Conflict{
		{Type: models.ConflictDoubleBooking, Severity: models.SeverityCritical},
		{Type: models.ConflictDoubleBooking, Severity: models.SeverityCritical},
		{Type: models.ConflictUnderstaffed, Severity: models.SeverityLow},
	})
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.ByType[models.ConflictDoubleBooking])
	assert.Equal(t, 1, summary.ByType[models.ConflictUnderstaffed])
	assert.Equal(t, 0, summary.ByType[models.ConflictOvertime])
	assert.Equal(t, 2, summary.BySeverity[models.SeverityCritical])
	assert.Equal(t, 0, summary.BySeverity[models.SeverityHigh])
}

func BenchmarkAnalyze(b *testing.B) {
	var intervals []models.Interval
	for day := 1; day <= 28; day++ {
		for e := 0; e < 200; e++ {
			emp := fmt.Sprintf("E%03d", e)
			start := at(day, 6+e%8)
			intervals = append(intervals,
				shift(fmt.Sprintf("S%d-%d", day, e), start, start.Add(8*time.Hour), emp))
		}
	}
	analyzer := newAnalyzer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		analyzer.Analyze(intervals)
	}
}
