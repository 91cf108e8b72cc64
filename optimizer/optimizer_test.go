package optimizer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule-analytics/config"
	"schedule-analytics/models"
	"schedule-analytics/optimizer"
)

func at(hour int) time.Time {
	return time.Date(2024, 1, 11, hour, 0, 0, 0, time.UTC)
}

var shiftA = models.Interval{
	SourceID:    "A",
	Kind:        models.KindShift,
	Start:       at(9),
	End:         at(17),
	Role:        "Cashier",
	EmployeeIDs: []string{"E1"},
	Requirements: []models.Requirement{
		{ShiftID: "A", Role: "Cashier", Quantity: 2},
	},
	Staff: []models.Assignment{{EmployeeID: "E1", Role: "Cashier"}},
}

func employee(id string, from, to int, roles []string, skills ...string) models.EmployeeAvailability {
	return models.EmployeeAvailability{
		EmployeeID: id,
		Roles:      roles,
		Skills:     skills,
		Windows:    []models.AvailabilityWindow{{Start: at(from), End: at(to)}},
	}
}

func busyWith(id string, kind models.IntervalKind, start, end time.Time) map[string][]models.Interval {
	return map[string][]models.Interval{
		"E2": {{SourceID: id, Kind: kind, Start: start, End: end, EmployeeIDs: []string{"E2"}}},
	}
}

func cashierShort() models.CoverageRecord {
	return models.CoverageRecord{Role: "Cashier", Required: 2, Assigned: 1, CoveragePct: 50, Gap: 1, EmployeeIDs: []string{"E1"}}
}

func TestOptimize_Suggestion(t *testing.T) {
	cashier := []string{"Cashier"}

	tests := map[string]struct {
		input    optimizer.Input
		expected models.OptimizationSuggestion
		gap      models.CoverageGap
	}{
		"ReassignAvailableEmployee": {
			input: optimizer.Input{
				Coverage:   []models.CoverageRecord{cashierShort()},
				Available:  []models.EmployeeAvailability{employee("E2", 8, 18, cashier)},
				RoleShifts: map[string][]models.Interval{"Cashier": {shiftA}},
			},
			expected: models.OptimizationSuggestion{
				Type:        models.SuggestReassign,
				Role:        "Cashier",
				Description: "Reassign 1 available Cashier employee(s): E2",
				Impact:      1.0,
				Cost:        1,
				EmployeeIDs: []string{"E2"},
			},
			gap: models.CoverageGap{
				Role: "Cashier", Required: 2, Assigned: 1, Gap: 1,
				AvailableEmployeeIDs: []string{"E2"},
				TrainableEmployeeIDs: []string{},
			},
		},
		"HireWhenGapPersists": {
			input: optimizer.Input{
				Coverage:    []models.CoverageRecord{cashierShort()},
				DaysWithGap: map[string]int{"Cashier": 3},
			},
			expected: models.OptimizationSuggestion{
				Type:        models.SuggestHire,
				Role:        "Cashier",
				Description: "Hire 1 Cashier: short on 3 day(s) with no one available",
				Impact:      0.5,
				Cost:        10,
			},
			gap: models.CoverageGap{
				Role: "Cashier", Required: 2, Assigned: 1, Gap: 1,
				AvailableEmployeeIDs: []string{},
				TrainableEmployeeIDs: []string{},
				DaysWithGap:          3,
			},
		},
		"TrainWhenOnlySkillsMissing": {
			input: optimizer.Input{
				Coverage:   []models.CoverageRecord{cashierShort()},
				Available:  []models.EmployeeAvailability{employee("E3", 8, 18, cashier, "forklift")},
				RoleShifts: map[string][]models.Interval{"Cashier": {shiftA}},
				RoleSkills: map[string][]string{"Cashier": {"pos"}},
			},
			expected: models.OptimizationSuggestion{
				Type:        models.SuggestTrain,
				Role:        "Cashier",
				Description: "Train E3 for Cashier skills",
				Impact:      0.25,
				Cost:        3,
				EmployeeIDs: []string{"E3"},
			},
			gap: models.CoverageGap{
				Role: "Cashier", Required: 2, Assigned: 1, Gap: 1,
				AvailableEmployeeIDs: []string{},
				TrainableEmployeeIDs: []string{"E3"},
			},
		},
		"OvertimeAsLastResort": {
			input: optimizer.Input{
				Coverage:    []models.CoverageRecord{cashierShort()},
				DaysWithGap: map[string]int{"Cashier": 1},
			},
			expected: models.OptimizationSuggestion{
				Type:        models.SuggestOvertime,
				Role:        "Cashier",
				Description: "Cover 1 Cashier slot(s) with overtime",
				Impact:      0.5,
				Cost:        1.5,
			},
			gap: models.CoverageGap{
				Role: "Cashier", Required: 2, Assigned: 1, Gap: 1,
				AvailableEmployeeIDs: []string{},
				TrainableEmployeeIDs: []string{},
				DaysWithGap:          1,
			},
		},
	}

	o := optimizer.New(config.Default().Optimizer)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := o.Optimize(tt.input)
			require.Len(t, got.Suggestions, 1)
			assert.Equal(t, tt.expected, got.Suggestions[0])
			require.Len(t, got.Gaps, 1)
			assert.Equal(t, tt.gap, got.Gaps[0])
			assert.Equal(t, tt.input.Coverage, got.Coverage)
		})
	}
}

func TestOptimize_CandidateFiltering(t *testing.T) {
	onLeave := busyWith("T1", models.KindTimeOff,
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC))

	tests := map[string]struct {
		employee models.EmployeeAvailability
		busy     map[string][]models.Interval
	}{
		"AlreadyAssigned": {employee: employee("E1", 8, 18, []string{"Cashier"})},
		"WrongRole":       {employee: employee("E2", 8, 18, []string{"Stocker"})},
		"WindowTooShort":  {employee: employee("E2", 10, 18, []string{"Cashier"})},
		"NoWindows":       {employee: models.EmployeeAvailability{EmployeeID: "E2", Roles: []string{"Cashier"}}},
		"OnLeave": {
			employee: employee("E2", 8, 18, []string{"Cashier"}),
			busy:     onLeave,
		},
		"WorkingOverlappingShift": {
			employee: employee("E2", 8, 18, []string{"Cashier", "Stocker"}),
			busy:     busyWith("B", models.KindShift, at(12), at(20)),
		},
	}

	o := optimizer.New(config.Default().Optimizer)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := o.Optimize(optimizer.Input{
				Coverage:   []models.CoverageRecord{cashierShort()},
				Available:  []models.EmployeeAvailability{tt.employee},
				RoleShifts: map[string][]models.Interval{"Cashier": {shiftA}},
				RoleSkills: map[string][]string{"Cashier": {"pos"}},
				Busy:       tt.busy,
			})
			require.Len(t, got.Suggestions, 1)
			assert.Equal(t, models.SuggestOvertime, got.Suggestions[0].Type)
			assert.Empty(t, got.Gaps[0].AvailableEmployeeIDs)
			assert.Empty(t, got.Gaps[0].TrainableEmployeeIDs)
		})
	}
}

func TestOptimize_BackToBackShiftStillAvailable(t *testing.T) {
	got := optimizer.New(config.Default().Optimizer).Optimize(optimizer.Input{
		Coverage:   []models.CoverageRecord{cashierShort()},
		Available:  []models.EmployeeAvailability{employee("E2", 8, 18, []string{"Cashier"})},
		RoleShifts: map[string][]models.Interval{"Cashier": {shiftA}},
		Busy:       busyWith("B", models.KindShift, at(17), at(21)),
	})
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, models.SuggestReassign, got.Suggestions[0].Type)
	assert.Equal(t, []string{"E2"}, got.Suggestions[0].EmployeeIDs)
}

func TestBusy(t *testing.T) {
	b := models.Interval{SourceID: "B", Kind: models.KindShift, EmployeeIDs: []string{"E2", "E3"}}
	leave := models.Interval{SourceID: "T1", Kind: models.KindTimeOff, EmployeeIDs: []string{"E2"}}

	got := optimizer.Busy([]models.Interval{shiftA, b, leave})
	assert.Equal(t, map[string][]models.Interval{
		"E1": {shiftA},
		"E2": {b, leave},
		"E3": {b},
	}, got)
}

func TestOptimize_ReassignCapsAtGap(t *testing.T) {
	rec := models.CoverageRecord{Role: "Cashier", Required: 3, Assigned: 1, CoveragePct: 100.0 / 3, Gap: 2, EmployeeIDs: []string{"E1"}}
	cashier := []string{"Cashier"}

	got := optimizer.New(config.Default().Optimizer).Optimize(optimizer.Input{
		Coverage: []models.CoverageRecord{rec},
		Available: []models.EmployeeAvailability{
			employee("E4", 8, 18, cashier),
			employee("E2", 8, 18, cashier),
			employee("E3", 8, 18, cashier),
		},
		RoleShifts: map[string][]models.Interval{"Cashier": {shiftA}},
	})
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, []string{"E2", "E3"}, got.Suggestions[0].EmployeeIDs)
	assert.InDelta(t, 1.0, got.Suggestions[0].Impact, 1e-9)
	assert.Equal(t, []string{"E2", "E3", "E4"}, got.Gaps[0].AvailableEmployeeIDs)
}

func TestOptimize_Ranking(t *testing.T) {
	input := optimizer.Input{
		Coverage: []models.CoverageRecord{
			{Role: "Manager", Required: 1, Assigned: 0, CoveragePct: 0, Gap: 1, EmployeeIDs: []string{}},
			{Role: "Stocker", Required: 4, Assigned: 2, CoveragePct: 50, Gap: 2, EmployeeIDs: []string{"E5", "E6"}},
			cashierShort(),
			{Role: "Baker", Required: 2, Assigned: 2, CoveragePct: 100, Gap: 0, EmployeeIDs: []string{"E7", "E8"}},
		},
		Available:   []models.EmployeeAvailability{employee("E2", 8, 18, []string{"Cashier"})},
		RoleShifts:  map[string][]models.Interval{"Cashier": {shiftA}},
		DaysWithGap: map[string]int{"Manager": 5, "Stocker": 1, "Cashier": 1},
	}

	o := optimizer.New(config.Default().Optimizer)
	got := o.Optimize(input)

	var order []models.SuggestionType
	for _, s := range got.Suggestions {
		order = append(order, s.Type)
	}
	assert.Equal(t, []models.SuggestionType{models.SuggestReassign, models.SuggestOvertime, models.SuggestHire}, order)
	assert.Len(t, got.Gaps, 3)

	assert.Equal(t, got, o.Optimize(input))
}

func TestOptimize_TiesKeepCoverageOrder(t *testing.T) {
	input := optimizer.Input{
		Coverage: []models.CoverageRecord{
			{Role: "Stocker", Required: 2, Assigned: 1, CoveragePct: 50, Gap: 1, EmployeeIDs: []string{}},
			{Role: "Baker", Required: 2, Assigned: 1, CoveragePct: 50, Gap: 1, EmployeeIDs: []string{}},
		},
	}

	got := optimizer.New(config.Default().Optimizer).Optimize(input)
	require.Len(t, got.Suggestions, 2)
	assert.Equal(t, "Stocker", got.Suggestions[0].Role)
	assert.Equal(t, "Baker", got.Suggestions[1].Role)
}

func TestOptimize_NoGaps(t *testing.T) {
	got := optimizer.New(config.Default().Optimizer).Optimize(optimizer.Input{
		Coverage: []models.CoverageRecord{{Role: "Cashier", Required: 1, Assigned: 1, CoveragePct: 100}},
	})
	assert.NotNil(t, got.Suggestions)
	assert.Empty(t, got.Suggestions)
	assert.NotNil(t, got.Gaps)
	assert.Empty(t, got.Gaps)
}

func TestRoleShiftsAndSkills(t *testing.T) {
	b := models.Interval{
		SourceID: "B",
		Kind:     models.KindShift,
		Requirements: []models.Requirement{
			{ShiftID: "B", Role: "Cashier", Quantity: 1, Skills: []string{"pos", "cash"}},
			{ShiftID: "B", Role: "Manager", Quantity: 1, Skills: []string{"keys"}},
		},
	}
	off := models.Interval{SourceID: "T", Kind: models.KindTimeOff, EmployeeIDs: []string{"E1"}}

	shifts := optimizer.RoleShifts([]models.Interval{shiftA, b, off})
	assert.Len(t, shifts["Cashier"], 2)
	assert.Len(t, shifts["Manager"], 1)
	assert.Len(t, shifts, 2)

	skills := optimizer.RoleSkills(append(shiftA.Requirements, b.Requirements...))
	assert.Equal(t, []string{"cash", "pos"}, skills["Cashier"])
	assert.Equal(t, []string{"keys"}, skills["Manager"])
}
