package coverage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"schedule-analytics/coverage"
	"schedule-analytics/models"
)

func staffed(id string, staff ...models.Assignment) models.Interval {
	start := time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC)
	return models.Interval{
		SourceID: id,
		Kind:     models.KindShift,
		Start:    start,
		End:      start.Add(8 * time.Hour),
		Staff:    staff,
	}
}

func as(role string, employees ...string) []models.Assignment {
	var out []models.Assignment
	for _, e := range employees {
		out = append(out, models.Assignment{EmployeeID: e, Role: role})
	}
	return out
}

func TestAggregate(t *testing.T) {
	tests := map[string]struct {
		intervals    []models.Interval
		requirements []models.Requirement
		expected     []models.CoverageRecord
	}{
		"HalfCovered": {
			intervals:    []models.Interval{staffed("A", as("Cashier", "E1")...)},
			requirements: []models.Requirement{{ShiftID: "A", Role: "Cashier", Quantity: 2}},
			expected: []models.CoverageRecord{
				{Role: "Cashier", Required: 2, Assigned: 1, CoveragePct: 50, Gap: 1, EmployeeIDs: []string{"E1"}},
			},
		},
		"OverstaffedIsClamped": {
			intervals:    []models.Interval{staffed("A", as("Cashier", "E1", "E2", "E3")...)},
			requirements: []models.Requirement{{ShiftID: "A", Role: "Cashier", Quantity: 2}},
			expected: []models.CoverageRecord{
				{Role: "Cashier", Required: 2, Assigned: 3, CoveragePct: 100, Gap: -1, EmployeeIDs: []string{"E1", "E2", "E3"}},
			},
		},
		"DuplicateAssignmentCountedOnce": {
			intervals:    []models.Interval{staffed("A", as("Cashier", "E1", "E1")...)},
			requirements: []models.Requirement{{ShiftID: "A", Role: "Cashier", Quantity: 2}},
			expected: []models.CoverageRecord{
				{Role: "Cashier", Required: 2, Assigned: 1, CoveragePct: 50, Gap: 1, EmployeeIDs: []string{"E1"}},
			},
		},
		"SameEmployeeAcrossShifts": {
			intervals: []models.Interval{
				staffed("A", as("Cashier", "E1")...),
				staffed("B", as("Cashier", "E1")...),
			},
			requirements: []models.Requirement{
				{ShiftID: "A", Role: "Cashier", Quantity: 1},
				{ShiftID: "B", Role: "Cashier", Quantity: 1},
			},
			expected: []models.CoverageRecord{
				{Role: "Cashier", Required: 2, Assigned: 2, CoveragePct: 100, Gap: 0, EmployeeIDs: []string{"E1"}},
			},
		},
		"NobodyAssigned": {
			intervals:    []models.Interval{staffed("A")},
			requirements: []models.Requirement{{ShiftID: "A", Role: "Manager", Quantity: 1}},
			expected: []models.CoverageRecord{
				{Role: "Manager", Required: 1, Assigned: 0, CoveragePct: 0, Gap: 1, EmployeeIDs: []string{}},
			},
		},
		"RequirementOutsideSetIgnored": {
			intervals: []models.Interval{staffed("A", as("Cashier", "E1")...)},
			requirements: []models.Requirement{
				{ShiftID: "A", Role: "Cashier", Quantity: 1},
				{ShiftID: "Z", Role: "Cashier", Quantity: 5},
			},
			expected: []models.CoverageRecord{
				{Role: "Cashier", Required: 1, Assigned: 1, CoveragePct: 100, Gap: 0, EmployeeIDs: []string{"E1"}},
			},
		},
		"SortedByCoverageThenRole": {
			intervals: []models.Interval{
				staffed("A", append(as("Stocker", "E3"), append(as("Manager", "E2"), as("Cashier", "E1")...)...)...),
			},
			requirements: []models.Requirement{
				{ShiftID: "A", Role: "Manager", Quantity: 1},
				{ShiftID: "A", Role: "Stocker", Quantity: 2},
				{ShiftID: "A", Role: "Cashier", Quantity: 2},
			},
			expected: []models.CoverageRecord{
				{Role: "Cashier", Required: 2, Assigned: 1, CoveragePct: 50, Gap: 1, EmployeeIDs: []string{"E1"}},
				{Role: "Stocker", Required: 2, Assigned: 1, CoveragePct: 50, Gap: 1, EmployeeIDs: []string{"E3"}},
				{Role: "Manager", Required: 1, Assigned: 1, CoveragePct: 100, Gap: 0, EmployeeIDs: []string{"E2"}},
			},
		},
		"Empty": {
			expected: []models.CoverageRecord{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coverage.Aggregate(tt.intervals, tt.requirements))
		})
	}
}

func TestAggregate_InputOrderDoesNotMatter(t *testing.T) {
	a := staffed("A", as("Cashier", "E1")...)
	b := staffed("B", as("Stocker", "E2", "E3")...)
	reqs := []models.Requirement{
		{ShiftID: "A", Role: "Cashier", Quantity: 2},
		{ShiftID: "B", Role: "Stocker", Quantity: 4},
	}

	first := coverage.Aggregate([]models.Interval{a, b}, reqs)
	second := coverage.Aggregate([]models.Interval{b, a}, []models.Requirement{reqs[1], reqs[0]})
	assert.Equal(t, first, second)
}

func TestPercent(t *testing.T) {
	tests := map[string]struct {
		assigned, required int
		expected           float64
	}{
		"NothingRequired": {assigned: 0, required: 0, expected: 100},
		"NoneAssigned":    {assigned: 0, required: 3, expected: 0},
		"Partial":         {assigned: 1, required: 4, expected: 25},
		"Full":            {assigned: 4, required: 4, expected: 100},
		"Over":            {assigned: 6, required: 4, expected: 100},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, coverage.Percent(tt.assigned, tt.required), 1e-9)
		})
	}
}

func TestAverage(t *testing.T) {
	assert.Zero(t, coverage.Average(nil))
	assert.InDelta(t, 100, coverage.Average([]models.CoverageRecord{{Role: "Cashier", Assigned: 2}}), 1e-9)

	records := []models.CoverageRecord{
		{Role: "Cashier", Required: 2, Assigned: 1},
		{Role: "Manager", Required: 2, Assigned: 5},
	}
	assert.InDelta(t, 75, coverage.Average(records), 1e-9)
}
