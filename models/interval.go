package models

import (
	"slices"
	"time"
)

// IntervalKind tags what produced an interval.
type IntervalKind string

const (
	KindShift   IntervalKind = "shift"
	KindTimeOff IntervalKind = "time_off"
)

// Interval is the occupied span [Start, End) of a shift or time-off request,
// normalized to UTC. Intervals are built once per analysis run and must not be
// mutated afterwards.
type Interval struct {
	SourceID     string       `json:"source_id"`
	Kind         IntervalKind `json:"kind"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
	Role         string       `json:"role,omitempty"`
	EmployeeIDs  []string     `json:"employee_ids"`
	LocationID   string       `json:"location_id,omitempty"`
	TeamID       string       `json:"team_id,omitempty"`
	DepartmentID string       `json:"department_id,omitempty"`

	// Requirements and Staff are only set for shifts.
	Requirements []Requirement `json:"requirements,omitempty"`
	Staff        []Assignment  `json:"staff,omitempty"`
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// HasEmployee reports whether id is tagged on the interval. EmployeeIDs is sorted.
func (iv Interval) HasEmployee(id string) bool {
	_, ok := slices.BinarySearch(iv.EmployeeIDs, id)
	return ok
}

// EmployeesInRole returns the distinct, sorted employees filling role on this shift.
func (iv Interval) EmployeesInRole(role string) []string {
	var ids []string
	for _, a := range iv.Staff {
		if a.Role == role {
			ids = append(ids, a.EmployeeID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Intersects reports whether the interval overlaps [from, to).
func (iv Interval) Intersects(from, to time.Time) bool {
	return iv.Start.Before(to) && from.Before(iv.End)
}
