package models

import (
	"slices"
	"time"
)

// ShiftStatus is the lifecycle state of a shift record.
type ShiftStatus string

const (
	ShiftScheduled ShiftStatus = "scheduled"
	ShiftPublished ShiftStatus = "published"
	ShiftCompleted ShiftStatus = "completed"
	ShiftCancelled ShiftStatus = "cancelled"
)

// Valid reports whether s is a known status. The empty status is treated as scheduled.
func (s ShiftStatus) Valid() bool {
	switch s {
	case "", ShiftScheduled, ShiftPublished, ShiftCompleted, ShiftCancelled:
		return true
	}
	return false
}

// TimeOffStatus is the approval state of a time-off request.
type TimeOffStatus string

const (
	TimeOffPending    TimeOffStatus = "pending"
	TimeOffApproved   TimeOffStatus = "approved"
	TimeOffInProgress TimeOffStatus = "in_progress"
	TimeOffRejected   TimeOffStatus = "rejected"
	TimeOffCancelled  TimeOffStatus = "cancelled"
	TimeOffCompleted  TimeOffStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TimeOffStatus) Valid() bool {
	switch s {
	case TimeOffPending, TimeOffApproved, TimeOffInProgress, TimeOffRejected, TimeOffCancelled, TimeOffCompleted:
		return true
	}
	return false
}

// Blocking reports whether the request takes the employee off the schedule.
// Only approved and in-progress requests participate in conflict analysis.
func (s TimeOffStatus) Blocking() bool {
	return s == TimeOffApproved || s == TimeOffInProgress
}

// Shift is a scheduled block of work as delivered by the shift store.
type Shift struct {
	ID           string        `json:"id"`
	Start        time.Time     `json:"start"`
	End          time.Time     `json:"end"`
	Requirements []Requirement `json:"requirements"`
	Assignments  []Assignment  `json:"assignments"`
	LocationID   string        `json:"location_id,omitempty"`
	TeamID       string        `json:"team_id,omitempty"`
	DepartmentID string        `json:"department_id,omitempty"`
	Status       ShiftStatus   `json:"status,omitempty"`
}

// Assignment places an employee on a shift. An empty Role means the
// employee fills the shift's primary role.
type Assignment struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role,omitempty"`
}

// Requirement is the headcount a shift needs for one role.
type Requirement struct {
	ShiftID    string   `json:"shift_id,omitempty"`
	Role       string   `json:"role" validate:"required"`
	Quantity   int      `json:"quantity" validate:"min=1"`
	Skills     []string `json:"skills,omitempty"`
	IsCritical bool     `json:"is_critical,omitempty"`
}

// TimeOff is a leave request for a single employee.
type TimeOff struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employee_id"`
	Start        time.Time     `json:"start"`
	End          time.Time     `json:"end"`
	AllDay       bool          `json:"all_day,omitempty"`
	Status       TimeOffStatus `json:"status"`
	LocationID   string        `json:"location_id,omitempty"`
	TeamID       string        `json:"team_id,omitempty"`
	DepartmentID string        `json:"department_id,omitempty"`
}

// EmployeeAvailability describes who an employee is and when they can work.
type EmployeeAvailability struct {
	EmployeeID string               `json:"employee_id" yaml:"employee_id"`
	Roles      []string             `json:"roles" yaml:"roles"`
	Skills     []string             `json:"skills,omitempty" yaml:"skills,omitempty"`
	Windows    []AvailabilityWindow `json:"windows" yaml:"windows"`
}

// AvailabilityWindow is a half-open span [Start, End) in which the employee can work.
type AvailabilityWindow struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// HasRole reports whether the employee is qualified for role.
func (e EmployeeAvailability) HasRole(role string) bool {
	return slices.Contains(e.Roles, role)
}

// MissingSkills returns the entries of skills the employee does not hold, in input order.
func (e EmployeeAvailability) MissingSkills(skills []string) []string {
	var missing []string
	for _, s := range skills {
		if !slices.Contains(e.Skills, s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// AvailableFor reports whether a single window covers all of [start, end).
func (e EmployeeAvailability) AvailableFor(start, end time.Time) bool {
	for _, w := range e.Windows {
		if !w.Start.After(start) && !w.End.Before(end) {
			return true
		}
	}
	return false
}

// AvailableHours returns the hours of availability inside [from, to).
// Overlapping windows are counted once.
func (e EmployeeAvailability) AvailableHours(from, to time.Time) float64 {
	spans := make([][2]time.Time, 0, len(e.Windows))
	for _, w := range e.Windows {
		s, t := w.Start, w.End
		if s.Before(from) {
			s = from
		}
		if t.After(to) {
			t = to
		}
		if s.Before(t) {
			spans = append(spans, [2]time.Time{s, t})
		}
	}
	return UnionHours(spans)
}

// UnionHours returns the total hours covered by spans, counting overlaps once.
func UnionHours(spans [][2]time.Time) float64 {
	if len(spans) == 0 {
		return 0
	}
	slices.SortFunc(spans, func(a, b [2]time.Time) int { return a[0].Compare(b[0]) })

	var total time.Duration
	curStart, curEnd := spans[0][0], spans[0][1]
	for _, s := range spans[1:] {
		if s[0].After(curEnd) {
			total += curEnd.Sub(curStart)
			curStart, curEnd = s[0], s[1]
			continue
		}
		if s[1].After(curEnd) {
			curEnd = s[1]
		}
	}
	total += curEnd.Sub(curStart)
	return total.Hours()
}

// Filter narrows an analysis to one location, team or department. Empty fields match everything.
type Filter struct {
	LocationID   string `json:"location_id,omitempty"`
	TeamID       string `json:"team_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

// AnalysisRequest selects the slice of records an analysis runs over.
// EndDate is inclusive: every record intersecting [StartDate, EndDate+1d) is included.
type AnalysisRequest struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Filter
}

// Dataset is the snapshot of records a caller hands to the engine.
type Dataset struct {
	Shifts       []Shift                `json:"shifts"`
	TimeOff      []TimeOff              `json:"time_off"`
	Availability []EmployeeAvailability `json:"availability"`
}
