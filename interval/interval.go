// Package interval builds the canonical time spans an analysis runs over.
//
// Shifts and approved time-off requests are converted to half-open UTC
// intervals, filtered by the request's date range and tags. Malformed records
// are dropped with a data-quality warning rather than failing the build.
package interval

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"

	customerrors "schedule-analytics/errors"
	"schedule-analytics/models"
)

var validate = validator.New()

// Build converts shifts and time-off requests into the intervals selected by req.
// Calendar days are interpreted in loc; a nil loc means UTC. The only error
// returned is an *errors.InconsistentFilterError.
func Build(shifts []models.Shift, timeOff []models.TimeOff, req models.AnalysisRequest, loc *time.Location) ([]models.Interval, []models.Warning, error) {
	from, to, err := Window(req, loc)
	if err != nil {
		return nil, nil, err
	}

	intervals := make([]models.Interval, 0, len(shifts)+len(timeOff))
	var warnings []models.Warning

	for _, s := range shifts {
		iv, ws, ok := fromShift(s)
		warnings = append(warnings, ws...)
		if !ok || !iv.Intersects(from, to) || !matchesTags(iv, req, true) {
			continue
		}
		intervals = append(intervals, iv)
	}

	for _, t := range timeOff {
		iv, ws, ok := fromTimeOff(t, loc)
		warnings = append(warnings, ws...)
		if !ok || !iv.Intersects(from, to) || !matchesTags(iv, req, false) {
			continue
		}
		intervals = append(intervals, iv)
	}

	Sort(intervals)
	return intervals, warnings, nil
}

// Window returns the UTC bounds [from, to) of the request: from the start of
// StartDate up to the end of EndDate, both taken as calendar days in loc.
func Window(req models.AnalysisRequest, loc *time.Location) (time.Time, time.Time, error) {
	if req.StartDate.IsZero() {
		return time.Time{}, time.Time{}, &customerrors.InconsistentFilterError{Field: "start_date", Reason: "is required"}
	}
	if req.EndDate.IsZero() {
		return time.Time{}, time.Time{}, &customerrors.InconsistentFilterError{Field: "end_date", Reason: "is required"}
	}
	start := StartOfDay(req.StartDate, loc)
	end := StartOfDay(req.EndDate, loc)
	if end.Before(start) {
		return time.Time{}, time.Time{}, &customerrors.InconsistentFilterError{
			Field:  "end_date",
			Reason: fmt.Sprintf("%s is before start_date %s", end.Format(time.DateOnly), start.Format(time.DateOnly)),
		}
	}
	return start.UTC(), AddDays(end, 1, loc).UTC(), nil
}

// Days lists every calendar day of the request, in order, as midnight in loc.
func Days(req models.AnalysisRequest, loc *time.Location) ([]time.Time, error) {
	if _, _, err := Window(req, loc); err != nil {
		return nil, err
	}
	end := StartOfDay(req.EndDate, loc)
	var days []time.Time
	for d := StartOfDay(req.StartDate, loc); !d.After(end); d = AddDays(d, 1, loc) {
		days = append(days, d)
	}
	return days, nil
}

// StartOfDay returns the first instant of t's calendar day in loc. That is
// midnight unless a clock change skips it.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	if day.Day() != t.Day() {
		// Midnight fell in a gap and resolved to the previous evening; the
		// day starts when the new offset takes effect.
		if _, end := day.ZoneBounds(); !end.IsZero() {
			day = end
		}
	}
	return day
}

// AddDays returns the start of the calendar day n days after t's day in loc.
// Days are stepped by date, so a day shortened or lengthened by a clock change
// never shifts later days.
func AddDays(t time.Time, n int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return StartOfDay(time.Date(t.Year(), t.Month(), t.Day()+n, 12, 0, 0, 0, loc), loc)
}

// Within returns the intervals intersecting [from, to), preserving order.
func Within(intervals []models.Interval, from, to time.Time) []models.Interval {
	out := make([]models.Interval, 0)
	for _, iv := range intervals {
		if iv.Intersects(from, to) {
			out = append(out, iv)
		}
	}
	return out
}

// Requirements collects the requirements of every shift interval, in interval order.
func Requirements(intervals []models.Interval) []models.Requirement {
	var reqs []models.Requirement
	for _, iv := range intervals {
		reqs = append(reqs, iv.Requirements...)
	}
	return reqs
}

// Shifts returns only the shift intervals.
func Shifts(intervals []models.Interval) []models.Interval {
	out := make([]models.Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Kind == models.KindShift {
			out = append(out, iv)
		}
	}
	return out
}

// Sort orders intervals by start, end, kind and source id.
func Sort(intervals []models.Interval) {
	slices.SortFunc(intervals, Compare)
}

// Compare is the canonical interval order used throughout the engine.
func Compare(a, b models.Interval) int {
	return cmpOr(
		a.Start.Compare(b.Start),
		a.End.Compare(b.End),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.SourceID, b.SourceID),
	)
}

// DayPiece is the part of an interval falling on one calendar day.
type DayPiece struct {
	Day   time.Time
	Start time.Time
	End   time.Time
}

// SplitByDay cuts iv at every midnight in loc.
func SplitByDay(iv models.Interval, loc *time.Location) []DayPiece {
	var pieces []DayPiece
	for day := StartOfDay(iv.Start, loc); day.Before(iv.End); day = AddDays(day, 1, loc) {
		next := AddDays(day, 1, loc)
		start, end := iv.Start, iv.End
		if start.Before(day) {
			start = day
		}
		if end.After(next) {
			end = next
		}
		if start.Before(end) {
			pieces = append(pieces, DayPiece{Day: day, Start: start.UTC(), End: end.UTC()})
		}
	}
	return pieces
}

func fromShift(s models.Shift) (models.Interval, []models.Warning, bool) {
	var warnings []models.Warning

	if !s.Status.Valid() {
		return models.Interval{}, []models.Warning{{
			Code:     models.WarnUnknownStatus,
			RecordID: s.ID,
			Kind:     models.KindShift,
			Message:  fmt.Sprintf("%v: shift status %q", customerrors.ErrInvalidStatus, s.Status),
		}}, false
	}
	if s.Status == models.ShiftCancelled {
		return models.Interval{}, nil, false
	}

	start, end := s.Start.UTC(), s.End.UTC()
	if !start.Before(end) {
		e := &customerrors.InvalidIntervalError{RecordID: s.ID, Kind: models.KindShift, Start: start, End: end}
		return models.Interval{}, []models.Warning{e.Warning()}, false
	}

	reqs := make([]models.Requirement, 0, len(s.Requirements))
	for _, r := range s.Requirements {
		r.ShiftID = s.ID
		if err := validate.Struct(r); err != nil {
			warnings = append(warnings, models.Warning{
				Code:     models.WarnInvalidRequirement,
				RecordID: s.ID,
				Kind:     models.KindShift,
				Message:  fmt.Sprintf("%v: role %q quantity %d: %v", customerrors.ErrInvalidRequirement, r.Role, r.Quantity, err),
			})
			continue
		}
		r.Skills = slices.Clone(r.Skills)
		reqs = append(reqs, r)
	}

	role := ""
	if len(reqs) > 0 {
		role = reqs[0].Role
	} else {
		for _, a := range s.Assignments {
			if a.Role != "" {
				role = a.Role
				break
			}
		}
	}

	staff := make([]models.Assignment, 0, len(s.Assignments))
	ids := make([]string, 0, len(s.Assignments))
	for _, a := range s.Assignments {
		if a.EmployeeID == "" {
			continue
		}
		if a.Role == "" {
			a.Role = role
		}
		if slices.Contains(staff, a) {
			continue
		}
		staff = append(staff, a)
		ids = append(ids, a.EmployeeID)
	}
	slices.Sort(ids)

	return models.Interval{
		SourceID:     s.ID,
		Kind:         models.KindShift,
		Start:        start,
		End:          end,
		Role:         role,
		EmployeeIDs:  slices.Compact(ids),
		LocationID:   s.LocationID,
		TeamID:       s.TeamID,
		DepartmentID: s.DepartmentID,
		Requirements: reqs,
		Staff:        staff,
	}, warnings, true
}

func fromTimeOff(t models.TimeOff, loc *time.Location) (models.Interval, []models.Warning, bool) {
	if !t.Status.Valid() {
		return models.Interval{}, []models.Warning{{
			Code:     models.WarnUnknownStatus,
			RecordID: t.ID,
			Kind:     models.KindTimeOff,
			Message:  fmt.Sprintf("%v: time-off status %q", customerrors.ErrInvalidStatus, t.Status),
		}}, false
	}
	if !t.Status.Blocking() {
		return models.Interval{}, nil, false
	}

	start, end := t.Start, t.End
	if t.AllDay {
		start = StartOfDay(t.Start, loc)
		end = AddDays(t.End, 1, loc)
	}
	start, end = start.UTC(), end.UTC()
	if !start.Before(end) {
		e := &customerrors.InvalidIntervalError{RecordID: t.ID, Kind: models.KindTimeOff, Start: start, End: end}
		return models.Interval{}, []models.Warning{e.Warning()}, false
	}

	var ids []string
	if t.EmployeeID != "" {
		ids = []string{t.EmployeeID}
	}
	return models.Interval{
		SourceID:     t.ID,
		Kind:         models.KindTimeOff,
		Start:        start,
		End:          end,
		EmployeeIDs:  ids,
		LocationID:   t.LocationID,
		TeamID:       t.TeamID,
		DepartmentID: t.DepartmentID,
	}, nil, true
}

// matchesTags applies the request's tag equality filters. Time-off records are
// employee scoped, so an untagged time-off record passes every tag filter.
func matchesTags(iv models.Interval, req models.AnalysisRequest, strict bool) bool {
	match := func(want, got string) bool {
		if want == "" {
			return true
		}
		if got == "" && !strict {
			return true
		}
		return want == got
	}
	return match(req.LocationID, iv.LocationID) &&
		match(req.TeamID, iv.TeamID) &&
		match(req.DepartmentID, iv.DepartmentID)
}

// cmpOr returns the first of vals that is not zero, or zero. It matches
// cmp.Or, which is unavailable before Go 1.22.
func cmpOr(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
