// Package overlap decides whether two intervals conflict and how.
package overlap

import (
	"cmp"
	"slices"
	"time"

	"schedule-analytics/interval"
	"schedule-analytics/models"
)

// Overlaps reports whether a and b share any instant. Intervals are half-open,
// so back-to-back shifts do not overlap.
func Overlaps(a, b models.Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// SharedEmployees returns the sorted employee ids present on both intervals.
func SharedEmployees(a, b models.Interval) []string {
	var shared []string
	i, j := 0, 0
	for i < len(a.EmployeeIDs) && j < len(b.EmployeeIDs) {
		switch cmp.Compare(a.EmployeeIDs[i], b.EmployeeIDs[j]) {
		case 0:
			shared = append(shared, a.EmployeeIDs[i])
			i++
			j++
		case -1:
			i++
		default:
			j++
		}
	}
	return shared
}

// Severity returns the fixed severity of a pairwise or per-employee conflict type.
// Understaffing severity depends on the requirement and is configured elsewhere.
func Severity(t models.ConflictType) models.Severity {
	switch t {
	case models.ConflictDoubleBooking:
		return models.SeverityCritical
	case models.ConflictTimeOffOverlap:
		return models.SeverityHigh
	case models.ConflictOvertime, models.ConflictSkillMismatch:
		return models.SeverityMedium
	}
	return models.SeverityLow
}

// Key identifies a conflict independently of the order its intervals were seen in.
type Key struct {
	A, B string
	Type models.ConflictType
}

// NewKey orders a and b so that (x, y) and (y, x) produce the same key.
func NewKey(a, b string, t models.ConflictType) Key {
	if b < a {
		a, b = b, a
	}
	return Key{A: a, B: b, Type: t}
}

// Skills maps an employee id to the skills they hold.
type Skills map[string][]string

// SkillsFrom indexes the skills of every employee in the availability list.
func SkillsFrom(available []models.EmployeeAvailability) Skills {
	s := make(Skills, len(available))
	for _, e := range available {
		s[e.EmployeeID] = append(s[e.EmployeeID], e.Skills...)
	}
	return s
}

// SkillGap is a requirement whose skills are not all held by the staff filling it.
type SkillGap struct {
	Requirement models.Requirement
	Missing     []string
}

// OvertimeDay is a calendar day on which an employee exceeds the daily threshold.
type OvertimeDay struct {
	EmployeeID string
	Day        time.Time
	Hours      float64
	ShiftIDs   []string
}

// Detector classifies conflicts. It holds only configuration and is safe for
// concurrent use.
type Detector struct {
	dailyLimit float64
	loc        *time.Location
}

// NewDetector creates a Detector. Calendar days are taken in loc.
func NewDetector(dailyHoursThreshold float64, loc *time.Location) *Detector {
	if loc == nil {
		loc = time.UTC
	}
	return &Detector{dailyLimit: dailyHoursThreshold, loc: loc}
}

// Detect classifies a pair of intervals. Rules apply in priority order and the
// first match wins:
//
//	shift/shift with a shared employee        -> DoubleBooking (critical)
//	shift/time-off with a shared employee     -> TimeOffOverlap (high)
//
// Daily overtime and skill mismatches are not pairwise properties and are
// evaluated by ExceedsDaily and SkillGaps.
func (d *Detector) Detect(a, b models.Interval) (models.ConflictType, bool) {
	if !Overlaps(a, b) || len(SharedEmployees(a, b)) == 0 {
		return "", false
	}
	switch {
	case a.Kind == models.KindShift && b.Kind == models.KindShift:
		return models.ConflictDoubleBooking, true
	case a.Kind != b.Kind:
		return models.ConflictTimeOffOverlap, true
	}
	return "", false
}

// ExceedsDaily returns the days on which the employee's workable time is above
// the daily threshold. Workable time is the most hours the employee could
// actually work that day picking shifts that do not overlap, so a
// double-booking counts as one of its shifts. shifts must all carry the
// employee.
func (d *Detector) ExceedsDaily(employeeID string, shifts []models.Interval) []OvertimeDay {
	type bucket struct {
		spans [][2]time.Time
		ids   []string
	}
	byDay := make(map[int64]*bucket)
	var days []time.Time

	for _, iv := range shifts {
		if iv.Kind != models.KindShift {
			continue
		}
		for _, p := range interval.SplitByDay(iv, d.loc) {
			b, ok := byDay[p.Day.Unix()]
			if !ok {
				b = &bucket{}
				byDay[p.Day.Unix()] = b
				days = append(days, p.Day)
			}
			b.spans = append(b.spans, [2]time.Time{p.Start, p.End})
			if !slices.Contains(b.ids, iv.SourceID) {
				b.ids = append(b.ids, iv.SourceID)
			}
		}
	}

	slices.SortFunc(days, time.Time.Compare)
	var out []OvertimeDay
	for _, day := range days {
		b := byDay[day.Unix()]
		hours := workableHours(b.spans)
		if hours <= d.dailyLimit {
			continue
		}
		ids := slices.Clone(b.ids)
		slices.Sort(ids)
		out = append(out, OvertimeDay{EmployeeID: employeeID, Day: day, Hours: hours, ShiftIDs: ids})
	}
	return out
}

// SkillGaps returns, per requirement of the shift, the required skills that no
// employee filling that role holds. Requirements with nobody assigned are
// reported as understaffing instead and are skipped here.
func (d *Detector) SkillGaps(iv models.Interval, skills Skills) []SkillGap {
	var gaps []SkillGap
	for _, r := range iv.Requirements {
		if len(r.Skills) == 0 {
			continue
		}
		staff := iv.EmployeesInRole(r.Role)
		if len(staff) == 0 {
			continue
		}
		var missing []string
		for _, skill := range r.Skills {
			held := false
			for _, id := range staff {
				if slices.Contains(skills[id], skill) {
					held = true
					break
				}
			}
			if !held && !slices.Contains(missing, skill) {
				missing = append(missing, skill)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			gaps = append(gaps, SkillGap{Requirement: r, Missing: missing})
		}
	}
	return gaps
}

// workableHours is the largest total duration of pairwise non-overlapping
// spans, found by weighted interval scheduling over spans sorted by end.
func workableHours(spans [][2]time.Time) float64 {
	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b [2]time.Time) int {
		return cmpOr(a[1].Compare(b[1]), a[0].Compare(b[0]))
	})

	// best[i] is the answer over the first i spans.
	best := make([]time.Duration, len(sorted)+1)
	for i, sp := range sorted {
		prev := 0
		for j := i - 1; j >= 0; j-- {
			if !sorted[j][1].After(sp[0]) {
				prev = j + 1
				break
			}
		}
		best[i+1] = max(best[i], best[prev]+sp[1].Sub(sp[0]))
	}
	return best[len(sorted)].Hours()
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
