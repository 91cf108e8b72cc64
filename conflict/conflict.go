// Package conflict runs the overlap detector over a whole interval set and
// produces a deduplicated, severity-ranked conflict list.
package conflict

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"schedule-analytics/config"
	"schedule-analytics/interval"
	"schedule-analytics/models"
	"schedule-analytics/overlap"
)

// Analyzer detects conflicts. It holds configuration only; every Analyze call
// works on its own data and the Analyzer is safe for concurrent use.
type Analyzer struct {
	detector             *overlap.Detector
	skills               overlap.Skills
	understaffed         models.Severity
	criticalUnderstaffed models.Severity
}

// NewAnalyzer creates an Analyzer. Calendar days for overtime are taken in loc.
func NewAnalyzer(cfg config.ConflictConfig, loc *time.Location) *Analyzer {
	return &Analyzer{
		detector:             overlap.NewDetector(cfg.DailyHoursThreshold, loc),
		understaffed:         cfg.UnderstaffedSeverity,
		criticalUnderstaffed: cfg.CriticalUnderstaffedSeverity,
	}
}

// WithSkills returns a copy of the analyzer that also checks required skills
// against the given employee skills. Without skills data no skill mismatch is
// reported.
func (a *Analyzer) WithSkills(skills overlap.Skills) *Analyzer {
	c := *a
	c.skills = skills
	return &c
}

type entry struct {
	key      overlap.Key
	conflict models.Conflict
}

// Analyze returns every conflict in intervals, sorted by severity (most severe
// first) and then by start time. No conflicts yields an empty, non-nil slice.
//
// Pairwise checks only compare intervals of the same employee: each
// employee's intervals are sorted by start and swept, stopping as soon as a
// candidate starts at or after the current interval's end.
func (a *Analyzer) Analyze(intervals []models.Interval) []models.Conflict {
	found := make(map[overlap.Key]*entry)
	add := func(k overlap.Key, c models.Conflict) {
		if e, ok := found[k]; ok {
			e.conflict.AffectedEmployeeIDs = mergeIDs(e.conflict.AffectedEmployeeIDs, c.AffectedEmployeeIDs)
			return
		}
		found[k] = &entry{key: k, conflict: c}
	}

	byEmployee := make(map[string][]models.Interval)
	for _, iv := range intervals {
		for _, id := range iv.EmployeeIDs {
			byEmployee[id] = append(byEmployee[id], iv)
		}
	}
	employees := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		employees = append(employees, id)
	}
	slices.Sort(employees)

	for _, emp := range employees {
		list := byEmployee[emp]
		slices.SortFunc(list, interval.Compare)

		for i := range list {
			cur := list[i]
			for j := i + 1; j < len(list) && list[j].Start.Before(cur.End); j++ {
				t, ok := a.detector.Detect(cur, list[j])
				if !ok {
					continue
				}
				add(overlap.NewKey(ref(cur), ref(list[j]), t), pairConflict(t, emp, cur, list[j]))
			}
		}

		// A double-booking counts as one of its shifts toward the daily total.
		for _, day := range a.detector.ExceedsDaily(emp, interval.Shifts(list)) {
			k := overlap.Key{A: "employee:" + emp, B: day.Day.Format(time.DateOnly), Type: models.ConflictOvertime}
			add(k, models.Conflict{
				Type:     models.ConflictOvertime,
				Severity: overlap.Severity(models.ConflictOvertime),
				Description: fmt.Sprintf("Employee %s is scheduled %.1f hours on %s",
					emp, day.Hours, day.Day.Format(time.DateOnly)),
				AffectedShiftIDs:    day.ShiftIDs,
				AffectedEmployeeIDs: []string{emp},
				Start:               day.Day.UTC(),
			})
		}
	}

	for _, iv := range intervals {
		if iv.Kind != models.KindShift {
			continue
		}
		for _, c := range a.understaffing(iv) {
			add(overlap.Key{A: ref(iv), B: c.role, Type: models.ConflictUnderstaffed}, c.conflict)
		}
		if a.skills == nil {
			continue
		}
		for _, gap := range a.detector.SkillGaps(iv, a.skills) {
			add(overlap.Key{A: ref(iv), B: gap.Requirement.Role, Type: models.ConflictSkillMismatch}, models.Conflict{
				Type:     models.ConflictSkillMismatch,
				Severity: overlap.Severity(models.ConflictSkillMismatch),
				Description: fmt.Sprintf("Shift %s role %s requires %s, held by no assigned employee",
					iv.SourceID, gap.Requirement.Role, strings.Join(gap.Missing, ", ")),
				AffectedShiftIDs:    []string{iv.SourceID},
				AffectedEmployeeIDs: iv.EmployeesInRole(gap.Requirement.Role),
				Start:               iv.Start,
			})
		}
	}

	entries := make([]*entry, 0, len(found))
	for _, e := range found {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(x, y *entry) int {
		return cmpOr(
			cmp.Compare(y.conflict.Severity, x.conflict.Severity),
			x.conflict.Start.Compare(y.conflict.Start),
			cmp.Compare(typeRank(x.key.Type), typeRank(y.key.Type)),
			cmp.Compare(x.key.A, y.key.A),
			cmp.Compare(x.key.B, y.key.B),
		)
	})

	out := make([]models.Conflict, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.conflict)
	}
	return out
}

type roleShortfall struct {
	role     string
	conflict models.Conflict
}

func (a *Analyzer) understaffing(iv models.Interval) []roleShortfall {
	type need struct {
		quantity int
		critical bool
	}
	needs := make(map[string]*need)
	var roles []string
	for _, r := range iv.Requirements {
		n, ok := needs[r.Role]
		if !ok {
			n = &need{}
			needs[r.Role] = n
			roles = append(roles, r.Role)
		}
		n.quantity += r.Quantity
		n.critical = n.critical || r.IsCritical
	}

	var out []roleShortfall
	for _, role := range roles {
		n := needs[role]
		staff := iv.EmployeesInRole(role)
		if len(staff) >= n.quantity {
			continue
		}
		sev := a.understaffed
		if n.critical {
			sev = a.criticalUnderstaffed
		}
		if staff == nil {
			staff = []string{}
		}
		out = append(out, roleShortfall{role: role, conflict: models.Conflict{
			Type:     models.ConflictUnderstaffed,
			Severity: sev,
			Description: fmt.Sprintf("Shift %s needs %d %s, has %d",
				iv.SourceID, n.quantity, role, len(staff)),
			AffectedShiftIDs:    []string{iv.SourceID},
			AffectedEmployeeIDs: staff,
			Start:               iv.Start,
		}})
	}
	return out
}

func pairConflict(t models.ConflictType, emp string, a, b models.Interval) models.Conflict {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}

	c := models.Conflict{
		Type:                t,
		Severity:            overlap.Severity(t),
		AffectedEmployeeIDs: []string{emp},
		Start:               start,
	}
	switch t {
	case models.ConflictDoubleBooking:
		ids := []string{a.SourceID, b.SourceID}
		slices.Sort(ids)
		c.AffectedShiftIDs = ids
		c.Description = fmt.Sprintf("Double booking on shifts %s and %s (overlap %s to %s)",
			ids[0], ids[1], start.Format(time.RFC3339), end.Format(time.RFC3339))
	case models.ConflictTimeOffOverlap:
		shift, off := a, b
		if shift.Kind != models.KindShift {
			shift, off = b, a
		}
		c.AffectedShiftIDs = []string{shift.SourceID}
		c.AffectedTimeOffIDs = []string{off.SourceID}
		c.Description = fmt.Sprintf("Shift %s overlaps approved time off %s",
			shift.SourceID, off.SourceID)
	}
	return c
}

// Summarize counts conflicts by type and severity. Every known type and
// severity is present in the maps, with zero when absent.
func Summarize(conflicts []models.Conflict) models.ConflictAnalysis {
	byType := make(map[models.ConflictType]int, len(models.ConflictTypes))
	for _, t := range models.ConflictTypes {
		byType[t] = 0
	}
	bySeverity := map[models.Severity]int{
		models.SeverityLow:      0,
		models.SeverityMedium:   0,
		models.SeverityHigh:     0,
		models.SeverityCritical: 0,
	}
	for _, c := range conflicts {
		byType[c.Type]++
		bySeverity[c.Severity]++
	}
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	return models.ConflictAnalysis{
		Conflicts:  conflicts,
		Total:      len(conflicts),
		ByType:     byType,
		BySeverity: bySeverity,
	}
}

// ref distinguishes shift and time-off ids that happen to collide.
func ref(iv models.Interval) string {
	return string(iv.Kind) + ":" + iv.SourceID
}

func typeRank(t models.ConflictType) int {
	return slices.Index(models.ConflictTypes, t)
}

func mergeIDs(a, b []string) []string {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
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
