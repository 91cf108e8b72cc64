// Package coverage aggregates required versus assigned headcount per role.
package coverage

import (
	"cmp"
	"math"
	"slices"

	"schedule-analytics/models"
)

// Percent returns the coverage percentage, clamped to [0, 100]. A role with no
// requirement is fully covered.
func Percent(assigned, required int) float64 {
	if required <= 0 {
		return 100
	}
	if assigned <= 0 {
		return 0
	}
	return math.Min(100, float64(assigned)/float64(required)*100)
}

// Aggregate groups coverage by role over the shift intervals given.
//
// Required is the sum of requirement quantities for the role. Assigned counts
// the distinct employees filling the role on each shift, summed over shifts,
// so one employee cannot fill a role twice on the same shift. Requirements are
// matched to intervals by ShiftID; requirements for shifts outside the set are
// ignored, and requirements without a ShiftID always count.
//
// The result is sorted by ascending coverage, then by role.
func Aggregate(intervals []models.Interval, requirements []models.Requirement) []models.CoverageRecord {
	type tally struct {
		required  int
		assigned  int
		employees []string
	}
	byRole := make(map[string]*tally)
	get := func(role string) *tally {
		t, ok := byRole[role]
		if !ok {
			t = &tally{}
			byRole[role] = t
		}
		return t
	}

	inSet := make(map[string]bool, len(intervals))
	for _, iv := range intervals {
		if iv.Kind != models.KindShift || inSet[iv.SourceID] {
			continue
		}
		inSet[iv.SourceID] = true

		var roles []string
		for _, a := range iv.Staff {
			if a.Role != "" && !slices.Contains(roles, a.Role) {
				roles = append(roles, a.Role)
			}
		}
		for _, role := range roles {
			staff := iv.EmployeesInRole(role)
			t := get(role)
			t.assigned += len(staff)
			t.employees = append(t.employees, staff...)
		}
	}

	for _, r := range requirements {
		if r.ShiftID != "" && !inSet[r.ShiftID] {
			continue
		}
		get(r.Role).required += r.Quantity
	}

	records := make([]models.CoverageRecord, 0, len(byRole))
	for role, t := range byRole {
		ids := slices.Clone(t.employees)
		slices.Sort(ids)
		ids = slices.Compact(ids)
		if ids == nil {
			ids = []string{}
		}
		records = append(records, models.CoverageRecord{
			Role:        role,
			Required:    t.required,
			Assigned:    t.assigned,
			CoveragePct: Percent(t.assigned, t.required),
			Gap:         t.required - t.assigned,
			EmployeeIDs: ids,
		})
	}

	slices.SortFunc(records, func(a, b models.CoverageRecord) int {
		return cmpOr(
			cmp.Compare(a.CoveragePct, b.CoveragePct),
			cmp.Compare(a.Role, b.Role),
		)
	})
	return records
}

// Average returns the mean coverage percentage weighted by required headcount.
// Roles with no requirement are ignored; with nothing required the result is 100,
// and with no records at all it is 0.
func Average(records []models.CoverageRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var required, covered int
	for _, r := range records {
		if r.Required <= 0 {
			continue
		}
		required += r.Required
		covered += min(r.Assigned, r.Required)
	}
	if required == 0 {
		return 100
	}
	return float64(covered) / float64(required) * 100
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
