// Package optimizer turns coverage shortfalls into ranked remediation suggestions.
package optimizer

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"schedule-analytics/config"
	"schedule-analytics/models"
	"schedule-analytics/overlap"
)

// Input is everything one optimization run looks at.
type Input struct {
	// Coverage is the aggregator output, already in processing order.
	Coverage []models.CoverageRecord
	// Available lists employees that could be moved onto a shift.
	Available []models.EmployeeAvailability
	// RoleShifts holds the shift intervals that need each role. An employee is
	// time-available for a role when one of their windows covers one of these
	// shifts. A role without shifts accepts anyone with a window.
	RoleShifts map[string][]models.Interval
	// Busy holds, per employee, the shifts they work and the time-off they
	// take. An employee is never proposed for a shift overlapping either.
	Busy map[string][]models.Interval
	// RoleSkills holds the skills required for each role.
	RoleSkills map[string][]string
	// DaysWithGap counts, per role, the analyzed days on which the role was short.
	DaysWithGap map[string]int
}

// Optimizer ranks suggestions using configured costs. It is safe for concurrent use.
type Optimizer struct {
	cfg config.OptimizerConfig
}

// New creates an Optimizer.
func New(cfg config.OptimizerConfig) *Optimizer {
	return &Optimizer{cfg: cfg}
}

// Optimize emits one gap and one suggestion for every understaffed role.
//
// The suggestion is, in order of preference: Reassign when a qualified,
// skilled and available employee exists; Hire when the gap persisted on at
// least HirePersistenceDays days; Train when qualified employees lack only
// skills; Overtime otherwise. Suggestions are sorted by impact/cost, best
// first, with ties kept in coverage order.
func (o *Optimizer) Optimize(in Input) models.CoverageOptimization {
	gaps := make([]models.CoverageGap, 0)
	suggestions := make([]models.OptimizationSuggestion, 0)

	for _, rec := range in.Coverage {
		if rec.Gap <= 0 {
			continue
		}
		available, trainable := o.candidates(rec, in)
		days := in.DaysWithGap[rec.Role]
		gaps = append(gaps, models.CoverageGap{
			Role:                 rec.Role,
			Required:             rec.Required,
			Assigned:             rec.Assigned,
			Gap:                  rec.Gap,
			AvailableEmployeeIDs: available,
			TrainableEmployeeIDs: trainable,
			DaysWithGap:          days,
		})
		suggestions = append(suggestions, o.suggest(rec, available, trainable, days))
	}

	slices.SortStableFunc(suggestions, func(a, b models.OptimizationSuggestion) int {
		ra, rb := Return(a), Return(b)
		switch {
		case ra > rb:
			return -1
		case ra < rb:
			return 1
		}
		return 0
	})

	return models.CoverageOptimization{
		Coverage:    in.Coverage,
		Gaps:        gaps,
		Suggestions: suggestions,
	}
}

// Return is the impact per unit of cost used for ranking.
func Return(s models.OptimizationSuggestion) float64 {
	if s.Cost <= 0 {
		return math.Inf(1)
	}
	return s.Impact / s.Cost
}

func (o *Optimizer) suggest(rec models.CoverageRecord, available, trainable []string, days int) models.OptimizationSuggestion {
	gap := float64(rec.Gap)
	share := clamp(gap / float64(rec.Required))

	switch {
	case len(available) > 0:
		n := min(rec.Gap, len(available))
		return models.OptimizationSuggestion{
			Type:        models.SuggestReassign,
			Role:        rec.Role,
			Description: fmt.Sprintf("Reassign %d available %s employee(s): %s", n, rec.Role, strings.Join(available[:n], ", ")),
			Impact:      clamp(float64(n) / gap),
			Cost:        o.cfg.ReassignCost,
			EmployeeIDs: slices.Clone(available[:n]),
		}
	case days >= o.cfg.HirePersistenceDays:
		return models.OptimizationSuggestion{
			Type:        models.SuggestHire,
			Role:        rec.Role,
			Description: fmt.Sprintf("Hire %d %s: short on %d day(s) with no one available", rec.Gap, rec.Role, days),
			Impact:      share,
			Cost:        o.cfg.HireCost,
		}
	case len(trainable) > 0:
		return models.OptimizationSuggestion{
			Type:        models.SuggestTrain,
			Role:        rec.Role,
			Description: fmt.Sprintf("Train %s for %s skills", strings.Join(trainable, ", "), rec.Role),
			Impact:      clamp(o.cfg.TrainImpactFactor * share),
			Cost:        o.cfg.TrainCost,
			EmployeeIDs: slices.Clone(trainable),
		}
	}
	return models.OptimizationSuggestion{
		Type:        models.SuggestOvertime,
		Role:        rec.Role,
		Description: fmt.Sprintf("Cover %d %s slot(s) with overtime", rec.Gap, rec.Role),
		Impact:      share,
		Cost:        o.cfg.OvertimeCostPerHead * gap,
	}
}

// candidates splits the unassigned, role-qualified, time-available employees
// into those holding the role's skills and those who would need training.
// Time-available means free on at least one of the role's shifts: inside an
// availability window, not on leave and not working another shift.
func (o *Optimizer) candidates(rec models.CoverageRecord, in Input) (available, trainable []string) {
	available, trainable = []string{}, []string{}
	shifts := in.RoleShifts[rec.Role]
	skills := in.RoleSkills[rec.Role]

	for _, e := range in.Available {
		if !e.HasRole(rec.Role) || slices.Contains(rec.EmployeeIDs, e.EmployeeID) {
			continue
		}
		if !timeAvailable(e, shifts, in.Busy[e.EmployeeID]) {
			continue
		}
		if len(e.MissingSkills(skills)) == 0 {
			available = append(available, e.EmployeeID)
		} else {
			trainable = append(trainable, e.EmployeeID)
		}
	}
	slices.Sort(available)
	slices.Sort(trainable)
	return slices.Compact(available), slices.Compact(trainable)
}

func timeAvailable(e models.EmployeeAvailability, shifts, busy []models.Interval) bool {
	if len(shifts) == 0 {
		return len(e.Windows) > 0
	}
	for _, s := range shifts {
		if s.HasEmployee(e.EmployeeID) || !e.AvailableFor(s.Start, s.End) {
			continue
		}
		if !slices.ContainsFunc(busy, func(b models.Interval) bool { return overlap.Overlaps(s, b) }) {
			return true
		}
	}
	return false
}

// Busy indexes every interval by the employees it occupies.
func Busy(intervals []models.Interval) map[string][]models.Interval {
	out := make(map[string][]models.Interval)
	for _, iv := range intervals {
		for _, id := range iv.EmployeeIDs {
			out[id] = append(out[id], iv)
		}
	}
	return out
}

// RoleShifts groups shift intervals by every role they require or staff.
func RoleShifts(intervals []models.Interval) map[string][]models.Interval {
	out := make(map[string][]models.Interval)
	for _, iv := range intervals {
		if iv.Kind != models.KindShift {
			continue
		}
		var roles []string
		for _, r := range iv.Requirements {
			roles = append(roles, r.Role)
		}
		for _, a := range iv.Staff {
			roles = append(roles, a.Role)
		}
		slices.Sort(roles)
		for _, role := range slices.Compact(roles) {
			if role != "" {
				out[role] = append(out[role], iv)
			}
		}
	}
	return out
}

// RoleSkills unions the required skills of each role's requirements.
func RoleSkills(requirements []models.Requirement) map[string][]string {
	out := make(map[string][]string)
	for _, r := range requirements {
		for _, s := range r.Skills {
			if !slices.Contains(out[r.Role], s) {
				out[r.Role] = append(out[r.Role], s)
			}
		}
	}
	for role := range out {
		slices.Sort(out[role])
	}
	return out
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
