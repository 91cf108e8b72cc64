package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"schedule-analytics/coverage"
	"schedule-analytics/interval"
	"schedule-analytics/models"
	"schedule-analytics/optimizer"
)

// Range returns the report for every day of req, plus period-wide coverage,
// conflicts, suggestions and trend series.
func (s *Service) Range(ds models.Dataset, req models.AnalysisRequest) (*models.PeriodAnalytics, error) {
	defer timer("range").ObserveDuration()
	report, _, err := s.period(ds, req)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Weekly returns the seven-day report starting on weekStart.
func (s *Service) Weekly(ds models.Dataset, weekStart time.Time, filter models.Filter) (*models.WeeklyAnalytics, error) {
	defer timer("weekly").ObserveDuration()

	start := interval.StartOfDay(weekStart, s.loc)
	report, _, err := s.period(ds, models.AnalysisRequest{
		StartDate: start,
		EndDate:   interval.AddDays(start, 6, s.loc),
		Filter:    filter,
	})
	if err != nil {
		return nil, err
	}
	return &models.WeeklyAnalytics{WeekStart: start, PeriodAnalytics: *report}, nil
}

// Monthly returns the report for a calendar month, with seven-day summaries
// counted from the first of the month.
func (s *Service) Monthly(ds models.Dataset, year int, month time.Month, filter models.Filter) (*models.MonthlyAnalytics, error) {
	defer timer("monthly").ObserveDuration()

	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month %d out of range", month)
	}
	start := interval.StartOfDay(time.Date(year, month, 1, 12, 0, 0, 0, s.loc), s.loc)
	report, _, err := s.period(ds, models.AnalysisRequest{
		StartDate: start,
		EndDate:   time.Date(year, month+1, 0, 12, 0, 0, 0, s.loc),
		Filter:    filter,
	})
	if err != nil {
		return nil, err
	}
	return &models.MonthlyAnalytics{
		Year:            year,
		Month:           month,
		Weeks:           weeks(report.Days),
		PeriodAnalytics: *report,
	}, nil
}

// Team returns a period report for one team, broken down by location.
func (s *Service) Team(ds models.Dataset, teamID string, start, end time.Time) (*models.TeamAnalytics, error) {
	defer timer("team").ObserveDuration()

	report, snap, err := s.period(ds, models.AnalysisRequest{
		StartDate: start,
		EndDate:   end,
		Filter:    models.Filter{TeamID: teamID},
	})
	if err != nil {
		return nil, err
	}
	return &models.TeamAnalytics{
		TeamID:          teamID,
		Locations:       breakdown(snap, report.Conflicts, func(iv models.Interval) string { return iv.LocationID }),
		PeriodAnalytics: *report,
	}, nil
}

// Location returns a period report for one location, broken down by team.
func (s *Service) Location(ds models.Dataset, locationID string, start, end time.Time) (*models.LocationAnalytics, error) {
	defer timer("location").ObserveDuration()

	report, snap, err := s.period(ds, models.AnalysisRequest{
		StartDate: start,
		EndDate:   end,
		Filter:    models.Filter{LocationID: locationID},
	})
	if err != nil {
		return nil, err
	}
	return &models.LocationAnalytics{
		LocationID:      locationID,
		Teams:           breakdown(snap, report.Conflicts, func(iv models.Interval) string { return iv.TeamID }),
		PeriodAnalytics: *report,
	}, nil
}

// period computes each day independently and in parallel, then joins them in
// date order.
func (s *Service) period(ds models.Dataset, req models.AnalysisRequest) (*models.PeriodAnalytics, *snapshot, error) {
	snap, err := s.build(ds, req)
	if err != nil {
		return nil, nil, err
	}
	days, err := interval.Days(req, s.loc)
	if err != nil {
		return nil, nil, err
	}

	results := make([]models.DailyScheduleAnalytics, len(days))
	failures := make([]error, len(days))
	var g errgroup.Group
	g.SetLimit(s.cfg.Analytics.MaxParallelDays)
	for i, d := range days {
		i, d := i, d
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					failures[i] = fmt.Errorf("day %s: %v", d.Format(time.DateOnly), r)
				}
			}()
			results[i] = s.day(snap, ds.Availability, d)
			return nil
		})
	}
	_ = g.Wait()

	warnings := slices.Clone(snap.warnings)
	for i, ferr := range failures {
		if ferr == nil {
			continue
		}
		s.log.WithError(ferr).Error("Daily analysis failed")
		warnings = append(warnings, models.Warning{Code: models.WarnDayFailed, Message: ferr.Error()})
		results[i] = models.DailyScheduleAnalytics{
			Date:      days[i],
			Coverage:  []models.CoverageRecord{},
			Conflicts: []models.Conflict{},
		}
	}

	conflicts := s.analyzerFor(snap).Analyze(snap.intervals)
	opt := s.optimize(snap, ds.Availability, results)

	report := &models.PeriodAnalytics{
		StartDate:        days[0],
		EndDate:          days[len(days)-1],
		Days:             results,
		Coverage:         opt.Coverage,
		Conflicts:        conflicts,
		Optimization:     opt,
		TotalShifts:      len(snap.shifts),
		TotalHours:       hoursWithin(snap.shifts, snap.from, snap.to),
		CoverageTrend:    make([]models.TrendPoint, 0, len(results)),
		ConflictTrend:    make([]models.TrendPoint, 0, len(results)),
		UtilizationTrend: make([]models.TrendPoint, 0, len(results)),
		Warnings:         warnings,
	}

	var utilSum float64
	for _, d := range results {
		utilSum += d.AverageUtilization
		report.CoverageTrend = append(report.CoverageTrend, models.TrendPoint{Date: d.Date, Value: d.AverageCoverage})
		report.ConflictTrend = append(report.ConflictTrend, models.TrendPoint{Date: d.Date, Value: float64(len(d.Conflicts))})
		report.UtilizationTrend = append(report.UtilizationTrend, models.TrendPoint{Date: d.Date, Value: d.AverageUtilization})
	}
	report.AverageUtilization = utilSum / float64(len(results))

	s.publish(conflicts, opt)
	s.log.WithFields(logrus.Fields{
		"start":     report.StartDate.Format(time.DateOnly),
		"end":       report.EndDate.Format(time.DateOnly),
		"days":      len(results),
		"shifts":    report.TotalShifts,
		"conflicts": len(conflicts),
	}).Debug("Period report computed")
	return report, snap, nil
}

// optimize runs the optimizer over the snapshot's shifts, using the daily
// coverage to count how many days each role was short.
func (s *Service) optimize(snap *snapshot, available []models.EmployeeAvailability, daily []models.DailyScheduleAnalytics) models.CoverageOptimization {
	reqs := interval.Requirements(snap.shifts)

	daysWithGap := make(map[string]int)
	for _, d := range daily {
		for _, r := range d.Coverage {
			if r.Gap > 0 {
				daysWithGap[r.Role]++
			}
		}
	}

	return s.optimizer.Optimize(optimizer.Input{
		Coverage:    coverage.Aggregate(snap.shifts, reqs),
		Available:   available,
		RoleShifts:  optimizer.RoleShifts(snap.shifts),
		Busy:        optimizer.Busy(snap.busy),
		RoleSkills:  optimizer.RoleSkills(reqs),
		DaysWithGap: daysWithGap,
	})
}

// weeks groups consecutive days into seven-day summaries.
func weeks(days []models.DailyScheduleAnalytics) []models.WeekSummary {
	var out []models.WeekSummary
	for i := 0; i < len(days); i += 7 {
		chunk := days[i:min(i+7, len(days))]
		w := models.WeekSummary{WeekStart: chunk[0].Date}
		var cov float64
		for _, d := range chunk {
			w.TotalShifts += d.TotalShifts
			w.TotalHours += d.TotalHours
			w.Conflicts += len(d.Conflicts)
			cov += d.AverageCoverage
		}
		w.AverageCoverage = cov / float64(len(chunk))
		out = append(out, w)
	}
	return out
}

// unassignedKey labels shifts with no location or team tag in a breakdown.
const unassignedKey = "unassigned"

// breakdown summarizes the snapshot's shifts grouped by keyOf.
func breakdown(snap *snapshot, conflicts []models.Conflict, keyOf func(models.Interval) string) []models.Breakdown {
	groups := make(map[string][]models.Interval)
	shiftGroup := make(map[string]string)
	for _, iv := range snap.shifts {
		k := keyOf(iv)
		if k == "" {
			k = unassignedKey
		}
		groups[k] = append(groups[k], iv)
		shiftGroup[iv.SourceID] = k
	}

	conflictCount := make(map[string]int)
	for _, c := range conflicts {
		var seen []string
		for _, id := range c.AffectedShiftIDs {
			k, ok := shiftGroup[id]
			if ok && !slices.Contains(seen, k) {
				seen = append(seen, k)
				conflictCount[k]++
			}
		}
	}

	out := make([]models.Breakdown, 0, len(groups))
	for k, shifts := range groups {
		out = append(out, models.Breakdown{
			Key:             k,
			TotalShifts:     len(shifts),
			TotalHours:      hoursWithin(shifts, snap.from, snap.to),
			Conflicts:       conflictCount[k],
			AverageCoverage: coverage.Average(coverage.Aggregate(shifts, interval.Requirements(shifts))),
		})
	}
	slices.SortFunc(out, func(a, b models.Breakdown) int { return cmp.Compare(a.Key, b.Key) })
	return out
}
