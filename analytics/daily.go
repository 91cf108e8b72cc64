package analytics

import (
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"schedule-analytics/conflict"
	"schedule-analytics/coverage"
	"schedule-analytics/interval"
	"schedule-analytics/models"
)

// Daily returns the report for one calendar day.
func (s *Service) Daily(ds models.Dataset, date time.Time, filter models.Filter) (*models.DailyScheduleAnalytics, error) {
	defer timer("daily").ObserveDuration()

	snap, err := s.build(ds, models.AnalysisRequest{StartDate: date, EndDate: date, Filter: filter})
	if err != nil {
		return nil, err
	}

	report := s.day(snap, ds.Availability, interval.StartOfDay(date, s.loc))
	report.Warnings = append(report.Warnings, snap.warnings...)

	s.publish(report.Conflicts, models.CoverageOptimization{Coverage: report.Coverage})
	s.log.WithFields(logrus.Fields{
		"date":      report.Date.Format(time.DateOnly),
		"shifts":    report.TotalShifts,
		"conflicts": len(report.Conflicts),
	}).Debug("Daily report computed")
	return &report, nil
}

// day computes one day's figures from an already built snapshot.
func (s *Service) day(snap *snapshot, available []models.EmployeeAvailability, day time.Time) models.DailyScheduleAnalytics {
	from, to := day.UTC(), interval.AddDays(day, 1, s.loc).UTC()

	intervals := interval.Within(snap.intervals, from, to)
	shifts := interval.Shifts(intervals)
	records := coverage.Aggregate(shifts, interval.Requirements(shifts))

	var conflicts []models.Conflict
	if len(intervals) > 0 {
		// An overnight shift pulls in a neighbouring day's overtime; it is
		// reported on its own day.
		conflicts = slices.DeleteFunc(s.analyzerFor(snap).Analyze(intervals), func(c models.Conflict) bool {
			return c.Type == models.ConflictOvertime && (c.Start.Before(from) || !c.Start.Before(to))
		})
	} else {
		conflicts = []models.Conflict{}
	}

	return models.DailyScheduleAnalytics{
		Date:               day,
		Coverage:           records,
		Conflicts:          conflicts,
		TotalShifts:        len(shifts),
		TotalHours:         hoursWithin(shifts, from, to),
		AverageCoverage:    coverage.Average(records),
		AverageUtilization: utilization(shifts, available, from, to),
	}
}

// hoursWithin sums the shift time inside [from, to).
func hoursWithin(shifts []models.Interval, from, to time.Time) float64 {
	var total time.Duration
	for _, iv := range shifts {
		start, end := iv.Start, iv.End
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if start.Before(end) {
			total += end.Sub(start)
		}
	}
	return total.Hours()
}

// utilization is the mean, over employees available inside [from, to), of
// scheduled hours divided by available hours, as a percentage.
func utilization(shifts []models.Interval, available []models.EmployeeAvailability, from, to time.Time) float64 {
	scheduled := make(map[string][][2]time.Time)
	for _, iv := range shifts {
		start, end := iv.Start, iv.End
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if !start.Before(end) {
			continue
		}
		for _, id := range iv.EmployeeIDs {
			scheduled[id] = append(scheduled[id], [2]time.Time{start, end})
		}
	}

	var sum float64
	var n int
	for _, e := range available {
		hours := e.AvailableHours(from, to)
		if hours <= 0 {
			continue
		}
		worked := models.UnionHours(scheduled[e.EmployeeID])
		sum += min(1, worked/hours)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100
}

// Conflicts returns the conflict analysis for the requested period.
func (s *Service) Conflicts(ds models.Dataset, req models.AnalysisRequest) (*models.ConflictAnalysis, error) {
	defer timer("conflicts").ObserveDuration()

	snap, err := s.build(ds, req)
	if err != nil {
		return nil, err
	}
	result := conflict.Summarize(s.analyzerFor(snap).Analyze(snap.intervals))
	result.Warnings = snap.warnings

	s.publish(result.Conflicts, models.CoverageOptimization{})
	return &result, nil
}

// Optimize returns coverage, gaps and ranked suggestions for the requested period.
func (s *Service) Optimize(ds models.Dataset, req models.AnalysisRequest) (*models.CoverageOptimization, error) {
	defer timer("optimize").ObserveDuration()

	snap, err := s.build(ds, req)
	if err != nil {
		return nil, err
	}
	days, err := interval.Days(req, s.loc)
	if err != nil {
		return nil, err
	}

	daily := make([]models.DailyScheduleAnalytics, 0, len(days))
	for _, d := range days {
		dayShifts := interval.Shifts(interval.Within(snap.shifts, d.UTC(), interval.AddDays(d, 1, s.loc).UTC()))
		daily = append(daily, models.DailyScheduleAnalytics{
			Date:     d,
			Coverage: coverage.Aggregate(dayShifts, interval.Requirements(dayShifts)),
		})
	}

	result := s.optimize(snap, ds.Availability, daily)
	result.Warnings = snap.warnings

	s.publish(nil, result)
	return &result, nil
}
