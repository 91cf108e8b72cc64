package models

import "time"

// DailyScheduleAnalytics is the report for a single calendar day.
type DailyScheduleAnalytics struct {
	Date               time.Time        `json:"date"`
	Coverage           []CoverageRecord `json:"coverage"`
	Conflicts          []Conflict       `json:"conflicts"`
	TotalShifts        int              `json:"total_shifts"`
	TotalHours         float64          `json:"total_hours"`
	AverageCoverage    float64          `json:"average_coverage"`
	AverageUtilization float64          `json:"average_utilization"`
	Warnings           []Warning        `json:"warnings,omitempty"`
}

// TrendPoint is one value of a date-ordered series.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Breakdown summarizes one location or team within a period.
type Breakdown struct {
	Key             string  `json:"key"`
	TotalShifts     int     `json:"total_shifts"`
	TotalHours      float64 `json:"total_hours"`
	Conflicts       int     `json:"conflicts"`
	AverageCoverage float64 `json:"average_coverage"`
}

// PeriodAnalytics is the report for a run of consecutive days.
type PeriodAnalytics struct {
	StartDate          time.Time                `json:"start_date"`
	EndDate            time.Time                `json:"end_date"`
	Days               []DailyScheduleAnalytics `json:"days"`
	Coverage           []CoverageRecord         `json:"coverage"`
	Conflicts          []Conflict               `json:"conflicts"`
	Optimization       CoverageOptimization     `json:"optimization"`
	TotalShifts        int                      `json:"total_shifts"`
	TotalHours         float64                  `json:"total_hours"`
	AverageUtilization float64                  `json:"average_utilization"`
	CoverageTrend      []TrendPoint             `json:"coverage_trend"`
	ConflictTrend      []TrendPoint             `json:"conflict_trend"`
	UtilizationTrend   []TrendPoint             `json:"utilization_trend"`
	Warnings           []Warning                `json:"warnings,omitempty"`
}

// WeeklyAnalytics covers seven days starting at WeekStart.
type WeeklyAnalytics struct {
	WeekStart time.Time `json:"week_start"`
	PeriodAnalytics
}

// WeekSummary is one week's totals inside a monthly report.
type WeekSummary struct {
	WeekStart       time.Time `json:"week_start"`
	TotalShifts     int       `json:"total_shifts"`
	TotalHours      float64   `json:"total_hours"`
	Conflicts       int       `json:"conflicts"`
	AverageCoverage float64   `json:"average_coverage"`
}

// MonthlyAnalytics covers one calendar month.
type MonthlyAnalytics struct {
	Year  int           `json:"year"`
	Month time.Month    `json:"month"`
	Weeks []WeekSummary `json:"weeks"`
	PeriodAnalytics
}

// TeamAnalytics is a period report scoped to one team, broken down by location.
type TeamAnalytics struct {
	TeamID    string      `json:"team_id"`
	Locations []Breakdown `json:"locations"`
	PeriodAnalytics
}

// LocationAnalytics is a period report scoped to one location, broken down by team.
type LocationAnalytics struct {
	LocationID string      `json:"location_id"`
	Teams      []Breakdown `json:"teams"`
	PeriodAnalytics
}
