package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"schedule-analytics/formatter"
	"schedule-analytics/models"
)

func newDailyCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Coverage, conflicts and utilization for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := a.parseDate("date", date)
			if err != nil {
				return err
			}
			r, err := a.service.Daily(a.dataset, day, a.filter)
			if err != nil {
				return err
			}
			a.render(cmd,
				func() string { return formatter.FormatDailyText(r) },
				func() string { return formatter.FormatCoverageCSV(r.Coverage) },
				r)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to analyze (YYYY-MM-DD)")
	return cmd
}

func newWeeklyCmd(a *app) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Seven-day report with trends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := a.parseDate("start", start)
			if err != nil {
				return err
			}
			r, err := a.service.Weekly(a.dataset, day, a.filter)
			if err != nil {
				return err
			}
			a.render(cmd,
				func() string { return formatter.FormatPeriodText("Week", &r.PeriodAnalytics) },
				func() string { return formatter.FormatPeriodCSV(&r.PeriodAnalytics) },
				r)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First day of the week (YYYY-MM-DD)")
	return cmd
}

func newMonthlyCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Calendar-month report with weekly summaries and trends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := time.Parse("2006-01", month)
			if err != nil {
				return fmt.Errorf("invalid --month %q (want YYYY-MM): %w", month, err)
			}
			r, err := a.service.Monthly(a.dataset, m.Year(), m.Month(), a.filter)
			if err != nil {
				return err
			}
			a.render(cmd,
				func() string { return formatter.FormatPeriodText(m.Format("January 2006"), &r.PeriodAnalytics) },
				func() string { return formatter.FormatPeriodCSV(&r.PeriodAnalytics) },
				r)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Month to analyze (YYYY-MM)")
	return cmd
}

func newRangeCmd(a *app) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Report over an arbitrary inclusive date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request(start, end)
			if err != nil {
				return err
			}
			r, err := a.service.Range(a.dataset, req)
			if err != nil {
				return err
			}
			a.render(cmd,
				func() string { return formatter.FormatPeriodText("Range", r) },
				func() string { return formatter.FormatPeriodCSV(r) },
				r)
			return nil
		},
	}
	addRangeFlags(cmd, &start, &end)
	return cmd
}

func newTeamCmd(a *app) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "team TEAM_ID",
		Short: "Period report for one team, broken down by location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := a.parseRange(start, end)
			if err != nil {
				return err
			}
			r, err := a.service.Team(a.dataset, args[0], from, to)
			if err != nil {
				return err
			}
			a.render(cmd,
				func() string {
					return formatter.FormatPeriodText("Team "+r.TeamID, &r.PeriodAnalytics) +
						formatter.FormatBreakdownText("location", r.Locations)
				},
				func() string { return formatter.FormatPeriodCSV(&r.PeriodAnalytics) },
				r)
			return nil
		},
	}
	addRangeFlags(cmd, &start, &end)
	return cmd
}

func newLocationCmd(a *app) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "location LOCATION_ID",
		Short: "Period report for one location, broken down by team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := a.parseRange(start, end)
			if err != nil {
				return err
			}
			r, err := a.service.Location(a.dataset, args[0], from, to)
			if err != nil {
				return err
			}
			a.render(cmd,
				func() string {
					return formatter.FormatPeriodText("Location "+r.LocationID, &r.PeriodAnalytics) +
						formatter.FormatBreakdownText("team", r.Teams)
				},
				func() string { return formatter.FormatPeriodCSV(&r.PeriodAnalytics) },
				r)
			return nil
		},
	}
	addRangeFlags(cmd, &start, &end)
	return cmd
}

func newConflictsCmd(a *app) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Severity-ranked conflicts over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request(start, end)
			if err != nil {
				return err
			}
			r, err := a.service.Conflicts(a.dataset, req)
			if err != nil {
				return err
			}
			a.render(cmd,
				func() string { return formatter.FormatConflictsText(r) },
				func() string { return formatter.FormatConflictsCSV(r.Conflicts) },
				r)
			return nil
		},
	}
	addRangeFlags(cmd, &start, &end)
	return cmd
}

func newOptimizeCmd(a *app) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Coverage gaps and ranked remediation suggestions over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request(start, end)
			if err != nil {
				return err
			}
			r, err := a.service.Optimize(a.dataset, req)
			if err != nil {
				return err
			}
			a.render(cmd,
				func() string { return formatter.FormatOptimizationText(r) },
				func() string { return formatter.FormatCoverageCSV(r.Coverage) },
				r)
			return nil
		},
	}
	addRangeFlags(cmd, &start, &end)
	return cmd
}

func addRangeFlags(cmd *cobra.Command, start, end *string) {
	cmd.Flags().StringVar(start, "start", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(end, "end", "", "Last day, inclusive (YYYY-MM-DD)")
}

func (a *app) request(start, end string) (models.AnalysisRequest, error) {
	from, to, err := a.parseRange(start, end)
	if err != nil {
		return models.AnalysisRequest{}, err
	}
	return models.AnalysisRequest{StartDate: from, EndDate: to, Filter: a.filter}, nil
}
