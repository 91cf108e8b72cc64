// Package analytics composes the conflict analyzer and the coverage optimizer
// into the daily, weekly, monthly, team and location reports used by
// dashboards and exports.
//
// Every report is a pure function of the dataset and request it is given; the
// Service holds configuration only, so calls may run concurrently and callers
// may memoize results on (request, data version).
package analytics

import (
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"schedule-analytics/config"
	"schedule-analytics/conflict"
	customerrors "schedule-analytics/errors"
	"schedule-analytics/interval"
	"schedule-analytics/metrics"
	"schedule-analytics/models"
	"schedule-analytics/optimizer"
	"schedule-analytics/overlap"
)

// Service produces analytics reports.
type Service struct {
	cfg       config.Config
	loc       *time.Location
	analyzer  *conflict.Analyzer
	optimizer *optimizer.Optimizer
	log       logrus.FieldLogger
}

// New creates a Service. A nil cfg uses config.Default(); a nil log discards output.
func New(cfg *config.Config, log logrus.FieldLogger) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Service{
		cfg:       *cfg,
		loc:       loc,
		analyzer:  conflict.NewAnalyzer(cfg.Conflict, loc),
		optimizer: optimizer.New(cfg.Optimizer),
		log:       log,
	}, nil
}

// Location returns the timezone calendar days are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// snapshot is the immutable interval set of one report.
type snapshot struct {
	intervals []models.Interval
	shifts    []models.Interval

	// busy is every interval of the window regardless of tag filters, so an
	// employee working elsewhere still counts as occupied.
	busy []models.Interval

	warnings []models.Warning
	skills   overlap.Skills
	from, to time.Time
}

func (s *Service) build(ds models.Dataset, req models.AnalysisRequest) (*snapshot, error) {
	intervals, warnings, err := interval.Build(ds.Shifts, ds.TimeOff, req, s.loc)
	if err != nil {
		var fe *customerrors.InconsistentFilterError
		if errors.As(err, &fe) {
			metrics.RejectedRequestsTotal.Inc()
		}
		s.log.WithError(err).Warn("Rejected analysis request")
		return nil, err
	}
	from, to, _ := interval.Window(req, s.loc)

	for _, w := range warnings {
		metrics.RecordsSkippedTotal.WithLabelValues(string(w.Code)).Inc()
		s.log.WithFields(logrus.Fields{
			"record_id": w.RecordID,
			"kind":      w.Kind,
			"code":      w.Code,
		}).Warn(w.Message)
	}

	shifts := interval.Shifts(intervals)
	if len(shifts) == 0 {
		warnings = append(warnings, emptyInput(from, to, s.loc))
	}
	metrics.IntervalsAnalyzed.Observe(float64(len(intervals)))

	var skills overlap.Skills
	busy := intervals
	if len(ds.Availability) > 0 {
		skills = overlap.SkillsFrom(ds.Availability)
		if req.Filter != (models.Filter{}) {
			busy, _, _ = interval.Build(ds.Shifts, ds.TimeOff, models.AnalysisRequest{StartDate: req.StartDate, EndDate: req.EndDate}, s.loc)
		}
	}

	return &snapshot{
		intervals: intervals,
		shifts:    shifts,
		busy:      busy,
		warnings:  warnings,
		skills:    skills,
		from:      from,
		to:        to,
	}, nil
}

func (s *Service) analyzerFor(snap *snapshot) *conflict.Analyzer {
	if snap.skills == nil {
		return s.analyzer
	}
	return s.analyzer.WithSkills(snap.skills)
}

// publish records the outcome of a top-level report.
func (s *Service) publish(conflicts []models.Conflict, opt models.CoverageOptimization) {
	for _, c := range conflicts {
		metrics.ConflictsDetected.WithLabelValues(string(c.Type), c.Severity.String()).Inc()
	}
	metrics.ResetCoverageGauges()
	for _, r := range opt.Coverage {
		metrics.CoveragePercent.WithLabelValues(r.Role).Set(r.CoveragePct)
		metrics.CoverageGapHeadcount.WithLabelValues(r.Role).Set(float64(max(r.Gap, 0)))
	}
	for _, sg := range opt.Suggestions {
		metrics.SuggestionsTotal.WithLabelValues(string(sg.Type)).Inc()
	}
}

func timer(report string) *prometheus.Timer {
	return prometheus.NewTimer(metrics.ReportDurationSeconds.WithLabelValues(report))
}

func emptyInput(from, to time.Time, loc *time.Location) models.Warning {
	return models.Warning{
		Code: models.WarnEmptyInput,
		Message: "no shifts between " + from.In(loc).Format(time.DateOnly) +
			" and " + interval.AddDays(to, -1, loc).Format(time.DateOnly),
	}
}
