package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"schedule-analytics/analytics"
	"schedule-analytics/config"
	"schedule-analytics/formatter"
	"schedule-analytics/metrics"
	"schedule-analytics/models"
	"schedule-analytics/parser"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath   string
	shiftsPath   string
	timeOffPath  string
	availability string
	format       string
	filter       models.Filter
	metricsAddr  string
	pushURL      string
	wait         bool
	noColor      bool

	cfg     *config.Config
	log     *logrus.Entry
	service *analytics.Service
	dataset models.Dataset
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "schedule-analytics",
		Short: "Detect scheduling conflicts and analyze staffing coverage",
		Long: `Detect scheduling conflicts and analyze staffing coverage over shift,
time-off and availability exports.

Examples:
  # Daily report for one location
  schedule-analytics daily --shifts shifts.csv --date 2024-01-11 --location store-1

  # Monthly report as JSON with availability for utilization and suggestions
  schedule-analytics monthly --shifts shifts.csv --time-off leave.csv --availability staff.yaml --month 2024-01 -o json`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.finish,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to YAML config file")
	flags.StringVar(&a.shiftsPath, "shifts", "", "Shift CSV file (required)")
	flags.StringVar(&a.timeOffPath, "time-off", "", "Time-off CSV file")
	flags.StringVar(&a.availability, "availability", "", "Employee availability YAML file")
	flags.StringVarP(&a.format, "output", "o", "text", "Output format: text|json|yaml|csv")
	flags.StringVar(&a.filter.LocationID, "location", "", "Only analyze this location")
	flags.StringVar(&a.filter.TeamID, "team", "", "Only analyze this team")
	flags.StringVar(&a.filter.DepartmentID, "department", "", "Only analyze this department")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	flags.StringVar(&a.pushURL, "push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	flags.BoolVar(&a.wait, "wait", false, "Keep process running after completion to allow for metric scraping")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	_ = root.MarkPersistentFlagRequired("shifts")

	root.AddCommand(
		newDailyCmd(a),
		newWeeklyCmd(a),
		newMonthlyCmd(a),
		newRangeCmd(a),
		newTeamCmd(a),
		newLocationCmd(a),
		newConflictsCmd(a),
		newOptimizeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	validFormats := map[string]bool{"text": true, "json": true, "yaml": true, "csv": true}
	if !validFormats[a.format] {
		return fmt.Errorf("format must be one of: text, json, yaml, csv (got: %s)", a.format)
	}
	if a.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.metricsAddr == "" {
		a.metricsAddr = cfg.Metrics.Addr
	}
	if a.pushURL == "" {
		a.pushURL = cfg.Metrics.PushURL
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	a.log = logger.WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"command": cmd.Name(),
	})

	if a.metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			a.log.Infof("Metrics server listening on %s/metrics", a.metricsAddr)
			if err := http.ListenAndServe(a.metricsAddr, mux); err != nil {
				a.log.WithError(err).Error("Metrics server error")
			}
		}()
	}

	a.service, err = analytics.New(cfg, a.log)
	if err != nil {
		return err
	}
	return a.load()
}

func (a *app) load() error {
	loc := a.service.Location()

	file, err := os.Open(a.shiftsPath)
	if err != nil {
		return fmt.Errorf("error opening shifts file: %w", err)
	}
	defer file.Close()
	if a.dataset.Shifts, err = parser.ParseShifts(file, loc); err != nil {
		return fmt.Errorf("error parsing shifts file: %w", err)
	}

	if a.timeOffPath != "" {
		f, err := os.Open(a.timeOffPath)
		if err != nil {
			return fmt.Errorf("error opening time-off file: %w", err)
		}
		defer f.Close()
		if a.dataset.TimeOff, err = parser.ParseTimeOff(f, loc); err != nil {
			return fmt.Errorf("error parsing time-off file: %w", err)
		}
	}

	if a.availability != "" {
		f, err := os.Open(a.availability)
		if err != nil {
			return fmt.Errorf("error opening availability file: %w", err)
		}
		defer f.Close()
		if a.dataset.Availability, err = parser.ParseAvailability(f); err != nil {
			return fmt.Errorf("error parsing availability file: %w", err)
		}
	}

	a.log.WithFields(logrus.Fields{
		"shifts":       len(a.dataset.Shifts),
		"time_off":     len(a.dataset.TimeOff),
		"availability": len(a.dataset.Availability),
	}).Debug("Input loaded")
	return nil
}

// finish pushes metrics or keeps the process alive for scraping.
func (a *app) finish(_ *cobra.Command, _ []string) {
	if a.pushURL != "" {
		if err := push.New(a.pushURL, a.cfg.Metrics.JobName).Gatherer(metrics.Registry).Push(); err != nil {
			a.log.WithError(err).Error("Error pushing to Pushgateway")
		} else {
			a.log.Info("Metrics successfully pushed to Pushgateway")
		}
	}

	if a.wait && a.metricsAddr != "" {
		a.log.Info("Process kept alive for metric scraping. Press Ctrl+C to exit.")
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
	} else if a.metricsAddr != "" && a.pushURL == "" {
		// Small delay to allow final scrape if not waiting explicitly
		time.Sleep(100 * time.Millisecond)
	}
}

// render writes v in the selected format. text and csv fall back to JSON for
// values without a dedicated renderer.
func (a *app) render(cmd *cobra.Command, text, csv func() string, v any) {
	out := cmd.OutOrStdout()
	switch a.format {
	case "json":
		fmt.Fprint(out, formatter.FormatJSON(v))
	case "yaml":
		fmt.Fprint(out, formatter.FormatYAML(v))
	case "csv":
		if csv != nil {
			fmt.Fprint(out, csv())
			return
		}
		fmt.Fprint(out, formatter.FormatJSON(v))
	default:
		fmt.Fprint(out, text())
	}
}

// parseDate accepts YYYY-MM-DD in the analytics timezone.
func (a *app) parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("--%s is required", name)
	}
	t, err := time.ParseInLocation(time.DateOnly, value, a.service.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return t, nil
}

func (a *app) parseRange(start, end string) (time.Time, time.Time, error) {
	from, err := a.parseDate("start", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := a.parseDate("end", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
