package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"schedule-analytics/models"
)

var severityColors = map[models.Severity]*color.Color{
	models.SeverityCritical: color.New(color.FgRed, color.Bold),
	models.SeverityHigh:     color.New(color.FgRed),
	models.SeverityMedium:   color.New(color.FgYellow),
	models.SeverityLow:      color.New(color.FgCyan),
}

// severityLabel renders the severity in upper case, colored when the output is a terminal.
func severityLabel(s models.Severity) string {
	label := strings.ToUpper(s.String())
	if c, ok := severityColors[s]; ok {
		return c.Sprint(label)
	}
	return label
}

// FormatJSON returns the indented JSON representation of any report
func FormatJSON(v any) string {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ")
	return string(jsonBytes) + "\n"
}

// FormatYAML returns the YAML representation of any report, keyed like the JSON output
func FormatYAML(v any) string {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("# yaml error: %v\n", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(jsonBytes, &doc); err != nil {
		return fmt.Sprintf("# yaml error: %v\n", err)
	}
	blockStyle(&doc)
	yamlBytes, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Sprintf("# yaml error: %v\n", err)
	}
	return string(yamlBytes)
}

// blockStyle drops the flow and quoting styles inherited from the JSON source.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// FormatDailyText returns the text representation of a daily report
func FormatDailyText(r *models.DailyScheduleAnalytics) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s : shifts=%d ; hours=%.1f ; coverage=%.1f%% ; utilization=%.1f%%\n",
		r.Date.Format(time.DateOnly), r.TotalShifts, r.TotalHours, r.AverageCoverage, r.AverageUtilization))
	writeCoverage(&sb, r.Coverage)
	writeConflicts(&sb, r.Conflicts)
	writeWarnings(&sb, r.Warnings)
	return sb.String()
}

// FormatPeriodText returns the text representation of a multi-day report
func FormatPeriodText(title string, r *models.PeriodAnalytics) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s .. %s : shifts=%d ; hours=%.1f ; conflicts=%d ; utilization=%.1f%%\n",
		title, r.StartDate.Format(time.DateOnly), r.EndDate.Format(time.DateOnly),
		r.TotalShifts, r.TotalHours, len(r.Conflicts), r.AverageUtilization))

	for _, d := range r.Days {
		sb.WriteString(fmt.Sprintf("  %s : shifts=%d, hours=%.1f, conflicts=%d, coverage=%.1f%%, utilization=%.1f%%\n",
			d.Date.Format(time.DateOnly), d.TotalShifts, d.TotalHours, len(d.Conflicts),
			d.AverageCoverage, d.AverageUtilization))
	}

	writeCoverage(&sb, r.Coverage)
	writeConflicts(&sb, r.Conflicts)
	writeSuggestions(&sb, r.Optimization.Suggestions)
	writeWarnings(&sb, r.Warnings)
	return sb.String()
}

// FormatBreakdownText returns one line per location or team of a scoped report
func FormatBreakdownText(label string, rows []models.Breakdown) string {
	var sb strings.Builder
	if len(rows) == 0 {
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("By %s:\n", label))
	for _, b := range rows {
		sb.WriteString(fmt.Sprintf("  %s: shifts=%d, hours=%.1f, conflicts=%d, coverage=%.1f%%\n",
			b.Key, b.TotalShifts, b.TotalHours, b.Conflicts, b.AverageCoverage))
	}
	return sb.String()
}

// FormatConflictsText returns the text representation of a conflict analysis
func FormatConflictsText(a *models.ConflictAnalysis) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("conflicts=%d ; critical=%d, high=%d, medium=%d, low=%d\n",
		a.Total,
		a.BySeverity[models.SeverityCritical], a.BySeverity[models.SeverityHigh],
		a.BySeverity[models.SeverityMedium], a.BySeverity[models.SeverityLow]))
	writeConflicts(&sb, a.Conflicts)
	writeWarnings(&sb, a.Warnings)
	return sb.String()
}

// FormatOptimizationText returns the text representation of an optimization result
func FormatOptimizationText(o *models.CoverageOptimization) string {
	var sb strings.Builder
	writeCoverage(&sb, o.Coverage)
	if len(o.Gaps) > 0 {
		sb.WriteString("Gaps:\n")
		for _, g := range o.Gaps {
			sb.WriteString(fmt.Sprintf("  %s: gap=%d (required=%d, assigned=%d, days=%d) available=[%s]\n",
				g.Role, g.Gap, g.Required, g.Assigned, g.DaysWithGap, strings.Join(g.AvailableEmployeeIDs, ", ")))
		}
	}
	writeSuggestions(&sb, o.Suggestions)
	writeWarnings(&sb, o.Warnings)
	return sb.String()
}

// FormatConflictsCSV returns the CSV representation of a conflict list
func FormatConflictsCSV(conflicts []models.Conflict) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{"Type", "Severity", "Start", "Shifts", "Employees", "Time Off", "Description"})
	for _, c := range conflicts {
		writer.Write([]string{
			string(c.Type),
			c.Severity.String(),
			c.Start.Format(time.RFC3339),
			strings.Join(c.AffectedShiftIDs, "; "),
			strings.Join(c.AffectedEmployeeIDs, "; "),
			strings.Join(c.AffectedTimeOffIDs, "; "),
			c.Description,
		})
	}

	writer.Flush()
	return sb.String()
}

// FormatCoverageCSV returns the CSV representation of coverage records
func FormatCoverageCSV(records []models.CoverageRecord) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{"Role", "Required", "Assigned", "Coverage %", "Gap", "Employees"})
	for _, r := range records {
		writer.Write([]string{
			r.Role,
			fmt.Sprintf("%d", r.Required),
			fmt.Sprintf("%d", r.Assigned),
			fmt.Sprintf("%.1f", r.CoveragePct),
			fmt.Sprintf("%d", r.Gap),
			strings.Join(r.EmployeeIDs, "; "),
		})
	}

	writer.Flush()
	return sb.String()
}

// FormatPeriodCSV returns one CSV row per day of a period report
func FormatPeriodCSV(r *models.PeriodAnalytics) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{"Date", "Shifts", "Hours", "Conflicts", "Coverage %", "Utilization %"})
	for _, d := range r.Days {
		writer.Write([]string{
			d.Date.Format(time.DateOnly),
			fmt.Sprintf("%d", d.TotalShifts),
			fmt.Sprintf("%.1f", d.TotalHours),
			fmt.Sprintf("%d", len(d.Conflicts)),
			fmt.Sprintf("%.1f", d.AverageCoverage),
			fmt.Sprintf("%.1f", d.AverageUtilization),
		})
	}

	writer.Flush()
	return sb.String()
}

func writeCoverage(sb *strings.Builder, records []models.CoverageRecord) {
	if len(records) == 0 {
		sb.WriteString("Coverage: none\n")
		return
	}
	sb.WriteString("Coverage:\n")
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("  %s: %d/%d (%.1f%%) gap=%d\n",
			r.Role, r.Assigned, r.Required, r.CoveragePct, r.Gap))
	}
}

func writeConflicts(sb *strings.Builder, conflicts []models.Conflict) {
	if len(conflicts) == 0 {
		sb.WriteString("Conflicts: none\n")
		return
	}
	sb.WriteString("Conflicts:\n")
	for _, c := range conflicts {
		sb.WriteString(fmt.Sprintf("  [%s] %s: %s\n", severityLabel(c.Severity), c.Type, c.Description))
	}
}

func writeSuggestions(sb *strings.Builder, suggestions []models.OptimizationSuggestion) {
	if len(suggestions) == 0 {
		return
	}
	sb.WriteString("Suggestions:\n")
	for i, s := range suggestions {
		sb.WriteString(fmt.Sprintf("  %d. %s %s: impact=%.2f, cost=%.2f - %s\n",
			i+1, s.Type, s.Role, s.Impact, s.Cost, s.Description))
	}
}

func writeWarnings(sb *strings.Builder, warnings []models.Warning) {
	if len(warnings) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("  ⚠️  DATA WARNINGS: %d\n", len(warnings)))
	for _, w := range warnings {
		if w.RecordID != "" {
			sb.WriteString(fmt.Sprintf("    • %s [%s]: %s\n", w.Code, w.RecordID, w.Message))
		} else {
			sb.WriteString(fmt.Sprintf("    • %s: %s\n", w.Code, w.Message))
		}
	}
}
