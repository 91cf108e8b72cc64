package models

import (
	"fmt"
	"strings"
	"time"
)

// ConflictType classifies a scheduling conflict.
type ConflictType string

const (
	ConflictDoubleBooking  ConflictType = "double_booking"
	ConflictUnderstaffed   ConflictType = "understaffed"
	ConflictOvertime       ConflictType = "overtime"
	ConflictTimeOffOverlap ConflictType = "time_off_overlap"
	ConflictSkillMismatch  ConflictType = "skill_mismatch"
)

// ConflictTypes lists every conflict type in a stable order.
var ConflictTypes = []ConflictType{
	ConflictDoubleBooking,
	ConflictTimeOffOverlap,
	ConflictOvertime,
	ConflictSkillMismatch,
	ConflictUnderstaffed,
}

// Severity orders conflicts; a higher value is more severe.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity converts a name such as "high" into a Severity.
func ParseSeverity(name string) (Severity, error) {
	for s, n := range severityNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Conflict is a detected scheduling inconsistency. It is computed fresh for
// every analysis call and never mutated once returned.
type Conflict struct {
	Type                ConflictType `json:"type"`
	Severity            Severity     `json:"severity"`
	Description         string       `json:"description"`
	AffectedShiftIDs    []string     `json:"affected_shift_ids"`
	AffectedEmployeeIDs []string     `json:"affected_employee_ids"`
	AffectedTimeOffIDs  []string     `json:"affected_time_off_ids,omitempty"`
	Start               time.Time    `json:"start"`
	Resolution          string       `json:"resolution,omitempty"`
	IsResolved          bool         `json:"is_resolved"`
}

// CoverageRecord is required versus assigned headcount for one role.
// Gap is negative when the role is overstaffed.
type CoverageRecord struct {
	Role        string   `json:"role"`
	Required    int      `json:"required"`
	Assigned    int      `json:"assigned"`
	CoveragePct float64  `json:"coverage_pct"`
	Gap         int      `json:"gap"`
	EmployeeIDs []string `json:"employee_ids"`
}

// SuggestionType is the category of a remediation.
type SuggestionType string

const (
	SuggestReassign SuggestionType = "reassign"
	SuggestHire     SuggestionType = "hire"
	SuggestTrain    SuggestionType = "train"
	SuggestOvertime SuggestionType = "overtime"
)

// OptimizationSuggestion is a ranked remediation for one coverage gap.
// Impact is the estimated fraction of coverage recovered, Cost a relative unit cost.
type OptimizationSuggestion struct {
	Type        SuggestionType `json:"type"`
	Role        string         `json:"role"`
	Description string         `json:"description"`
	Impact      float64        `json:"impact"`
	Cost        float64        `json:"cost"`
	EmployeeIDs []string       `json:"employee_ids,omitempty"`
}

// CoverageGap is an understaffed role together with who could close it.
type CoverageGap struct {
	Role                 string   `json:"role"`
	Required             int      `json:"required"`
	Assigned             int      `json:"assigned"`
	Gap                  int      `json:"gap"`
	AvailableEmployeeIDs []string `json:"available_employee_ids"`
	TrainableEmployeeIDs []string `json:"trainable_employee_ids,omitempty"`
	DaysWithGap          int      `json:"days_with_gap"`
}

// CoverageOptimization is the optimizer output.
type CoverageOptimization struct {
	Coverage    []CoverageRecord         `json:"coverage"`
	Gaps        []CoverageGap            `json:"gaps"`
	Suggestions []OptimizationSuggestion `json:"suggestions"`
	Warnings    []Warning                `json:"warnings,omitempty"`
}

// ConflictAnalysis is the conflict list with per-type and per-severity counts.
type ConflictAnalysis struct {
	Conflicts  []Conflict           `json:"conflicts"`
	Total      int                  `json:"total"`
	ByType     map[ConflictType]int `json:"by_type"`
	BySeverity map[Severity]int     `json:"by_severity"`
	Warnings   []Warning            `json:"warnings,omitempty"`
}

// WarningCode identifies a data-quality condition.
type WarningCode string

const (
	WarnInvalidInterval    WarningCode = "invalid_interval"
	WarnInvalidRequirement WarningCode = "invalid_requirement"
	WarnUnknownStatus      WarningCode = "unknown_status"
	WarnEmptyInput         WarningCode = "empty_input"
	WarnDayFailed          WarningCode = "day_failed"
)

// Warning annotates a report with a record that was skipped or a notable condition.
type Warning struct {
	Code     WarningCode  `json:"code"`
	RecordID string       `json:"record_id,omitempty"`
	Kind     IntervalKind `json:"kind,omitempty"`
	Message  string       `json:"message"`
}
