package errors

import (
	"fmt"
	"time"

	"schedule-analytics/models"
)

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidIntervalError reports a record whose end is not after its start.
// It never aborts an analysis; the record is dropped and reported as a warning.
type InvalidIntervalError struct {
	RecordID string
	Kind     models.IntervalKind
	Start    time.Time
	End      time.Time
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid %s interval %q: end %s is not after start %s",
		e.Kind, e.RecordID, e.End.UTC().Format(time.RFC3339), e.Start.UTC().Format(time.RFC3339))
}

func (e *InvalidIntervalError) Unwrap() error {
	return ErrEndNotAfterStart
}

// Warning converts the error into a report annotation.
func (e *InvalidIntervalError) Warning() models.Warning {
	return models.Warning{
		Code:     models.WarnInvalidInterval,
		RecordID: e.RecordID,
		Kind:     e.Kind,
		Message:  e.Error(),
	}
}

// InconsistentFilterError rejects an AnalysisRequest before any computation starts.
type InconsistentFilterError struct {
	Field  string
	Reason string
}

func (e *InconsistentFilterError) Error() string {
	return fmt.Sprintf("inconsistent filter: %s %s", e.Field, e.Reason)
}

func (e *InconsistentFilterError) Unwrap() error {
	return ErrInconsistentFilter
}

// Define specific error types for better error handling
var (
	ErrEndNotAfterStart   = fmt.Errorf("end is not after start")
	ErrInconsistentFilter = fmt.Errorf("inconsistent filter")
	ErrInvalidFieldCount  = fmt.Errorf("invalid field count")
	ErrInvalidStartTime   = fmt.Errorf("invalid start time")
	ErrInvalidEndTime     = fmt.Errorf("invalid end time")
	ErrInvalidStatus      = fmt.Errorf("invalid status")
	ErrInvalidRequirement = fmt.Errorf("invalid requirement")
	ErrInvalidAssignment  = fmt.Errorf("invalid assignment")
	ErrInvalidBool        = fmt.Errorf("invalid boolean")
	ErrEmptyRecord        = fmt.Errorf("empty record")
	ErrUnknownTimezone    = fmt.Errorf("unknown timezone")
)
