package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"schedule-analytics/errors"
	"schedule-analytics/metrics"
	"schedule-analytics/models"
)

// timeLayouts are tried in order for every date/time field.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseShifts reads shift records from CSV.
//
// Each row is: id, start, end, location, team, department, status,
// requirements, assignments. Lines starting with '#' are headers/comments.
// A header whose second field is "Start<zone>" (e.g. StartUTC, StartET,
// StartEurope/London) sets the timezone for the rows below it; times carrying
// an explicit offset (RFC3339) ignore it. Defaults to loc, or UTC when nil.
//
// requirements is a ';' separated list of role*quantity[skill|skill]!, where
// the skills list and the trailing '!' (critical) are optional.
// assignments is a ';' separated list of employee or employee=role.
func ParseShifts(r io.Reader, loc *time.Location) ([]models.Shift, error) {
	var shifts []models.Shift
	err := readCSV(r, loc, "shift", func(line int, record []string, loc *time.Location) error {
		if len(record) != 9 {
			return &errors.ParseError{Line: line, Record: record, Err: errors.ErrInvalidFieldCount}
		}
		s := models.Shift{
			ID:           field(record, 0),
			LocationID:   field(record, 3),
			TeamID:       field(record, 4),
			DepartmentID: field(record, 5),
			Status:       models.ShiftStatus(strings.ToLower(field(record, 6))),
		}
		if s.ID == "" {
			return &errors.ParseError{Line: line, Record: record, Err: errors.ErrEmptyRecord}
		}

		var err error
		if s.Start, err = parseTime(field(record, 1), loc); err != nil {
			return &errors.ParseError{Line: line, Record: record, Err: fmt.Errorf("%w: %v", errors.ErrInvalidStartTime, err)}
		}
		if s.End, err = parseTime(field(record, 2), loc); err != nil {
			return &errors.ParseError{Line: line, Record: record, Err: fmt.Errorf("%w: %v", errors.ErrInvalidEndTime, err)}
		}
		if s.Requirements, err = parseRequirements(field(record, 7)); err != nil {
			return &errors.ParseError{Line: line, Record: record, Err: err}
		}
		if s.Assignments, err = parseAssignments(field(record, 8)); err != nil {
			return &errors.ParseError{Line: line, Record: record, Err: err}
		}

		shifts = append(shifts, s)
		return nil
	})
	return shifts, err
}

// ParseTimeOff reads time-off records from CSV.
//
// Each row is: id, employee, start, end, status, all_day, optionally followed
// by location, team, department. Header and timezone handling match ParseShifts.
func ParseTimeOff(r io.Reader, loc *time.Location) ([]models.TimeOff, error) {
	var requests []models.TimeOff
	err := readCSV(r, loc, "time_off", func(line int, record []string, loc *time.Location) error {
		if len(record) != 6 && len(record) != 9 {
			return &errors.ParseError{Line: line, Record: record, Err: errors.ErrInvalidFieldCount}
		}
		t := models.TimeOff{
			ID:         field(record, 0),
			EmployeeID: field(record, 1),
			Status:     models.TimeOffStatus(strings.ToLower(field(record, 4))),
		}
		if t.ID == "" || t.EmployeeID == "" {
			return &errors.ParseError{Line: line, Record: record, Err: errors.ErrEmptyRecord}
		}

		var err error
		if t.Start, err = parseTime(field(record, 2), loc); err != nil {
			return &errors.ParseError{Line: line, Record: record, Err: fmt.Errorf("%w: %v", errors.ErrInvalidStartTime, err)}
		}
		if t.End, err = parseTime(field(record, 3), loc); err != nil {
			return &errors.ParseError{Line: line, Record: record, Err: fmt.Errorf("%w: %v", errors.ErrInvalidEndTime, err)}
		}
		if v := field(record, 5); v != "" {
			if t.AllDay, err = strconv.ParseBool(v); err != nil {
				return &errors.ParseError{Line: line, Record: record, Err: fmt.Errorf("%w: %v", errors.ErrInvalidBool, err)}
			}
		}
		if len(record) == 9 {
			t.LocationID = field(record, 6)
			t.TeamID = field(record, 7)
			t.DepartmentID = field(record, 8)
		}

		requests = append(requests, t)
		return nil
	})
	return requests, err
}

// availabilityFile is the YAML document read by ParseAvailability.
type availabilityFile struct {
	Employees []models.EmployeeAvailability `yaml:"employees"`
}

// ParseAvailability reads employee availability from YAML.
func ParseAvailability(r io.Reader) ([]models.EmployeeAvailability, error) {
	var doc availabilityFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		metrics.ParserErrorsTotal.WithLabelValues("availability").Inc()
		return nil, fmt.Errorf("error decoding availability YAML: %w", err)
	}
	for i, e := range doc.Employees {
		if e.EmployeeID == "" {
			metrics.ParserErrorsTotal.WithLabelValues("availability").Inc()
			return nil, fmt.Errorf("availability entry %d: %w", i+1, errors.ErrEmptyRecord)
		}
	}
	metrics.ParserRecordsTotal.WithLabelValues("availability").Add(float64(len(doc.Employees)))
	return doc.Employees, nil
}

// readCSV drives the shared CSV loop: comments, timezone headers, metrics.
func readCSV(r io.Reader, loc *time.Location, kind string, row func(line int, record []string, loc *time.Location) error) error {
	if loc == nil {
		loc = time.UTC
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	lineNum := 0
	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues(kind).Inc()
			return fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}

		// Handle headers/comments
		if len(record) > 0 && strings.HasPrefix(record[0], "#") {
			if len(record) >= 2 {
				header := strings.TrimSpace(record[1])
				if strings.HasPrefix(header, "Start") {
					if newLoc, err := getTimezoneLocation(strings.TrimPrefix(header, "Start")); err == nil {
						loc = newLoc
					}
				}
			}
			continue
		}

		if err := row(lineNum, record, loc); err != nil {
			metrics.ParserErrorsTotal.WithLabelValues(kind).Inc()
			return err
		}
		metrics.ParserRecordsTotal.WithLabelValues(kind).Inc()
	}
	return nil
}

func field(record []string, i int) string {
	return strings.TrimSpace(record[i])
}

func parseTime(value string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseRequirements parses "Cashier*2[pos|cash]!;Manager*1".
func parseRequirements(value string) ([]models.Requirement, error) {
	var reqs []models.Requirement
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var req models.Requirement
		if strings.HasSuffix(part, "!") {
			req.IsCritical = true
			part = strings.TrimSuffix(part, "!")
		}
		if open := strings.Index(part, "["); open >= 0 {
			if !strings.HasSuffix(part, "]") {
				return nil, fmt.Errorf("%w: unterminated skills in %q", errors.ErrInvalidRequirement, part)
			}
			for _, skill := range strings.Split(part[open+1:len(part)-1], "|") {
				if skill = strings.TrimSpace(skill); skill != "" {
					req.Skills = append(req.Skills, skill)
				}
			}
			part = part[:open]
		}
		role, qty, found := strings.Cut(part, "*")
		req.Role = strings.TrimSpace(role)
		req.Quantity = 1
		if found {
			n, err := strconv.Atoi(strings.TrimSpace(qty))
			if err != nil {
				return nil, fmt.Errorf("%w: quantity %q: %v", errors.ErrInvalidRequirement, qty, err)
			}
			req.Quantity = n
		}
		if req.Role == "" {
			return nil, fmt.Errorf("%w: missing role in %q", errors.ErrInvalidRequirement, part)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// parseAssignments parses "E1;E2=Manager".
func parseAssignments(value string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		emp, role, _ := strings.Cut(part, "=")
		a := models.Assignment{EmployeeID: strings.TrimSpace(emp), Role: strings.TrimSpace(role)}
		if a.EmployeeID == "" {
			return nil, fmt.Errorf("%w: missing employee in %q", errors.ErrInvalidAssignment, part)
		}
		out = append(out, a)
	}
	return out, nil
}

func getTimezoneLocation(code string) (*time.Location, error) {
	code = strings.TrimSpace(code)

	// First, try common US timezone abbreviations
	switch code {
	case "PT":
		return time.LoadLocation("America/Los_Angeles")
	case "ET":
		return time.LoadLocation("America/New_York")
	case "CT":
		return time.LoadLocation("America/Chicago")
	case "MT":
		return time.LoadLocation("America/Denver")
	case "UTC":
		return time.UTC, nil
	case "":
		return nil, errors.ErrUnknownTimezone
	}
	loc, err := time.LoadLocation(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrUnknownTimezone, code, err)
	}
	return loc, nil
}
