package types

import (
	"bytes"
	"fmt"
	"go/token"
	"strings"
)

// Severity is how loudly an issue should be reported.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "INFO":
		*s = SeverityInfo
	case "WARNING":
		*s = SeverityWarning
	case "ERROR":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Issue represents a call site the migration could not handle.
type Issue struct {
	Rule     string
	Category string
	Filename string
	Message  string
	Note     string
	Severity Severity
	Start    token.Position
	End      token.Position
}

// Result is the outcome of migrating one file.
type Result struct {
	Filename  string
	Original  []byte `json:"-"`
	Output    []byte `json:"-"`
	Rewritten int
	Skipped   int
	Failed    int
	Issues    []Issue
}

// Changed reports whether the migration rewrote anything.
func (r *Result) Changed() bool {
	return !bytes.Equal(r.Original, r.Output)
}
