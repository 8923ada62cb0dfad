package transform

import (
	"errors"
	"fmt"

	"github.com/gnolang/keyfold/internal/syntax"
)

// UnknownUsageError is returned when a call's first argument cannot be
// turned into a key property.
type UnknownUsageError struct {
	Filename string
	Line     int
	Column   int
}

func newUnknownUsageError(call *syntax.Call, filename string) *UnknownUsageError {
	return &UnknownUsageError{
		Filename: filename,
		Line:     call.CalleeStart.Line,
		Column:   call.CalleeStart.Column,
	}
}

func (e *UnknownUsageError) Error() string {
	return fmt.Sprintf(
		"The usage in file %q at line %d:%d could not be transformed into the new syntax. Please do this manually.",
		e.Filename, e.Line, e.Column,
	)
}

var (
	errBrokenArgument = errors.New("argument contains a syntax error")
	errSpreadOptions  = errors.New("options argument is a spread element")
)

// faultMessage is reported for any failure other than an unknown usage.
// The cause stays in the debug log.
const faultMessage = "An unknown error occurred while processing the %q file. " +
	"Please review this file, because the codemod couldn't be applied."
