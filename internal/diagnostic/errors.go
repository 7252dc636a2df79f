package diagnostic

import (
	"fmt"
)

// ParseError reports malformed mapping-table or sidecar text. It is fatal
// for the run.
type ParseError struct {
	// Source names the stream (file or module entry), may be empty.
	Source string
	// Line is 1-based.
	Line int
	// Text is the raw offending line.
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	where := fmt.Sprintf("line %d", e.Line)
	if e.Source != "" {
		where = e.Source + ":" + fmt.Sprint(e.Line)
	}

	if e.Err != nil {
		return fmt.Sprintf("parse error at %s: %v\n%s", where, e.Err, e.Text)
	}

	return fmt.Sprintf("parse error at %s\n%s", where, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError builds a ParseError for line (1-based) with its raw text.
func NewParseError(line int, text string, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Text: text, Err: fmt.Errorf(format, args...)}
}
