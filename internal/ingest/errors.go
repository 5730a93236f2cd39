package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionBusy is returned when a file is loaded or cancelled while the
	// session is committing.
	ErrSessionBusy = errors.New("upload in progress: wait for the current commit to finish")

	// ErrNoPreview is returned when there is nothing validated to commit.
	ErrNoPreview = errors.New("no validated preview to commit")

	// ErrSuperseded is returned by a load whose result was discarded because
	// another file was selected or the upload was cancelled meanwhile.
	ErrSuperseded = errors.New("upload replaced by a newer selection")
)

// EmptyFileError reports a file without a header or without data rows.
type EmptyFileError struct {
	Name       string
	HeaderOnly bool
}

func (e *EmptyFileError) Error() string {
	if e.HeaderOnly {
		return fmt.Sprintf("%s: file has a header but no data rows", e.displayName())
	}
	return fmt.Sprintf("%s: file is empty", e.displayName())
}

func (e *EmptyFileError) displayName() string {
	if e.Name == "" {
		return "upload"
	}
	return e.Name
}

// MissingHeadersError reports required columns absent from the header row.
type MissingHeadersError struct {
	Missing  []string
	Expected []string
}

func (e *MissingHeadersError) Error() string {
	return "missing required headers: " + strings.Join(e.Missing, ", ")
}

// DuplicateHeaderError reports a required column named more than once.
type DuplicateHeaderError struct {
	Name string
}

func (e *DuplicateHeaderError) Error() string {
	return fmt.Sprintf("duplicate header %q", e.Name)
}

// RowParseError reports a record that could not be mapped onto the header.
// Row is the display row number; Line is the physical line in the file.
type RowParseError struct {
	Row    int
	Line   int
	Reason string
}

func (e *RowParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("Line %d: %s", e.Line, e.Reason)
}

// RowValidationError reports the first field of a row that broke its rule.
type RowValidationError struct {
	Row     int
	Field   string
	Value   string
	Message string
}

func (e *RowValidationError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

// PersistenceError wraps a record store failure for one row.
type PersistenceError struct {
	Row int
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("Row %d: save failed: %v", e.Row, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AuthenticationRequiredError is returned by commit when no owner identity
// was supplied.
type AuthenticationRequiredError struct{}

func (*AuthenticationRequiredError) Error() string {
	return "authentication required: sign in before importing properties"
}

// TransitionError reports an operation attempted from the wrong state.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid upload state transition %s -> %s", e.From, e.To)
}

// IsFileLevel reports whether err aborts the upload attempt as a whole: a
// header, parse or validation failure that resets the session.
func IsFileLevel(err error) bool {
	var (
		ee *EmptyFileError
		me *MissingHeadersError
		de *DuplicateHeaderError
		pe *RowParseError
		ve *RowValidationError
	)
	return errors.As(err, &ee) || errors.As(err, &me) || errors.As(err, &de) ||
		errors.As(err, &pe) || errors.As(err, &ve)
}

// Describe renders err as the multi-line message shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var me *MissingHeadersError
	if errors.As(err, &me) {
		var b strings.Builder
		b.WriteString("CSV is missing required headers: ")
		b.WriteString(strings.Join(me.Missing, ", "))
		b.WriteString("\n\nExpected headers:\n")
		b.WriteString(strings.Join(me.Expected, ","))
		return b.String()
	}
	var ve *RowValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("Validation failed.\n%s\nFix the row and upload the file again.", ve.Error())
	}
	var pe *RowParseError
	if errors.As(err, &pe) {
		return fmt.Sprintf("Could not read the file.\n%s", pe.Error())
	}
	return err.Error()
}
