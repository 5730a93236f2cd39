package main

import (
	"errors"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/datasource/file"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitUsage      = 3
	exitStorage    = 4
	exitAuth       = 5
)

// cliError carries the exit code for err.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func usageError(err error) error   { return &cliError{code: exitUsage, err: err} }
func storageError(err error) error { return &cliError{code: exitStorage, err: err} }

// exitCode classifies err. Explicit cliError codes win.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	var (
		unsupported *file.UnsupportedFileError
		tooLarge    *file.FileTooLargeError
		auth        *ingest.AuthenticationRequiredError
		persist     *ingest.PersistenceError
	)
	switch {
	case ingest.IsFileLevel(err), errors.As(err, &unsupported), errors.As(err, &tooLarge):
		return exitValidation
	case errors.As(err, &auth):
		return exitAuth
	case errors.As(err, &persist):
		return exitStorage
	default:
		return exitFailure
	}
}
