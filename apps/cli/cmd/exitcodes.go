package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/reqline/packages/core/apperr"
)

// Exit codes for reqline CLI
const (
	// ExitSuccess indicates every reqline executed
	ExitSuccess = 0

	// ExitFailure indicates one or more reqlines failed
	ExitFailure = 1

	// ExitParseError indicates a malformed reqline
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func configError(err error) error {
	return &exitError{code: ExitConfigError, err: err}
}

func failure(err error) error {
	return &exitError{code: ExitFailure, err: err}
}

// exitCodeFor maps an error returned by a command to a process exit code
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	if kind, ok := apperr.KindOf(err); ok {
		switch kind {
		case apperr.KindMalformedInput, apperr.KindOuterValidation:
			return ExitParseError
		case apperr.KindExecutionFailure:
			return ExitNetworkError
		}
	}

	return ExitUsageError
}
