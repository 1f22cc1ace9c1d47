// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	zerrors "github.com/tombee/zenlaunch/pkg/errors"
)

// Exit codes. A launch otherwise exits with the agent's own code, or
// 128+n when the agent was killed by signal n.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 1
)

// ExitError is an error that carries an exit code. An empty Message with no
// Cause exits silently.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewFailure creates an error for precondition and internal failures.
func NewFailure(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitFailure,
		Message: msg,
		Cause:   cause,
	}
}

// NewUsageError creates an error for malformed arguments.
func NewUsageError(msg string) *ExitError {
	return &ExitError{
		Code:  ExitUsage,
		Cause: &zerrors.UsageError{Message: msg},
	}
}

// NewSilentExit exits with code and prints nothing. Used to mirror the
// agent's exit code.
func NewSilentExit(code int) *ExitError {
	return &ExitError{Code: code}
}

// HandleExitError prints err and exits with the appropriate code. With
// --json the error is written to stdout as an error envelope.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	if GetJSON() {
		os.Exit(ReportJSONError(os.Stdout, err))
	}
	os.Exit(ReportError(os.Stderr, err))
}

// ReportError writes err and any suggestion to w and returns the exit code
// HandleExitError would use.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(w, Tag(SeverityError), msg)
			printUserVisibleSuggestion(w, err)
		}
		return exitErr.Code
	}

	fmt.Fprintln(w, Tag(SeverityError), err.Error())
	printUserVisibleSuggestion(w, err)
	return ExitFailure
}

// ReportJSONError writes err to w as a JSON error envelope and returns the
// exit code. Silent exits write nothing.
func ReportJSONError(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}

	code := ExitFailure
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Error() == "" {
			return code
		}
	}

	jsonErr := JSONError{Code: errorCode(err), Message: err.Error()}
	if userErr, ok := zerrors.FindUserVisible(err); ok {
		jsonErr.Suggestion = userErr.Suggestion()
	}
	_ = EmitJSONError(w, "zenlaunch", []JSONError{jsonErr})
	return code
}

// errorCode classifies err for JSON output.
func errorCode(err error) string {
	var (
		usageErr *zerrors.UsageError
		preErr   *zerrors.PreconditionError
		cfgErr   *zerrors.ConfigError
	)
	switch {
	case errors.As(err, &usageErr):
		return "usage"
	case errors.As(err, &cfgErr):
		return "config"
	case errors.As(err, &preErr):
		return "precondition"
	default:
		return "failure"
	}
}

// printUserVisibleSuggestion prints the suggestion of the first
// UserVisibleError in the chain, if any.
func printUserVisibleSuggestion(w io.Writer, err error) {
	userErr, ok := zerrors.FindUserVisible(err)
	if !ok {
		return
	}
	if suggestion := userErr.Suggestion(); suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}
}
