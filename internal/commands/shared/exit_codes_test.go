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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	zerrors "github.com/tombee/zenlaunch/pkg/errors"
)

// mockUserVisibleError is a test implementation of UserVisibleError
type mockUserVisibleError struct {
	message    string
	suggestion string
	visible    bool
}

func (e *mockUserVisibleError) Error() string {
	return e.message
}

func (e *mockUserVisibleError) IsUserVisible() bool {
	return e.visible
}

func (e *mockUserVisibleError) UserMessage() string {
	return e.message
}

func (e *mockUserVisibleError) Suggestion() string {
	return e.suggestion
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		want     []string
		notWant  []string
	}{
		{
			name:     "nil",
			err:      nil,
			wantCode: ExitSuccess,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantCode: ExitFailure,
			want:     []string{"Error:", "boom"},
			notWant:  []string{"Suggestion:"},
		},
		{
			name: "precondition with hint",
			err: NewFailure("cannot launch", &zerrors.PreconditionError{
				What:    "ANTHROPIC_API_KEY",
				Message: "primary credential is not set",
				Hint:    "export ANTHROPIC_API_KEY=<your key>",
			}),
			wantCode: ExitFailure,
			want:     []string{"cannot launch", "ANTHROPIC_API_KEY", "Suggestion: export ANTHROPIC_API_KEY=<your key>"},
		},
		{
			name: "wrapped visible error",
			err: fmt.Errorf("outer: %w", &mockUserVisibleError{
				message: "inner", suggestion: "try this", visible: true,
			}),
			wantCode: ExitFailure,
			want:     []string{"outer: inner", "Suggestion: try this"},
		},
		{
			name: "invisible error has no suggestion",
			err: &mockUserVisibleError{
				message: "hidden", suggestion: "nope", visible: false,
			},
			wantCode: ExitFailure,
			want:     []string{"hidden"},
			notWant:  []string{"Suggestion:"},
		},
		{
			name:     "silent exit",
			err:      NewSilentExit(42),
			wantCode: 42,
		},
		{
			name:     "signal exit",
			err:      NewSilentExit(130),
			wantCode: 130,
		},
		{
			name:     "usage error",
			err:      NewUsageError("accepts at most 2 args"),
			wantCode: ExitUsage,
			want:     []string{"accepts at most 2 args"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			code := ReportError(&buf, tt.err)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			out := buf.String()
			if len(tt.want) == 0 && len(tt.notWant) == 0 && out != "" {
				t.Errorf("expected no output, got %q", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output %q should not contain %q", out, w)
				}
			}
		})
	}
}

func TestReportJSONError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantCode       int
		wantErrCode    string
		wantSuggestion string
	}{
		{
			name:        "plain error",
			err:         errors.New("boom"),
			wantCode:    ExitFailure,
			wantErrCode: "failure",
		},
		{
			name:           "precondition",
			err:            NewFailure("", &zerrors.PreconditionError{What: "claude", Message: "not found", Hint: "install it"}),
			wantCode:       ExitFailure,
			wantErrCode:    "precondition",
			wantSuggestion: "install it",
		},
		{
			name:           "config",
			err:            NewFailure("", &zerrors.ConfigError{Key: "aux.port", Reason: "out of range"}),
			wantCode:       ExitFailure,
			wantErrCode:    "config",
			wantSuggestion: "Fix 'aux.port' in the config file or unset the matching environment variable",
		},
		{
			name:        "usage",
			err:         NewUsageError("accepts at most 2 args"),
			wantCode:    ExitUsage,
			wantErrCode: "usage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if code := ReportJSONError(&buf, tt.err); code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}

			var resp struct {
				JSONResponse
				Errors []JSONError `json:"errors"`
			}
			if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
			}
			if resp.Success || len(resp.Errors) != 1 {
				t.Fatalf("unexpected envelope %+v", resp)
			}
			if got := resp.Errors[0]; got.Code != tt.wantErrCode || got.Suggestion != tt.wantSuggestion {
				t.Errorf("error = %+v, want code %q suggestion %q", got, tt.wantErrCode, tt.wantSuggestion)
			}
		})
	}

	t.Run("silent exit writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		if code := ReportJSONError(&buf, NewSilentExit(3)); code != 3 {
			t.Errorf("code = %d, want 3", code)
		}
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestExitError_Unwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	exitErr := NewFailure("launch failed", innerErr)

	if unwrapped := errors.Unwrap(exitErr); unwrapped != innerErr {
		t.Errorf("expected unwrapped error to be innerErr, got %v", unwrapped)
	}
}

func TestExitError_WithUserVisibleCause(t *testing.T) {
	cause := &zerrors.PreconditionError{What: "claude", Message: "not found", Hint: "install it"}
	exitErr := NewFailure("", cause)

	if exitErr.Error() != "claude: not found" {
		t.Errorf("Error() = %q", exitErr.Error())
	}

	var userErr zerrors.UserVisibleError
	if !errors.As(exitErr, &userErr) {
		t.Fatal("expected to unwrap UserVisibleError from ExitError")
	}
	if userErr.Suggestion() != "install it" {
		t.Errorf("expected suggestion from cause error, got %q", userErr.Suggestion())
	}
}
