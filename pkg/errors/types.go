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

package errors

import (
	"fmt"
)

// PreconditionError reports a missing requirement detected before any file is
// written or any process is spawned: an unset credential, a binary that is
// not on PATH, an unreadable config file.
type PreconditionError struct {
	// What names the missing requirement (e.g., "ANTHROPIC_API_KEY", "claude")
	What string

	// Message is the human-readable error description
	Message string

	// Hint is the remediation shown to the user (what to install or export)
	Hint string
}

func (e *PreconditionError) Error() string {
	if e.What != "" {
		return fmt.Sprintf("%s: %s", e.What, e.Message)
	}
	return e.Message
}

// IsUserVisible implements UserVisibleError.
func (e *PreconditionError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *PreconditionError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *PreconditionError) Suggestion() string { return e.Hint }

// ConfigError represents a configuration problem.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "aux.port")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

func (e *ConfigError) Error() string {
	msg := "config error"
	if e.Key != "" {
		msg = fmt.Sprintf("config error at %s", e.Key)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// IsUserVisible implements UserVisibleError.
func (e *ConfigError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *ConfigError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *ConfigError) Suggestion() string {
	if e.Key == "" {
		return "Check the config file with 'zenlaunch doctor --show-config'"
	}
	return fmt.Sprintf("Fix '%s' in the config file or unset the matching environment variable", e.Key)
}

// UsageError reports malformed command-line arguments.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}
