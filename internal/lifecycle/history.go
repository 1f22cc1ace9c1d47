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

package lifecycle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Event is one line of the history log.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"` // "launch", "aux_start", "aux_start_failure", "aux_stop"
	RunID     string    `json:"run_id,omitempty"`
	PID       int       `json:"pid,omitempty"`
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`

	// Launch fields
	ExitCode     *int     `json:"exit_code,omitempty"`
	DurationMS   int64    `json:"duration_ms,omitempty"`
	WorkingDir   string   `json:"working_dir,omitempty"`
	PromptLength int      `json:"prompt_length,omitempty"`
	Degraded     []string `json:"degraded,omitempty"`
}

// LaunchRecord summarizes one supervised child run.
type LaunchRecord struct {
	RunID        string
	WorkingDir   string
	PromptLength int
	ExitCode     int
	Duration     time.Duration
	Degraded     []string
}

// HistoryLogger appends events to a JSON-lines file.
type HistoryLogger struct {
	logPath string
	now     func() time.Time
}

// NewHistoryLogger creates a new history logger.
func NewHistoryLogger(logPath string) *HistoryLogger {
	return &HistoryLogger{
		logPath: logPath,
		now:     time.Now,
	}
}

// LogLaunch records a completed child run. The prompt itself is never
// stored, only its length.
func (l *HistoryLogger) LogLaunch(r LaunchRecord) error {
	exitCode := r.ExitCode
	return l.writeEvent(Event{
		Event:        "launch",
		RunID:        r.RunID,
		Success:      r.ExitCode == 0,
		ExitCode:     &exitCode,
		DurationMS:   r.Duration.Milliseconds(),
		WorkingDir:   r.WorkingDir,
		PromptLength: r.PromptLength,
		Degraded:     r.Degraded,
	})
}

// LogAuxStart records a detached auxiliary service start.
func (l *HistoryLogger) LogAuxStart(pid int, addr string) error {
	return l.writeEvent(Event{
		Event:   "aux_start",
		PID:     pid,
		Success: true,
		Message: fmt.Sprintf("Auxiliary service started on %s", addr),
	})
}

// LogAuxStartFailure records a failed or unconfirmed auxiliary service start.
func (l *HistoryLogger) LogAuxStartFailure(pid int, err error) error {
	return l.writeEvent(Event{
		Event:   "aux_start_failure",
		PID:     pid,
		Success: false,
		Message: "Auxiliary service did not become reachable",
		Error:   err.Error(),
	})
}

// LogAuxStop records an auxiliary service stop.
func (l *HistoryLogger) LogAuxStop(pid int, duration time.Duration, err error) error {
	event := Event{
		Event:      "aux_stop",
		PID:        pid,
		Success:    err == nil,
		DurationMS: duration.Milliseconds(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	return l.writeEvent(event)
}

// writeEvent appends an event to the log file.
func (l *HistoryLogger) writeEvent(event Event) error {
	event.Timestamp = l.now()

	logDir := filepath.Dir(l.logPath)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}
