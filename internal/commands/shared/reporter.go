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
	"fmt"
	"io"
	"os"
	"sync"
)

// Reporter writes user messages to stderr. Warnings are always shown;
// status lines are dropped in quiet mode. Errors go through HandleExitError.
type Reporter struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer, quiet bool) *Reporter {
	return &Reporter{w: w, quiet: quiet}
}

// StderrReporter creates a reporter for the process's stderr honoring --quiet.
func StderrReporter() *Reporter {
	return NewReporter(os.Stderr, GetQuiet())
}

// Warn prints a "Warning:" line.
func (r *Reporter) Warn(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, Tag(SeverityWarning), fmt.Sprintf(format, args...))
}

// Status prints an untagged progress line unless quiet.
func (r *Reporter) Status(format string, args ...any) {
	if r.quiet {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, fmt.Sprintf(format, args...))
}
