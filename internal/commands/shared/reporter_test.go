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
	"strings"
	"testing"
)

func TestReporter(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		want  []string
		skip  []string
	}{
		{
			name: "normal",
			want: []string{"Warning: no alternates", "launching"},
		},
		{
			name:  "quiet drops status only",
			quiet: true,
			want:  []string{"Warning: no alternates"},
			skip:  []string{"launching"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewReporter(&buf, tt.quiet)
			r.Warn("no %s", "alternates")
			r.Status("launching")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			for _, s := range tt.skip {
				if strings.Contains(out, s) {
					t.Errorf("output %q should not contain %q", out, s)
				}
			}
		})
	}
}

func TestReporter_OneLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)
	r.Warn("first")
	r.Warn("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "Warning:") {
			t.Errorf("line %q does not start with Warning:", line)
		}
	}
}
