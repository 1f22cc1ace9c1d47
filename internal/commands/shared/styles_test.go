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
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		severity Severity
		symbol   string
	}{
		{SeverityOK, "✓"},
		{SeverityWarning, "⚠"},
		{SeverityError, "✗"},
	}
	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			got := Render(tt.severity, "server found")
			if !strings.Contains(got, tt.symbol) || !strings.HasSuffix(got, " server found") {
				t.Errorf("Render(%s) = %q", tt.severity, got)
			}
		})
	}
}

func TestTag(t *testing.T) {
	if got := Tag(SeverityError); !strings.Contains(got, "Error:") {
		t.Errorf("Tag(error) = %q", got)
	}
	if got := Tag(SeverityWarning); !strings.Contains(got, "Warning:") {
		t.Errorf("Tag(warning) = %q", got)
	}
}
