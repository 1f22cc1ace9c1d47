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

func TestIsCIEnvironment(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{name: "none", env: map[string]string{}, want: false},
		{name: "CI=true", env: map[string]string{"CI": "true"}, want: true},
		{name: "CI=1", env: map[string]string{"CI": "1"}, want: true},
		{name: "CI=false", env: map[string]string{"CI": "false"}, want: false},
		{name: "GITHUB_ACTIONS", env: map[string]string{"GITHUB_ACTIONS": "true"}, want: true},
		{name: "JENKINS_HOME path", env: map[string]string{"JENKINS_HOME": "/var/jenkins"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "JENKINS_HOME"} {
				t.Setenv(v, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := isCIEnvironment(); got != tt.want {
				t.Errorf("isCIEnvironment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNonInteractive_EnvOverride(t *testing.T) {
	t.Setenv("ZENLAUNCH_NON_INTERACTIVE", "true")
	if !IsNonInteractive() {
		t.Error("expected non-interactive when ZENLAUNCH_NON_INTERACTIVE=true")
	}
}

func TestReadSecretLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "newline terminated", input: "sk-123\n", want: "sk-123"},
		{name: "crlf", input: "sk-123\r\n", want: "sk-123"},
		{name: "no newline", input: "sk-123", want: "sk-123"},
		{name: "only first line", input: "a\nb\n", want: "a"},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "   \n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSecretLine(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
