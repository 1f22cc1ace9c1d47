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

package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tombee/zenlaunch/internal/commands/shared"
)

func TestHelpCommandJSON(t *testing.T) {
	t.Cleanup(shared.ResetFlagsForTest)

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, resp HelpResponse)
	}{
		{
			name: "lists root and all commands",
			args: []string{"--json"},
			check: func(t *testing.T, resp HelpResponse) {
				if resp.Root == nil || !strings.Contains(resp.Root.Usage, "<request-text>") {
					t.Errorf("expected root launch usage, got %+v", resp.Root)
				}
				var names []string
				for _, c := range resp.Commands {
					names = append(names, c.Name)
				}
				for _, want := range []string{"doctor", "aux", "secrets", "version"} {
					if !contains(names, want) {
						t.Errorf("commands %v missing %q", names, want)
					}
				}
				if resp.Command != nil {
					t.Errorf("expected command to be nil for list, got %+v", resp.Command)
				}
				if !contains(resp.Groups["diagnostics"], "doctor") {
					t.Errorf("groups %v missing diagnostics/doctor", resp.Groups)
				}
				var env []string
				for _, e := range resp.Environment {
					env = append(env, e.Name)
					if e.Name == "ANTHROPIC_API_KEY" && !e.Secret {
						t.Error("ANTHROPIC_API_KEY should be marked secret")
					}
				}
				for _, want := range []string{"ANTHROPIC_API_KEY", "REDIS_PORT", "WORKSPACE_ROOT"} {
					if !contains(env, want) {
						t.Errorf("environment %v missing %q", env, want)
					}
				}
			},
		},
		{
			name: "shows specific command",
			args: []string{"doctor", "--json"},
			check: func(t *testing.T, resp HelpResponse) {
				if resp.Command == nil {
					t.Fatal("expected command metadata, got nil")
				}
				if resp.Command.Name != "doctor" {
					t.Errorf("expected command name 'doctor', got %s", resp.Command.Name)
				}
				if resp.Command.Group != "diagnostics" {
					t.Errorf("expected group 'diagnostics', got %s", resp.Command.Group)
				}
				var flags []string
				for _, f := range resp.Command.Flags {
					flags = append(flags, f.Name)
				}
				if !contains(flags, "probe-server") {
					t.Errorf("flags %v missing probe-server", flags)
				}
				if contains(flags, "verbose") {
					t.Error("global flags should not be repeated per command")
				}
				if len(resp.Environment) != 0 {
					t.Error("environment is only listed in the overview")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd := NewRootCommand()
			buf := new(bytes.Buffer)
			rootCmd.SetOut(buf)
			rootCmd.SetErr(buf)
			rootCmd.SetArgs(append([]string{"help"}, tt.args...))

			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			var resp HelpResponse
			if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
			}
			if resp.Version != "1.0" || !resp.Success {
				t.Errorf("unexpected envelope %+v", resp.JSONResponse)
			}
			if resp.DocsURL == "" {
				t.Error("expected docs_url to be set")
			}
			if len(resp.GlobalFlags) == 0 {
				t.Error("expected global flags")
			}
			tt.check(t, resp)
		})
	}
}

func TestHelpCommandHumanOutput(t *testing.T) {
	rootCmd := &cobra.Command{
		Use:   "test",
		Short: "Test command",
	}
	rootCmd.AddCommand(&cobra.Command{Use: "sample", Short: "Sample subcommand"})
	rootCmd.SetHelpCommand(NewHelpCommand(rootCmd))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"help"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected human output, got JSON")
	}
}

func TestHelpCommandUnknown(t *testing.T) {
	rootCmd := &cobra.Command{Use: "test"}
	rootCmd.AddCommand(&cobra.Command{Use: "sample", Run: func(*cobra.Command, []string) {}})
	rootCmd.SetHelpCommand(NewHelpCommand(rootCmd))
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"help", "nope"})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestDescribe(t *testing.T) {
	cmd := &cobra.Command{
		Use:     "testcmd",
		Short:   "Test command",
		Long:    "This is a longer description",
		Example: "testcmd --flag value",
		Aliases: []string{"tc", "test"},
		Annotations: map[string]string{
			"group": "testing",
		},
	}
	cmd.Flags().String("flag", "default", "A test flag")
	cmd.Flags().Bool("bool-flag", false, "A boolean flag")

	metadata := describe(cmd)

	if metadata.Name != "testcmd" {
		t.Errorf("Expected name 'testcmd', got %s", metadata.Name)
	}
	if metadata.Group != "testing" {
		t.Errorf("Expected group 'testing', got %s", metadata.Group)
	}
	if len(metadata.Aliases) != 2 {
		t.Errorf("Expected 2 aliases, got %d", len(metadata.Aliases))
	}
	if len(metadata.Flags) != 2 {
		t.Errorf("Expected 2 flags, got %d", len(metadata.Flags))
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
