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

package launcher

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"al.essio.dev/pkg/shellescape"

	"github.com/tombee/zenlaunch/internal/format"
	"github.com/tombee/zenlaunch/internal/mcpconfig"
)

// bannerPromptLimit caps how much of the prompt the banner echoes.
const bannerPromptLimit = 80

// dryRunArtifactPath stands in for the temp file a real launch would create.
const dryRunArtifactPath = "<launch-config>"

func (l *Launcher) printBanner(cmd Command, prompt string) {
	l.reporter.Status("Launching %s with the %s extension server", l.settings.Agent.Binary, l.settings.Server.Name)
	l.reporter.Status("  Working directory: %s", cmd.Dir)
	l.reporter.Status("  Prompt: %s", previewPrompt(prompt))
}

// printDryRun writes the redacted configuration and the command line that a
// real launch would run.
func (l *Launcher) printDryRun(cfg mcpconfig.LaunchConfig, agentPath, prompt, workDir string) error {
	data, err := cfg.Redacted().Marshal()
	if err != nil {
		return fmt.Errorf("failed to render launch configuration: %w", err)
	}
	cmd := l.agentCommand(agentPath, dryRunArtifactPath, prompt, workDir)

	var b strings.Builder
	b.WriteString("# Launch configuration (secrets redacted)\n")
	b.WriteString(format.Highlight(string(data), "json", format.IsTTY(l.stdout)))
	b.WriteString("\n# Command (run in " + workDir + ")\n")
	b.WriteString(formatCommand(cmd) + "\n")

	_, err = fmt.Fprint(l.stdout, b.String())
	return err
}

// formatCommand renders a command as a shell-pasteable line.
func formatCommand(cmd Command) string {
	return shellescape.QuoteCommand(append([]string{cmd.Path}, cmd.Args...))
}

// previewPrompt shortens a prompt to one line for display.
func previewPrompt(prompt string) string {
	line, _, multiline := strings.Cut(prompt, "\n")
	if utf8.RuneCountInString(line) > bannerPromptLimit {
		runes := []rune(line)
		return string(runes[:bannerPromptLimit]) + "..."
	}
	if multiline {
		return line + "..."
	}
	return line
}

func joinCapabilities(caps []string) string {
	return strings.Join(caps, ",")
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
