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

// Package launch implements the root command: run one agent session with
// the extension server attached.
package launch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/zenlaunch/internal/commands/shared"
	"github.com/tombee/zenlaunch/internal/launcher"
	"github.com/tombee/zenlaunch/internal/log"
	"github.com/tombee/zenlaunch/internal/tracing"
)

// tracingShutdownTimeout bounds the final span flush.
const tracingShutdownTimeout = 5 * time.Second

var (
	installDeps bool
	dryRun      bool

	// newLauncher is replaced in tests.
	newLauncher = launcher.New
)

// Use is the root command's usage line.
const Use = "zenlaunch <request-text> [working-directory]"

// Long is the root command's help text.
const Long = `Run the Claude agent CLI on a request with the zen extension server attached.

The agent starts in the working directory (default: the current directory)
with a private, temporary MCP configuration that is removed when it exits.
The launcher exits with the agent's exit code.

A request that starts with "-" would be read as flags; put "--" before it.

Environment:
  ANTHROPIC_API_KEY    required
  GEMINI_API_KEY, OPENAI_API_KEY, OPENROUTER_API_KEY
                       at least one recommended; passed to the extension server
  WORKSPACE_ROOT       workspace passed to the extension server (default: $HOME)
  REDIS_HOST, REDIS_PORT
                       auxiliary cache address (default: localhost:6379)`

// Example is the root command's examples.
const Example = `  zenlaunch "review the changes on this branch"
  zenlaunch "find the flaky test" ~/src/project
  zenlaunch --dry-run "explain this repo"
  zenlaunch -- "-x marks the spot: find where it is set"`

// AddFlags registers the launch-only flags on the root command.
func AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&installDeps, "install-deps", false, "Install the extension server's requirements.txt with pip before launching")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and print the redacted configuration and command without launching")
}

// Args enforces one required and one optional positional argument. With no
// arguments the usage text is printed and nothing else happens.
func Args(cmd *cobra.Command, args []string) error {
	switch {
	case len(args) == 0:
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return shared.NewSilentExit(shared.ExitUsage)
	case len(args) > 2:
		return shared.NewUsageError(fmt.Sprintf("accepts at most 2 args (request text and working directory), received %d", len(args)))
	}
	return nil
}

// Run is the root command's RunE.
func Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	settings, err := shared.LoadSettings()
	if err != nil {
		return shared.NewFailure("", err)
	}

	logger := shared.NewLogger()
	reporter := shared.StderrReporter()

	provider := setupTracing(ctx, logger)
	defer shutdownTracing(provider, logger)

	creds := shared.ResolveCredentials(ctx, settings, logger)

	l := newLauncher(settings, creds,
		launcher.WithReporter(reporter),
		launcher.WithLogger(logger),
		launcher.WithTracer(provider.Tracer()),
		launcher.WithStdout(cmd.OutOrStdout()),
	)

	req := launcher.Request{Prompt: args[0]}
	if len(args) == 2 {
		req.WorkingDir = args[1]
	}

	code, err := l.Run(ctx, req, launcher.RunOptions{
		DryRun:      dryRun,
		InstallDeps: installDeps,
	})
	if err != nil {
		return shared.NewFailure("", err)
	}
	if code != shared.ExitSuccess {
		return shared.NewSilentExit(code)
	}
	return nil
}

// setupTracing never fails a launch; a bad exporter falls back to no-op.
func setupTracing(ctx context.Context, logger *slog.Logger) *tracing.Provider {
	v, _, _ := shared.GetVersion()
	provider, err := tracing.Setup(ctx, tracing.FromEnv(os.LookupEnv, v))
	if err != nil {
		logger.Warn("tracing disabled", log.Error(err))
		return tracing.Noop()
	}
	return provider
}

func shutdownTracing(provider *tracing.Provider, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
	defer cancel()
	if err := provider.Shutdown(ctx); err != nil {
		logger.Debug("failed to flush traces", log.Error(err))
	}
}
