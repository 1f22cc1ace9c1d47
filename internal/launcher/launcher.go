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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/zenlaunch/internal/auxservice"
	"github.com/tombee/zenlaunch/internal/config"
	"github.com/tombee/zenlaunch/internal/lifecycle"
	"github.com/tombee/zenlaunch/internal/log"
	"github.com/tombee/zenlaunch/internal/mcpconfig"
	"github.com/tombee/zenlaunch/internal/secrets"
	"github.com/tombee/zenlaunch/internal/toolchain"
	"github.com/tombee/zenlaunch/internal/tracing"
)

// ExitFailure is returned for usage, precondition and internal failures.
const ExitFailure = 1

// historyFileName is the launch history under the state directory.
const historyFileName = "launches.log"

// shutdownSignals cancel a running launch instead of terminating it.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}

// Request is what the user asked for. Both fields are passed through verbatim.
type Request struct {
	Prompt string

	// WorkingDir is the agent's working directory. Empty means the current
	// directory.
	WorkingDir string
}

// RunOptions are per-run switches.
type RunOptions struct {
	// DryRun validates and probes, then prints the redacted configuration
	// and command instead of writing or spawning anything.
	DryRun bool

	// InstallDeps installs the server's requirements.txt with pip before
	// rendering.
	InstallDeps bool
}

// Reporter receives user-facing messages.
type Reporter interface {
	// Warn reports a degraded but non-fatal condition.
	Warn(format string, args ...any)

	// Status reports progress. Implementations may suppress it.
	Status(format string, args ...any)
}

// AuxService is the auxiliary cache as seen by a launch.
type AuxService interface {
	Ensure(ctx context.Context) auxservice.Result
	Check(ctx context.Context) auxservice.Result
}

// Launcher runs launches for one set of settings and credentials.
type Launcher struct {
	settings config.Settings
	creds    secrets.CredentialSet

	resolver *toolchain.Resolver
	aux      AuxService
	runner   Runner
	reporter Reporter
	history  *lifecycle.HistoryLogger
	tracer   trace.Tracer
	logger   *slog.Logger
	stdout   io.Writer

	newRunID func() string
	now      func() time.Time
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithLookPath replaces PATH lookup.
func WithLookPath(lookPath toolchain.LookPathFunc) Option {
	return func(l *Launcher) { l.resolver = toolchain.NewResolver(lookPath) }
}

// WithAux replaces the auxiliary service.
func WithAux(aux AuxService) Option {
	return func(l *Launcher) { l.aux = aux }
}

// WithRunner replaces the process runner.
func WithRunner(runner Runner) Option {
	return func(l *Launcher) { l.runner = runner }
}

// WithReporter sets where warnings and status lines go.
func WithReporter(reporter Reporter) Option {
	return func(l *Launcher) { l.reporter = reporter }
}

// WithTracer sets the span tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(l *Launcher) { l.tracer = tracer }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) { l.logger = logger }
}

// WithStdout sets where dry-run output goes.
func WithStdout(w io.Writer) Option {
	return func(l *Launcher) { l.stdout = w }
}

// New creates a Launcher. Credentials are resolved once by the caller and
// never re-read.
func New(settings config.Settings, creds secrets.CredentialSet, opts ...Option) *Launcher {
	l := &Launcher{
		settings: settings,
		creds:    creds,
		resolver: toolchain.NewResolver(nil),
		runner:   NewExecRunner(),
		reporter: discardReporter{},
		history:  lifecycle.NewHistoryLogger(filepath.Join(settings.StateDir, historyFileName)),
		tracer:   tracing.Noop().Tracer(),
		logger:   log.Discard(),
		stdout:   os.Stdout,
		newRunID: uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.aux == nil {
		l.aux = auxservice.New(settings.Aux, settings.StateDir,
			auxservice.WithLogger(l.logger),
			auxservice.WithLookPath(l.resolver.Find))
	}
	l.logger = log.WithComponent(l.logger, "launcher")
	return l
}

// Run performs one launch and returns the exit code the process should
// exit with. A non-nil error always comes with ExitFailure; the agent's own
// non-zero exit is a code, not an error.
func (l *Launcher) Run(ctx context.Context, req Request, opts RunOptions) (int, error) {
	start := l.now()
	runID := l.newRunID()
	logger := log.WithRunContext(l.logger, runID)

	ctx, span := l.tracer.Start(ctx, "launch", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Bool("dry_run", opts.DryRun),
	))
	defer span.End()

	phaseStart := start
	phaseDone := func(phase string) {
		now := l.now()
		logger.Debug("phase complete",
			slog.String(log.PhaseKey, phase),
			slog.Int64(log.DurationKey, now.Sub(phaseStart).Milliseconds()))
		phaseStart = now
	}

	tools, workDir, err := l.validate(ctx, req)
	if err != nil {
		tracing.RecordError(span, err)
		return ExitFailure, err
	}
	phaseDone("validate")

	var degraded []string
	if !l.creds.HasAlternate() {
		degraded = append(degraded, "alternates")
	}

	auxResult := l.ensureAux(ctx, opts.DryRun)
	if auxResult.Degraded() {
		degraded = append(degraded, "aux")
	}
	phaseDone("aux")

	if opts.InstallDeps {
		if err := l.installDeps(ctx, tools.interpreter, opts.DryRun); err != nil {
			tracing.RecordError(span, err)
			return ExitFailure, err
		}
		phaseDone("deps")
	}

	cfg := mcpconfig.Build(l.settings, tools.interpreter, l.creds)

	if opts.DryRun {
		if err := l.printDryRun(cfg, tools.agent, req.Prompt, workDir); err != nil {
			tracing.RecordError(span, err)
			return ExitFailure, err
		}
		return 0, nil
	}

	// Registered before the artifact exists so no signal can slip between
	// creating the file and deferring its removal.
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	artifact, err := l.render(ctx, cfg)
	if err != nil {
		tracing.RecordError(span, err)
		return ExitFailure, err
	}
	defer func() {
		if err := artifact.Remove(); err != nil {
			logger.Warn("failed to remove launch configuration",
				slog.String("path", artifact.Path), log.Error(err))
		}
	}()
	phaseDone("render")

	cmd := l.agentCommand(tools.agent, artifact.Path, req.Prompt, workDir)
	l.printBanner(cmd, req.Prompt)

	exitCode, err := l.invoke(ctx, cmd)
	if err != nil {
		tracing.RecordError(span, err)
		return ExitFailure, err
	}
	span.SetAttributes(attribute.Int("exit_code", exitCode))
	phaseDone("invoke")

	if ctx.Err() != nil {
		logger.Debug("launch interrupted by signal", slog.Int("exit_code", exitCode))
	}

	record := lifecycle.LaunchRecord{
		RunID:        runID,
		WorkingDir:   workDir,
		PromptLength: len(req.Prompt),
		ExitCode:     exitCode,
		Duration:     l.now().Sub(start),
		Degraded:     degraded,
	}
	if err := l.history.LogLaunch(record); err != nil {
		logger.Debug("failed to write launch history", log.Error(err))
	}

	return exitCode, nil
}

// ensureAux probes, and unless dryRun also starts, the auxiliary cache.
// Any degradation is reported as exactly one warning.
func (l *Launcher) ensureAux(ctx context.Context, dryRun bool) auxservice.Result {
	ctx, span := l.tracer.Start(ctx, "aux.ensure")
	defer span.End()

	var result auxservice.Result
	if dryRun {
		result = l.aux.Check(ctx)
	} else {
		result = l.aux.Ensure(ctx)
	}
	span.SetAttributes(
		attribute.String("aux.status", string(result.Status)),
		attribute.String("aux.addr", result.Addr),
	)

	switch result.Status {
	case auxservice.StatusStarted:
		l.reporter.Status("Started auxiliary service on %s (PID %d)", result.Addr, result.PID)
	case auxservice.StatusDisabled:
		l.reporter.Warn("Auxiliary service disabled; conversation memory is unavailable")
	case auxservice.StatusDegraded:
		l.reporter.Warn("Auxiliary service unavailable (%s); conversation memory is unavailable", result.Reason)
	}
	return result
}

// render writes the launch configuration artifact.
func (l *Launcher) render(ctx context.Context, cfg mcpconfig.LaunchConfig) (*mcpconfig.Artifact, error) {
	ctx, span := l.tracer.Start(ctx, "render")
	defer span.End()

	artifact, err := mcpconfig.WriteArtifact(l.settings.TempDir, cfg)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("failed to prepare launch: %w", err)
	}
	l.logger.Debug("wrote launch configuration", slog.String("path", artifact.Path))
	if l.logger.Enabled(ctx, log.LevelTrace) {
		if data, err := cfg.Redacted().Marshal(); err == nil {
			log.Trace(l.logger, "launch configuration", slog.String("config", string(data)))
		}
	}
	return artifact, nil
}

// agentCommand builds the agent invocation.
func (l *Launcher) agentCommand(agentPath, artifactPath, prompt, workDir string) Command {
	args := []string{
		"-p", prompt,
		"--mcp-config", artifactPath,
		"--allowedTools", joinCapabilities(mcpconfig.Capabilities(l.settings.Server.Name)),
	}
	args = append(args, l.settings.Agent.ExtraArgs...)

	return Command{
		Path: agentPath,
		Args: args,
		Dir:  workDir,
		Env:  l.agentEnv(),
	}
}

// agentEnv returns nil (inherit) unless the primary credential came from the
// keychain, in which case it is added to the inherited environment.
func (l *Launcher) agentEnv() []string {
	primary := l.creds.Primary()
	if !primary.Present() || primary.Source != "keychain" {
		return nil
	}
	return append(os.Environ(), primary.Name+"="+primary.Value)
}

type discardReporter struct{}

func (discardReporter) Warn(string, ...any)   {}
func (discardReporter) Status(string, ...any) {}

// invoke runs the agent and waits for it.
func (l *Launcher) invoke(ctx context.Context, cmd Command) (int, error) {
	ctx, span := l.tracer.Start(ctx, "invoke", trace.WithAttributes(
		attribute.String("agent.path", cmd.Path),
		attribute.String("agent.dir", cmd.Dir),
	))
	defer span.End()

	l.logger.Debug("starting agent", slog.String("command", formatCommand(redactPrompt(cmd))))

	code, err := l.runner.Run(ctx, cmd)
	if err != nil {
		tracing.RecordError(span, err)
		return ExitFailure, err
	}
	span.SetAttributes(attribute.Int("exit_code", code))
	return code, nil
}

// redactPrompt hides the prompt argument for logging.
func redactPrompt(cmd Command) Command {
	args := append([]string(nil), cmd.Args...)
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-p" {
			args[i+1] = fmt.Sprintf("<%d bytes>", len(args[i+1]))
			break
		}
	}
	cmd.Args = args
	return cmd
}
