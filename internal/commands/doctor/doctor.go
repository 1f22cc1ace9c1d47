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

// Package doctor implements "zenlaunch doctor", a non-launching report of
// every launch precondition.
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/zenlaunch/internal/auxservice"
	"github.com/tombee/zenlaunch/internal/commands/shared"
	"github.com/tombee/zenlaunch/internal/config"
	"github.com/tombee/zenlaunch/internal/format"
	"github.com/tombee/zenlaunch/internal/log"
	"github.com/tombee/zenlaunch/internal/mcpconfig"
	"github.com/tombee/zenlaunch/internal/secrets"
	"github.com/tombee/zenlaunch/internal/toolchain"
	zerrors "github.com/tombee/zenlaunch/pkg/errors"
)

// doctorTimeout bounds the whole report, server probe included.
const doctorTimeout = 60 * time.Second

var (
	probeServer bool
	showConfig  bool

	// Replaced in tests.
	lookPath      toolchain.LookPathFunc
	detectVersion = toolchain.DetectVersion
	probe         = mcpconfig.Probe
	newAuxChecker = func(settings config.Settings) auxChecker {
		return auxservice.New(settings.Aux, settings.StateDir)
	}
)

type auxChecker interface {
	Check(ctx context.Context) auxservice.Result
}

// CheckStatus is the outcome of one check.
type CheckStatus string

const (
	StatusOK   CheckStatus = "ok"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

// Check is one line of the report.
type Check struct {
	Group  string      `json:"group"`
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
	Hint   string      `json:"hint,omitempty"`
}

// Result contains the whole report.
type Result struct {
	shared.JSONResponse
	ConfigPath string  `json:"config_path,omitempty"`
	Checks     []Check `json:"checks"`
	Healthy    bool    `json:"healthy"`
}

func (r *Result) add(c Check) {
	r.Checks = append(r.Checks, c)
	if c.Status == StatusFail {
		r.Healthy = false
	}
}

// NewCommand creates the doctor command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "doctor",
		Annotations: map[string]string{
			"group": "diagnostics",
		},
		Short: "Check launch preconditions without launching",
		Long: `Check everything a launch needs without starting the agent or writing
any file.

This command checks:
  - Config file loads and validates
  - ANTHROPIC_API_KEY is set and at least one alternate credential is set
  - The agent CLI and server interpreter are on PATH (with versions)
  - The extension server entry point exists
  - The auxiliary service answers (it is never started here)

With --probe-server the extension server is started over stdio and asked
for its tool list. Exits 1 when a launch would fail.`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}

	cmd.Flags().BoolVar(&probeServer, "probe-server", false, "Start the extension server and verify it serves every allowed tool")
	cmd.Flags().BoolVar(&showConfig, "show-config", false, "Print the effective settings as YAML and exit")

	return cmd
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
	defer cancel()

	out := cmd.OutOrStdout()

	settings, err := shared.LoadSettings()
	if showConfig {
		if err != nil {
			return shared.NewFailure("", err)
		}
		data, err := settings.YAML()
		if err != nil {
			return shared.NewFailure("failed to render settings", err)
		}
		_, err = fmt.Fprint(out, format.Highlight(string(data), "yaml", format.IsTTY(out)))
		return err
	}

	result := &Result{
		JSONResponse: shared.NewJSONResponse("doctor", true),
		Healthy:      true,
	}

	if err != nil {
		result.add(Check{Group: "config", Name: "settings", Status: StatusFail, Detail: err.Error(),
			Hint: suggestionFor(err)})
	} else {
		result.ConfigPath = settings.Source
		checkConfig(result, settings)
		creds := shared.ResolveCredentials(ctx, settings, shared.NewLogger())
		checkCredentials(result, creds)
		interpreter := checkToolchain(ctx, result, settings)
		checkServer(result, settings)
		if probeServer && interpreter != "" {
			checkProbe(ctx, result, settings, interpreter, creds)
		}
		checkAux(ctx, result, settings)
	}
	result.Success = result.Healthy

	if shared.GetJSON() {
		if err := shared.EmitJSONTo(out, result); err != nil {
			return err
		}
	} else {
		writeText(out, result)
	}

	if !result.Healthy {
		return shared.NewSilentExit(shared.ExitFailure)
	}
	return nil
}

func checkConfig(r *Result, settings config.Settings) {
	detail := "defaults (no config file)"
	if settings.Source != "" {
		detail = settings.Source
	}
	r.add(Check{Group: "config", Name: "settings", Status: StatusOK, Detail: detail})
}

func checkCredentials(r *Result, creds secrets.CredentialSet) {
	primary := creds.Primary()
	if primary.Present() {
		r.add(Check{Group: "credentials", Name: primary.Name, Status: StatusOK,
			Detail: credentialDetail(primary)})
	} else {
		r.add(Check{Group: "credentials", Name: primary.Name, Status: StatusFail, Detail: "not set",
			Hint: "export " + secrets.PrimaryKey + "=<your key>"})
	}

	for _, name := range secrets.AlternateNames {
		c, _ := creds.Get(name)
		if c.Present() {
			r.add(Check{Group: "credentials", Name: name, Status: StatusOK, Detail: credentialDetail(c)})
		}
	}
	if !creds.HasAlternate() {
		r.add(Check{Group: "credentials", Name: "alternates", Status: StatusWarn,
			Detail: "none set; extension tools will have limited functionality",
			Hint:   "export one of " + strings.Join(secrets.AlternateNames, ", ")})
	}
}

func credentialDetail(c secrets.Credential) string {
	return fmt.Sprintf("%s (from %s)", log.SanitizeAPIKey(c.Value), c.Source)
}

// checkToolchain returns the interpreter path when found.
func checkToolchain(ctx context.Context, r *Result, settings config.Settings) string {
	resolver := toolchain.NewResolver(lookPath)
	var interpreterPath string

	for _, tool := range []toolchain.Tool{
		toolchain.Agent(settings.Agent.Binary),
		toolchain.Interpreter(settings.Server.Interpreter),
	} {
		path, err := resolver.Find(tool.Name)
		if err != nil {
			r.add(Check{Group: "toolchain", Name: tool.Name, Status: StatusFail,
				Detail: "not found on PATH (" + tool.Role + ")", Hint: tool.Hint})
			continue
		}
		if tool.Name == settings.Server.Interpreter {
			interpreterPath = path
		}
		r.add(Check{Group: "toolchain", Name: tool.Name, Status: StatusOK,
			Detail: path + " " + versionOf(ctx, path)})
	}

	if !settings.Aux.Disabled {
		aux := toolchain.AuxServer(settings.Aux.Binary)
		if path, err := resolver.Find(aux.Name); err != nil {
			r.add(Check{Group: "toolchain", Name: aux.Name, Status: StatusWarn,
				Detail: "not found on PATH; the auxiliary service cannot be started", Hint: aux.Hint})
		} else {
			r.add(Check{Group: "toolchain", Name: aux.Name, Status: StatusOK,
				Detail: path + " " + versionOf(ctx, path)})
		}
	}

	return interpreterPath
}

func versionOf(ctx context.Context, path string) string {
	v, err := detectVersion(ctx, path)
	if err != nil {
		return "(version unknown)"
	}
	return "(" + v + ")"
}

func checkServer(r *Result, settings config.Settings) {
	entry := settings.ServerEntrypointPath()
	if _, err := os.Stat(entry); err != nil {
		r.add(Check{Group: "server", Name: settings.Server.Name, Status: StatusWarn,
			Detail: "entry point not found: " + entry,
			Hint:   "Set --server-dir or server.dir to the extension server checkout"})
		return
	}
	r.add(Check{Group: "server", Name: settings.Server.Name, Status: StatusOK, Detail: entry})
}

func checkAux(ctx context.Context, r *Result, settings config.Settings) {
	res := newAuxChecker(settings).Check(ctx)
	switch res.Status {
	case auxservice.StatusDisabled:
		r.add(Check{Group: "aux", Name: "auxiliary service", Status: StatusWarn, Detail: "disabled"})
	case auxservice.StatusRunning, auxservice.StatusStarted:
		r.add(Check{Group: "aux", Name: "auxiliary service", Status: StatusOK, Detail: "answering on " + res.Addr})
	default:
		r.add(Check{Group: "aux", Name: "auxiliary service", Status: StatusWarn,
			Detail: res.Reason, Hint: "A launch will try to start it; 'zenlaunch aux start' starts it now"})
	}
}

func checkProbe(ctx context.Context, r *Result, settings config.Settings, interpreter string, creds secrets.CredentialSet) {
	cfg := mcpconfig.Build(settings, interpreter, creds)
	entry, _ := cfg.Server(settings.Server.Name)
	v, _, _ := shared.GetVersion()

	res, err := probe(ctx, entry, v)
	if err != nil {
		r.add(Check{Group: "server", Name: "probe", Status: StatusFail, Detail: err.Error(),
			Hint: "Run with --install-deps once, or check the server's own output"})
		return
	}
	if len(res.Missing) > 0 {
		r.add(Check{Group: "server", Name: "probe", Status: StatusFail,
			Detail: fmt.Sprintf("%s %s does not serve: %s", res.ServerName, res.ServerVersion, strings.Join(res.Missing, ", "))})
		return
	}
	r.add(Check{Group: "server", Name: "probe", Status: StatusOK,
		Detail: fmt.Sprintf("%s %s serves %d tools", res.ServerName, res.ServerVersion, len(res.Tools))})
}

func suggestionFor(err error) string {
	if userErr, ok := zerrors.FindUserVisible(err); ok {
		return userErr.Suggestion()
	}
	return ""
}

func writeText(w io.Writer, r *Result) {
	fmt.Fprintln(w, shared.Header.Render("zenlaunch doctor"))
	fmt.Fprintln(w, strings.Repeat("=", 50))

	// Checks of one group are printed together even when added apart.
	var order []string
	byGroup := map[string][]Check{}
	for _, c := range r.Checks {
		if _, seen := byGroup[c.Group]; !seen {
			order = append(order, c.Group)
		}
		byGroup[c.Group] = append(byGroup[c.Group], c)
	}
	for _, group := range order {
		fmt.Fprintf(w, "\n%s:\n", group)
		for _, c := range byGroup[group] {
			writeCheck(w, c)
		}
	}

	fmt.Fprintln(w)
	if r.Healthy {
		fmt.Fprintln(w, "Overall Status: Ready to launch")
	} else {
		fmt.Fprintln(w, "Overall Status: Launch would fail")
	}
}

func writeCheck(w io.Writer, c Check) {
	line := c.Name
	if c.Detail != "" {
		line += " " + shared.RenderLabel(c.Detail)
	}
	switch c.Status {
	case StatusOK:
		fmt.Fprintln(w, "  "+shared.RenderOK(line))
	case StatusWarn:
		fmt.Fprintln(w, "  "+shared.RenderWarn(line))
	default:
		fmt.Fprintln(w, "  "+shared.RenderError(line))
	}
	if c.Hint != "" && c.Status != StatusOK {
		fmt.Fprintln(w, "      "+shared.RenderLabel(c.Hint))
	}
}
