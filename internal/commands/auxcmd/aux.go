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

// Package aux implements "zenlaunch aux", which manages the auxiliary cache
// service outside of a launch.
package auxcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tombee/zenlaunch/internal/auxservice"
	"github.com/tombee/zenlaunch/internal/commands/shared"
	"github.com/tombee/zenlaunch/internal/config"
	"github.com/tombee/zenlaunch/internal/lifecycle"
)

type controller interface {
	Check(ctx context.Context) auxservice.Result
	Ensure(ctx context.Context) auxservice.Result
	Stop(ctx context.Context) (int, error)
	StartedPID() (int, bool)
}

// newController is replaced in tests.
var newController = func(settings config.Settings, logger *slog.Logger) controller {
	return auxservice.New(settings.Aux, settings.StateDir, auxservice.WithLogger(logger))
}

// statusResponse is the JSON output of "aux status" and "aux start".
type statusResponse struct {
	shared.JSONResponse
	auxservice.Result
}

// NewCommand creates the aux command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "aux",
		Annotations: map[string]string{
			"group": "management",
		},
		Short: "Manage the auxiliary cache service",
		Long: `Manage the Redis instance the extension server uses for conversation memory.

A launch starts it automatically when it is not answering. These commands
check it, start it ahead of time, or stop an instance zenlaunch started.

Commands:
  status    Probe the service
  start     Start the service if it is not answering
  stop      Stop the service zenlaunch started`,
	}

	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newStartCommand())
	cmd.AddCommand(newStopCommand())

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Probe the auxiliary service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAux(cmd, "aux status", func(ctx context.Context, c controller) auxservice.Result {
				res := c.Check(ctx)
				if res.Status == auxservice.StatusRunning {
					if pid, alive := c.StartedPID(); alive {
						res.PID = pid
					}
				}
				return res
			})
		},
	}
}

func newStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the auxiliary service if it is not answering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAux(cmd, "aux start", func(ctx context.Context, c controller) auxservice.Result {
				return c.Ensure(ctx)
			})
		},
	}
}

func newStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the auxiliary service zenlaunch started",
		Long: `Stop the auxiliary service recorded in zenlaunch's PID file.

Only a process zenlaunch started is stopped, and only if it is still the
configured server binary. A Redis started any other way is left alone.`,
		Args: cobra.NoArgs,
		RunE: runStop,
	}
}

func runAux(cmd *cobra.Command, name string, op func(context.Context, controller) auxservice.Result) error {
	settings, err := shared.LoadSettings()
	if err != nil {
		return shared.NewFailure("", err)
	}

	res := op(cmd.Context(), newController(settings, shared.NewLogger()))

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		if err := shared.EmitJSONTo(out, statusResponse{
			JSONResponse: shared.NewJSONResponse(name, !res.Degraded()),
			Result:       res,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, describe(res))
	}

	if res.Degraded() {
		return shared.NewSilentExit(shared.ExitFailure)
	}
	return nil
}

func describe(res auxservice.Result) string {
	switch res.Status {
	case auxservice.StatusRunning:
		if res.PID != 0 {
			return shared.RenderOK(fmt.Sprintf("auxiliary service answering on %s (started by zenlaunch, PID %d)", res.Addr, res.PID))
		}
		return shared.RenderOK("auxiliary service answering on " + res.Addr)
	case auxservice.StatusStarted:
		return shared.RenderOK(fmt.Sprintf("auxiliary service started on %s (PID %d)", res.Addr, res.PID))
	case auxservice.StatusDisabled:
		return shared.RenderWarn("auxiliary service disabled")
	default:
		return shared.RenderError(fmt.Sprintf("auxiliary service unavailable on %s: %s", res.Addr, res.Reason))
	}
}

func runStop(cmd *cobra.Command, args []string) error {
	settings, err := shared.LoadSettings()
	if err != nil {
		return shared.NewFailure("", err)
	}

	pid, err := newController(settings, shared.NewLogger()).Stop(cmd.Context())
	out := cmd.OutOrStdout()
	switch {
	case err == nil:
		fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("stopped auxiliary service (PID %d)", pid)))
		return nil
	case errors.Is(err, lifecycle.ErrProcessNotRunning):
		fmt.Fprintln(out, shared.RenderWarn(fmt.Sprintf("auxiliary service (PID %d) was not running; removed stale PID file", pid)))
		return nil
	case errors.Is(err, auxservice.ErrNotStarted):
		return shared.NewFailure("nothing to stop", err)
	default:
		return shared.NewFailure("failed to stop auxiliary service", err)
	}
}
