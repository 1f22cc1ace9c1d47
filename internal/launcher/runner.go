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
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// DefaultWaitDelay is how long a cancelled child gets after SIGTERM before
// it is killed.
const DefaultWaitDelay = 5 * time.Second

// Command is one child process invocation.
type Command struct {
	Path string
	Args []string

	// Dir is the child's working directory. Empty inherits.
	Dir string

	// Env is the child's environment. Nil inherits.
	Env []string
}

// Runner runs a command to completion with inherited stdio and reports its
// exit code. A non-nil error means the command could not be run at all.
type Runner interface {
	Run(ctx context.Context, cmd Command) (int, error)
}

// SpawnError is returned when a child process cannot be started.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// WaitDelay bounds the wait after cancellation.
	WaitDelay time.Duration
}

// NewExecRunner returns a runner wired to the process's own stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		WaitDelay: DefaultWaitDelay,
	}
}

// Run starts the command in its own process group and waits for it.
// Cancelling ctx sends SIGTERM to the whole group, so helpers the agent
// started go down with it, then SIGKILL to the child after WaitDelay.
func (r *ExecRunner) Run(ctx context.Context, c Command) (int, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return terminateGroup(cmd.Process)
	}
	cmd.WaitDelay = r.WaitDelay

	if err := cmd.Start(); err != nil {
		return ExitFailure, &SpawnError{Path: c.Path, Err: err}
	}

	err := cmd.Wait()
	if cmd.ProcessState != nil {
		return ExitCode(cmd.ProcessState), nil
	}
	if err == nil {
		err = errors.New("no process state")
	}
	return ExitFailure, fmt.Errorf("waiting for %s: %w", c.Path, err)
}

// terminateGroup sends SIGTERM to the group led by proc. With Setpgid the
// group ID equals the child's PID.
func terminateGroup(proc *os.Process) error {
	if err := syscall.Kill(-proc.Pid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return proc.Signal(syscall.SIGTERM)
	}
	return nil
}

// ExitCode maps a finished process to a shell-style exit code: the child's
// own code, or 128 plus the signal number when it was killed by a signal.
func ExitCode(state *os.ProcessState) int {
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	code := state.ExitCode()
	if code < 0 {
		return ExitFailure
	}
	return code
}
