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

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

var (
	// ErrProcessNotRunning is returned when the recorded PID no longer exists.
	ErrProcessNotRunning = errors.New("process not running")

	// ErrUnexpectedProcess is returned when a recorded PID now belongs to a
	// different program.
	ErrUnexpectedProcess = errors.New("process is not the expected program")

	// ErrShutdownTimeout is returned when a process survives SIGKILL.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")
)

// killWait bounds the wait after SIGKILL.
const killWait = 2 * time.Second

// IsProcessRunning reports whether pid exists. Signal 0 probes without
// delivering anything.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// CommandLine returns the space-joined command line of a running process.
func CommandLine(pid int) (string, error) {
	if !IsProcessRunning(pid) {
		return "", ErrProcessNotRunning
	}
	return readCommandLine(pid)
}

// VerifyOwner checks that pid is alive and was started from binary. Only the
// base name of binary is compared.
func VerifyOwner(pid int, binary string) error {
	cmdline, err := CommandLine(pid)
	if err != nil {
		if errors.Is(err, ErrProcessNotRunning) {
			return fmt.Errorf("PID %d: %w", pid, err)
		}
		return fmt.Errorf("PID %d: %w: %v", pid, ErrUnexpectedProcess, err)
	}
	name := filepath.Base(binary)
	if !strings.Contains(cmdline, name) {
		return fmt.Errorf("PID %d is %q, not %s: %w", pid, cmdline, name, ErrUnexpectedProcess)
	}
	return nil
}

// Terminate sends SIGTERM and waits up to grace for pid to exit, then falls
// back to SIGKILL.
func Terminate(ctx context.Context, pid int, grace time.Duration) error {
	if !IsProcessRunning(pid) {
		return ErrProcessNotRunning
	}
	if err := signal(pid, syscall.SIGTERM); err != nil {
		return err
	}

	poller := NewPoller().WithBackoff(20*time.Millisecond, 250*time.Millisecond, 2)
	if err := poller.WaitUntil(ctx, grace, exited(pid)); err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := signal(pid, syscall.SIGKILL); err != nil {
		// Exited between the last poll and the kill.
		if !IsProcessRunning(pid) {
			return nil
		}
		return err
	}
	if err := poller.WaitUntil(ctx, killWait, exited(pid)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("PID %d survived SIGKILL: %w", pid, ErrShutdownTimeout)
	}
	return nil
}

func exited(pid int) func(context.Context) error {
	return func(context.Context) error {
		if IsProcessRunning(pid) {
			return fmt.Errorf("PID %d still running", pid)
		}
		return nil
	}
}

func signal(pid int, sig syscall.Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := proc.Signal(sig); err != nil {
		return fmt.Errorf("failed to send %v to process %d: %w", sig, pid, err)
	}
	return nil
}
