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
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/tombee/zenlaunch/internal/lifecycle"
)

func shellRunner(t *testing.T) (*ExecRunner, *bytes.Buffer) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var out bytes.Buffer
	return &ExecRunner{Stdout: &out, Stderr: &out, WaitDelay: time.Second}, &out
}

func TestExecRunner_ExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   int
	}{
		{name: "success", script: "exit 0", want: 0},
		{name: "failure", script: "exit 7", want: 7},
		{name: "killed by TERM", script: "kill -TERM $$", want: 143},
		{name: "killed by KILL", script: "kill -KILL $$", want: 137},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := shellRunner(t)
			got, err := r.Run(context.Background(), Command{Path: "sh", Args: []string{"-c", tt.script}})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Run() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExecRunner_DirAndEnv(t *testing.T) {
	r, out := shellRunner(t)
	dir := t.TempDir()

	_, err := r.Run(context.Background(), Command{
		Path: "sh",
		Args: []string{"-c", `pwd; echo "$ZL_TEST"`},
		Dir:  dir,
		Env:  []string{"ZL_TEST=hello"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected output %q", out.String())
	}
	if !strings.HasSuffix(lines[0], strings.TrimPrefix(dir, "/private")) {
		t.Errorf("pwd = %q, want %q", lines[0], dir)
	}
	if lines[1] != "hello" {
		t.Errorf("env = %q, want hello", lines[1])
	}
}

func TestExecRunner_CancelSendsTerm(t *testing.T) {
	r, _ := shellRunner(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan int, 1)
	go func() {
		code, _ := r.Run(ctx, Command{Path: "sh", Args: []string{"-c", "sleep 30"}})
		done <- code
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		if code != 143 {
			t.Errorf("exit code after cancel = %d, want 143", code)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("child did not exit after cancel")
	}
}

func TestExecRunner_CancelTerminatesGroup(t *testing.T) {
	r, _ := shellRunner(t)
	pidPath := filepath.Join(t.TempDir(), "helper.pid")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	script := `sleep 30 & echo $! > "$1"; wait`
	done := make(chan int, 1)
	go func() {
		code, _ := r.Run(ctx, Command{Path: "sh", Args: []string{"-c", script, "sh", pidPath}})
		done <- code
	}()

	helper := waitForPID(t, pidPath)
	cancel()

	select {
	case code := <-done:
		if code != 143 {
			t.Errorf("exit code after cancel = %d, want 143", code)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("child did not exit after cancel")
	}

	deadline := time.Now().Add(5 * time.Second)
	for alive(helper) {
		if time.Now().After(deadline) {
			t.Fatalf("helper PID %d outlived the cancelled agent", helper)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// alive treats a zombie as exited: the orphaned helper is reaped by init,
// which may not happen promptly in a container.
func alive(pid int) bool {
	if !lifecycle.IsProcessRunning(pid) {
		return false
	}
	stat, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return true
	}
	fields := strings.Fields(string(stat[bytes.LastIndexByte(stat, ')')+1:]))
	return len(fields) == 0 || fields[0] != "Z"
}

// waitForPID polls path until the shell has written a PID to it.
func waitForPID(t *testing.T, path string) int {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil {
			if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && pid > 0 {
				return pid
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("no PID written to %s", path)
	return 0
}

func TestExecRunner_StartFailure(t *testing.T) {
	r := &ExecRunner{}
	code, err := r.Run(context.Background(), Command{Path: "/nonexistent/zenlaunch-agent"})
	if err == nil {
		t.Fatal("expected error")
	}
	if code != ExitFailure {
		t.Errorf("code = %d, want %d", code, ExitFailure)
	}
	if _, ok := err.(*SpawnError); !ok {
		t.Errorf("error type = %T, want *SpawnError", err)
	}
}
