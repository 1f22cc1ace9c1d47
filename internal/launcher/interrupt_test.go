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
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/zenlaunch/internal/toolchain"
)

// fakeAgent writes an executable that touches marker and then sleeps,
// standing in for the agent binary.
func fakeAgent(t *testing.T, marker string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "claude")
	script := fmt.Sprintf("#!/bin/sh\ntouch %q\nexec sleep 30\n", marker)
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestRun_InterruptRemovesArtifact(t *testing.T) {
	if os.Getenv("SKIP_SPAWN_TESTS") != "" {
		t.Skip("Skipping spawn tests (SKIP_SPAWN_TESTS is set)")
	}
	h := newHarness(t)
	marker := filepath.Join(t.TempDir(), "started")
	agent := fakeAgent(t, marker)

	lookPath := func(name string) (string, error) {
		switch name {
		case "claude":
			return agent, nil
		case "python3":
			return "/usr/bin/python3", nil
		}
		return "", errors.New("not found")
	}
	var out bytes.Buffer
	runner := &ExecRunner{Stdout: &out, Stderr: &out, WaitDelay: time.Second}

	l := New(h.settings, fullCreds(),
		WithLookPath(toolchain.LookPathFunc(lookPath)),
		WithAux(h.aux),
		WithRunner(runner),
		WithReporter(h.reporter),
		WithStdout(h.stdout),
	)

	type result struct {
		code int
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := l.Run(context.Background(), Request{Prompt: "p", WorkingDir: t.TempDir()}, RunOptions{})
		done <- result{code, err}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(marker); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("agent never started")
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.Len(t, artifactFiles(t, h.settings.TempDir), 1, "config file must exist while the agent runs")

	// The launch holds SIGINT through signal.NotifyContext, so this cancels
	// the run instead of killing the test binary.
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, 143, res.code)
	case <-time.After(10 * time.Second):
		t.Fatal("launch did not finish after SIGINT")
	}
	assert.Empty(t, artifactFiles(t, h.settings.TempDir), "config file must be removed after an interrupted run")
}
