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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// skipOnSpawnError checks if an error is a spawn permission error and skips if so.
// Some environments (sandboxed test runners, containers) block fork/exec.
func skipOnSpawnError(t *testing.T, err error) {
	t.Helper()
	if err != nil && strings.Contains(err.Error(), "operation not permitted") {
		t.Skipf("Skipping: spawn not permitted in this environment: %v", err)
	}
}

func skipSpawnTests(t *testing.T) {
	t.Helper()
	if os.Getenv("SKIP_SPAWN_TESTS") != "" {
		t.Skip("Skipping spawn tests (SKIP_SPAWN_TESTS is set)")
	}
}

func TestSpawner_SpawnDetached(t *testing.T) {
	skipSpawnTests(t)
	tmpDir := t.TempDir()

	t.Run("spawns detached process", func(t *testing.T) {
		logPath := filepath.Join(tmpDir, "test.log")
		spawner := NewSpawner()

		pid, err := spawner.SpawnDetached("sh", []string{"-c", "echo 'test output'; sleep 1"}, logPath)
		skipOnSpawnError(t, err)
		if err != nil {
			t.Fatalf("SpawnDetached() error = %v", err)
		}

		if !IsProcessRunning(pid) {
			t.Error("Spawned process is not running")
		}

		waitForContent(t, logPath, "test output")
	})

	t.Run("creates log directory if missing", func(t *testing.T) {
		logPath := filepath.Join(tmpDir, "nested", "dir", "test.log")

		_, err := NewSpawner().SpawnDetached("sh", []string{"-c", "echo 'test'"}, logPath)
		skipOnSpawnError(t, err)
		if err != nil {
			t.Fatalf("SpawnDetached() error = %v", err)
		}

		if _, err := os.Stat(filepath.Dir(logPath)); err != nil {
			t.Errorf("Log directory was not created: %v", err)
		}
	})

	t.Run("passes environment and directory", func(t *testing.T) {
		logPath := filepath.Join(tmpDir, "env.log")
		workDir := t.TempDir()
		spawner := &Spawner{Env: []string{"ZEN_TEST_VAR=hello"}, Dir: workDir}

		_, err := spawner.SpawnDetached("/bin/sh", []string{"-c", "echo $ZEN_TEST_VAR; pwd"}, logPath)
		skipOnSpawnError(t, err)
		if err != nil {
			t.Fatalf("SpawnDetached() error = %v", err)
		}

		waitForContent(t, logPath, "hello")
		resolved, _ := filepath.EvalSymlinks(workDir)
		waitForContent(t, logPath, filepath.Base(resolved))
	})

	t.Run("fails for missing binary", func(t *testing.T) {
		_, err := NewSpawner().SpawnDetached("/nonexistent/binary", nil, filepath.Join(tmpDir, "missing.log"))
		if err == nil {
			t.Error("SpawnDetached() expected error for missing binary")
		}
	})
}

func waitForContent(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		content, _ := os.ReadFile(path)
		if strings.Contains(string(content), want) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	content, _ := os.ReadFile(path)
	t.Errorf("%s does not contain %q: %s", path, want, content)
}
