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
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// Spawner starts processes that outlive the launcher.
type Spawner struct {
	Env []string
	// Dir is the child's working directory; empty means ours.
	Dir string
}

// NewSpawner returns a Spawner passing the current environment through.
func NewSpawner() *Spawner {
	return &Spawner{Env: os.Environ()}
}

func (s *Spawner) WithDir(dir string) *Spawner {
	s.Dir = dir
	return s
}

// SpawnDetached starts binary in a new session with no stdin and with
// stdout and stderr appended to logPath, then releases it. The PID is
// returned even when Release fails, since the child is already running.
func (s *Spawner) SpawnDetached(binary string, args []string, logPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return 0, fmt.Errorf("failed to create log directory: %w", err)
	}
	out, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", logPath, err)
	}
	defer out.Close()

	cmd := exec.Command(binary, args...)
	cmd.Env, cmd.Dir = s.Env, s.Dir
	cmd.Stdout, cmd.Stderr = out, out
	// Setsid makes the child a session and group leader; adding Setpgid
	// would fail with EPERM.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", binary, err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("started PID %d but failed to release it: %w", pid, err)
	}
	return pid, nil
}
