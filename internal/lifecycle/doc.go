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

/*
Package lifecycle manages processes the launcher starts but does not wait
for, and the JSON-lines history it keeps about them.

# Process Spawning

The auxiliary cache service is started detached, in its own session, so it
outlives the launch that started it:

	spawner := lifecycle.NewSpawner()
	pid, err := spawner.SpawnDetached("redis-server", []string{"--port", "6379"}, logPath)

# PID Files

The recorded PID belongs to the detached process, not to the launcher, so
the file is written atomically and never locked:

	pidfile := lifecycle.NewPIDFile(filepath.Join(stateDir, "redis.pid"))
	if err := pidfile.Write(pid); err != nil {
	    // Handle error
	}

# Process Operations

Signals are only sent after checking the PID still belongs to the expected
program, since a stale PID file may name an unrelated process:

	if err := lifecycle.VerifyOwner(pid, "redis-server"); err != nil {
	    // stale PID file, or the PID was reused
	}
	err := lifecycle.Terminate(ctx, pid, 5*time.Second)

# Readiness Polling

Poller retries a check with exponential backoff until it passes or a budget
is spent:

	err := lifecycle.NewPoller().WaitUntil(ctx, 2*time.Second, probe)

# History

Launches and auxiliary service events are appended as JSON lines:

	history := lifecycle.NewHistoryLogger(filepath.Join(stateDir, "launches.log"))
	history.LogLaunch(record)
*/
package lifecycle
