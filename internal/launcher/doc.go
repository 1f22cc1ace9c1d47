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
Package launcher runs one agent session with the extension server attached.

A launch is strictly linear:

 1. Validate the environment: the primary credential must be set. Missing
    alternate credentials only degrade the extension tools.
 2. Validate the toolchain: the agent CLI and the server interpreter must
    resolve on PATH.
 3. Ensure the auxiliary cache. This never fails a launch.
 4. Render the MCP configuration to a private temp file.
 5. Run the agent with inherited stdio, wait for it, remove the file and
    mirror the agent's exit code.

Nothing is written or spawned before steps 1 and 2 pass. Once the file
exists its removal is deferred, and SIGINT, SIGTERM and SIGHUP cancel the
run context instead of killing the launcher, so removal happens exactly once
on every exit path short of SIGKILL.
*/
package launcher
