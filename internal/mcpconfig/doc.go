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

// Package mcpconfig builds the MCP configuration handed to the agent CLI.
//
// The configuration registers exactly one extension server. It is rendered
// from explicit structs to JSON and written to a private temp file that lives
// only as long as the agent process:
//
//	cfg := mcpconfig.Build(settings, interpreterPath, creds)
//	artifact, err := mcpconfig.WriteArtifact(settings.TempDir, cfg)
//	if err != nil {
//	    return err
//	}
//	defer artifact.Remove()
//
// The package also exposes the fixed capability allow-list and a probe that
// asks the extension server which tools it actually serves.
package mcpconfig
