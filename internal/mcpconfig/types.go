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

package mcpconfig

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tombee/zenlaunch/internal/config"
	"github.com/tombee/zenlaunch/internal/log"
	"github.com/tombee/zenlaunch/internal/secrets"
)

// Tools are the extension server tools granted to the agent. They are always
// granted together.
var Tools = []string{"chat", "thinkdeep", "codereview", "precommit", "debug", "analyze"}

// Capabilities returns the fully qualified allow-list for server, in Tools
// order: mcp__<server>__<tool>.
func Capabilities(server string) []string {
	names := make([]string, len(Tools))
	for i, tool := range Tools {
		names[i] = CapabilityName(server, tool)
	}
	return names
}

// CapabilityName qualifies a tool name with its server.
func CapabilityName(server, tool string) string {
	return fmt.Sprintf("mcp__%s__%s", server, tool)
}

// LaunchConfig is the document the agent reads via --mcp-config.
type LaunchConfig struct {
	MCPServers map[string]ServerEntry `json:"mcpServers"`
}

// ServerEntry describes how the agent starts one MCP server.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// EnvList returns Env as sorted KEY=VALUE pairs.
func (e ServerEntry) EnvList() []string {
	keys := make([]string, 0, len(e.Env))
	for k := range e.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, len(keys))
	for i, k := range keys {
		env[i] = k + "=" + e.Env[k]
	}
	return env
}

// Build assembles the configuration for the extension server. Only alternate
// credentials that are set are passed through; the primary credential stays
// with the agent.
func Build(settings config.Settings, interpreterPath string, creds secrets.CredentialSet) LaunchConfig {
	env := map[string]string{
		config.EnvWorkspaceRoot: settings.Workspace,
		config.EnvAuxHost:       settings.Aux.Host,
		config.EnvAuxPort:       strconv.Itoa(settings.Aux.Port),
	}
	for _, c := range creds.Alternates() {
		env[c.Name] = c.Value
	}

	return LaunchConfig{
		MCPServers: map[string]ServerEntry{
			settings.Server.Name: {
				Command: interpreterPath,
				Args:    []string{settings.ServerEntrypointPath()},
				Env:     env,
			},
		},
	}
}

// Server returns the entry for name.
func (c LaunchConfig) Server(name string) (ServerEntry, bool) {
	entry, ok := c.MCPServers[name]
	return entry, ok
}

// Marshal renders the configuration as indented JSON.
func (c LaunchConfig) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal launch configuration: %w", err)
	}
	return append(data, '\n'), nil
}

// Redacted returns a copy with credential values masked. The receiver is
// not modified.
func (c LaunchConfig) Redacted() LaunchConfig {
	out := LaunchConfig{MCPServers: make(map[string]ServerEntry, len(c.MCPServers))}
	for name, entry := range c.MCPServers {
		copied := ServerEntry{
			Command: entry.Command,
			Args:    append([]string(nil), entry.Args...),
		}
		if entry.Env != nil {
			copied.Env = make(map[string]string, len(entry.Env))
			for k, v := range entry.Env {
				if isSecretName(k) {
					v = log.SanitizeAPIKey(v)
				}
				copied.Env[k] = v
			}
		}
		out.MCPServers[name] = copied
	}
	return out
}

func isSecretName(name string) bool {
	if secrets.IsKnown(name) {
		return true
	}
	upper := strings.ToUpper(name)
	return strings.HasSuffix(upper, "_KEY") || strings.Contains(upper, "TOKEN") || strings.Contains(upper, "SECRET")
}
