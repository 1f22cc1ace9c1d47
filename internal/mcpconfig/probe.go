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
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultProbeTimeout bounds a probe when the caller sets no deadline.
const DefaultProbeTimeout = 30 * time.Second

// ProbeResult reports what a running extension server serves.
type ProbeResult struct {
	ServerName    string   `json:"server_name"`
	ServerVersion string   `json:"server_version"`
	Tools         []string `json:"tools"`

	// Missing lists allow-listed tools the server does not serve.
	Missing []string `json:"missing,omitempty"`
}

// Probe starts the server described by entry over stdio, performs the MCP
// initialize handshake, lists its tools and shuts it down again. It never
// calls a tool.
func Probe(ctx context.Context, entry ServerEntry, clientVersion string) (*ProbeResult, error) {
	if entry.Command == "" {
		return nil, fmt.Errorf("command is required")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultProbeTimeout)
		defer cancel()
	}

	// NewStdioMCPClient spawns the server immediately.
	mcpClient, err := client.NewStdioMCPClient(entry.Command, entry.EnvList(), entry.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to start MCP server: %w", err)
	}
	defer mcpClient.Close()

	initReq := mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "zenlaunch",
				Version: clientVersion,
			},
		},
	}
	initResult, err := mcpClient.Initialize(ctx, initReq)
	if err != nil {
		return nil, fmt.Errorf("initialize request failed: %w", err)
	}

	toolsResult, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	result := &ProbeResult{
		ServerName:    initResult.ServerInfo.Name,
		ServerVersion: initResult.ServerInfo.Version,
		Tools:         make([]string, 0, len(toolsResult.Tools)),
	}
	served := make(map[string]bool, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		result.Tools = append(result.Tools, tool.Name)
		served[tool.Name] = true
	}
	sort.Strings(result.Tools)
	result.Missing = MissingTools(served)

	return result, nil
}

// MissingTools returns the allow-listed tools absent from served, in Tools order.
func MissingTools(served map[string]bool) []string {
	var missing []string
	for _, tool := range Tools {
		if !served[tool] {
			missing = append(missing, tool)
		}
	}
	return missing
}
