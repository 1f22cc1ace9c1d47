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

// Package toolchain locates the external executables a launch depends on.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// versionTimeout bounds a --version probe.
const versionTimeout = 5 * time.Second

var versionRegex = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// LookPathFunc resolves an executable name to a path.
type LookPathFunc func(name string) (string, error)

// Tool is a required executable and how to get it.
type Tool struct {
	// Name is the executable name or path as configured.
	Name string

	// Role describes what the tool is for ("agent CLI", "server interpreter").
	Role string

	// Hint tells the user how to install it.
	Hint string
}

// Agent describes the primary agent CLI.
func Agent(name string) Tool {
	return Tool{
		Name: name,
		Role: "agent CLI",
		Hint: "Install it with 'npm install -g @anthropic-ai/claude-code' or set agent.binary",
	}
}

// Interpreter describes the extension server interpreter.
func Interpreter(name string) Tool {
	return Tool{
		Name: name,
		Role: "server interpreter",
		Hint: "Install Python 3 (https://www.python.org/downloads/) or set server.interpreter",
	}
}

// AuxServer describes the auxiliary cache server binary.
func AuxServer(name string) Tool {
	return Tool{
		Name: name,
		Role: "auxiliary service",
		Hint: "Install Redis ('brew install redis' or 'apt install redis-server') for conversation memory",
	}
}

// MissingError lists every required tool that could not be found.
type MissingError struct {
	Missing []Tool
}

func (e *MissingError) Error() string {
	names := make([]string, len(e.Missing))
	for i, tool := range e.Missing {
		names[i] = tool.Name
	}
	return fmt.Sprintf("required executable not found on PATH: %s", strings.Join(names, ", "))
}

// IsUserVisible implements errors.UserVisibleError.
func (e *MissingError) IsUserVisible() bool { return true }

// UserMessage implements errors.UserVisibleError.
func (e *MissingError) UserMessage() string {
	parts := make([]string, len(e.Missing))
	for i, tool := range e.Missing {
		parts[i] = fmt.Sprintf("%s (%s)", tool.Name, tool.Role)
	}
	return "missing dependency: " + strings.Join(parts, ", ")
}

// Suggestion implements errors.UserVisibleError.
func (e *MissingError) Suggestion() string {
	hints := make([]string, 0, len(e.Missing))
	for _, tool := range e.Missing {
		hints = append(hints, tool.Hint)
	}
	return strings.Join(hints, "\n")
}

// Resolver looks executables up on PATH.
type Resolver struct {
	lookPath LookPathFunc
}

// NewResolver creates a resolver. A nil lookPath uses exec.LookPath.
func NewResolver(lookPath LookPathFunc) *Resolver {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	return &Resolver{lookPath: lookPath}
}

// Find resolves a single executable to an absolute path.
func (r *Resolver) Find(name string) (string, error) {
	path, err := r.lookPath(name)
	if err != nil {
		return "", err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

// Resolve resolves every tool and returns their paths keyed by Tool.Name.
// All tools are checked before returning so the error names every missing one.
func (r *Resolver) Resolve(tools ...Tool) (map[string]string, error) {
	paths := make(map[string]string, len(tools))
	var missing []Tool
	for _, tool := range tools {
		path, err := r.Find(tool.Name)
		if err != nil {
			missing = append(missing, tool)
			continue
		}
		paths[tool.Name] = path
	}
	if len(missing) > 0 {
		return paths, &MissingError{Missing: missing}
	}
	return paths, nil
}

// Available reports whether name resolves on PATH.
func (r *Resolver) Available(name string) bool {
	_, err := r.Find(name)
	return err == nil
}

// DetectVersion runs "<path> --version" and extracts the first X.Y.Z it
// finds. Older interpreters print the version on stderr, so both streams are
// searched. Unparseable output is returned trimmed; no output yields "unknown".
func DetectVersion(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--version")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to get version: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	output := strings.TrimSpace(stdout.String() + "\n" + stderr.String())
	if matches := versionRegex.FindStringSubmatch(output); len(matches) > 1 {
		return matches[1], nil
	}
	if output != "" {
		return output, nil
	}
	return "unknown", nil
}
