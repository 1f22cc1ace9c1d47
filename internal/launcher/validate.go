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
	"context"
	"os"
	"path/filepath"

	"github.com/tombee/zenlaunch/internal/secrets"
	"github.com/tombee/zenlaunch/internal/toolchain"
	"github.com/tombee/zenlaunch/internal/tracing"
	zerrors "github.com/tombee/zenlaunch/pkg/errors"
)

// toolPaths are the resolved executables for one launch.
type toolPaths struct {
	agent       string
	interpreter string
}

// validate checks credentials, then the toolchain, then the working
// directory. It writes nothing and spawns nothing.
func (l *Launcher) validate(ctx context.Context, req Request) (toolPaths, string, error) {
	_, span := l.tracer.Start(ctx, "validate")
	defer span.End()

	if err := l.validateCredentials(); err != nil {
		tracing.RecordError(span, err)
		return toolPaths{}, "", err
	}

	tools, err := l.validateToolchain()
	if err != nil {
		tracing.RecordError(span, err)
		return toolPaths{}, "", err
	}

	workDir, err := resolveWorkingDir(req.WorkingDir)
	if err != nil {
		tracing.RecordError(span, err)
		return toolPaths{}, "", err
	}

	return tools, workDir, nil
}

// validateCredentials fails without the primary credential and warns once
// when no alternate is set.
func (l *Launcher) validateCredentials() error {
	if !l.creds.HasPrimary() {
		return &zerrors.PreconditionError{
			What:    secrets.PrimaryKey,
			Message: "primary credential is not set",
			Hint:    "export " + secrets.PrimaryKey + "=<your key>, or store it with 'zenlaunch secrets set " + secrets.PrimaryKey + " --keychain'",
		}
	}
	if !l.creds.HasAlternate() {
		l.reporter.Warn("No alternate model credentials set (%s); extension tools will have limited functionality",
			joinNames(secrets.AlternateNames))
	}
	return nil
}

func (l *Launcher) validateToolchain() (toolPaths, error) {
	agent := toolchain.Agent(l.settings.Agent.Binary)
	interpreter := toolchain.Interpreter(l.settings.Server.Interpreter)

	paths, err := l.resolver.Resolve(agent, interpreter)
	if err != nil {
		return toolPaths{}, err
	}
	return toolPaths{
		agent:       paths[agent.Name],
		interpreter: paths[interpreter.Name],
	}, nil
}

// resolveWorkingDir returns an absolute, existing directory. Empty means
// the current directory.
func resolveWorkingDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerrors.Wrap(err, "resolving working directory")
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", &zerrors.PreconditionError{
			What:    abs,
			Message: "working directory does not exist",
			Hint:    "Pass an existing directory as the second argument",
		}
	}
	return abs, nil
}
