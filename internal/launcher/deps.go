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
	"fmt"
	"os"
	"path/filepath"

	"github.com/tombee/zenlaunch/internal/tracing"
	zerrors "github.com/tombee/zenlaunch/pkg/errors"
)

// requirementsFile is the server's pip requirements manifest.
const requirementsFile = "requirements.txt"

// installDeps runs "<interpreter> -m pip install -r requirements.txt" in the
// server directory. A missing manifest is a warning.
func (l *Launcher) installDeps(ctx context.Context, interpreter string, dryRun bool) error {
	ctx, span := l.tracer.Start(ctx, "deps.install")
	defer span.End()

	manifest := filepath.Join(l.settings.Server.Dir, requirementsFile)
	if _, err := os.Stat(manifest); err != nil {
		if os.IsNotExist(err) {
			l.reporter.Warn("No %s in %s; skipping dependency install", requirementsFile, l.settings.Server.Dir)
			return nil
		}
		return zerrors.Wrap(err, "checking server requirements")
	}

	if dryRun {
		l.reporter.Status("Would install server dependencies from %s", manifest)
		return nil
	}

	l.reporter.Status("Installing server dependencies from %s", manifest)
	code, err := l.runner.Run(ctx, Command{
		Path: interpreter,
		Args: []string{"-m", "pip", "install", "-r", manifest},
		Dir:  l.settings.Server.Dir,
	})
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}
	if code != 0 {
		err := &zerrors.PreconditionError{
			What:    "pip",
			Message: fmt.Sprintf("dependency install failed with exit code %d", code),
			Hint:    fmt.Sprintf("Run '%s -m pip install -r %s' to see the full error", interpreter, manifest),
		}
		tracing.RecordError(span, err)
		return err
	}
	return nil
}
