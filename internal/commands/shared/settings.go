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

package shared

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tombee/zenlaunch/internal/config"
	"github.com/tombee/zenlaunch/internal/log"
	"github.com/tombee/zenlaunch/internal/secrets"
)

// SettingsOptions builds config load options from the global flags.
func SettingsOptions() config.Options {
	serverDir := flags.serverDir
	if serverDir != "" {
		if abs, err := filepath.Abs(serverDir); err == nil {
			serverDir = abs
		}
	}
	return config.Options{
		Path: flags.config,
		Overrides: config.Overrides{
			ServerDir:   serverDir,
			NoAux:       flags.noAux,
			UseKeychain: flags.keychain,
		},
	}
}

// LoadSettings loads settings honoring --config and the override flags.
func LoadSettings() (config.Settings, error) {
	return config.Load(SettingsOptions())
}

// NewLogger builds the CLI logger from the environment; --verbose forces
// debug level.
func NewLogger() *slog.Logger {
	cfg := log.FromEnv()
	if flags.verbose {
		cfg.Level = "debug"
	}
	return log.New(cfg)
}

// ResolveCredentials reads every known credential once from the environment
// and, when enabled, the keychain.
func ResolveCredentials(ctx context.Context, settings config.Settings, logger *slog.Logger) secrets.CredentialSet {
	backends := secrets.DefaultBackends(os.LookupEnv, settings.Secrets.Keychain)
	return secrets.NewResolver(log.WithComponent(logger, "secrets"), backends...).Resolve(ctx)
}
