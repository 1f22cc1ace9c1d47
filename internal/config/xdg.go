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

package config

import (
	"path/filepath"
)

const appName = "zenlaunch"

// ConfigDir returns the configuration directory following the XDG base
// directory spec: $XDG_CONFIG_HOME/zenlaunch or ~/.config/zenlaunch.
// The directory is not created; a launch never writes config.
func ConfigDir(lookup LookupFunc, home string) string {
	if xdg, ok := lookup("XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, appName)
	}
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the default config file path.
func ConfigPath(lookup LookupFunc, home string) string {
	return filepath.Join(ConfigDir(lookup, home), "config.yaml")
}

// StateDir returns the directory for runtime state (auxiliary service pid and
// log, launch history): $XDG_STATE_HOME/zenlaunch or ~/.local/state/zenlaunch.
func StateDir(lookup LookupFunc, home string) string {
	if xdg, ok := lookup("XDG_STATE_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, appName)
	}
	return filepath.Join(home, ".local", "state", appName)
}
