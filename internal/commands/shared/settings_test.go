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
	"path/filepath"
	"testing"
)

func TestSettingsOptions(t *testing.T) {
	t.Cleanup(ResetFlagsForTest)
	ResetFlagsForTest()

	serverDir, noAux, keychain := RegisterSettingsFlagPointers()
	*serverDir = "relative/server"
	*noAux = true
	*keychain = true
	SetConfigPathForTest("/etc/zenlaunch.yaml")

	opts := SettingsOptions()
	if opts.Path != "/etc/zenlaunch.yaml" {
		t.Errorf("Path = %q", opts.Path)
	}
	if !filepath.IsAbs(opts.Overrides.ServerDir) {
		t.Errorf("ServerDir = %q, want absolute", opts.Overrides.ServerDir)
	}
	if filepath.Base(opts.Overrides.ServerDir) != "server" {
		t.Errorf("ServerDir = %q", opts.Overrides.ServerDir)
	}
	if !opts.Overrides.NoAux || !opts.Overrides.UseKeychain {
		t.Errorf("Overrides = %+v", opts.Overrides)
	}
}

func TestSettingsOptions_Empty(t *testing.T) {
	t.Cleanup(ResetFlagsForTest)
	ResetFlagsForTest()

	opts := SettingsOptions()
	if opts.Path != "" || opts.Overrides.ServerDir != "" || opts.Overrides.NoAux || opts.Overrides.UseKeychain {
		t.Errorf("expected zero options, got %+v", opts)
	}
}
