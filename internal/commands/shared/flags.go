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

// globalFlags holds the persistent flags bound on the root command.
type globalFlags struct {
	verbose bool
	quiet   bool
	json    bool
	config  string

	// Settings overrides; zero values leave the loaded settings untouched.
	serverDir string
	noAux     bool
	keychain  bool
}

type buildInfo struct {
	version, commit, date string
}

var (
	flags globalFlags

	// Set from main via ldflags.
	build = buildInfo{version: "dev", commit: "unknown", date: "unknown"}
)

// RegisterFlagPointers returns the output flag targets in the order
// --verbose, --quiet, --json, --config.
func RegisterFlagPointers() (*bool, *bool, *bool, *string) {
	return &flags.verbose, &flags.quiet, &flags.json, &flags.config
}

// RegisterSettingsFlagPointers returns the targets for --server-dir,
// --no-aux and --keychain.
func RegisterSettingsFlagPointers() (*string, *bool, *bool) {
	return &flags.serverDir, &flags.noAux, &flags.keychain
}

func SetVersion(v, c, b string) {
	build = buildInfo{version: v, commit: c, date: b}
}

// GetVersion returns version, commit and build date.
func GetVersion() (string, string, string) {
	return build.version, build.commit, build.date
}

func GetQuiet() bool { return flags.quiet }

func GetJSON() bool { return flags.json }

// SetConfigPathForTest stands in for --config.
func SetConfigPathForTest(path string) {
	flags.config = path
}

// ResetFlagsForTest clears every global flag. Build info is kept.
func ResetFlagsForTest() {
	flags = globalFlags{}
}
