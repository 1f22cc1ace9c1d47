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

/*
Package cli provides the root command for zenlaunch.

The root command itself runs a launch; maintenance commands hang off it.
Individual commands are implemented in the internal/commands subpackages.

# Command Tree

	zenlaunch <request-text> [working-directory]
	├── doctor        Check launch preconditions without launching
	├── aux           Manage the auxiliary cache service
	│   ├── status
	│   ├── start
	│   └── stop
	├── secrets       Manage keychain-stored credentials
	│   ├── status
	│   ├── set
	│   └── delete
	├── version       Show version
	└── help          Show help

A request text equal to a subcommand name runs that subcommand.

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

All commands inherit these flags:

	--verbose, -v    Enable debug logging
	--quiet, -q      Suppress status output
	--json           Output in JSON format
	--config         Path to config file
	--server-dir     Extension server directory
	--no-aux         Skip the auxiliary service
	--keychain       Fall back to the OS keychain for credentials

The root command also takes --dry-run and --install-deps.

# Exit Codes

  - 0: Success
  - 1: Usage error, failed precondition or internal failure
  - otherwise: the agent's own exit code, or 128+n if it was killed by signal n
*/
package cli
