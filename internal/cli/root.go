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

package cli

import (
	"github.com/spf13/cobra"

	auxcmd "github.com/tombee/zenlaunch/internal/commands/auxcmd"
	"github.com/tombee/zenlaunch/internal/commands/doctor"
	"github.com/tombee/zenlaunch/internal/commands/launch"
	"github.com/tombee/zenlaunch/internal/commands/secrets"
	"github.com/tombee/zenlaunch/internal/commands/shared"
	versioncmd "github.com/tombee/zenlaunch/internal/commands/version"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command. Positional arguments run a
// launch; everything else is a subcommand.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           launch.Use,
		Short:         "Launch the Claude agent with the zen extension server attached",
		Long:          launch.Long,
		Example:       launch.Example,
		Args:          launch.Args,
		RunE:          launch.Run,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	// Get flag pointers from shared package
	verbose, quiet, json, config := shared.RegisterFlagPointers()
	serverDir, noAux, keychain := shared.RegisterSettingsFlagPointers()

	// Add global flags
	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Suppress status output (warnings and errors are still shown)")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/zenlaunch/config.yaml)")
	cmd.PersistentFlags().StringVar(serverDir, "server-dir", "", "Extension server directory (default: the launcher's own directory)")
	cmd.PersistentFlags().BoolVar(noAux, "no-aux", false, "Do not probe or start the auxiliary service")
	cmd.PersistentFlags().BoolVar(keychain, "keychain", false, "Read credentials missing from the environment from the OS keychain")

	launch.AddFlags(cmd)

	cmd.AddCommand(doctor.NewCommand())
	cmd.AddCommand(auxcmd.NewCommand())
	cmd.AddCommand(secrets.NewCommand())
	cmd.AddCommand(versioncmd.NewVersionCommand())

	// Custom help command with JSON support
	cmd.SetHelpCommand(NewHelpCommand(cmd))

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
