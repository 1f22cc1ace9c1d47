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
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/zenlaunch/internal/commands/shared"
	"github.com/tombee/zenlaunch/internal/config"
	"github.com/tombee/zenlaunch/internal/secrets"
)

const docsURL = "https://github.com/tombee/zenlaunch#readme"

// CommandMetadata describes one command in `help --json`.
type CommandMetadata struct {
	Name        string         `json:"name"`
	Short       string         `json:"short"`
	Long        string         `json:"long,omitempty"`
	Usage       string         `json:"usage"`
	Flags       []FlagMetadata `json:"flags,omitempty"`
	Examples    string         `json:"examples,omitempty"`
	Subcommands []string       `json:"subcommands,omitempty"`
	Group       string         `json:"group,omitempty"`
	Aliases     []string       `json:"aliases,omitempty"`
}

type FlagMetadata struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
}

// EnvMetadata describes an environment variable the launcher reads.
type EnvMetadata struct {
	Name   string `json:"name"`
	Usage  string `json:"usage"`
	Secret bool   `json:"secret,omitempty"`
}

// HelpResponse is the `help --json` envelope. Root and Commands are set for
// the full listing, Command for a single lookup.
type HelpResponse struct {
	shared.JSONResponse
	Root        *CommandMetadata    `json:"root,omitempty"`
	Commands    []CommandMetadata   `json:"commands,omitempty"`
	Groups      map[string][]string `json:"groups,omitempty"`
	Command     *CommandMetadata    `json:"command,omitempty"`
	GlobalFlags []FlagMetadata      `json:"global_flags,omitempty"`
	Environment []EnvMetadata       `json:"environment,omitempty"`
	DocsURL     string              `json:"docs_url"`
}

// environment lists credentials first, then the well-known settings
// variables. ZENLAUNCH_* keys are documented by their config path.
func environment() []EnvMetadata {
	vars := []EnvMetadata{
		{Name: secrets.PrimaryKey, Usage: "Primary credential, required for every launch", Secret: true},
	}
	for _, name := range secrets.AlternateNames {
		vars = append(vars, EnvMetadata{Name: name, Usage: "Alternate provider credential passed to the extension server", Secret: true})
	}
	return append(vars,
		EnvMetadata{Name: config.EnvWorkspaceRoot, Usage: "Workspace directory the extension server operates in"},
		EnvMetadata{Name: config.EnvAuxHost, Usage: "Auxiliary service host"},
		EnvMetadata{Name: config.EnvAuxPort, Usage: "Auxiliary service port"},
		EnvMetadata{Name: "ZENLAUNCH_<SECTION>_<KEY>", Usage: "Overrides any config file key, e.g. ZENLAUNCH_AGENT_BINARY"},
	)
}

// NewHelpCommand replaces cobra's help command with one that also answers
// in JSON.
func NewHelpCommand(rootCmd *cobra.Command) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Long: `Help shows the launch usage and every management command.

Run 'zenlaunch help <command>' for one command. With --json the output
also lists global flags and the environment variables zenlaunch reads.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON := shared.GetJSON() || jsonOutput

			if len(args) == 0 {
				if asJSON {
					return writeOverview(cmd, rootCmd)
				}
				return rootCmd.Help()
			}

			target, _, err := rootCmd.Find(args)
			if err != nil || target == rootCmd {
				return fmt.Errorf("command %q not found", args[0])
			}
			if asJSON {
				return writeCommand(cmd, target, rootCmd)
			}
			return target.Help()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func writeOverview(cmd, rootCmd *cobra.Command) error {
	resp := HelpResponse{
		JSONResponse: shared.NewJSONResponse("help", true),
		Groups:       map[string][]string{},
		GlobalFlags:  visibleFlags(rootCmd.PersistentFlags()),
		Environment:  environment(),
		DocsURL:      docsURL,
	}
	root := describe(rootCmd)
	resp.Root = &root

	for _, c := range rootCmd.Commands() {
		if c.Hidden {
			continue
		}
		meta := describe(c)
		resp.Commands = append(resp.Commands, meta)
		if meta.Group != "" {
			resp.Groups[meta.Group] = append(resp.Groups[meta.Group], meta.Name)
		}
	}
	for _, names := range resp.Groups {
		sort.Strings(names)
	}
	return shared.EmitJSONTo(cmd.OutOrStdout(), resp)
}

func writeCommand(cmd, target, rootCmd *cobra.Command) error {
	meta := describe(target)
	return shared.EmitJSONTo(cmd.OutOrStdout(), HelpResponse{
		JSONResponse: shared.NewJSONResponse("help "+target.Name(), true),
		Command:      &meta,
		GlobalFlags:  visibleFlags(rootCmd.PersistentFlags()),
		DocsURL:      docsURL,
	})
}

// describe reports a command with its local flags only; persistent flags
// appear once under global_flags.
func describe(cmd *cobra.Command) CommandMetadata {
	meta := CommandMetadata{
		Name:     cmd.Name(),
		Short:    cmd.Short,
		Long:     cmd.Long,
		Usage:    cmd.UseLine(),
		Examples: cmd.Example,
		Aliases:  cmd.Aliases,
		Group:    cmd.Annotations["group"],
		Flags:    visibleFlags(cmd.LocalNonPersistentFlags()),
	}
	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			meta.Subcommands = append(meta.Subcommands, sub.Name())
		}
	}
	return meta
}

func visibleFlags(set *pflag.FlagSet) []FlagMetadata {
	var out []FlagMetadata
	set.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		out = append(out, FlagMetadata{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Usage:     f.Usage,
			Default:   f.DefValue,
		})
	})
	return out
}
