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

// Package secrets implements "zenlaunch secrets", which manages the
// credentials the launcher can read from the OS keychain.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/zenlaunch/internal/cli/prompt"
	"github.com/tombee/zenlaunch/internal/commands/shared"
	"github.com/tombee/zenlaunch/internal/log"
	"github.com/tombee/zenlaunch/internal/secrets"
	zerrors "github.com/tombee/zenlaunch/pkg/errors"
)

var (
	// Replaced in tests.
	newKeychain = func() secrets.Backend { return secrets.NewKeychainBackend() }
	readSecret  = shared.ReadSecret
	lookupEnv   = os.LookupEnv
	newConfirm  = func() prompt.Confirmer {
		return prompt.NewSurveyConfirmer(!shared.IsNonInteractive())
	}
)

// CredentialStatus describes one known credential.
type CredentialStatus struct {
	Name       string `json:"name"`
	Required   bool   `json:"required"`
	Source     string `json:"source,omitempty"`
	Masked     string `json:"masked,omitempty"`
	InKeychain bool   `json:"in_keychain"`
}

type statusResponse struct {
	shared.JSONResponse
	KeychainEnabled   bool               `json:"keychain_enabled"`
	KeychainAvailable bool               `json:"keychain_available"`
	Credentials       []CredentialStatus `json:"credentials"`
}

// NewCommand creates the secrets command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "secrets",
		Annotations: map[string]string{
			"group": "management",
		},
		Short: "Manage credentials stored in the OS keychain",
		Long: `Manage the API keys the launcher reads.

Credentials are read from the environment first. With --keychain (or
secrets.keychain: true in the config file) the OS keychain is used for any
credential the environment does not set; the environment always wins.

Known credentials:
  ANTHROPIC_API_KEY     required
  GEMINI_API_KEY        alternate
  OPENAI_API_KEY        alternate
  OPENROUTER_API_KEY    alternate

Commands:
  status    Show where each credential comes from
  set       Store a credential in the keychain
  delete    Remove a credential from the keychain`,
	}

	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newDeleteCommand())

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where each credential comes from",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Store a credential in the keychain",
		Long: `Store a credential in the OS keychain.

The value is read from a hidden prompt, or from the first line of standard
input when it is not a terminal:

  zenlaunch secrets set GEMINI_API_KEY
  echo "$KEY" | zenlaunch secrets set OPENAI_API_KEY`,
		Args: cobra.ExactArgs(1),
		RunE: runSet,
	}
}

func newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a credential from the keychain",
		Long: `Remove a credential from the OS keychain.

Asks for confirmation when run from a terminal. Pass --yes to skip the
question; non-interactive runs never ask.`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}
	cmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	settings, err := shared.LoadSettings()
	if err != nil {
		return shared.NewFailure("", err)
	}
	ctx := cmd.Context()

	env := secrets.NewEnvBackend(lookupEnv)
	keychain := newKeychain()

	resp := statusResponse{
		JSONResponse:      shared.NewJSONResponse("secrets status", true),
		KeychainEnabled:   settings.Secrets.Keychain,
		KeychainAvailable: keychain.Available(),
	}

	for _, name := range secrets.KnownNames() {
		status := CredentialStatus{Name: name, Required: name == secrets.PrimaryKey}

		var stored string
		if keychain.Available() {
			stored, _ = keychain.Get(ctx, name)
			status.InKeychain = stored != ""
		}

		if value, err := env.Get(ctx, name); err == nil {
			status.Source, status.Masked = env.Name(), log.SanitizeAPIKey(value)
		} else if stored != "" && settings.Secrets.Keychain {
			status.Source, status.Masked = keychain.Name(), log.SanitizeAPIKey(stored)
		}
		resp.Credentials = append(resp.Credentials, status)
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSONTo(out, resp)
	}

	for _, c := range resp.Credentials {
		label := fmt.Sprintf("%-20s", c.Name)
		switch {
		case c.Source != "":
			fmt.Fprintln(out, shared.RenderOK(label+" "+shared.RenderLabel(c.Masked+" ("+c.Source+")")))
		case c.InKeychain:
			fmt.Fprintln(out, shared.RenderWarn(label+" "+shared.RenderLabel("in keychain; pass --keychain to use it")))
		case c.Required:
			fmt.Fprintln(out, shared.RenderError(label+" "+shared.RenderLabel("not set (required)")))
		default:
			fmt.Fprintln(out, "  "+label+" "+shared.RenderLabel("not set"))
		}
	}
	if !resp.KeychainAvailable {
		fmt.Fprintln(out, "\n"+shared.RenderLabel("OS keychain unavailable on this system"))
	}
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	name, err := knownName(args[0])
	if err != nil {
		return err
	}
	keychain, err := availableKeychain()
	if err != nil {
		return err
	}

	value, err := readSecret(fmt.Sprintf("Enter value for %s: ", name))
	if err != nil {
		return shared.NewFailure("no value stored", err)
	}

	if err := keychain.Set(cmd.Context(), name, value); err != nil {
		return shared.NewFailure("failed to store credential", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("stored %s in the keychain (%s)", name, log.SanitizeAPIKey(value))))
	if _, set := lookupEnv(name); set {
		fmt.Fprintln(cmd.OutOrStdout(), shared.RenderWarn(name+" is also set in the environment, which takes precedence"))
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	name, err := knownName(args[0])
	if err != nil {
		return err
	}
	keychain, err := availableKeychain()
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if confirm := newConfirm(); !yes && confirm.IsInteractive() {
		ok, err := confirm.Confirm(cmd.Context(), fmt.Sprintf("Delete %s from the keychain?", name), false)
		if err != nil {
			return shared.NewFailure("", err)
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderLabel("nothing deleted"))
			return nil
		}
	}

	if err := keychain.Delete(cmd.Context(), name); err != nil {
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return shared.NewFailure(name+" is not in the keychain", nil)
		}
		return shared.NewFailure("failed to delete credential", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("deleted "+name+" from the keychain"))
	return nil
}

func knownName(name string) (string, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !secrets.IsKnown(name) {
		return "", shared.NewFailure("", &zerrors.PreconditionError{
			What:    name,
			Message: "unknown credential",
			Hint:    "Known credentials: " + strings.Join(secrets.KnownNames(), ", "),
		})
	}
	return name, nil
}

func availableKeychain() (secrets.Backend, error) {
	keychain := newKeychain()
	if !keychain.Available() {
		return nil, shared.NewFailure("", &zerrors.PreconditionError{
			What:    "keychain",
			Message: "OS keychain is unavailable",
			Hint:    "Export the credential in your shell profile instead",
		})
	}
	return keychain, nil
}
