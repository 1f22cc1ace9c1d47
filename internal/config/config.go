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
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	zerrors "github.com/tombee/zenlaunch/pkg/errors"
)

// Well-known environment variables shared with the extension server. They
// override the config file because the server reads the same names.
const (
	EnvWorkspaceRoot = "WORKSPACE_ROOT"
	EnvAuxHost       = "REDIS_HOST"
	EnvAuxPort       = "REDIS_PORT"

	envPrefix = "ZENLAUNCH_"
)

// ServerNameRegex validates extension server names. The name becomes part of
// every capability name (mcp__<name>__<tool>).
var ServerNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,63}$`)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Settings is the explicit launcher configuration. It is built once at
// process entry by Load and passed by value afterwards.
type Settings struct {
	Agent     AgentSettings   `koanf:"agent" yaml:"agent"`
	Server    ServerSettings  `koanf:"server" yaml:"server"`
	Aux       AuxSettings     `koanf:"aux" yaml:"aux"`
	Secrets   SecretsSettings `koanf:"secrets" yaml:"secrets"`
	Workspace string          `koanf:"workspace" yaml:"workspace"`
	TempDir   string          `koanf:"temp_dir" yaml:"temp_dir"`
	StateDir  string          `koanf:"state_dir" yaml:"state_dir"`

	// Source is the config file that was read, empty when none was.
	Source string `koanf:"-" yaml:"-"`
}

// AgentSettings describes the primary agent CLI.
type AgentSettings struct {
	// Binary is the agent executable name or path.
	Binary string `koanf:"binary" yaml:"binary"`

	// ExtraArgs are appended after the generated arguments.
	ExtraArgs []string `koanf:"extra_args" yaml:"extra_args,omitempty"`
}

// ServerSettings describes how the extension server is started.
type ServerSettings struct {
	Name        string `koanf:"name" yaml:"name"`
	Interpreter string `koanf:"interpreter" yaml:"interpreter"`
	Dir         string `koanf:"dir" yaml:"dir"`
	Entrypoint  string `koanf:"entrypoint" yaml:"entrypoint"`
}

// AuxSettings describes the optional auxiliary cache service.
type AuxSettings struct {
	Host         string        `koanf:"host" yaml:"host"`
	Port         int           `koanf:"port" yaml:"port"`
	Binary       string        `koanf:"binary" yaml:"binary"`
	ProbeTimeout time.Duration `koanf:"probe_timeout" yaml:"probe_timeout"`
	SettleDelay  time.Duration `koanf:"settle_delay" yaml:"settle_delay"`
	Disabled     bool          `koanf:"disabled" yaml:"disabled"`
}

// SecretsSettings controls credential resolution.
type SecretsSettings struct {
	// Keychain enables the OS keychain as a fallback after the environment.
	Keychain bool `koanf:"keychain" yaml:"keychain"`
}

// Overrides carries command-line flags. Non-zero fields win over every
// other source.
type Overrides struct {
	ServerDir   string
	NoAux       bool
	UseKeychain bool
}

// Options controls Load. Zero values use the process environment.
type Options struct {
	// Path is an explicit config file. It must exist when set.
	Path string

	Lookup     LookupFunc
	HomeDir    func() (string, error)
	Executable func() (string, error)

	Overrides Overrides
}

// Default returns the built-in settings. Home-relative fields are left
// empty and resolved by Load.
func Default() Settings {
	return Settings{
		Agent: AgentSettings{
			Binary: "claude",
		},
		Server: ServerSettings{
			Name:        "zen",
			Interpreter: "python3",
			Entrypoint:  "server.py",
		},
		Aux: AuxSettings{
			Host:         "localhost",
			Port:         6379,
			Binary:       "redis-server",
			ProbeTimeout: time.Second,
			SettleDelay:  2 * time.Second,
		},
	}
}

// Load builds Settings from, lowest to highest precedence: built-in
// defaults, the YAML config file, ZENLAUNCH_* environment variables, the
// well-known variables shared with the extension server, and flag overrides.
func Load(opts Options) (Settings, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	homeDir := opts.HomeDir
	if homeDir == nil {
		homeDir = os.UserHomeDir
	}
	home, err := homeDir()
	if err != nil {
		return Settings{}, &zerrors.ConfigError{Key: "workspace", Reason: "cannot determine home directory", Cause: err}
	}

	k := koanf.New(".")

	path := opts.Path
	explicit := path != ""
	if !explicit {
		path = ConfigPath(lookup, home)
	}
	source, err := loadFile(k, path, explicit)
	if err != nil {
		return Settings{}, err
	}

	if err := k.Load(env.Provider(envPrefix, ".", transformEnvKey), nil); err != nil {
		return Settings{}, &zerrors.ConfigError{Reason: "failed to load environment variables", Cause: err}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Settings{}, &zerrors.ConfigError{Reason: "failed to decode settings", Cause: err}
	}
	cfg.Source = source

	if err := cfg.applyWellKnownEnv(lookup); err != nil {
		return Settings{}, err
	}
	cfg.applyOverrides(opts.Overrides)
	if err := cfg.applyDefaults(lookup, home, opts.Executable); err != nil {
		return Settings{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// loadFile reads the YAML config into k. A missing default file is not an
// error; a missing explicit file is.
func loadFile(k *koanf.Koanf, path string, explicit bool) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return "", nil
		}
		return "", &zerrors.ConfigError{Key: "config_file", Reason: fmt.Sprintf("failed to read %s", path), Cause: err}
	}
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return "", &zerrors.ConfigError{Key: "config_file", Reason: fmt.Sprintf("failed to parse %s", path), Cause: err}
	}
	return path, nil
}

// transformEnvKey maps ZENLAUNCH_SECTION_FIELD_NAME to section.field_name.
// Top-level keys keep their underscores.
//
//	ZENLAUNCH_AGENT_BINARY       -> agent.binary
//	ZENLAUNCH_AUX_PROBE_TIMEOUT  -> aux.probe_timeout
//	ZENLAUNCH_TEMP_DIR           -> temp_dir
func transformEnvKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	switch lower {
	case "workspace", "temp_dir", "state_dir":
		return lower
	}
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func (c *Settings) applyWellKnownEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvWorkspaceRoot); ok && v != "" {
		c.Workspace = v
	}
	if v, ok := lookup(EnvAuxHost); ok && v != "" {
		c.Aux.Host = v
	}
	if v, ok := lookup(EnvAuxPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &zerrors.ConfigError{Key: EnvAuxPort, Reason: fmt.Sprintf("not a port number: %q", v), Cause: err}
		}
		c.Aux.Port = port
	}
	return nil
}

func (c *Settings) applyOverrides(o Overrides) {
	if o.ServerDir != "" {
		c.Server.Dir = o.ServerDir
	}
	if o.NoAux {
		c.Aux.Disabled = true
	}
	if o.UseKeychain {
		c.Secrets.Keychain = true
	}
}

// applyDefaults fills the fields whose defaults depend on the user or the
// installed binary.
func (c *Settings) applyDefaults(lookup LookupFunc, home string, executable func() (string, error)) error {
	if c.Workspace == "" {
		c.Workspace = home
	}
	if c.StateDir == "" {
		c.StateDir = StateDir(lookup, home)
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.Server.Dir == "" {
		dir, err := executableDir(executable)
		if err != nil {
			return &zerrors.ConfigError{Key: "server.dir", Reason: "cannot locate the launcher executable", Cause: err}
		}
		c.Server.Dir = dir
	}
	return nil
}

func executableDir(executable func() (string, error)) (string, error) {
	if executable == nil {
		executable = os.Executable
	}
	exe, err := executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Validate checks the settings for values that cannot work.
func (c *Settings) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Agent.Binary) == "" {
		errs = append(errs, "agent.binary must not be empty")
	}
	if !ServerNameRegex.MatchString(c.Server.Name) {
		errs = append(errs, fmt.Sprintf("server.name must match %s, got %q", ServerNameRegex.String(), c.Server.Name))
	}
	if strings.TrimSpace(c.Server.Interpreter) == "" {
		errs = append(errs, "server.interpreter must not be empty")
	}
	if strings.TrimSpace(c.Server.Entrypoint) == "" {
		errs = append(errs, "server.entrypoint must not be empty")
	}
	if c.Aux.Port < 1 || c.Aux.Port > 65535 {
		errs = append(errs, fmt.Sprintf("aux.port must be between 1 and 65535, got %d", c.Aux.Port))
	}
	if c.Aux.ProbeTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("aux.probe_timeout must be positive, got %v", c.Aux.ProbeTimeout))
	}
	if c.Aux.SettleDelay < 0 {
		errs = append(errs, fmt.Sprintf("aux.settle_delay must not be negative, got %v", c.Aux.SettleDelay))
	}

	if len(errs) > 0 {
		return &zerrors.ConfigError{Key: "validation", Reason: strings.Join(errs, "; ")}
	}
	return nil
}

// ServerEntrypointPath returns the extension server entry point, resolved
// against Server.Dir unless already absolute.
func (c Settings) ServerEntrypointPath() string {
	if filepath.IsAbs(c.Server.Entrypoint) {
		return c.Server.Entrypoint
	}
	return filepath.Join(c.Server.Dir, c.Server.Entrypoint)
}

// Addr returns the auxiliary service host:port.
func (a AuxSettings) Addr() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// YAML renders the effective settings.
func (c Settings) YAML() ([]byte, error) {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return data, nil
}
