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

package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	KeychainBackendPriority = 50

	// KeychainService is the service every credential is filed under; the
	// credential name is the account.
	KeychainService = "zenlaunch"
)

// Substrings go-keyring backends put in errors when the store exists but
// cannot be used: locked, no D-Bus session, access prompt dismissed.
var unavailableMarkers = []string{
	"locked",
	"cannot access",
	"permission denied",
	"failed to unlock",
	"user interaction required",
	"secret service",
	"dbus",
	"user canceled",
}

// KeychainBackend reads and writes credentials in the OS keychain (macOS
// Keychain, Secret Service on Linux, Windows Credential Manager).
type KeychainBackend struct {
	available bool
}

// NewKeychainBackend probes the keychain once with a read of the primary
// credential. A keychain that cannot be read is reported unavailable rather
// than failing every lookup.
func NewKeychainBackend() *KeychainBackend {
	_, err := keyring.Get(KeychainService, PrimaryKey)
	return &KeychainBackend{available: err == nil || errors.Is(err, keyring.ErrNotFound)}
}

func (k *KeychainBackend) Name() string { return "keychain" }

func (k *KeychainBackend) Available() bool { return k.available }

func (k *KeychainBackend) Priority() int { return KeychainBackendPriority }

func (k *KeychainBackend) Get(ctx context.Context, name string) (string, error) {
	if err := k.ready(); err != nil {
		return "", err
	}
	value, err := keyring.Get(KeychainService, name)
	if err != nil {
		return "", keyringError(name, err)
	}
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return value, nil
}

func (k *KeychainBackend) Set(ctx context.Context, name string, value string) error {
	if err := k.ready(); err != nil {
		return err
	}
	return keyringError(name, keyring.Set(KeychainService, name, value))
}

func (k *KeychainBackend) Delete(ctx context.Context, name string) error {
	if err := k.ready(); err != nil {
		return err
	}
	return keyringError(name, keyring.Delete(KeychainService, name))
}

func (k *KeychainBackend) ready() error {
	if !k.available {
		return fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}
	return nil
}

// keyringError maps go-keyring failures onto the backend sentinels. A nil
// err stays nil.
func keyringError(name string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keyring.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	case keychainUnavailable(err):
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	default:
		return fmt.Errorf("keychain error for %s: %w", name, err)
	}
}

func keychainUnavailable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range unavailableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
