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
)

var (
	// ErrSecretNotFound is returned when a credential is not present in a backend.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrBackendUnavailable is returned when a backend cannot be used in the current environment.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrReadOnlyBackend is returned when attempting to modify a read-only backend.
	ErrReadOnlyBackend = errors.New("backend is read-only")
)

// Backend is a source of credential values, queried in priority order by
// the Resolver.
type Backend interface {
	// Name returns the backend identifier recorded as a credential's Source.
	Name() string

	// Get retrieves a value by credential name. Returns ErrSecretNotFound if
	// the name is absent or empty.
	Get(ctx context.Context, name string) (string, error)

	// Set stores a value. Returns ErrReadOnlyBackend if not supported.
	Set(ctx context.Context, name string, value string) error

	// Delete removes a value. Returns ErrSecretNotFound if not present.
	Delete(ctx context.Context, name string) error

	// Available returns true if this backend is usable in the current environment.
	Available() bool

	// Priority returns the resolution priority (higher = checked first).
	// Standard priorities: env (100), keychain (50).
	Priority() int
}
