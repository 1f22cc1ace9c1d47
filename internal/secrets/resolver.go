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
	"log/slog"
	"sort"
)

// Resolver queries a chain of Backends in priority order.
type Resolver struct {
	backends []Backend
	logger   *slog.Logger
}

// NewResolver creates a resolver with the given backends.
// Unavailable backends are dropped and the rest sorted by priority, highest first.
func NewResolver(logger *slog.Logger, backends ...Backend) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	available := make([]Backend, 0, len(backends))
	for _, b := range backends {
		if b.Available() {
			available = append(available, b)
		} else {
			logger.Debug("secret backend unavailable", slog.String("backend", b.Name()))
		}
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].Priority() > available[j].Priority()
	})

	return &Resolver{backends: available, logger: logger}
}

// Lookup returns the first value found for name and the backend it came from.
func (r *Resolver) Lookup(ctx context.Context, name string) (Credential, error) {
	if len(r.backends) == 0 {
		return Credential{Name: name}, fmt.Errorf("%w: no available backends", ErrBackendUnavailable)
	}

	var lastErr error
	for _, backend := range r.backends {
		value, err := backend.Get(ctx, name)
		if err == nil {
			return Credential{Name: name, Value: value, Source: backend.Name()}, nil
		}
		if !errors.Is(err, ErrSecretNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return Credential{Name: name}, fmt.Errorf("failed to get credential %q: %w", name, lastErr)
	}
	return Credential{Name: name}, fmt.Errorf("%w: %q", ErrSecretNotFound, name)
}

// Resolve reads every known credential once. Lookup failures other than
// not-found are logged and the credential is treated as absent; the caller
// decides what absence means.
func (r *Resolver) Resolve(ctx context.Context) CredentialSet {
	get := func(name string) Credential {
		c, err := r.Lookup(ctx, name)
		if err != nil {
			if !errors.Is(err, ErrSecretNotFound) {
				r.logger.Debug("credential lookup failed", slog.String("name", name), slog.Any("error", err))
			}
			return Credential{Name: name}
		}
		return c
	}

	set := CredentialSet{primary: get(PrimaryKey)}
	for _, name := range AlternateNames {
		set.alternates = append(set.alternates, get(name))
	}
	return set
}

// DefaultBackends returns the environment backend plus, when useKeychain is
// set, the OS keychain.
func DefaultBackends(lookup func(string) (string, bool), useKeychain bool) []Backend {
	backends := []Backend{NewEnvBackend(lookup)}
	if useKeychain {
		backends = append(backends, NewKeychainBackend())
	}
	return backends
}
