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

// Package secrets resolves the provider credentials handed to the agent and
// the extension server.
//
// Credentials are read from backends in priority order. The environment
// backend is always present and always wins; the OS keychain backend is an
// opt-in fallback for names the environment does not provide.
//
// Values are opaque. Presence is the only validation: an empty string counts
// as absent.
package secrets
