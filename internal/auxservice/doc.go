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

// Package auxservice keeps the optional Redis cache that backs the extension
// server's conversation memory available.
//
// The service is best effort. Ensure never fails a launch: when the cache is
// unreachable and cannot be started the caller gets a degraded Result and a
// reason to show the user. The port is neither owned nor locked; whatever
// answers PING on it counts as running.
package auxservice
