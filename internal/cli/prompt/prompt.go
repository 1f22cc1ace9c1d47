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

// Package prompt asks the user yes/no questions before destructive actions.
package prompt

import (
	"context"
	"errors"
)

// ErrNonInteractive is returned when a prompt is attempted without a terminal.
var ErrNonInteractive = errors.New("cannot prompt in non-interactive mode")

// Confirmer asks the user to confirm an action.
type Confirmer interface {
	// Confirm shows message and returns the user's answer, or def when the
	// user accepts the default.
	Confirm(ctx context.Context, message string, def bool) (bool, error)

	// IsInteractive reports whether Confirm can reach the user.
	IsInteractive() bool
}
