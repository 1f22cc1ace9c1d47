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

package errors_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	zerrors "github.com/tombee/zenlaunch/pkg/errors"
)

func TestWrap(t *testing.T) {
	t.Run("wraps error with context", func(t *testing.T) {
		original := errors.New("original error")
		wrapped := zerrors.Wrap(original, "additional context")

		if !strings.Contains(wrapped.Error(), "additional context") {
			t.Errorf("wrapped error should contain context, got: %s", wrapped)
		}
		if !errors.Is(wrapped, original) {
			t.Error("wrapped error should match original with errors.Is")
		}
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		if zerrors.Wrap(nil, "context") != nil {
			t.Error("Wrap(nil, _) should return nil")
		}
	})
}

func TestFindUserVisible(t *testing.T) {
	t.Run("finds wrapped precondition error", func(t *testing.T) {
		pre := &zerrors.PreconditionError{What: "python3", Message: "not found", Hint: "install python"}
		err := fmt.Errorf("toolchain: %w", pre)

		found, ok := zerrors.FindUserVisible(err)
		if !ok {
			t.Fatal("expected to find user visible error")
		}
		if found.Suggestion() != "install python" {
			t.Errorf("unexpected suggestion %q", found.Suggestion())
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if _, ok := zerrors.FindUserVisible(errors.New("boom")); ok {
			t.Error("plain error should not be user visible")
		}
	})

	t.Run("nil error", func(t *testing.T) {
		if _, ok := zerrors.FindUserVisible(nil); ok {
			t.Error("nil should not be user visible")
		}
	})

	t.Run("wrapped config error keeps its suggestion", func(t *testing.T) {
		err := zerrors.Wrap(&zerrors.ConfigError{Key: "aux.port", Reason: "bad"}, "load")
		found, ok := zerrors.FindUserVisible(err)
		if !ok || !strings.Contains(found.Suggestion(), "aux.port") {
			t.Errorf("FindUserVisible() = %v, %v", found, ok)
		}
	})
}
