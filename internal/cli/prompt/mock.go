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

package prompt

import (
	"context"
	"sync"
)

// MockConfirmer implements Confirmer with scripted answers for testing.
// Once the answers run out it returns the default.
type MockConfirmer struct {
	mu          sync.Mutex
	answers     []bool
	interactive bool
	messages    []string
}

// NewMockConfirmer creates a mock confirmer with pre-scripted answers.
func NewMockConfirmer(interactive bool, answers ...bool) *MockConfirmer {
	return &MockConfirmer{answers: answers, interactive: interactive}
}

// Confirm records message and returns the next scripted answer.
func (mc *MockConfirmer) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if !mc.interactive {
		return false, ErrNonInteractive
	}
	mc.messages = append(mc.messages, message)
	if len(mc.answers) == 0 {
		return def, nil
	}
	answer := mc.answers[0]
	mc.answers = mc.answers[1:]
	return answer, nil
}

// IsInteractive returns the configured interactivity.
func (mc *MockConfirmer) IsInteractive() bool {
	return mc.interactive
}

// Messages returns the prompts shown so far.
func (mc *MockConfirmer) Messages() []string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return append([]string(nil), mc.messages...)
}
