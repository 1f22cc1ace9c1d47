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

package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPoller_WaitUntil(t *testing.T) {
	errDown := errors.New("connection refused")

	t.Run("succeeds on first attempt", func(t *testing.T) {
		calls := 0
		err := NewPoller().WaitUntil(context.Background(), time.Second, func(context.Context) error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("WaitUntil() error = %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		p := NewPoller().WithBackoff(time.Millisecond, 5*time.Millisecond, 2)
		err := p.WaitUntil(context.Background(), time.Second, func(context.Context) error {
			calls++
			if calls < 3 {
				return errDown
			}
			return nil
		})
		if err != nil {
			t.Fatalf("WaitUntil() error = %v", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("zero budget is a single attempt", func(t *testing.T) {
		calls := 0
		err := NewPoller().WaitUntil(context.Background(), 0, func(context.Context) error {
			calls++
			return errDown
		})
		if !errors.Is(err, ErrReadinessTimeout) {
			t.Errorf("WaitUntil() error = %v, want ErrReadinessTimeout", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("gives up after budget", func(t *testing.T) {
		start := time.Now()
		p := NewPoller().WithBackoff(10*time.Millisecond, 20*time.Millisecond, 2)
		err := p.WaitUntil(context.Background(), 100*time.Millisecond, func(context.Context) error {
			return errDown
		})
		if !errors.Is(err, ErrReadinessTimeout) {
			t.Errorf("WaitUntil() error = %v, want ErrReadinessTimeout", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("WaitUntil() took %v, want about 100ms", elapsed)
		}
	})

	t.Run("stops on context cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewPoller().WaitUntil(ctx, time.Minute, func(context.Context) error {
			return errDown
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WaitUntil() error = %v, want context.Canceled", err)
		}
	})
}
