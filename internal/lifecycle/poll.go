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
	"fmt"
	"time"
)

// ErrReadinessTimeout is returned when a check never passes within the budget.
var ErrReadinessTimeout = errors.New("readiness timeout")

// Poller retries a check with exponential backoff.
type Poller struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
}

// NewPoller creates a poller.
// Default backoff: 50ms initial, 2x multiplier, 1s max interval.
func NewPoller() *Poller {
	return &Poller{
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		multiplier:      2.0,
	}
}

// WithBackoff configures custom backoff parameters.
func (p *Poller) WithBackoff(initial, max time.Duration, multiplier float64) *Poller {
	p.initialInterval = initial
	p.maxInterval = max
	p.multiplier = multiplier
	return p
}

// WaitUntil calls check until it returns nil or budget elapses. The check
// always runs at least once, and once more at the deadline, so a zero budget
// means a single attempt.
func (p *Poller) WaitUntil(ctx context.Context, budget time.Duration, check func(context.Context) error) error {
	deadline := time.Now().Add(budget)
	interval := p.initialInterval
	attempts := 0

	for {
		attempts++
		err := check(ctx)
		if err == nil {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w after %d attempts: %v", ErrReadinessTimeout, attempts, err)
		}

		wait := interval
		if wait > remaining {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		interval = time.Duration(float64(interval) * p.multiplier)
		if interval > p.maxInterval {
			interval = p.maxInterval
		}
	}
}
