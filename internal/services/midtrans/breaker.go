package midtrans

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned without issuing the call while the
// breaker is cooling down after repeated gateway failures.
var ErrBreakerOpen = errors.New("midtrans: circuit breaker is open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateHalfOpen
	stateOpen
)

// Breaker trips after the gateway keeps failing, so a dead gateway
// fails order creation fast instead of tying every request up in a
// full timeout.
type Breaker struct {
	name         string
	maxFailures  uint32
	cooldown     time.Duration
	probeBudget  uint32

	mu       sync.Mutex
	state    breakerState
	failures uint32
	probes   uint32
	openedAt time.Time
}

func NewBreaker(name string) *Breaker {
	return &Breaker{
		name:        name,
		maxFailures: 5,
		cooldown:    30 * time.Second,
		probeBudget: 1,
	}
}

// Do runs fn under the breaker's admission policy and records its
// outcome.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		if time.Since(b.openedAt) < b.cooldown {
			return ErrBreakerOpen
		}
		b.state = stateHalfOpen
		b.probes = 0
		fallthrough
	case stateHalfOpen:
		if b.probes >= b.probeBudget {
			return ErrBreakerOpen
		}
		b.probes++
	}
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.state = stateClosed
		b.failures = 0
		return
	}

	b.failures++
	if b.state == stateHalfOpen || b.failures >= b.maxFailures {
		b.state = stateOpen
		b.openedAt = time.Now()
		b.failures = 0
	}
}
