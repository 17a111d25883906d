package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig tunes a breaker. Zero values fall back to defaults.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 15 * time.Second
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = 2
	}
	return c
}

// CircuitBreaker guards calls to a remote dependency. It opens after
// FailureThreshold consecutive failures, rejects calls for OpenTimeout, then
// lets HalfOpenMaxReq probes through. All probes must pass to close again.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig

	state    CircuitState
	failures int
	until    time.Time
	probes   int
	passed   int

	clock  func() time.Time
	notify func(from, to CircuitState)
}

// NewCircuitBreakerFromConfig builds a closed breaker.
func NewCircuitBreakerFromConfig(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:   cfg.withDefaults(),
		state: CircuitStateClosed,
		clock: time.Now,
	}
}

// OnStateChange registers fn to run, under the breaker lock, on every transition.
func (b *CircuitBreaker) OnStateChange(fn func(from, to CircuitState)) {
	b.mu.Lock()
	b.notify = fn
	b.mu.Unlock()
}

// Execute runs fn when the breaker allows it. A nil result or one accepted by
// isSuccess counts as success.
func (b *CircuitBreaker) Execute(fn func() error, isSuccess func(error) bool) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn()
	b.settle(err == nil || (isSuccess != nil && isSuccess(err)))
	return err
}

// State reports the current state. An open breaker whose timeout elapsed
// reads as half-open.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && !b.clock().Before(b.until) {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateOpen:
		if b.clock().Before(b.until) {
			return ErrCircuitOpen
		}
		b.moveTo(CircuitStateHalfOpen)
		fallthrough
	case CircuitStateHalfOpen:
		if b.probes >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.probes++
	}
	return nil
}

func (b *CircuitBreaker) settle(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		if ok {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.moveTo(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		if !ok {
			b.moveTo(CircuitStateOpen)
			return
		}
		b.passed++
		if b.passed >= b.cfg.HalfOpenMaxReq {
			b.moveTo(CircuitStateClosed)
		}
	case CircuitStateOpen:
		// A call admitted before the trip failed late; push the window out.
		if !ok {
			b.until = b.clock().Add(b.cfg.OpenTimeout)
		}
	}
}

func (b *CircuitBreaker) moveTo(to CircuitState) {
	from := b.state
	b.state = to
	b.failures, b.probes, b.passed = 0, 0, 0
	b.until = time.Time{}
	if to == CircuitStateOpen {
		b.until = b.clock().Add(b.cfg.OpenTimeout)
	}
	if from != to && b.notify != nil {
		b.notify(from, to)
	}
}
