package circuit

import (
	"errors"
	"sync"
	"time"

	"github.com/TemirB/jewelry-pricing/internal/config"
)

var ErrOpen = errors.New("circuit open")

type State int

const (
	Closed   State = iota // Ok, normal behavior
	Open                  // Do not allow requests until the timeout passes
	HalfOpen              // Trial requests only
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Breaker implements the Circuit Breaker.
// After 'threshold' errors in Closed state, it opens the circuit.
// In Open state, it blocks all requests for 'halfOpenAfter' duration.
// In HalfOpen state, it allows up to 'maxHalfOpen' trial requests.
// Requires explicit Success()/Failure() calls to report outcomes.
type Breaker struct {
	mu                 sync.Mutex
	state              State
	errs, threshold    int
	halfOpenAfter      time.Duration
	lastChange         time.Time
	trial, maxHalfOpen int
	now                func() time.Time

	totalSuccess uint64
	totalFailure uint64
}

type Stats struct {
	State        State
	TotalSuccess uint64
	TotalFailure uint64
	LastChange   time.Time
}

func New(threshold int, wait time.Duration, maxHalfOpen int) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	if maxHalfOpen < 1 {
		maxHalfOpen = 1
	}
	return &Breaker{
		state:         Closed,
		threshold:     threshold,
		halfOpenAfter: wait,
		lastChange:    time.Now(),
		maxHalfOpen:   maxHalfOpen,
		now:           time.Now,
	}
}

func FromConfig(cfg config.Breaker) *Breaker {
	return New(cfg.Threshold, cfg.OpenTimeout, cfg.MaxHalfOpen)
}

// Allow checks if a request is permitted.
// Returns ErrOpen if circuit is open or half-open trial limit reached.
// Automatically transitions Open→HalfOpen after timeout.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	switch b.state {
	case Open:
		if now.Sub(b.lastChange) < b.halfOpenAfter {
			return ErrOpen
		}
		b.transitionTo(now, HalfOpen)
		b.trial++
		return nil
	case HalfOpen:
		if b.trial >= b.maxHalfOpen {
			return ErrOpen
		}
		b.trial++
		return nil
	default:
		return nil
	}
}

// Success reports a successful operation and closes a half-open circuit.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalSuccess++
	switch b.state {
	case HalfOpen:
		b.transitionTo(b.now(), Closed)
	case Closed:
		b.errs = 0
	}
}

// Failure reports a failed operation.
// Triggers Closed→Open transition if error threshold reached.
// Immediate HalfOpen→Open transition on any failure.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalFailure++
	switch b.state {
	case HalfOpen:
		b.transitionTo(b.now(), Open)
	case Closed:
		b.errs++
		if b.errs >= b.threshold {
			b.transitionTo(b.now(), Open)
		}
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		State:        b.state,
		TotalSuccess: b.totalSuccess,
		TotalFailure: b.totalFailure,
		LastChange:   b.lastChange,
	}
}

func (b *Breaker) transitionTo(now time.Time, next State) {
	b.state = next
	b.lastChange = now
	b.trial = 0
	if next == Closed {
		b.errs = 0
	}
}
