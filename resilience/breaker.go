// Package resilience guards calls to the durable store with a time budget and a
// per-name circuit breaker.
package resilience

import (
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls flow through and outcomes are tracked.
	StateClosed State = iota
	// StateOpen means calls are refused until the cooldown elapses.
	StateOpen
	// StateHalfOpen means a limited number of trial calls are admitted.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// StateChange describes a circuit transition.
type StateChange struct {
	Name string
	From State
	To   State
	At   time.Time
}

// Listener is notified after every transition, outside the breaker lock.
type Listener func(StateChange)

// Permit is handed out by Allow and returned through Record or Release.
// Outcomes carrying a permit from an earlier state are ignored.
type Permit struct {
	generation uint64
}

// Snapshot is a point-in-time view of a breaker.
type Snapshot struct {
	Name        string
	State       State
	Recorded    int
	Failures    int
	FailureRate float64
}

// Breaker is a count-based circuit breaker.
//
// Closed: the last SlidingWindowSize outcomes are kept in a ring. Once at least
// MinimumNumberOfCalls are recorded and the failure rate reaches
// FailureRateThreshold the circuit opens.
//
// Open: Allow fails with ErrCircuitOpen until WaitDurationInOpenState has passed,
// then the next Allow moves the circuit to half-open.
//
// HalfOpen: up to PermittedCallsInHalfOpen trials are admitted. The circuit
// reopens as soon as HalfOpenSuccessRatio can no longer be met and closes once
// every trial reported without that happening.
type Breaker struct {
	mu        sync.Mutex
	cfg       Config
	now       func() time.Time
	listeners []Listener

	state      State
	generation uint64
	openedAt   time.Time

	window   []bool
	next     int
	recorded int
	failures int

	trialsIssued   int
	trialSuccesses int
	trialFailures  int
}

// Option configures a Breaker instance.
type Option func(*Breaker)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// WithListener registers a state change listener.
func WithListener(l Listener) Option {
	return func(b *Breaker) {
		if l != nil {
			b.listeners = append(b.listeners, l)
		}
	}
}

// NewBreaker creates a closed circuit breaker. The config must be valid.
func NewBreaker(cfg Config, opts ...Option) (*Breaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Breaker{
		cfg:    cfg,
		now:    time.Now,
		state:  StateClosed,
		window: make([]bool, cfg.SlidingWindowSize),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Name returns the circuit name.
func (b *Breaker) Name() string {
	return b.cfg.Name
}

// Config returns the configuration the breaker was built with.
func (b *Breaker) Config() Config {
	return b.cfg
}

// State returns the current circuit state. An open circuit whose cooldown has
// elapsed is reported as open until the next Allow.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot returns the current counters.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Name:        b.cfg.Name,
		State:       b.state,
		Recorded:    b.recorded,
		Failures:    b.failures,
		FailureRate: b.failureRate(),
	}
}

// Allow asks for permission to call the protected dependency.
func (b *Breaker) Allow() (Permit, error) {
	b.mu.Lock()

	var changes []StateChange
	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.WaitDurationInOpenState {
			b.mu.Unlock()
			return Permit{}, ErrCircuitOpen
		}
		changes = append(changes, b.transition(StateHalfOpen))
	}

	if b.state == StateHalfOpen {
		if b.trialsIssued >= b.cfg.PermittedCallsInHalfOpen {
			b.mu.Unlock()
			b.notify(changes)
			return Permit{}, ErrCircuitOpen
		}
		b.trialsIssued++
	}

	p := Permit{generation: b.generation}
	b.mu.Unlock()
	b.notify(changes)
	return p, nil
}

// Record reports the outcome of a permitted call.
func (b *Breaker) Record(p Permit, failed bool) {
	b.mu.Lock()
	if p.generation != b.generation {
		b.mu.Unlock()
		return
	}

	var changes []StateChange
	switch b.state {
	case StateClosed:
		b.push(failed)
		if b.recorded >= b.cfg.MinimumNumberOfCalls && b.failureRate() >= b.cfg.FailureRateThreshold {
			changes = append(changes, b.transition(StateOpen))
		}
	case StateHalfOpen:
		if failed {
			b.trialFailures++
		} else {
			b.trialSuccesses++
		}
		permitted := b.cfg.PermittedCallsInHalfOpen
		bestCase := float64(permitted-b.trialFailures) / float64(permitted)
		switch {
		case bestCase < b.cfg.HalfOpenSuccessRatio:
			changes = append(changes, b.transition(StateOpen))
		case b.trialSuccesses+b.trialFailures >= permitted:
			changes = append(changes, b.transition(StateClosed))
		}
	}

	b.mu.Unlock()
	b.notify(changes)
}

// Release hands back a permit whose call produced no usable outcome, such as a
// call abandoned by its caller. A half-open trial slot becomes available again.
func (b *Breaker) Release(p Permit) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.generation != b.generation || b.state != StateHalfOpen {
		return
	}
	if b.trialsIssued > b.trialSuccesses+b.trialFailures {
		b.trialsIssued--
	}
}

// Reset forces the circuit closed with empty counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	var changes []StateChange
	if b.state != StateClosed {
		changes = append(changes, b.transition(StateClosed))
	} else {
		b.generation++
		b.clearWindow()
	}
	b.mu.Unlock()
	b.notify(changes)
}

// transition must be called with b.mu held.
func (b *Breaker) transition(to State) StateChange {
	change := StateChange{Name: b.cfg.Name, From: b.state, To: to, At: b.now()}
	b.state = to
	b.generation++

	switch to {
	case StateClosed:
		b.clearWindow()
	case StateOpen:
		b.openedAt = change.At
	case StateHalfOpen:
		b.trialsIssued = 0
		b.trialSuccesses = 0
		b.trialFailures = 0
	}
	return change
}

func (b *Breaker) push(failed bool) {
	if b.recorded == len(b.window) {
		if b.window[b.next] {
			b.failures--
		}
	} else {
		b.recorded++
	}
	b.window[b.next] = failed
	if failed {
		b.failures++
	}
	b.next = (b.next + 1) % len(b.window)
}

func (b *Breaker) clearWindow() {
	for i := range b.window {
		b.window[i] = false
	}
	b.next = 0
	b.recorded = 0
	b.failures = 0
}

func (b *Breaker) failureRate() float64 {
	if b.recorded == 0 {
		return 0
	}
	return float64(b.failures) * 100 / float64(b.recorded)
}

func (b *Breaker) notify(changes []StateChange) {
	for _, change := range changes {
		for _, l := range b.listeners {
			l(change)
		}
	}
}
