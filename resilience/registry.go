package resilience

import (
	"sync"
	"time"
)

// Registry hands out breakers by circuit name so that every guard built for the
// same name shares one state machine.
type Registry struct {
	mu        sync.Mutex
	breakers  map[string]*Breaker
	now       func() time.Time
	listeners []Listener
	onCreate  []func(Snapshot)
}

// NewRegistry creates an empty registry. Listeners are attached to every
// breaker it creates.
func NewRegistry(listeners ...Listener) *Registry {
	return &Registry{
		breakers:  make(map[string]*Breaker),
		now:       time.Now,
		listeners: listeners,
	}
}

// WithClock sets the time source for breakers created afterwards.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if now != nil {
		r.now = now
	}
	return r
}

// OnCreate registers fn to receive the initial snapshot of every breaker
// created afterwards.
func (r *Registry) OnCreate(fn func(Snapshot)) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fn != nil {
		r.onCreate = append(r.onCreate, fn)
	}
	return r
}

// Breaker returns the breaker registered under cfg.Name, creating it on first use.
// Later calls with the same name ignore cfg.
func (r *Registry) Breaker(cfg Config) (*Breaker, error) {
	b, created, err := r.breaker(cfg)
	if err != nil {
		return nil, err
	}
	if created {
		snap := b.Snapshot()
		r.mu.Lock()
		hooks := append([]func(Snapshot){}, r.onCreate...)
		r.mu.Unlock()
		for _, fn := range hooks {
			fn(snap)
		}
	}
	return b, nil
}

func (r *Registry) breaker(cfg Config) (*Breaker, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[cfg.Name]; ok {
		return b, false, nil
	}

	opts := []Option{WithClock(r.now)}
	for _, l := range r.listeners {
		opts = append(opts, WithListener(l))
	}
	b, err := NewBreaker(cfg, opts...)
	if err != nil {
		return nil, false, err
	}
	r.breakers[cfg.Name] = b
	return b, true, nil
}

// Guard returns a guard bound to the named circuit.
func (r *Registry) Guard(cfg Config) (*Guard, error) {
	b, err := r.Breaker(cfg)
	if err != nil {
		return nil, err
	}
	return NewGuard(b, cfg.MaxCallDuration), nil
}

// Lookup returns a registered breaker.
func (r *Registry) Lookup(name string) (*Breaker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[name]
	return b, ok
}

// Snapshots returns the state of every registered breaker.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	out := make([]Snapshot, 0, len(breakers))
	for _, b := range breakers {
		out = append(out, b.Snapshot())
	}
	return out
}
