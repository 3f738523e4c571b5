package clients

import (
	"sync"
	"time"
)

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	// BreakerClosed lets every call through.
	BreakerClosed BreakerState = iota

	// BreakerOpen rejects calls until OpenTimeout has passed.
	BreakerOpen

	// BreakerHalfOpen lets up to HalfOpenLimit probes through.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a Breaker. Zero fields take the defaults below.
type BreakerConfig struct {
	// MaxFailures consecutive failures open the breaker.
	MaxFailures int

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration

	// HalfOpenLimit bounds concurrent probes, and is the number of
	// successful probes that close the breaker again.
	HalfOpenLimit int
}

const (
	defaultMaxFailures   = 5
	defaultOpenTimeout   = 30 * time.Second
	defaultHalfOpenLimit = 1
)

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.MaxFailures <= 0 {
		c.MaxFailures = defaultMaxFailures
	}

	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}

	if c.HalfOpenLimit <= 0 {
		c.HalfOpenLimit = defaultHalfOpenLimit
	}

	return c
}

// Breaker is a circuit breaker:
//
//	closed    -> open       after MaxFailures consecutive failures
//	open      -> half-open  once OpenTimeout has passed
//	half-open -> closed     after HalfOpenLimit successful probes
//	half-open -> open       on any failed probe
//
// It is safe for concurrent use.
type Breaker struct {
	cfg      BreakerConfig
	now      func() time.Time
	onChange func(from, to BreakerState)

	mu        sync.Mutex
	state     BreakerState
	failures  int
	successes int
	probes    int
	openedAt  time.Time
}

// NewBreaker creates a closed breaker. onChange, when not nil, is called
// after every transition, outside the breaker's lock.
func NewBreaker(cfg BreakerConfig, onChange func(from, to BreakerState)) *Breaker {
	return &Breaker{cfg: cfg.withDefaults(), now: time.Now, onChange: onChange}
}

// Allow reports whether a call may proceed. Every allowed call must be
// followed by exactly one Done.
func (b *Breaker) Allow() bool {
	b.mu.Lock()

	var (
		allowed bool
		from    = b.state
	)

	switch b.state {
	case BreakerClosed:
		allowed = true
	case BreakerOpen:
		if b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
			b.moveTo(BreakerHalfOpen)
			b.probes = 1
			allowed = true
		}
	case BreakerHalfOpen:
		if b.probes < b.cfg.HalfOpenLimit {
			b.probes++
			allowed = true
		}
	}

	to := b.state
	b.mu.Unlock()

	b.notify(from, to)

	return allowed
}

// Done records the outcome of an allowed call.
func (b *Breaker) Done(success bool) {
	b.mu.Lock()

	from := b.state

	switch {
	case b.state == BreakerOpen:
		// A call allowed before the breaker opened.
	case b.state == BreakerHalfOpen && success:
		b.probes--
		b.successes++
		if b.successes >= b.cfg.HalfOpenLimit {
			b.moveTo(BreakerClosed)
		}
	case b.state == BreakerHalfOpen:
		b.moveTo(BreakerOpen)
	case success:
		b.failures = 0
	default:
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.moveTo(BreakerOpen)
		}
	}

	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

// State returns the current state. An open breaker whose timeout has passed
// still reports open until the next Allow.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// moveTo must be called with mu held.
func (b *Breaker) moveTo(to BreakerState) {
	b.state = to
	b.failures = 0
	b.successes = 0
	b.probes = 0

	if to == BreakerOpen {
		b.openedAt = b.now()
	}
}

func (b *Breaker) notify(from, to BreakerState) {
	if from != to && b.onChange != nil {
		b.onChange(from, to)
	}
}
