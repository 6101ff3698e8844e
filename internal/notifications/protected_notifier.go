package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type breakerState string

const (
	stateClosed   breakerState = "closed"
	stateOpen     breakerState = "open"
	stateHalfOpen breakerState = "half_open"
)

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // per send
	FailureThreshold int           // consecutive failures that open the circuit
	Cooldown         time.Duration // time spent open before trial calls are let through
	HalfOpenMaxCalls int           // concurrent trial calls while half-open
}

// ProtectedNotifier keeps a slow or dead broker from stalling sellers' status updates:
// each send is bounded by a timeout and repeated failures short-circuit to ErrCircuitOpen.
type ProtectedNotifier struct {
	inner Notifier
	cfg   ProtectedNotifierConfig
	now   func() time.Time

	mu                  sync.Mutex
	state               breakerState
	consecutiveFailures int
	openedAt            time.Time
	trialsInFlight      int
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedNotifier{
		inner: inner,
		cfg:   cfg,
		now:   time.Now,
		state: stateClosed,
	}
}

func (n *ProtectedNotifier) NotifyOrderStatus(ctx context.Context, input OrderStatusChanged) error {
	if !n.acquire() {
		return ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	err := n.inner.NotifyOrderStatus(sendCtx, input)
	n.release(err)

	return err
}

func (n *ProtectedNotifier) State() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return string(n.state)
}

func (n *ProtectedNotifier) acquire() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case stateOpen:
		if n.now().Sub(n.openedAt) < n.cfg.Cooldown {
			return false
		}
		n.transition(stateHalfOpen)
		n.trialsInFlight = 1
		return true
	case stateHalfOpen:
		if n.trialsInFlight >= n.cfg.HalfOpenMaxCalls {
			return false
		}
		n.trialsInFlight++
		return true
	default:
		return true
	}
}

func (n *ProtectedNotifier) release(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == stateHalfOpen && n.trialsInFlight > 0 {
		n.trialsInFlight--
	}

	if err == nil {
		n.consecutiveFailures = 0
		n.transition(stateClosed)
		return
	}

	n.consecutiveFailures++

	if n.state == stateHalfOpen || n.consecutiveFailures >= n.cfg.FailureThreshold {
		n.openedAt = n.now()
		n.transition(stateOpen)
	}
}

// transition must be called with mu held.
func (n *ProtectedNotifier) transition(to breakerState) {
	if n.state == to {
		return
	}
	slog.Warn("notifier circuit state changed", "from", string(n.state), "to", string(to), "failures", n.consecutiveFailures)
	n.state = to
}
