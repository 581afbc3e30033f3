// Package flight manages the request lifecycle of the search modes. Each
// mode owns one Controller enforcing single-flight: beginning a new
// request supersedes and cancels the one still in the air, and every
// request carries a deadline so an unresponsive backend never wedges the
// mode. Busy-state transitions are reported through hooks so surfaces can
// disable and restore their controls.
package flight

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// ErrSuperseded marks a request canceled because a newer request took
// over its mode.
var ErrSuperseded = errors.New("flight: superseded by a newer request")

// Ticket represents one admitted request. The context carries the
// deadline and is canceled on supersession; callers must pass it to
// every blocking call of the request and call End when done.
type Ticket struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	seq    uint64
	start  time.Time
}

// Context returns the request-scoped context.
func (t *Ticket) Context() context.Context { return t.ctx }

// Elapsed reports how long the ticket has been in flight.
func (t *Ticket) Elapsed() time.Duration { return time.Since(t.start) }

// Controller serializes requests for one mode.
type Controller struct {
	mu      sync.Mutex
	timeout time.Duration
	current *Ticket
	seq     uint64

	// OnBusy fires when the mode transitions idle to busy, OnIdle on the
	// way back. Both run under the controller lock: keep them short.
	OnBusy func()
	OnIdle func()
}

// NewController creates a controller with the given per-request timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewController(timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Controller{timeout: timeout}
}

// Begin admits a new request, canceling the one currently in flight for
// this mode. The returned ticket's context derives from parent and
// expires after the controller timeout.
func (c *Controller) Begin(parent context.Context) *Ticket {
	if parent == nil {
		parent = context.Background()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	wasIdle := c.current == nil
	if c.current != nil {
		c.current.cancel(ErrSuperseded)
	}

	ctx, cancel := context.WithCancelCause(parent)
	ctx, cancelTimeout := context.WithTimeoutCause(ctx, c.timeout, context.DeadlineExceeded)

	c.seq++
	t := &Ticket{
		ctx: ctx,
		cancel: func(cause error) {
			cancel(cause)
			cancelTimeout()
		},
		seq:   c.seq,
		start: time.Now(),
	}
	c.current = t

	if wasIdle && c.OnBusy != nil {
		c.OnBusy()
	}
	return t
}

// End releases the ticket. Safe to call on every exit path; only the
// ticket still holding the mode flips it back to idle, so a superseded
// request finishing late never clobbers its successor.
func (c *Controller) End(t *Ticket) {
	if t == nil {
		return
	}
	t.cancel(context.Canceled)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != t {
		return
	}
	c.current = nil
	if c.OnIdle != nil {
		c.OnIdle()
	}
}

// IsCurrent reports whether the ticket still holds its mode. Responses
// arriving on a superseded ticket must be discarded, not rendered.
func (c *Controller) IsCurrent(t *Ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return t != nil && c.current == t
}

// Busy reports whether a request is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Cancel aborts the in-flight request, if any, with the given cause.
func (c *Controller) Cancel(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.cancel(cause)
	}
}

// IsTimeout reports whether err means the request hit its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsSuperseded reports whether err means a newer request took over.
// Transports surface the cancel as context.Canceled; the cause on the
// ticket context tells the two apart.
func IsSuperseded(t *Ticket, err error) bool {
	if errors.Is(err, ErrSuperseded) {
		return true
	}
	if t == nil || !errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(context.Cause(t.ctx), ErrSuperseded)
}
