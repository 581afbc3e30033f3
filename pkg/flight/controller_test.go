package flight

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBeginSupersedesPrevious(t *testing.T) {
	c := NewController(time.Minute)

	first := c.Begin(context.Background())
	second := c.Begin(context.Background())

	select {
	case <-first.Context().Done():
	default:
		t.Fatal("first ticket context should be canceled after supersession")
	}
	if !errors.Is(context.Cause(first.Context()), ErrSuperseded) {
		t.Errorf("cause = %v, want ErrSuperseded", context.Cause(first.Context()))
	}

	if c.IsCurrent(first) {
		t.Error("superseded ticket should not be current")
	}
	if !c.IsCurrent(second) {
		t.Error("new ticket should be current")
	}

	select {
	case <-second.Context().Done():
		t.Error("second ticket should still be live")
	default:
	}
}

func TestEndOnlyReleasesCurrent(t *testing.T) {
	c := NewController(time.Minute)

	first := c.Begin(context.Background())
	second := c.Begin(context.Background())

	// A superseded request finishing late must not free the mode.
	c.End(first)
	if !c.Busy() {
		t.Error("mode should still be busy while the successor is in flight")
	}
	if !c.IsCurrent(second) {
		t.Error("second ticket should survive the late End of the first")
	}

	c.End(second)
	if c.Busy() {
		t.Error("mode should be idle after the current ticket ends")
	}
}

func TestBusyIdleHooks(t *testing.T) {
	c := NewController(time.Minute)

	var events []string
	c.OnBusy = func() { events = append(events, "busy") }
	c.OnIdle = func() { events = append(events, "idle") }

	first := c.Begin(context.Background())
	second := c.Begin(context.Background())
	c.End(first)
	c.End(second)

	// Supersession keeps the mode busy: one busy, one idle.
	want := []string{"busy", "idle"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestTimeout(t *testing.T) {
	c := NewController(10 * time.Millisecond)
	ticket := c.Begin(context.Background())
	defer c.End(ticket)

	select {
	case <-ticket.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("ticket did not time out")
	}
	if !IsTimeout(ticket.Context().Err()) {
		t.Errorf("err = %v, want deadline exceeded", ticket.Context().Err())
	}
}

func TestIsSuperseded(t *testing.T) {
	c := NewController(time.Minute)
	first := c.Begin(context.Background())
	second := c.Begin(context.Background())
	defer c.End(second)

	// Transports typically return the bare context error.
	if !IsSuperseded(first, first.Context().Err()) {
		t.Error("canceled-with-supersession-cause should classify as superseded")
	}
	if IsSuperseded(second, context.Canceled) {
		t.Error("live ticket should not classify as superseded")
	}
	if IsSuperseded(first, context.DeadlineExceeded) {
		t.Error("timeout should not classify as superseded")
	}
	if !IsSuperseded(nil, ErrSuperseded) {
		t.Error("explicit ErrSuperseded should classify as superseded")
	}
}

func TestCancelWithCause(t *testing.T) {
	c := NewController(time.Minute)
	ticket := c.Begin(context.Background())

	cause := errors.New("user navigated away")
	c.Cancel(cause)

	select {
	case <-ticket.Context().Done():
	default:
		t.Fatal("ticket should be canceled")
	}
	if !errors.Is(context.Cause(ticket.Context()), cause) {
		t.Errorf("cause = %v, want %v", context.Cause(ticket.Context()), cause)
	}
	c.End(ticket)
}

func TestDefaultTimeoutFallback(t *testing.T) {
	c := NewController(0)
	if c.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.timeout, DefaultTimeout)
	}
}
