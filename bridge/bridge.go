// Package bridge establishes the bidirectional channel between the host and
// the remote page context. The host can only inject scripts and receive
// asynchronous binding callbacks; the bridge owns that boundary: it installs
// the transport binding, injects the probe runtime, runs the readiness
// handshake, and routes every inbound payload to a single outcome handler.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/fussbanana/webpilot/probe"
)

// State tracks bridge readiness. Monotonic: once Ready there is no way
// back. A dropped remote context is fatal for the window's lifetime; there
// is no reconnect path.
type State int

const (
	Disconnected State = iota
	HandshakeInFlight
	Ready
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case HandshakeInFlight:
		return "handshake_in_flight"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Bridge wraps one automated page. Create one per window.
type Bridge struct {
	page   *rod.Page
	logger *slog.Logger

	mu    sync.Mutex
	state State

	onReady   func()
	onOutcome func(probe.Outcome)

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Bridge over page. Call Init once the remote document has
// fully loaded.
func New(page *rod.Page, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{page: page, logger: logger}
}

// OnReady registers the readiness handler. Fires once, on the remote side's
// handshake confirmation.
func (b *Bridge) OnReady(fn func()) {
	b.mu.Lock()
	b.onReady = fn
	b.mu.Unlock()
}

// OnOutcome registers the single inbound handler for all step outcomes.
func (b *Bridge) OnOutcome(fn func(probe.Outcome)) {
	b.mu.Lock()
	b.onOutcome = fn
	b.mu.Unlock()
}

// State returns the current bridge state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Init installs the transport binding, injects the probe runtime and issues
// the handshake call. The remote side confirms readiness through the
// binding, which moves the bridge to Ready. A failed handshake is not
// retried.
func (b *Bridge) Init(ctx context.Context) error {
	b.mu.Lock()
	if b.state != Disconnected {
		b.mu.Unlock()
		return fmt.Errorf("bridge: already initialised (state %s)", b.state)
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.mu.Unlock()

	if err := (proto.RuntimeAddBinding{Name: probe.BindingName}).Call(b.page); err != nil {
		b.logger.Warn("bridge: add binding failed (may already exist)", "error", err)
	}

	go b.listen()

	if _, err := b.page.Context(b.ctx).Eval(probe.Library()); err != nil {
		return fmt.Errorf("bridge: inject probe runtime: %w", err)
	}
	if _, err := b.page.Context(b.ctx).Eval(probe.Handshake()); err != nil {
		return fmt.Errorf("bridge: handshake: %w", err)
	}

	b.mu.Lock()
	b.state = HandshakeInFlight
	b.mu.Unlock()
	b.logger.Debug("bridge: handshake in flight")
	return nil
}

// Run injects one compiled probe script. Implements automation.Runner.
func (b *Bridge) Run(script string) error {
	if b.State() != Ready {
		return fmt.Errorf("bridge: not ready (state %s)", b.State())
	}
	if _, err := b.page.Context(b.ctx).Eval(script); err != nil {
		return fmt.Errorf("bridge: run probe: %w", err)
	}
	return nil
}

// CancelAll tears down every active wait condition in the remote context so
// observers and timers are not leaked past the window's lifetime.
func (b *Bridge) CancelAll() {
	if b.State() != Ready {
		return
	}
	if _, err := b.page.Context(b.ctx).Eval(probe.CancelAll()); err != nil {
		b.logger.Debug("bridge: cancel-all failed", "error", err)
	}
}

// Close cancels remote wait conditions and stops the binding listener.
func (b *Bridge) Close() {
	b.CancelAll()
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()
}

// listen receives binding calls from the probe runtime.
func (b *Bridge) listen() {
	b.page.Context(b.ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != probe.BindingName {
			return
		}
		b.handlePayload(e.Payload)
	})()
}

// handlePayload decodes one inbound payload and routes it. A malformed
// payload is a protocol error: it is surfaced as an error outcome bound to
// whatever step is currently awaited.
func (b *Bridge) handlePayload(payload string) {
	ev, err := decode(payload)
	if err != nil {
		b.logger.Error("bridge: malformed payload", "error", err)
		b.dispatch(probe.Outcome{
			Status:  probe.StatusError,
			Message: fmt.Sprintf("malformed bridge payload: %v", err),
		})
		return
	}

	switch ev.Event {
	case probe.EventReady:
		b.confirmReady()
	case probe.EventOutcome:
		b.dispatch(ev.Outcome)
	default:
		b.logger.Warn("bridge: unknown event", "event", ev.Event)
	}
}

func (b *Bridge) confirmReady() {
	b.mu.Lock()
	if b.state == Ready {
		b.mu.Unlock()
		b.logger.Debug("bridge: duplicate readiness confirmation ignored")
		return
	}
	b.state = Ready
	fn := b.onReady
	b.mu.Unlock()

	b.logger.Info("bridge: remote context confirmed ready")
	if fn != nil {
		fn()
	}
}

func (b *Bridge) dispatch(o probe.Outcome) {
	b.mu.Lock()
	fn := b.onOutcome
	b.mu.Unlock()

	if fn == nil {
		b.logger.Warn("bridge: outcome with no handler registered",
			"status", o.Status, "selector", o.Selector)
		return
	}
	fn(o)
}

func decode(payload string) (probe.Event, error) {
	var ev probe.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, err
	}
	if ev.Event == "" {
		return ev, fmt.Errorf("payload missing event field")
	}
	return ev, nil
}
