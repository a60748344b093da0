package automation

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fussbanana/webpilot/idgen"
	"github.com/fussbanana/webpilot/probe"
)

// ErrBusy is returned by Start while another sequence is running. There is
// no queueing across tasks: the caller decides whether to retry or drop.
var ErrBusy = errors.New("automation: a sequence is already running")

// Runner injects a compiled probe script into the remote page context.
// The bridge implements it; tests substitute a recorder.
type Runner interface {
	Run(script string) error
}

// Config configures a Controller.
type Config struct {
	Runner Runner
	Logger *slog.Logger

	// Tokens generates per-step correlation tokens. Default: "stp_"-prefixed
	// nano IDs.
	Tokens idgen.Generator

	// OnFinished fires once when a non-chained sequence completes.
	OnFinished func(name string)
	// OnFailed fires exactly once when a sequence aborts, with the failing
	// sequence, step and locator in the message.
	OnFailed func(message string)
	// OnExtracted fires with the extracted text payload instead of
	// OnFinished when an extraction step resolves.
	OnExtracted func(result string)
}

// Controller owns the ordered step list of the active task and advances it
// one step at a time. At most one step is ever in flight; every inbound
// outcome is routed here by the bridge and matched against the in-flight
// correlation token. One Controller per automated window; the current
// sequence, pending slot and readiness flag are owned exclusively by it.
type Controller struct {
	mu       sync.Mutex
	runner   Runner
	logger   *slog.Logger
	newToken idgen.Generator

	ready     bool
	current   *Sequence
	stepIndex int
	token     string
	pending   *Sequence
	chains    map[string]Builder

	onFinished  func(string)
	onFailed    func(string)
	onExtracted func(string)
}

// New creates a Controller. The bridge is usually not Ready yet at this
// point; sequences started before readiness are deferred.
func New(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tokens == nil {
		cfg.Tokens = idgen.Prefixed("stp_", idgen.NanoID(10))
	}
	return &Controller{
		runner:      cfg.Runner,
		logger:      cfg.Logger,
		newToken:    cfg.Tokens,
		chains:      make(map[string]Builder),
		onFinished:  cfg.OnFinished,
		onFailed:    cfg.OnFailed,
		onExtracted: cfg.OnExtracted,
	}
}

// Chain registers build as the automatic follow-up of the named sequence.
// Chaining is a static dependency between named tasks, not a generic graph:
// when `after` completes, the built sequence starts at step 0 and OnFinished
// is not fired for `after`.
func (c *Controller) Chain(after string, build Builder) {
	c.mu.Lock()
	c.chains[after] = build
	c.mu.Unlock()
}

// BridgeReady marks the remote context usable and starts the deferred
// sequence, if one is held. Readiness is monotonic.
func (c *Controller) BridgeReady() {
	c.mu.Lock()
	if c.ready {
		c.mu.Unlock()
		return
	}
	c.ready = true
	c.logger.Info("controller: bridge ready")

	var fire func()
	if c.pending != nil {
		seq := c.pending
		c.pending = nil
		c.logger.Debug("controller: starting deferred sequence", "sequence", seq.Name)
		fire = c.startLocked(seq)
	}
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// Start begins executing seq. Before the bridge is ready the sequence is
// held as the single pending slot; a newer request replaces an older one
// with a warning. While another sequence is running, Start returns ErrBusy.
func (c *Controller) Start(seq *Sequence) error {
	c.mu.Lock()
	if !c.ready {
		if c.pending != nil {
			c.logger.Warn("controller: replacing pending sequence",
				"old", c.pending.Name, "new", seq.Name)
		}
		c.pending = seq
		c.mu.Unlock()
		return nil
	}
	if c.current != nil {
		c.mu.Unlock()
		return ErrBusy
	}
	fire := c.startLocked(seq)
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
	return nil
}

// StartSequence is shorthand for Start(NewSequence(name, steps...)).
func (c *Controller) StartSequence(name string, steps ...Step) error {
	return c.Start(NewSequence(name, steps...))
}

// Running reports whether a sequence is currently executing.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// HandleOutcome is the single inbound entry point for all remote outcomes.
// It correlates the outcome to the step currently awaited: stale tokens are
// dropped, an empty token (protocol error path) binds to the current step.
func (c *Controller) HandleOutcome(o probe.Outcome) {
	c.mu.Lock()
	fire := c.resolveLocked(o)
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// startLocked installs seq as the current sequence and dispatches step 0.
// Any returned closure is a user callback to invoke after unlocking.
func (c *Controller) startLocked(seq *Sequence) func() {
	c.logger.Info("controller: starting sequence",
		"sequence", seq.Name, "steps", len(seq.Steps))
	c.current = seq
	c.stepIndex = 0
	if len(seq.Steps) == 0 {
		return c.completeLocked()
	}
	return c.dispatchLocked()
}

func (c *Controller) dispatchLocked() func() {
	step := c.current.Steps[c.stepIndex]

	// Construction errors travel the same failure channel as remote
	// outcomes. The remote context is never contacted for an invalid step.
	if err := step.Validate(); err != nil {
		return c.failLocked(step.Target(), err.Error())
	}

	c.token = c.newToken()
	c.logger.Debug("controller: dispatching step",
		"sequence", c.current.Name, "step", c.stepIndex,
		"target", step.Target(), "token", c.token)

	if err := c.runner.Run(step.Script(c.token)); err != nil {
		return c.failLocked(step.Target(), fmt.Sprintf("probe injection failed: %v", err))
	}
	return nil
}

func (c *Controller) resolveLocked(o probe.Outcome) func() {
	if c.current == nil {
		c.logger.Warn("controller: outcome with no step in flight",
			"status", o.Status, "selector", o.Selector)
		return nil
	}
	if o.Token != "" && o.Token != c.token {
		c.logger.Warn("controller: dropping stale outcome",
			"token", o.Token, "expected", c.token)
		return nil
	}

	step := c.current.Steps[c.stepIndex]

	if o.Status == probe.StatusSuccess && o.Result != "" {
		// Extraction is terminal for its sequence: only the extraction
		// callback fires, not the finish/fail pair.
		c.logger.Info("controller: text extracted",
			"sequence", c.current.Name, "chars", len(o.Result))
		c.clearLocked()
		cb := c.onExtracted
		result := o.Result
		return func() {
			if cb != nil {
				cb(result)
			}
		}
	}

	if o.Status != probe.StatusSuccess {
		return c.failLocked(step.Target(), o.Message)
	}

	c.logger.Debug("controller: step resolved",
		"sequence", c.current.Name, "step", c.stepIndex, "target", step.Target())
	c.stepIndex++
	if c.stepIndex < len(c.current.Steps) {
		return c.dispatchLocked()
	}
	return c.completeLocked()
}

func (c *Controller) completeLocked() func() {
	name := c.current.Name
	c.logger.Info("controller: sequence completed", "sequence", name)
	c.clearLocked()

	if build, ok := c.chains[name]; ok {
		c.logger.Debug("controller: starting chained sequence", "after", name)
		next, err := build()
		if err != nil {
			cb := c.onFailed
			msg := fmt.Sprintf("chained sequence after %q: %v", name, err)
			c.logger.Error("controller: chain build failed", "after", name, "error", err)
			return func() {
				if cb != nil {
					cb(msg)
				}
			}
		}
		return c.startLocked(next)
	}

	cb := c.onFinished
	return func() {
		if cb != nil {
			cb(name)
		}
	}
}

func (c *Controller) failLocked(target, message string) func() {
	msg := fmt.Sprintf("sequence %q step %d (%s): %s",
		c.current.Name, c.stepIndex, target, message)
	c.logger.Error("controller: sequence failed",
		"sequence", c.current.Name, "step", c.stepIndex,
		"target", target, "message", message)
	c.clearLocked()
	cb := c.onFailed
	return func() {
		if cb != nil {
			cb(msg)
		}
	}
}

func (c *Controller) clearLocked() {
	c.current = nil
	c.stepIndex = 0
	c.token = ""
}
