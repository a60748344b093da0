// Package automation owns the step/sequence abstraction and the
// callback-driven controller that advances or aborts a multi-step task
// against the remote page context. One Controller per automated window;
// probes report back asynchronously and the controller performs no work
// while a step is in flight.
package automation

import (
	"fmt"
	"time"

	"github.com/fussbanana/webpilot/probe"
	"github.com/fussbanana/webpilot/selector"
)

// Step is one automation action. Validate catches construction errors
// (missing locators, empty payloads) before the remote context is ever
// contacted; Script compiles the remote probe call carrying the
// correlation token.
type Step interface {
	Validate() error
	Script(token string) string
	// Target returns the locator for failure context.
	Target() string
}

// ClickWhenVisible waits for the locator to match and clicks the first
// match.
type ClickWhenVisible struct {
	Sel     selector.Selector
	Timeout time.Duration
}

func (s ClickWhenVisible) Validate() error {
	if s.Sel.Locator == "" {
		return fmt.Errorf("automation: click step: empty locator")
	}
	return nil
}

func (s ClickWhenVisible) Script(token string) string {
	return probe.WaitForAppear(token, s.Sel.Locator, probe.ClickAction(), s.Timeout)
}

func (s ClickWhenVisible) Target() string { return s.Sel.Locator }

// TypeText waits for the locator to match and types the payload into it.
type TypeText struct {
	Sel     selector.Selector
	Text    string
	Timeout time.Duration
}

func (s TypeText) Validate() error {
	if s.Sel.Locator == "" {
		return fmt.Errorf("automation: type step: empty locator")
	}
	if s.Text == "" {
		return fmt.Errorf("automation: type step: empty payload for %s", s.Sel.Locator)
	}
	return nil
}

func (s TypeText) Script(token string) string {
	return probe.WaitForAppear(token, s.Sel.Locator, probe.TypeAction(s.Text), s.Timeout)
}

func (s TypeText) Target() string { return s.Sel.Locator }

// ClickMatchingText waits for a locator match whose visible text contains
// Text and clicks it. Text falls back to the selector's own match label.
type ClickMatchingText struct {
	Sel     selector.Selector
	Text    string
	Timeout time.Duration
}

func (s ClickMatchingText) matchText() string {
	if s.Text != "" {
		return s.Text
	}
	return s.Sel.MatchText
}

func (s ClickMatchingText) Validate() error {
	if s.Sel.Locator == "" {
		return fmt.Errorf("automation: text-match step: empty locator")
	}
	if s.matchText() == "" {
		return fmt.Errorf("automation: text-match step: empty match text for %s", s.Sel.Locator)
	}
	return nil
}

func (s ClickMatchingText) Script(token string) string {
	return probe.WaitForTextMatch(token, s.Sel.Locator, s.matchText(), probe.ClickAction(), s.Timeout)
}

func (s ClickMatchingText) Target() string { return s.Sel.Locator }

// ConditionalClick checks the locator combined with the selector's state
// class exactly once and clicks if and only if the condition holds. The
// probe always reports success; "condition not met" is not a failure.
type ConditionalClick struct {
	Sel     selector.Selector
	ClickIf probe.ClickIf
}

func (s ConditionalClick) Validate() error {
	if s.Sel.Locator == "" {
		return fmt.Errorf("automation: conditional step: empty locator")
	}
	if s.Sel.StateClass == "" {
		return fmt.Errorf("automation: conditional step: empty state class for %s", s.Sel.Locator)
	}
	if s.ClickIf != probe.ClickIfChecked && s.ClickIf != probe.ClickIfUnchecked {
		return fmt.Errorf("automation: conditional step: invalid state %q for %s", s.ClickIf, s.Sel.Locator)
	}
	return nil
}

func (s ConditionalClick) Script(token string) string {
	return probe.Conditional(token, s.Sel.Locator, s.Sel.StateClass, s.ClickIf)
}

func (s ConditionalClick) Target() string {
	return probe.ConditionalSelector(s.Sel.Locator, s.Sel.StateClass, s.ClickIf)
}

// WaitForDisappear waits until no element matches the locator.
type WaitForDisappear struct {
	Sel     selector.Selector
	Timeout time.Duration
}

func (s WaitForDisappear) Validate() error {
	if s.Sel.Locator == "" {
		return fmt.Errorf("automation: disappear step: empty locator")
	}
	return nil
}

func (s WaitForDisappear) Script(token string) string {
	return probe.WaitForDisappear(token, s.Sel.Locator, probe.NoAction(), s.Timeout)
}

func (s WaitForDisappear) Target() string { return s.Sel.Locator }

// ExtractStableText polls the locator's text until it stops growing for
// StabilityDelay, bounded by MasterTimeout. The result payload is surfaced
// through the controller's extraction callback.
type ExtractStableText struct {
	Sel            selector.Selector
	MasterTimeout  time.Duration
	StabilityDelay time.Duration
}

func (s ExtractStableText) Validate() error {
	if s.Sel.Locator == "" {
		return fmt.Errorf("automation: extract step: empty locator")
	}
	return nil
}

func (s ExtractStableText) Script(token string) string {
	master := s.MasterTimeout
	if master <= 0 {
		master = probe.DefaultMasterTimeout
	}
	stability := s.StabilityDelay
	if stability <= 0 {
		stability = probe.DefaultStabilityDelay
	}
	return probe.ExtractStable(token, s.Sel.Locator, master, stability)
}

func (s ExtractStableText) Target() string { return s.Sel.Locator }
