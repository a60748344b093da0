// Package probe generates the scripts that run inside the remote page
// context. The runtime (pilot.js) is injected once per page and carries the
// shared wait-condition machinery; each automation step then compiles to a
// single call expression against it. Every literal argument is embedded
// through one escaping path so that arbitrary document or user text can
// never terminate or corrupt a generated script.
package probe

import (
	_ "embed"
	"fmt"
	"time"
)

//go:embed pilot.js
var pilotJS string

// BindingName is the host binding the runtime reports through. The bridge
// registers it on the page before injecting the runtime.
const BindingName = "__webpilot_report"

// Default timings. The runtime polls extraction targets every 500ms.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultMasterTimeout  = 30 * time.Second
	DefaultStabilityDelay = 4 * time.Second
)

// Library returns the probe runtime to inject once per page.
func Library() string { return pilotJS }

// Handshake returns the script that confirms bridge readiness from the
// remote side. The short delay covers binding installation lag after
// injection, mirroring page-side setup order.
func Handshake() string {
	return "setTimeout(() => { if (window.__pilot) window.__pilot.ready(); }, 100)"
}

// CancelAll tears down every active wait condition in the remote context
// without reporting. Issued on window teardown so observers and timers are
// never leaked.
func CancelAll() string { return "if (window.__pilot) window.__pilot.cancelAll()" }

// Cancel tears down the wait condition identified by token.
func Cancel(token string) string {
	return fmt.Sprintf("if (window.__pilot) window.__pilot.cancel(`%s`)", Escape(token))
}

// Action is a remote-side element action embedded into a probe call.
type Action struct {
	js string
}

// NoAction performs nothing when the condition is met.
func NoAction() Action { return Action{js: "null"} }

// ClickAction clicks the matched element.
func ClickAction() Action {
	return Action{js: "(el) => { el.click(); }"}
}

// TypeAction sets the matched element's value to text and fires a bubbling
// input event so framework change detection picks it up.
func TypeAction(text string) Action {
	return Action{js: fmt.Sprintf(
		"(el) => { el.value = `%s`; el.dispatchEvent(new Event('input', { bubbles: true })); }",
		Escape(text))}
}

// WaitForAppear compiles a probe that waits for locator to match, runs the
// action on the first match, and reports once. Present elements report
// synchronously; otherwise a mutation watch races the timeout.
func WaitForAppear(token, locator string, act Action, timeout time.Duration) string {
	return fmt.Sprintf("__pilot.waitForAppear(`%s`, `%s`, %s, %d)",
		Escape(token), Escape(locator), act.js, millis(timeout))
}

// WaitForDisappear is symmetric to WaitForAppear: the condition is absence.
func WaitForDisappear(token, locator string, act Action, timeout time.Duration) string {
	return fmt.Sprintf("__pilot.waitForDisappear(`%s`, `%s`, %s, %d)",
		Escape(token), Escape(locator), act.js, millis(timeout))
}

// WaitForTextMatch compiles a probe that scans all locator matches and
// accepts the first whose visible text contains text, re-evaluating on
// every mutation until found or timeout.
func WaitForTextMatch(token, locator, text string, act Action, timeout time.Duration) string {
	return fmt.Sprintf("__pilot.waitForTextMatch(`%s`, `%s`, `%s`, %s, %d)",
		Escape(token), Escape(locator), Escape(text), act.js, millis(timeout))
}

// ClickIf selects which checkbox-style state triggers a conditional click.
type ClickIf string

const (
	ClickIfChecked   ClickIf = "checked"
	ClickIfUnchecked ClickIf = "unchecked"
)

// ConditionalSelector composes the compound locator a conditional click
// checks: the state class present for "checked", absent for "unchecked".
func ConditionalSelector(locator, stateClass string, clickIf ClickIf) string {
	if clickIf == ClickIfChecked {
		return locator + "." + stateClass
	}
	return locator + ":not(." + stateClass + ")"
}

// Conditional compiles a one-shot probe: check the compound locator once,
// click if and only if it matches, and always report success.
func Conditional(token, locator, stateClass string, clickIf ClickIf) string {
	sel := ConditionalSelector(locator, stateClass, clickIf)
	return fmt.Sprintf("__pilot.conditional(`%s`, `%s`, %s)",
		Escape(token), Escape(sel), ClickAction().js)
}

// ExtractStable compiles a probe that polls the locator's text and reports
// it once it has stopped growing for stability, bounded by master.
func ExtractStable(token, locator string, master, stability time.Duration) string {
	return fmt.Sprintf("__pilot.extractStable(`%s`, `%s`, %d, %d)",
		Escape(token), Escape(locator), millis(master), millis(stability))
}

func millis(d time.Duration) int64 {
	if d <= 0 {
		d = DefaultTimeout
	}
	return d.Milliseconds()
}
