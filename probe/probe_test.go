package probe

import (
	"strings"
	"testing"
	"time"
)

// unescape reverses Escape for round-trip checks.
func unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\', '`', '$':
				b.WriteByte(s[i+1])
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func TestEscape_RoundTrip(t *testing.T) {
	cases := []string{
		"plain text",
		"back`tick",
		`back\slash`,
		"${injection}",
		"mix `of\\ $ {all} ${three}`",
		"",
	}
	for _, in := range cases {
		if got := unescape(Escape(in)); got != in {
			t.Errorf("round-trip %q: got %q", in, got)
		}
	}
}

func TestEscape_NeutralisesTemplateSyntax(t *testing.T) {
	got := Escape("a`b${c}d\\e")
	for i := 0; i < len(got); i++ {
		switch got[i] {
		case '`':
			if i == 0 || got[i-1] != '\\' {
				t.Errorf("unescaped backtick at %d in %q", i, got)
			}
		case '$':
			if i == 0 || got[i-1] != '\\' {
				t.Errorf("unescaped dollar at %d in %q", i, got)
			}
		}
	}
}

func TestTypeAction_HostilePayload(t *testing.T) {
	payload := "line1`; window.pwned = true; //${document.cookie}\\"
	script := WaitForAppear("tok1", "textarea", TypeAction(payload), 10*time.Second)

	if strings.Contains(script, "line1`;") {
		t.Fatalf("raw backtick survived into the script: %s", script)
	}
	if strings.Contains(script, "//${") {
		t.Fatalf("raw substitution survived into the script: %s", script)
	}
	if !strings.Contains(script, Escape(payload)) {
		t.Errorf("script does not carry the escaped payload: %s", script)
	}
	// The literal recovered from the script must equal the original payload.
	if got := unescape(Escape(payload)); got != payload {
		t.Errorf("payload round-trip: got %q, want %q", got, payload)
	}
}

func TestWaitForAppear_Script(t *testing.T) {
	script := WaitForAppear("tok", "button.send", ClickAction(), 5*time.Second)
	for _, want := range []string{"__pilot.waitForAppear(", "`tok`", "`button.send`", "el.click()", "5000"} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q: %s", want, script)
		}
	}
}

func TestWaitForAppear_DefaultTimeout(t *testing.T) {
	script := WaitForAppear("tok", "div", NoAction(), 0)
	if !strings.Contains(script, "10000") {
		t.Errorf("zero timeout should fall back to 10000ms: %s", script)
	}
	if !strings.Contains(script, "null") {
		t.Errorf("NoAction should compile to null: %s", script)
	}
}

func TestWaitForTextMatch_Script(t *testing.T) {
	script := WaitForTextMatch("tok", "div[role=\"tab\"]", "Sources", ClickAction(), 10*time.Second)
	for _, want := range []string{"__pilot.waitForTextMatch(", "`Sources`", "10000"} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q: %s", want, script)
		}
	}
}

func TestConditionalSelector(t *testing.T) {
	tests := []struct {
		clickIf ClickIf
		want    string
	}{
		{ClickIfChecked, "input.box.mdc-checkbox--selected"},
		{ClickIfUnchecked, "input.box:not(.mdc-checkbox--selected)"},
	}
	for _, tt := range tests {
		got := ConditionalSelector("input.box", "mdc-checkbox--selected", tt.clickIf)
		if got != tt.want {
			t.Errorf("ConditionalSelector(%s): got %q, want %q", tt.clickIf, got, tt.want)
		}
	}
}

func TestExtractStable_Script(t *testing.T) {
	script := ExtractStable("tok", "pre code", 30*time.Second, 4*time.Second)
	for _, want := range []string{"__pilot.extractStable(", "30000", "4000"} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q: %s", want, script)
		}
	}
}

func TestLibrary_DefinesRuntime(t *testing.T) {
	lib := Library()
	for _, want := range []string{
		BindingName,
		"waitForAppear",
		"waitForDisappear",
		"waitForTextMatch",
		"conditional",
		"extractStable",
		"cancelAll",
		"ready",
	} {
		if !strings.Contains(lib, want) {
			t.Errorf("pilot.js missing %q", want)
		}
	}
}
