package webpilot

import (
	"reflect"
	"strings"
	"testing"

	"github.com/fussbanana/webpilot/internal/config"
	"github.com/fussbanana/webpilot/selector"
)

func testTimeouts() config.TimeoutsConfig {
	c := config.Config{}
	c.ApplyDefaults()
	return c.Timeouts
}

func TestBuildUploadSequence(t *testing.T) {
	cat := selector.Default()
	seq := buildUploadSequence(cat, "transcript body", testTimeouts())

	if seq.Name != SeqUploadDocument {
		t.Errorf("name: got %q", seq.Name)
	}
	if len(seq.Steps) != 8 {
		t.Fatalf("steps: got %d, want 8", len(seq.Steps))
	}

	// Order matters: source tab, add source, paste chip, type, insert,
	// check, uncheck, spinner.
	wantTypes := []string{
		"automation.ClickMatchingText",
		"automation.ClickWhenVisible",
		"automation.ClickMatchingText",
		"automation.TypeText",
		"automation.ClickMatchingText",
		"automation.ConditionalClick",
		"automation.ConditionalClick",
		"automation.WaitForDisappear",
	}
	for i, step := range seq.Steps {
		if got := typeName(step); got != wantTypes[i] {
			t.Errorf("step %d: got %s, want %s", i, got, wantTypes[i])
		}
		if err := step.Validate(); err != nil {
			t.Errorf("step %d should validate: %v", i, err)
		}
	}

	// The document body rides in the type step.
	script := seq.Steps[3].Script("tok")
	if !strings.Contains(script, "transcript body") {
		t.Errorf("type step should carry the document text: %s", script)
	}

	// The spinner wait uses the long processing timeout.
	spinner := seq.Steps[7].Script("tok")
	if !strings.Contains(spinner, "120000") {
		t.Errorf("spinner step should use the 2m spinner timeout: %s", spinner)
	}
}

func TestBuildUploadSequence_EmptyDocFailsValidation(t *testing.T) {
	seq := buildUploadSequence(selector.Default(), "", testTimeouts())
	if err := seq.Steps[3].Validate(); err == nil {
		t.Fatal("empty document text must be a construction error")
	}
}

func TestBuildPromptSequence(t *testing.T) {
	cat := selector.Default()
	seq := buildPromptSequence(cat, "Summarise with timestamps", testTimeouts())

	if seq.Name != SeqInsertPrompt {
		t.Errorf("name: got %q", seq.Name)
	}
	if len(seq.Steps) != 3 {
		t.Fatalf("steps: got %d, want 3", len(seq.Steps))
	}
	if !strings.Contains(seq.Steps[0].Script("tok"), cat.Tabs.ChatLabel) {
		t.Errorf("step 0 should target the chat tab")
	}
	if !strings.Contains(seq.Steps[1].Script("tok"), "Summarise with timestamps") {
		t.Errorf("step 1 should carry the prompt text")
	}
	if seq.Steps[2].Target() != cat.SendButton.Locator {
		t.Errorf("step 2 should click the send button, got %q", seq.Steps[2].Target())
	}
}

func TestBuildExtractSequence(t *testing.T) {
	cat := selector.Default()
	seq := buildExtractSequence(cat, testTimeouts())

	if seq.Name != SeqExtractResponse {
		t.Errorf("name: got %q", seq.Name)
	}
	if len(seq.Steps) != 1 {
		t.Fatalf("steps: got %d, want 1", len(seq.Steps))
	}
	script := seq.Steps[0].Script("tok")
	for _, want := range []string{"extractStable", "30000", "4000"} {
		if !strings.Contains(script, want) {
			t.Errorf("extract script missing %q: %s", want, script)
		}
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(&Config{}, nil); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := New(nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestUploadDocument_RequiresStart(t *testing.T) {
	p, err := New(&Config{URL: "https://assistant.example.com"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.UploadDocument("doc", "prompt"); err == nil {
		t.Fatal("UploadDocument before Start must fail")
	}
}

func typeName(v any) string {
	return reflect.TypeOf(v).String()
}
