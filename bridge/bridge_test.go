package bridge

import (
	"strings"
	"testing"

	"github.com/fussbanana/webpilot/probe"
)

func TestDecode_Outcome(t *testing.T) {
	payload := `{"event":"outcome","token":"stp_ab12","status":"success","selector":"button.send","message":"element present"}`
	ev, err := decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Event != probe.EventOutcome {
		t.Errorf("event: got %q", ev.Event)
	}
	if ev.Token != "stp_ab12" || ev.Status != probe.StatusSuccess || ev.Selector != "button.send" {
		t.Errorf("outcome fields: %+v", ev.Outcome)
	}
}

func TestDecode_Ready(t *testing.T) {
	ev, err := decode(`{"event":"ready"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Event != probe.EventReady {
		t.Errorf("event: got %q", ev.Event)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, payload := range []string{"", "not json", "{}", `{"token":"x"}`} {
		if _, err := decode(payload); err == nil {
			t.Errorf("decode(%q): expected error", payload)
		}
	}
}

func TestHandlePayload_RoutesOutcome(t *testing.T) {
	b := New(nil, nil)
	var got []probe.Outcome
	b.OnOutcome(func(o probe.Outcome) { got = append(got, o) })

	b.handlePayload(`{"event":"outcome","token":"t1","status":"timeout","selector":"div.x","message":"timed out"}`)

	if len(got) != 1 {
		t.Fatalf("outcomes: got %d, want 1", len(got))
	}
	if got[0].Status != probe.StatusTimeout || got[0].Token != "t1" {
		t.Errorf("outcome: %+v", got[0])
	}
}

func TestHandlePayload_ReadyIsMonotonic(t *testing.T) {
	b := New(nil, nil)
	readyCount := 0
	b.OnReady(func() { readyCount++ })

	b.handlePayload(`{"event":"ready"}`)
	b.handlePayload(`{"event":"ready"}`)

	if readyCount != 1 {
		t.Errorf("onReady fired %d times, want 1", readyCount)
	}
	if b.State() != Ready {
		t.Errorf("state: got %s, want ready", b.State())
	}
}

func TestHandlePayload_MalformedIsProtocolError(t *testing.T) {
	b := New(nil, nil)
	var got []probe.Outcome
	b.OnOutcome(func(o probe.Outcome) { got = append(got, o) })

	b.handlePayload("{{{")

	if len(got) != 1 {
		t.Fatalf("outcomes: got %d, want 1", len(got))
	}
	if got[0].Status != probe.StatusError || !strings.Contains(got[0].Message, "malformed bridge payload") {
		t.Errorf("outcome: %+v", got[0])
	}
	if got[0].Token != "" {
		t.Errorf("protocol errors bind to the current step via an empty token, got %q", got[0].Token)
	}
}

func TestRun_RequiresReady(t *testing.T) {
	b := New(nil, nil)
	if err := b.Run("__pilot.ready()"); err == nil {
		t.Fatal("Run before readiness must fail")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Disconnected, "disconnected"},
		{HandshakeInFlight, "handshake_in_flight"},
		{Ready, "ready"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String(): got %q, want %q", tt.state, got, tt.want)
		}
	}
}
