package probe

// Status classifies a step outcome reported by the runtime.
type Status string

const (
	StatusSuccess Status = "success"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// Outcome is the single structured callback a probe reports per step.
// Result is present only for extraction-capable probes.
type Outcome struct {
	Token    string `json:"token"`
	Status   Status `json:"status"`
	Selector string `json:"selector"`
	Message  string `json:"message"`
	Result   string `json:"result,omitempty"`
}

// Event kinds crossing the bridge binding.
const (
	EventReady   = "ready"
	EventOutcome = "outcome"
)

// Event is the envelope for every payload the runtime reports.
type Event struct {
	Event string `json:"event"`
	Outcome
}
