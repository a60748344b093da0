package automation

// Sequence is an ordered list of steps representing one logical automation
// task. Steps execute strictly in list order, one at a time; a Sequence
// exists only for the duration of its execution and is discarded on
// completion or failure, never reused.
type Sequence struct {
	Name  string
	Steps []Step
}

// NewSequence builds a Sequence from ordered steps.
func NewSequence(name string, steps ...Step) *Sequence {
	return &Sequence{Name: name, Steps: steps}
}

// Builder produces a Sequence on demand. Chained follow-up sequences are
// built lazily at chain time so payloads reflect the state at completion
// of the preceding stage.
type Builder func() (*Sequence, error)
