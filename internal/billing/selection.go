package billing

import (
	"strings"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/spf13/cast"
)

// Field identifies which line attribute the keypad edits.
type Field string

const (
	FieldQuantity Field = "qty"
	FieldPrice    Field = "price"
)

// State of the selection machine.
type State int

const (
	// StateIdle: no line selected.
	StateIdle State = iota
	// StateLineSelected: a line chosen, no field yet.
	StateLineSelected
	// StateFieldEditing: a line and a field chosen, digits accumulate.
	StateFieldEditing
)

// WeightSource returns the latest scale sample without blocking.
type WeightSource interface {
	Current() float64
}

// Selector tracks which line and field the keypad currently edits and
// accumulates digit input into the selected field. At most one line across
// all sessions is selected at a time. Any session mutation or switch
// anywhere forces the machine back to Idle so stale edits cannot leak
// across lines.
type Selector struct {
	mu      sync.Mutex
	mgr     *Manager
	scale   WeightSource
	label   string
	ordinal int
	field   Field
	sticky  Field
	buffer  string
}

// NewSelector wires the selector to the session manager's change topic.
// scale may be nil when no weight source is attached.
func NewSelector(mgr *Manager, scale WeightSource, bus EventBus.Bus) *Selector {
	s := &Selector{mgr: mgr, scale: scale}
	_ = bus.Subscribe(TopicSessionChanged, func(string) {
		s.Reset()
	})
	return s
}

// State reports the current machine state.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.label == "":
		return StateIdle
	case s.field == "":
		return StateLineSelected
	default:
		return StateFieldEditing
	}
}

// Selected returns the selected line, if any.
func (s *Selector) Selected() (label string, ordinal int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label, s.ordinal, s.label != ""
}

// Buffer returns the pending keypad input.
func (s *Selector) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// SelectLine selects one line, replacing any previous selection. If a
// field was chosen before, the same field is re-applied to the new line
// with an empty buffer (sticky field choice).
func (s *Selector) SelectLine(label string, ordinal int) error {
	if !s.mgr.hasLine(label, ordinal) {
		return ErrNoSelection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
	s.ordinal = ordinal
	s.field = s.sticky
	s.buffer = ""
	return nil
}

// SelectField chooses the field the keypad edits for the selected line.
func (s *Selector) SelectField(f Field) error {
	if f != FieldQuantity && f != FieldPrice {
		return ErrInvalidValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.label == "" {
		return ErrNoSelection
	}
	s.field = f
	s.sticky = f
	s.buffer = ""
	return nil
}

// Digit appends one digit 0-9 to the input buffer and writes the parsed
// value into the selected field.
func (s *Selector) Digit(d int) error {
	if d < 0 || d > 9 {
		return ErrInvalidValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.label == "" || s.field == "" {
		return ErrNoSelection
	}
	s.buffer += string(rune('0' + d))
	return s.applyLocked()
}

// Point appends the decimal point. A second point is ignored; on an empty
// buffer the input becomes "0.".
func (s *Selector) Point() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.label == "" || s.field == "" {
		return ErrNoSelection
	}
	if strings.Contains(s.buffer, ".") {
		return nil
	}
	if s.buffer == "" {
		s.buffer = "0."
	} else {
		s.buffer += "."
	}
	return s.applyLocked()
}

// ClearKey resets the input buffer and re-applies the field with a zero
// value.
func (s *Selector) ClearKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.label == "" || s.field == "" {
		return ErrNoSelection
	}
	s.buffer = ""
	return s.writeLocked(0)
}

// applyLocked parses the buffer and writes it into the selected field.
// A buffer that is not yet parseable (trailing decimal point, empty) is
// tolerated by deferring the write; no error is raised mid-entry.
func (s *Selector) applyLocked() error {
	if s.buffer == "" || strings.HasSuffix(s.buffer, ".") {
		return nil
	}
	v, err := cast.ToFloat64E(s.buffer)
	if err != nil {
		return nil
	}
	return s.writeLocked(v)
}

func (s *Selector) writeLocked(v float64) error {
	switch s.field {
	case FieldQuantity:
		return s.mgr.SetQuantity(s.label, s.ordinal, v)
	case FieldPrice:
		return s.mgr.SetPrice(s.label, s.ordinal, v)
	default:
		return ErrNoSelection
	}
}

// CaptureWeight forces the field to quantity and writes one sample from
// the weight source into the selected line, overriding manual entry.
func (s *Selector) CaptureWeight() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.label == "" {
		return ErrNoSelection
	}
	s.field = FieldQuantity
	s.sticky = FieldQuantity
	s.buffer = ""
	// An absent scale reads as zero.
	var w float64
	if s.scale != nil {
		w = s.scale.Current()
	}
	return s.mgr.SetQuantity(s.label, s.ordinal, w)
}

// Reset forces the machine back to Idle and clears the buffer. The sticky
// field choice survives so the next selection re-applies it.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = ""
	s.ordinal = 0
	s.field = ""
	s.buffer = ""
}
