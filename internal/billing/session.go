package billing

import (
	"math"
	"sync"

	"github.com/asaskevich/EventBus"
)

// LineItem is one row of an in-memory session. Ordinal is a dense display
// ordinal, renumbered 1..N after every removal; it is not a persistent key.
type LineItem struct {
	Ordinal  int
	Name     string
	Quantity float64
	Price    float64
}

func (l LineItem) Total() float64 {
	return l.Quantity * l.Price
}

type session struct {
	lines       []LineItem
	counter     int
	editingBill int64 // 0 = fresh tab
}

// Manager owns the in-memory customer sessions. It does no I/O; the commit
// coordinator is the only component that translates sessions into ledger
// rows. Every mutation publishes TopicSessionChanged so stale selections
// and total displays get refreshed.
type Manager struct {
	mu       sync.Mutex
	bus      EventBus.Bus
	order    []string
	sessions map[string]*session
	current  string
}

// NewManager initializes one empty session per label. The first label is
// the current session.
func NewManager(labels []string, bus EventBus.Bus) *Manager {
	m := &Manager{
		bus:      bus,
		order:    append([]string(nil), labels...),
		sessions: make(map[string]*session, len(labels)),
	}
	for _, label := range labels {
		m.sessions[label] = &session{counter: 1}
	}
	if len(labels) > 0 {
		m.current = labels[0]
	}
	return m
}

// Labels returns the configured session labels in order.
func (m *Manager) Labels() []string {
	return append([]string(nil), m.order...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AddItem appends a line with the session's next counter value. Quantities
// at or below zero are accepted; non-finite values and negative prices are
// not.
func (m *Manager) AddItem(label, name string, qty, price float64) (LineItem, error) {
	m.mu.Lock()
	s, ok := m.sessions[label]
	if !ok {
		m.mu.Unlock()
		return LineItem{}, ErrInvalidSession
	}
	if !finite(qty) || !finite(price) || price < 0 {
		m.mu.Unlock()
		return LineItem{}, ErrInvalidValue
	}
	line := LineItem{
		Ordinal:  s.counter,
		Name:     name,
		Quantity: qty,
		Price:    price,
	}
	s.lines = append(s.lines, line)
	s.counter++
	m.mu.Unlock()

	m.bus.Publish(TopicSessionChanged, label)
	return line, nil
}

// RemoveLine deletes the line with the given ordinal and renumbers the
// remaining lines 1..N in their original relative order. Removing an
// ordinal that does not exist is a no-op.
func (m *Manager) RemoveLine(label string, ordinal int) error {
	m.mu.Lock()
	s, ok := m.sessions[label]
	if !ok {
		m.mu.Unlock()
		return ErrInvalidSession
	}
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.Ordinal != ordinal {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	for i := range s.lines {
		s.lines[i].Ordinal = i + 1
	}
	s.counter = len(s.lines) + 1
	m.mu.Unlock()

	m.bus.Publish(TopicSessionChanged, label)
	return nil
}

// Clear empties the session, resets its counter to 1 and drops any
// editing-bill binding.
func (m *Manager) Clear(label string) error {
	m.mu.Lock()
	s, ok := m.sessions[label]
	if !ok {
		m.mu.Unlock()
		return ErrInvalidSession
	}
	s.lines = nil
	s.counter = 1
	s.editingBill = 0
	m.mu.Unlock()

	m.bus.Publish(TopicSessionChanged, label)
	return nil
}

// Total returns the sum of the session's line totals. An empty session
// totals to exactly 0.
func (m *Manager) Total(label string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[label]
	if !ok {
		return 0, ErrInvalidSession
	}
	var total float64
	for _, line := range s.lines {
		total += line.Total()
	}
	return total, nil
}

// Lines returns a snapshot copy of the session's lines.
func (m *Manager) Lines(label string) ([]LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[label]
	if !ok {
		return nil, ErrInvalidSession
	}
	return append([]LineItem(nil), s.lines...), nil
}

// Switch changes which session is current for display purposes. Session
// data is untouched, but listeners are notified so selections reset.
func (m *Manager) Switch(label string) error {
	m.mu.Lock()
	if _, ok := m.sessions[label]; !ok {
		m.mu.Unlock()
		return ErrInvalidSession
	}
	m.current = label
	m.mu.Unlock()

	m.bus.Publish(TopicSessionChanged, label)
	return nil
}

// Current returns the label of the current session.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SetQuantity writes a quantity into one line. This is the keypad/scale
// write path: it publishes TopicLineUpdated, not TopicSessionChanged, so
// the write does not tear down the selection that produced it.
func (m *Manager) SetQuantity(label string, ordinal int, qty float64) error {
	return m.setField(label, ordinal, func(line *LineItem) error {
		if !finite(qty) {
			return ErrInvalidValue
		}
		line.Quantity = qty
		return nil
	})
}

// SetPrice writes a unit price into one line.
func (m *Manager) SetPrice(label string, ordinal int, price float64) error {
	return m.setField(label, ordinal, func(line *LineItem) error {
		if !finite(price) || price < 0 {
			return ErrInvalidValue
		}
		line.Price = price
		return nil
	})
}

func (m *Manager) setField(label string, ordinal int, write func(*LineItem) error) error {
	m.mu.Lock()
	s, ok := m.sessions[label]
	if !ok {
		m.mu.Unlock()
		return ErrInvalidSession
	}
	var target *LineItem
	for i := range s.lines {
		if s.lines[i].Ordinal == ordinal {
			target = &s.lines[i]
			break
		}
	}
	if target == nil {
		m.mu.Unlock()
		return ErrNoSelection
	}
	if err := write(target); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	m.bus.Publish(TopicLineUpdated, label, ordinal)
	return nil
}

// hasLine reports whether the session has a line with the given ordinal.
func (m *Manager) hasLine(label string, ordinal int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[label]
	if !ok {
		return false
	}
	for _, line := range s.lines {
		if line.Ordinal == ordinal {
			return true
		}
	}
	return false
}

// BindEditingBill marks the session as having been loaded from an existing
// bill; the next commit replaces that bill in place.
func (m *Manager) BindEditingBill(label string, billID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[label]
	if !ok {
		return ErrInvalidSession
	}
	s.editingBill = billID
	return nil
}

// EditingBill returns the bound bill id, if any.
func (m *Manager) EditingBill(label string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[label]
	if !ok {
		return 0, false
	}
	return s.editingBill, s.editingBill != 0
}
