package model

import "fmt"

// Model is the container for one fault-tree analysis input: basic events,
// house events, gates, and the top-event reference.
//
// A Model is populated by the input parser, then frozen with Freeze.
// Freeze validates the structure and resolves probability expressions;
// after a successful Freeze the model never changes.
type Model struct {
	name string

	basicEvents map[string]*BasicEvent
	houseEvents map[string]*HouseEvent
	gates       map[string]*Gate

	// Registration order. Map iteration order is not deterministic, and
	// downstream index assignment must be.
	basicOrder []string
	houseOrder []string
	gateOrder  []string

	topID  string
	frozen bool
}

// New creates an empty model with the given name.
func New(name string) *Model {
	return &Model{
		name:        name,
		basicEvents: make(map[string]*BasicEvent),
		houseEvents: make(map[string]*HouseEvent),
		gates:       make(map[string]*Gate),
	}
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// checkDuplicate rejects an id already registered under any event kind.
func (m *Model) checkDuplicate(id string) error {
	_, isBasic := m.basicEvents[id]
	_, isHouse := m.houseEvents[id]
	_, isGate := m.gates[id]
	if isBasic || isHouse || isGate {
		return &Error{Code: ErrDuplicateEvent, ID: id, Message: "event is already defined in the model"}
	}
	return nil
}

// AddBasicEvent registers a basic event.
func (m *Model) AddBasicEvent(b *BasicEvent) error {
	if m.frozen {
		return &Error{Code: ErrFrozen, ID: b.ID(), Message: "model is frozen"}
	}
	if err := m.checkDuplicate(b.ID()); err != nil {
		return err
	}
	m.basicEvents[b.ID()] = b
	m.basicOrder = append(m.basicOrder, b.ID())
	return nil
}

// AddHouseEvent registers a house event.
func (m *Model) AddHouseEvent(h *HouseEvent) error {
	if m.frozen {
		return &Error{Code: ErrFrozen, ID: h.ID(), Message: "model is frozen"}
	}
	if err := m.checkDuplicate(h.ID()); err != nil {
		return err
	}
	m.houseEvents[h.ID()] = h
	m.houseOrder = append(m.houseOrder, h.ID())
	return nil
}

// AddGate registers a gate.
func (m *Model) AddGate(g *Gate) error {
	if m.frozen {
		return &Error{Code: ErrFrozen, ID: g.ID(), Message: "model is frozen"}
	}
	if err := m.checkDuplicate(g.ID()); err != nil {
		return err
	}
	m.gates[g.ID()] = g
	m.gateOrder = append(m.gateOrder, g.ID())
	return nil
}

// SetTopEvent designates the gate the analysis is rooted at.
func (m *Model) SetTopEvent(id string) error {
	if m.frozen {
		return &Error{Code: ErrFrozen, ID: id, Message: "model is frozen"}
	}
	m.topID = NormalizeID(id)
	return nil
}

// TopEvent returns the top gate. Only valid after Freeze.
func (m *Model) TopEvent() *Gate { return m.gates[m.topID] }

// BasicEvent looks up a basic event by id.
func (m *Model) BasicEvent(id string) (*BasicEvent, bool) {
	b, ok := m.basicEvents[NormalizeID(id)]
	return b, ok
}

// HouseEvent looks up a house event by id.
func (m *Model) HouseEvent(id string) (*HouseEvent, bool) {
	h, ok := m.houseEvents[NormalizeID(id)]
	return h, ok
}

// Gate looks up a gate by id.
func (m *Model) Gate(id string) (*Gate, bool) {
	g, ok := m.gates[NormalizeID(id)]
	return g, ok
}

// BasicEvents returns the basic events in registration order.
func (m *Model) BasicEvents() []*BasicEvent {
	out := make([]*BasicEvent, len(m.basicOrder))
	for i, id := range m.basicOrder {
		out[i] = m.basicEvents[id]
	}
	return out
}

// HouseEvents returns the house events in registration order.
func (m *Model) HouseEvents() []*HouseEvent {
	out := make([]*HouseEvent, len(m.houseOrder))
	for i, id := range m.houseOrder {
		out[i] = m.houseEvents[id]
	}
	return out
}

// Gates returns the gates in registration order.
func (m *Model) Gates() []*Gate {
	out := make([]*Gate, len(m.gateOrder))
	for i, id := range m.gateOrder {
		out[i] = m.gates[id]
	}
	return out
}

// Frozen reports whether Freeze has completed.
func (m *Model) Frozen() bool { return m.frozen }

// Freeze validates the model and resolves probability expressions at the
// given mission time. After a successful Freeze the model is immutable.
//
// Validation covers: top-event presence, undefined formula arguments,
// connective arity, ATLEAST vote numbers, probability ranges, and gate
// cycles. Any failure leaves the model unfrozen.
func (m *Model) Freeze(missionTime float64) error {
	if m.frozen {
		return nil
	}
	if m.topID == "" {
		return &Error{Code: ErrNoTopEvent, Message: "no top event is set"}
	}
	if _, ok := m.gates[m.topID]; !ok {
		return &Error{Code: ErrUndefinedEvent, ID: m.topID, Message: "top event is not a gate in the model"}
	}
	for _, id := range m.gateOrder {
		if err := m.validateFormula(m.gates[id].Formula()); err != nil {
			return err
		}
	}
	if err := m.detectCycles(); err != nil {
		return err
	}
	for _, id := range m.basicOrder {
		b := m.basicEvents[id]
		p := b.expr.Value(missionTime)
		if p < 0 || p > 1 {
			return &Error{
				Code:    ErrProbabilityRange,
				ID:      id,
				Message: fmt.Sprintf("probability %g is outside [0, 1]", p),
			}
		}
		b.p = p
	}
	m.frozen = true
	return nil
}

// validateFormula checks arities, vote numbers, and argument resolution.
func (m *Model) validateFormula(f *Formula) error {
	n := f.numArgs()
	switch f.Type {
	case Not, Null:
		if n != 1 {
			return &Error{Code: ErrFormulaArity,
				Message: fmt.Sprintf("%s formula takes one argument, got %d", f.Type, n)}
		}
	case Xor:
		if n != 2 {
			return &Error{Code: ErrFormulaArity,
				Message: fmt.Sprintf("xor formula takes two arguments, got %d", n)}
		}
	case AtLeast:
		if f.VoteNumber < 1 || f.VoteNumber > n {
			return &Error{Code: ErrVoteNumber,
				Message: fmt.Sprintf("vote number %d is out of range for %d arguments", f.VoteNumber, n)}
		}
	default:
		if n < 1 {
			return &Error{Code: ErrFormulaArity,
				Message: fmt.Sprintf("%s formula has no arguments", f.Type)}
		}
	}
	for _, id := range f.EventArgs {
		if _, ok := m.basicEvents[id]; ok {
			continue
		}
		if _, ok := m.houseEvents[id]; ok {
			continue
		}
		if _, ok := m.gates[id]; ok {
			continue
		}
		return &Error{Code: ErrUndefinedEvent, ID: id, Message: "the event is not in the model"}
	}
	for _, sub := range f.FormulaArgs {
		if err := m.validateFormula(sub); err != nil {
			return err
		}
	}
	return nil
}

// detectCycles rejects gates reachable from themselves through formulas.
func (m *Model) detectCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(m.gates))
	var visit func(id string) error
	var visitFormula func(f *Formula) error
	visit = func(id string) error {
		switch state[id] {
		case visiting:
			return &Error{Code: ErrCyclicGate, ID: id, Message: "gate is in a cycle"}
		case done:
			return nil
		}
		state[id] = visiting
		if err := visitFormula(m.gates[id].Formula()); err != nil {
			return err
		}
		state[id] = done
		return nil
	}
	visitFormula = func(f *Formula) error {
		for _, arg := range f.EventArgs {
			if _, ok := m.gates[arg]; ok {
				if err := visit(arg); err != nil {
					return err
				}
			}
		}
		for _, sub := range f.FormulaArgs {
			if err := visitFormula(sub); err != nil {
				return err
			}
		}
		return nil
	}
	for _, id := range m.gateOrder {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
