package firmware

const (
	// Occurrence count at which the machine switches itself off.
	MAX_OCCURRENCE_BEFORE_SWITCH_OFF = 0xffff
)

// State is the configuration and trace data of one color.
type State struct {
	Timeout    uint16 // Time to spend in the state, in timer ticks.
	Occurrence uint16 // Number of times the state was reached.
}

// Machine is the traffic light state machine.
type Machine struct {
	Current     Color              // Current state.
	State       [COLOR_COUNT]State // Per-color timing and occurrences.
	Transitions uint32             // Number of trap invocations.
}

// NewMachine returns a machine in its power-on state: GREEN, reached once.
func NewMachine() Machine {
	return Machine{
		Current: GREEN,
		State: [COLOR_COUNT]State{
			GREEN:  {Timeout: 0x4ccc, Occurrence: 1},
			ORANGE: {Timeout: 0x1000},
			RED:    {Timeout: 0x4ccc},
			OFF:    {Timeout: 0xffff},
		},
	}
}

// Timeout of the current state.
func (m *Machine) Timeout() uint16 {
	return m.State[m.Current].Timeout
}

// Occurrence returns the number of times a color was reached.
func (m *Machine) Occurrence(color Color) uint16 {
	return m.State[color].Occurrence
}

// Trap advances the machine by one transition.
//
// The successor only becomes current if its occurrence counter is below
// MAX_OCCURRENCE_BEFORE_SWITCH_OFF; otherwise the current state is forced
// to OFF and no occurrence counter changes. The transition counter is
// incremented in both cases. Returns true if the successor was taken.
func (m *Machine) Trap() (advanced bool) {
	next := m.Current.Next()

	if m.State[next].Occurrence < MAX_OCCURRENCE_BEFORE_SWITCH_OFF {
		m.Current = next
		m.State[m.Current].Occurrence++
		advanced = true
	} else {
		// Stop transitions before overflow.
		m.Current = OFF
	}

	m.Transitions++

	return
}
