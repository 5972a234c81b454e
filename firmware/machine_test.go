package firmware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColor_Next(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(ORANGE, GREEN.Next())
	assert.Equal(RED, ORANGE.Next())
	assert.Equal(GREEN, RED.Next())
	assert.Equal(OFF, OFF.Next())
	assert.Equal("orange", ORANGE.String())
	assert.Equal("Color(9)", Color(9).String())
}

func TestMachine_New(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()

	assert.Equal(GREEN, m.Current)
	assert.Equal(uint32(0), m.Transitions)
	assert.Equal(uint16(0x4ccc), m.Timeout())
	assert.Equal([]uint16{1, 0, 0, 0}, []uint16{
		m.Occurrence(GREEN), m.Occurrence(ORANGE), m.Occurrence(RED), m.Occurrence(OFF),
	})
	assert.Equal(uint16(0x1000), m.State[ORANGE].Timeout)
	assert.Equal(uint16(0xffff), m.State[OFF].Timeout)
}

func TestMachine_ThreeTraps(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()

	assert.True(m.Trap())
	assert.Equal(ORANGE, m.Current)
	assert.Equal(uint16(1), m.Occurrence(ORANGE))

	assert.True(m.Trap())
	assert.Equal(RED, m.Current)
	assert.Equal(uint16(1), m.Occurrence(RED))

	assert.True(m.Trap())
	assert.Equal(GREEN, m.Current)
	assert.Equal(uint16(2), m.Occurrence(GREEN))

	assert.Equal(uint32(3), m.Transitions)
}

func TestMachine_Sequence(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	cycle := []Color{ORANGE, RED, GREEN}

	for n := range 300 {
		before := m.Transitions
		m.Trap()
		assert.Equal(cycle[n%3], m.Current)
		assert.Equal(before+1, m.Transitions)
	}

	assert.Equal(uint16(101), m.Occurrence(GREEN))
	assert.Equal(uint16(100), m.Occurrence(ORANGE))
	assert.Equal(uint16(100), m.Occurrence(RED))
}

func TestMachine_SwitchOff(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Current = RED
	m.State[GREEN].Occurrence = MAX_OCCURRENCE_BEFORE_SWITCH_OFF
	m.State[RED].Occurrence = 12
	m.Transitions = 41

	assert.False(m.Trap())
	assert.Equal(OFF, m.Current)
	assert.Equal(uint16(0xffff), m.Occurrence(GREEN))
	assert.Equal(uint16(12), m.Occurrence(RED))
	assert.Equal(uint16(0), m.Occurrence(OFF))
	assert.Equal(uint32(42), m.Transitions)

	// OFF is absorbing.
	for range 10 {
		m.Trap()
		assert.Equal(OFF, m.Current)
	}
	assert.Equal(uint16(0xffff), m.Occurrence(GREEN))
	assert.Equal(uint16(0), m.Occurrence(ORANGE))
	assert.Equal(uint16(12), m.Occurrence(RED))
	assert.Equal(uint32(52), m.Transitions)
}

func TestMachine_BelowThreshold(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	m.Current = RED
	m.State[GREEN].Occurrence = MAX_OCCURRENCE_BEFORE_SWITCH_OFF - 1

	assert.True(m.Trap())
	assert.Equal(GREEN, m.Current)
	assert.Equal(uint16(0xffff), m.Occurrence(GREEN))

	// Next time around, GREEN is saturated.
	m.Trap()
	m.Trap()
	assert.Equal(RED, m.Current)
	assert.False(m.Trap())
	assert.Equal(OFF, m.Current)
}

func TestMachine_RunToOff(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()

	var traps uint32
	wrapped := false
	for m.Current != OFF {
		prior := m.State
		m.Trap()
		traps++
		for color := range Color(COLOR_COUNT) {
			if m.Occurrence(color) < prior[color].Occurrence {
				wrapped = true
			}
		}
	}
	assert.False(wrapped)

	// Every color saturates; the RED -> GREEN edge is the one refused.
	assert.Equal(uint16(0xffff), m.Occurrence(GREEN))
	assert.Equal(uint16(0xffff), m.Occurrence(ORANGE))
	assert.Equal(uint16(0xffff), m.Occurrence(RED))
	assert.Equal(uint16(0), m.Occurrence(OFF))
	assert.Equal(traps, m.Transitions)
	assert.Equal(uint32(3*0xffff), traps)
}
