package firmware

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/stm8light/mcu"
)

func TestFirmware_Peek(t *testing.T) {
	assert := assert.New(t)

	fw := NewFirmware(newFakeBoard(mcu.FAMILY_STM8L), 1)
	fw.Machine.Trap()

	value, err := fw.Peek(SYMBOL_CURRENT_STATE)
	assert.NoError(err)
	assert.Equal(uint64(ORANGE), value)

	value, err = fw.Peek(SYMBOL_TRANSITIONS)
	assert.NoError(err)
	assert.Equal(uint64(1), value)

	value, err = fw.Peek("occurrence_green")
	assert.NoError(err)
	assert.Equal(uint64(1), value)

	value, err = fw.Peek("timeout_orange")
	assert.NoError(err)
	assert.Equal(uint64(0x1000), value)

	value, err = fw.Peek(SYMBOL_ENABLE_BUG)
	assert.NoError(err)
	assert.Equal(uint64(0), value)

	_, err = fw.Peek("occurrence_blue")
	assert.ErrorIs(err, ErrSymbolUnknown)
	_, err = fw.Peek("pc")
	assert.ErrorIs(err, ErrSymbolUnknown)
	assert.Equal("pc: symbol unknown", err.Error())
}

func TestFirmware_Poke(t *testing.T) {
	assert := assert.New(t)

	fw := NewFirmware(newFakeBoard(mcu.FAMILY_STM8L), 1)

	assert.NoError(fw.Poke(SYMBOL_ENABLE_BUG, 1))
	assert.True(fw.Bug.Enabled)

	assert.NoError(fw.Poke(SYMBOL_BUG_COUNTDOWN, 0))
	assert.Equal(uint8(0), fw.Bug.CountDown)

	assert.NoError(fw.Poke("occurrence_green", 0xffff))
	assert.Equal(uint16(0xffff), fw.Machine.Occurrence(GREEN))

	assert.NoError(fw.Poke(SYMBOL_CURRENT_STATE, uint64(RED)))
	assert.Equal(RED, fw.Machine.Current)

	assert.NoError(fw.Poke(SYMBOL_TRANSITIONS, 0x1234))
	assert.Equal(uint32(0x1234), fw.Machine.Transitions)

	assert.ErrorIs(fw.Poke(SYMBOL_CURRENT_STATE, 4), ErrSymbolRange)
	assert.ErrorIs(fw.Poke("occurrence_red", 0x10000), ErrSymbolRange)
	assert.ErrorIs(fw.Poke(SYMBOL_TRANSITIONS, 1<<32), ErrSymbolRange)
	assert.ErrorIs(fw.Poke("timeout_red", 1), ErrSymbolReadOnly)
	assert.ErrorIs(fw.Poke("timeout_blue", 1), ErrSymbolUnknown)
	assert.ErrorIs(fw.Poke("pc", 1), ErrSymbolUnknown)

	assert.Equal(RED, fw.Machine.Current)
	assert.Equal(uint16(0x4ccc), fw.Machine.State[RED].Timeout)
}

func TestFirmware_Symbols(t *testing.T) {
	assert := assert.New(t)

	fw := NewFirmware(newFakeBoard(mcu.FAMILY_STM8L), 1)
	fw.Bug.Enabled = true

	var names []string
	symbols := map[string]string{}
	for name, text := range fw.Symbols() {
		names = append(names, name)
		symbols[name] = text
	}

	assert.Len(names, 12)
	assert.Equal(SYMBOL_CURRENT_STATE, names[0])
	assert.Equal("green", symbols[SYMBOL_CURRENT_STATE])
	assert.Equal("0x00000000", symbols[SYMBOL_TRANSITIONS])
	assert.Equal("1", symbols[SYMBOL_ENABLE_BUG])
	assert.Equal("0x0001", symbols["occurrence_green"])
	assert.Equal("0xffff", symbols["timeout_off"])

	// Stops when the consumer stops.
	var count int
	for range fw.Symbols() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)
}
