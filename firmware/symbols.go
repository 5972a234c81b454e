package firmware

import (
	"fmt"
	"iter"
	"strings"
)

// Debugger visible variables.
const (
	SYMBOL_CURRENT_STATE = "current_state"
	SYMBOL_TRANSITIONS   = "transitions"
	SYMBOL_ENABLE_BUG    = "enable_bug"
	SYMBOL_BUG_COUNTDOWN = "bug_countdown"
	SYMBOL_OCCURRENCE    = "occurrence_" // Followed by a color name.
	SYMBOL_TIMEOUT       = "timeout_"    // Followed by a color name.
)

func symbolNames() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range []string{
			SYMBOL_CURRENT_STATE,
			SYMBOL_TRANSITIONS,
			SYMBOL_ENABLE_BUG,
			SYMBOL_BUG_COUNTDOWN,
		} {
			if !yield(name) {
				return
			}
		}
		for _, prefix := range []string{SYMBOL_OCCURRENCE, SYMBOL_TIMEOUT} {
			for color := range Color(COLOR_COUNT) {
				if !yield(prefix + color.String()) {
					return
				}
			}
		}
	}
}

func parseColor(name string) (color Color, ok bool) {
	for color = range Color(COLOR_COUNT) {
		if color.String() == name {
			return color, true
		}
	}
	return
}

// Symbols returns the debugger visible variables and their current values.
func (fw *Firmware) Symbols() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for name := range symbolNames() {
			value, _ := fw.Peek(name)
			var text string
			switch name {
			case SYMBOL_CURRENT_STATE:
				text = Color(value).String()
			case SYMBOL_TRANSITIONS:
				text = fmt.Sprintf("0x%08x", value)
			case SYMBOL_ENABLE_BUG, SYMBOL_BUG_COUNTDOWN:
				text = fmt.Sprintf("%d", value)
			default:
				text = fmt.Sprintf("0x%04x", value)
			}
			if !yield(name, text) {
				return
			}
		}
	}
}

// Peek reads a variable by name.
func (fw *Firmware) Peek(name string) (value uint64, err error) {
	m := &fw.Machine

	switch name {
	case SYMBOL_CURRENT_STATE:
		value = uint64(m.Current)
	case SYMBOL_TRANSITIONS:
		value = uint64(m.Transitions)
	case SYMBOL_ENABLE_BUG:
		if fw.Bug.Enabled {
			value = 1
		}
	case SYMBOL_BUG_COUNTDOWN:
		value = uint64(fw.Bug.CountDown)
	default:
		if cname, found := strings.CutPrefix(name, SYMBOL_OCCURRENCE); found {
			if color, ok := parseColor(cname); ok {
				value = uint64(m.State[color].Occurrence)
				return
			}
		} else if cname, found := strings.CutPrefix(name, SYMBOL_TIMEOUT); found {
			if color, ok := parseColor(cname); ok {
				value = uint64(m.State[color].Timeout)
				return
			}
		}
		err = &ErrSymbol{Name: name, Err: ErrSymbolUnknown}
	}

	return
}

// Poke writes a variable by name, as a debugger would.
// State timeouts live in read-only memory and cannot be written.
func (fw *Firmware) Poke(name string, value uint64) (err error) {
	m := &fw.Machine

	limit := func(top uint64) bool {
		if value > top {
			err = &ErrSymbol{Name: name, Err: ErrSymbolRange}
			return false
		}
		return true
	}

	switch name {
	case SYMBOL_CURRENT_STATE:
		if limit(uint64(OFF)) {
			m.Current = Color(value)
		}
	case SYMBOL_TRANSITIONS:
		if limit(0xffff_ffff) {
			m.Transitions = uint32(value)
		}
	case SYMBOL_ENABLE_BUG:
		if limit(0xff) {
			fw.Bug.Enabled = value != 0
		}
	case SYMBOL_BUG_COUNTDOWN:
		if limit(0xff) {
			fw.Bug.CountDown = uint8(value)
		}
	default:
		if cname, found := strings.CutPrefix(name, SYMBOL_OCCURRENCE); found {
			if color, ok := parseColor(cname); ok {
				if limit(0xffff) {
					m.State[color].Occurrence = uint16(value)
				}
				return
			}
		} else if cname, found := strings.CutPrefix(name, SYMBOL_TIMEOUT); found {
			if _, ok := parseColor(cname); ok {
				err = &ErrSymbol{Name: name, Err: ErrSymbolReadOnly}
				return
			}
		}
		err = &ErrSymbol{Name: name, Err: ErrSymbolUnknown}
	}

	return
}
