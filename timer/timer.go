// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package timer implements the STM8 TIM2 general purpose timer.
//
// Only the parts the firmware relies on are modelled: the up-counter with
// its prescaler and auto-reload, one pulse mode, the update event and the
// compare match of the capture/compare channels. Input ticks are fed by
// Step, either from a Clock or directly by tests.
package timer

import (
	"fmt"
	"iter"
	"log"
	"sync"
)

// Timer is the simulation context for TIM2.
type Timer struct {
	Verbose bool // Set to enable verbose logging.

	// Interrupt requests the capture/compare interrupt.
	Interrupt func()
	// ClockGate reports whether the peripheral clock is running.
	// A nil ClockGate means the clock is always running.
	ClockGate func() bool

	channels int

	mutex    sync.Mutex
	reg      [TIM2_CCR3L + 1]uint8
	counter  uint16
	prescale uint32
	matches  int
}

// NewTimer creates a TIM2 with the given number of capture/compare channels.
func NewTimer(channels int) (tim *Timer) {
	tim = &Timer{
		channels: channels,
	}

	tim.Reset()

	return
}

// Channels returns the number of capture/compare channels.
func (tim *Timer) Channels() int {
	return tim.channels
}

// Reset the timer registers to their reset values.
func (tim *Timer) Reset() {
	tim.mutex.Lock()
	defer tim.mutex.Unlock()

	clear(tim.reg[:])
	tim.reg[TIM2_ARRH] = 0xff
	tim.reg[TIM2_ARRL] = 0xff
	tim.counter = 0
	tim.prescale = 0
	tim.matches = 0

	if tim.Verbose {
		log.Printf("timer: reset")
	}
}

func (tim *Timer) clocked() bool {
	return tim.ClockGate == nil || tim.ClockGate()
}

func (tim *Timer) check(reg Register) (err error) {
	switch {
	case reg < TIM2_CR1 || reg > TIM2_CCR3L:
		err = ErrRegisterInvalid
	case reg >= TIM2_CCR3H && tim.channels < 3:
		err = ErrRegisterInvalid
	case !tim.clocked():
		err = ErrClockGated
	}

	if err != nil {
		err = &ErrRegister{Register: reg, Err: err}
	}

	return
}

// Read a timer register.
func (tim *Timer) Read(reg Register) (value uint8, err error) {
	err = tim.check(reg)
	if err != nil {
		return
	}

	tim.mutex.Lock()
	defer tim.mutex.Unlock()

	switch reg {
	case TIM2_CNTRH:
		value = uint8(tim.counter >> 8)
	case TIM2_CNTRL:
		value = uint8(tim.counter)
	case TIM2_EGR:
		value = 0
	default:
		value = tim.reg[reg]
	}

	return
}

// Write a timer register.
func (tim *Timer) Write(reg Register, value uint8) (err error) {
	err = tim.check(reg)
	if err != nil {
		return
	}

	tim.mutex.Lock()
	defer tim.mutex.Unlock()

	if tim.Verbose {
		log.Printf("timer: %v <- 0x%02x", reg, value)
	}

	switch reg {
	case TIM2_SR1:
		// Status flags are cleared by writing 0.
		tim.reg[reg] &= value
	case TIM2_EGR:
		if (value & EGR_UG) != 0 {
			tim.counter = 0
			tim.prescale = 0
			if (tim.reg[TIM2_CR1] & CR1_UDIS) == 0 {
				tim.reg[TIM2_SR1] |= SR1_UIF
			}
		}
	case TIM2_CNTRH:
		tim.counter = (tim.counter & 0x00ff) | (uint16(value) << 8)
	case TIM2_CNTRL:
		tim.counter = (tim.counter & 0xff00) | uint16(value)
	case TIM2_PSCR:
		tim.reg[reg] = value & PSCR_MASK
	default:
		tim.reg[reg] = value
	}

	return
}

func (tim *Timer) word(hi Register) uint16 {
	return (uint16(tim.reg[hi]) << 8) | uint16(tim.reg[hi+1])
}

// Compare returns the channel 1 compare value.
func (tim *Timer) Compare() uint16 {
	tim.mutex.Lock()
	defer tim.mutex.Unlock()

	return tim.word(TIM2_CCR1H)
}

// Counter returns the current counter value.
func (tim *Timer) Counter() uint16 {
	tim.mutex.Lock()
	defer tim.mutex.Unlock()

	return tim.counter
}

// Running is true while the counter is enabled.
func (tim *Timer) Running() bool {
	tim.mutex.Lock()
	defer tim.mutex.Unlock()

	return (tim.reg[TIM2_CR1] & CR1_CEN) != 0
}

// Matches returns the number of channel 1 compare matches since reset.
func (tim *Timer) Matches() int {
	tim.mutex.Lock()
	defer tim.mutex.Unlock()

	return tim.matches
}

// count advances the counter by one counter clock.
// Returns true if the compare interrupt must be requested.
func (tim *Timer) count() (irq bool) {
	cr1 := tim.reg[TIM2_CR1]

	if tim.counter == tim.word(TIM2_ARRH) {
		tim.counter = 0
		if (cr1 & CR1_UDIS) == 0 {
			tim.reg[TIM2_SR1] |= SR1_UIF
		}
		if (cr1 & CR1_OPM) != 0 {
			tim.reg[TIM2_CR1] &^= CR1_CEN
		}
	} else {
		tim.counter++
	}

	if tim.counter == tim.word(TIM2_CCR1H) {
		tim.reg[TIM2_SR1] |= SR1_CC1IF
		tim.matches++
		if tim.Verbose {
			log.Printf("timer: cc1 match 0x%04x", tim.counter)
		}
		irq = (tim.reg[TIM2_IER] & IER_CC1IE) != 0
	}

	return
}

// Step feeds input ticks to the timer, returning the number of compare
// interrupts requested. Interrupts are requested after the timer lock is
// released so that handlers may access the timer registers.
func (tim *Timer) Step(ticks uint32) (irqs int) {
	if !tim.clocked() {
		return
	}

	tim.mutex.Lock()
	for ticks > 0 && (tim.reg[TIM2_CR1]&CR1_CEN) != 0 {
		div := uint32(1) << (tim.reg[TIM2_PSCR] & PSCR_MASK)
		need := div - tim.prescale
		if ticks < need {
			tim.prescale += ticks
			break
		}
		ticks -= need
		tim.prescale = 0
		if tim.count() {
			irqs++
		}
	}
	tim.mutex.Unlock()

	if tim.Interrupt != nil {
		for range irqs {
			tim.Interrupt()
		}
	}

	return
}

// UntilInterrupt returns the number of input ticks until the next compare
// interrupt request. ok is false when no request can happen without
// software intervention.
func (tim *Timer) UntilInterrupt() (ticks uint32, ok bool) {
	if !tim.clocked() {
		return
	}

	tim.mutex.Lock()
	defer tim.mutex.Unlock()

	cr1 := tim.reg[TIM2_CR1]
	if (cr1&CR1_CEN) == 0 || (tim.reg[TIM2_IER]&IER_CC1IE) == 0 {
		return
	}

	arr := uint32(tim.word(TIM2_ARRH))
	ccr := uint32(tim.word(TIM2_CCR1H))
	counter := uint32(tim.counter)

	var steps uint32
	switch {
	case ccr > arr:
		return
	case ccr > counter:
		steps = ccr - counter
	case ccr == 0 || (cr1&CR1_OPM) == 0:
		// Match after the counter wraps through zero.
		steps = (arr - counter) + 1 + ccr
	default:
		// One pulse mode stops at the wrap before reaching the match.
		return
	}

	div := uint32(1) << (tim.reg[TIM2_PSCR] & PSCR_MASK)
	ticks = (steps-1)*div + (div - tim.prescale)
	ok = true

	return
}

var _timer_symbols = []Register{
	TIM2_CR1, TIM2_IER, TIM2_SR1,
	TIM2_CNTRH, TIM2_CNTRL, TIM2_PSCR,
	TIM2_ARRH, TIM2_ARRL,
	TIM2_CCR1H, TIM2_CCR1L, TIM2_CCR2H, TIM2_CCR2L, TIM2_CCR3H, TIM2_CCR3L,
}

func symbolName(reg Register) string {
	return "tim2_" + reg.String()
}

func (tim *Timer) lookup(name string) (reg Register, ok bool) {
	for _, reg = range _timer_symbols {
		if reg >= TIM2_CCR3H && tim.channels < 3 {
			continue
		}
		if symbolName(reg) == name {
			return reg, true
		}
	}
	return
}

// Symbols returns the debugger visible timer registers.
func (tim *Timer) Symbols() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, reg := range _timer_symbols {
			if reg >= TIM2_CCR3H && tim.channels < 3 {
				continue
			}
			var text string
			value, err := tim.Read(reg)
			if err != nil {
				text = "--"
			} else {
				text = fmt.Sprintf("0x%02x", value)
			}
			if !yield(symbolName(reg), text) {
				return
			}
		}
	}
}

// Peek reads a timer register by symbol name.
func (tim *Timer) Peek(name string) (value uint64, err error) {
	reg, ok := tim.lookup(name)
	if !ok {
		err = ErrSymbolUnknown
		return
	}

	v, err := tim.Read(reg)
	value = uint64(v)
	return
}

// Poke writes a timer register by symbol name.
func (tim *Timer) Poke(name string, value uint64) (err error) {
	reg, ok := tim.lookup(name)
	if !ok {
		err = ErrSymbolUnknown
		return
	}

	return tim.Write(reg, uint8(value))
}
