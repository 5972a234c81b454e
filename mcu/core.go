// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package mcu

import (
	"context"
	"fmt"
	"iter"
	"log"
	"sync"
)

// Peripheral clock gating bits.
const (
	PCKEN_TIM2 = uint8(0x01) // TIM2 clock enable.
)

// Core is the simulation context for the STM8 core.
type Core struct {
	Verbose bool // Set to enable verbose logging.

	// Idle is called when the core enters WFI, before blocking.
	// It may advance simulated time to produce a wake-up interrupt.
	Idle func() error

	family Family

	irq sync.Mutex // Held while a handler runs.

	mutex    sync.Mutex
	enabled  bool                  // Interrupts unmasked (rim).
	pending  []Vector              // Requests latched while masked.
	handlers [VECTOR_COUNT]Handler // Vector table.
	counts   [VECTOR_COUNT]int     // Dispatch counters.
	spurious int                   // Requests with no handler.
	halts    int                   // WFI entries.
	pckenr   uint8                 // Peripheral clock gating register.

	wake chan struct{}
}

// NewCore creates a new core of the given family, in reset state.
func NewCore(family Family) (core *Core) {
	core = &Core{
		family: family,
		wake:   make(chan struct{}, 1),
	}

	core.Reset()

	return
}

// Family of the core.
func (core *Core) Family() Family {
	return core.family
}

// Reset the core.
// - Masks interrupts and drops latched requests.
// - Clears the vector table and statistics.
// - Restores the peripheral clock gating register.
func (core *Core) Reset() {
	if core.Verbose {
		log.Printf("mcu: reset %v", core.family)
	}

	core.mutex.Lock()
	core.enabled = false
	core.pending = nil
	clear(core.handlers[:])
	clear(core.counts[:])
	core.spurious = 0
	core.halts = 0
	core.pckenr = core.family.PeripheralClockReset()
	core.mutex.Unlock()

	select {
	case <-core.wake:
	default:
	}
}

// Attach a handler to a vector.
func (core *Core) Attach(vector Vector, handler Handler) {
	if !vector.Valid() {
		return
	}

	core.mutex.Lock()
	core.handlers[vector] = handler
	core.mutex.Unlock()
}

// EnableInterrupts unmasks interrupts (rim), delivering latched requests.
func (core *Core) EnableInterrupts() {
	core.mutex.Lock()
	core.enabled = true
	pending := core.pending
	core.pending = nil
	core.mutex.Unlock()

	if core.Verbose {
		log.Printf("mcu: rim")
	}

	for _, vector := range pending {
		core.dispatch(vector, true)
	}
}

// DisableInterrupts masks interrupts (sim).
func (core *Core) DisableInterrupts() {
	core.mutex.Lock()
	core.enabled = false
	core.mutex.Unlock()

	if core.Verbose {
		log.Printf("mcu: sim")
	}
}

// InterruptsEnabled is true after rim.
func (core *Core) InterruptsEnabled() bool {
	core.mutex.Lock()
	defer core.mutex.Unlock()

	return core.enabled
}

// Request a maskable interrupt on behalf of a peripheral.
// The request is latched if interrupts are masked, otherwise the handler
// runs on the caller's goroutine and a halted core is woken.
func (core *Core) Request(vector Vector) {
	if !vector.Valid() {
		return
	}

	core.mutex.Lock()
	if !core.enabled {
		if core.Verbose {
			log.Printf("mcu: %v latched", vector)
		}
		core.pending = append(core.pending, vector)
		core.mutex.Unlock()
		return
	}
	core.mutex.Unlock()

	core.dispatch(vector, true)
}

// Trap raises the software trap. TRAP is not maskable and runs synchronously.
func (core *Core) Trap() {
	core.dispatch(VECTOR_TRAP, false)
}

func (core *Core) dispatch(vector Vector, wake bool) {
	core.irq.Lock()

	core.mutex.Lock()
	handler := core.handlers[vector]
	if handler == nil {
		core.spurious++
	} else {
		core.counts[vector]++
	}
	core.mutex.Unlock()

	if handler == nil {
		if core.Verbose {
			log.Printf("mcu: %v spurious", vector)
		}
	} else {
		handler()
	}

	core.irq.Unlock()

	if wake {
		select {
		case core.wake <- struct{}{}:
		default:
		}
	}
}

// Wfi enters the low-power wait until an interrupt is dispatched.
// If an Idle hook is installed the core cannot be woken from outside, so
// the wait fails with ErrHalted when the hook produced no interrupt.
func (core *Core) Wfi(ctx context.Context) (err error) {
	core.mutex.Lock()
	core.halts++
	core.mutex.Unlock()

	if core.Idle != nil {
		err = core.Idle()
		if err != nil {
			return
		}

		select {
		case <-core.wake:
		default:
			err = ErrHalted
		}
		return
	}

	select {
	case <-core.wake:
	case <-ctx.Done():
		err = ctx.Err()
	}

	return
}

// EnablePeripheralClock ungates the peripheral clocks in mask.
func (core *Core) EnablePeripheralClock(mask uint8) {
	core.mutex.Lock()
	core.pckenr |= mask
	core.mutex.Unlock()
}

// PeripheralClock is true when every clock in mask is ungated.
func (core *Core) PeripheralClock(mask uint8) bool {
	core.mutex.Lock()
	defer core.mutex.Unlock()

	return (core.pckenr & mask) == mask
}

// Count returns the number of times a vector was dispatched.
func (core *Core) Count(vector Vector) int {
	if !vector.Valid() {
		return 0
	}

	core.mutex.Lock()
	defer core.mutex.Unlock()

	return core.counts[vector]
}

// Spurious returns the number of dispatches with no handler attached.
func (core *Core) Spurious() int {
	core.mutex.Lock()
	defer core.mutex.Unlock()

	return core.spurious
}

// Halts returns the number of WFI entries.
func (core *Core) Halts() int {
	core.mutex.Lock()
	defer core.mutex.Unlock()

	return core.halts
}

var _core_symbols = []string{"clk_pckenr", "cc_i", "wfi_count"}

// Symbols returns the debugger visible core state.
func (core *Core) Symbols() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, name := range _core_symbols {
			value, _ := core.Peek(name)
			if !yield(name, fmt.Sprintf("0x%02x", value)) {
				return
			}
		}
	}
}

// Peek reads a core symbol.
func (core *Core) Peek(name string) (value uint64, err error) {
	core.mutex.Lock()
	defer core.mutex.Unlock()

	switch name {
	case "clk_pckenr":
		value = uint64(core.pckenr)
	case "cc_i":
		// The I flag is set while interrupts are masked.
		if !core.enabled {
			value = 1
		}
	case "wfi_count":
		value = uint64(core.halts)
	default:
		err = ErrSymbolUnknown
	}

	return
}

// Poke writes a core symbol.
func (core *Core) Poke(name string, value uint64) (err error) {
	switch name {
	case "clk_pckenr":
		core.mutex.Lock()
		core.pckenr = uint8(value)
		core.mutex.Unlock()
	case "cc_i":
		if value != 0 {
			core.DisableInterrupts()
		} else {
			core.EnableInterrupts()
		}
	case "wfi_count":
		err = ErrSymbolReadOnly
	default:
		err = ErrSymbolUnknown
	}

	return
}
