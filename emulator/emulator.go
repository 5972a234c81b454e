// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/stm8light/firmware"
	"github.com/ezrec/stm8light/internal"
	"github.com/ezrec/stm8light/mcu"
	"github.com/ezrec/stm8light/monitor"
	"github.com/ezrec/stm8light/timer"
)

const (
	SYMBOL_TRAP_COUNT = "trap_count" // Traps since reset.
	SYMBOL_TICKS      = "sim_ticks"  // Fast-forwarded timer ticks since reset.
)

var _emulator_defines = map[string]uint64{
	"GREEN":      uint64(firmware.GREEN),
	"ORANGE":     uint64(firmware.ORANGE),
	"RED":        uint64(firmware.RED),
	"OFF":        uint64(firmware.OFF),
	"PCKEN_TIM2": uint64(mcu.PCKEN_TIM2),
	"CR1_CEN":    uint64(timer.CR1_CEN),
	"CR1_UDIS":   uint64(timer.CR1_UDIS),
	"CR1_OPM":    uint64(timer.CR1_OPM),
	"IER_CC1IE":  uint64(timer.IER_CC1IE),
	"SR1_UIF":    uint64(timer.SR1_UIF),
	"SR1_CC1IF":  uint64(timer.SR1_CC1IF),

	"MAX_OCCURRENCE_BEFORE_SWITCH_OFF": firmware.MAX_OCCURRENCE_BEFORE_SWITCH_OFF,
}

// Emulator state. Core + TIM2 + traffic light firmware.
type Emulator struct {
	Verbose   bool // If set, enables verbose logging.
	*mcu.Core      // Reference to the core simulation.

	Timer    *timer.Timer       // TIM2 peripheral.
	Firmware *firmware.Firmware // Application running on the core.
	Monitor  *monitor.Monitor   // Debugger, if attached.

	Clock       timer.Clock // Wall clock source for real-time runs.
	FastForward bool        // Skip idle time instead of waiting for it.
	MaxTraps    int         // Stop after this many traps, if non-zero.

	traps   int
	ticks   uint64
	faults  atomic.Int64 // Touched from the clock goroutine too.
	started bool
}

var _ firmware.Board = (*Emulator)(nil)

// NewEmulator creates a new emulator for a device family. seed drives the
// bug injector countdown.
func NewEmulator(family mcu.Family, seed int64) (emu *Emulator) {
	emu = &Emulator{
		Core:  mcu.NewCore(family),
		Timer: timer.NewTimer(family.Tim2Channels()),
	}

	emu.Timer.ClockGate = func() bool {
		return emu.Core.PeripheralClock(mcu.PCKEN_TIM2)
	}
	emu.Timer.Interrupt = func() {
		emu.Core.Request(family.Tim2CompareVector())
	}

	emu.Firmware = firmware.NewFirmware(emu, seed)
	// STM8 stores multi-byte values most significant byte first.
	emu.Firmware.Bug.Order = binary.BigEndian
	emu.Firmware.Trace = emu.trace

	return
}

// Defines returns an iterator over the constants offered to monitor scripts.
func (emu *Emulator) Defines() iter.Seq2[string, uint64] {
	return maps.All(_emulator_defines)
}

// AttachMonitor makes mon debug this emulator.
func (emu *Emulator) AttachMonitor(mon *monitor.Monitor) {
	mon.Target = emu
	for name, value := range emu.Defines() {
		mon.Define(name, value)
	}
	emu.Monitor = mon
}

// Reset the emulator to power-on state.
func (emu *Emulator) Reset() {
	emu.Core.Reset()
	emu.Timer.Reset()
	emu.Firmware.Reset()

	emu.traps = 0
	emu.ticks = 0
	emu.faults.Store(0)
	emu.started = false
}

// Traps returns the number of traps since a reset.
func (emu *Emulator) Traps() int {
	return emu.traps
}

// Ticks returns the timer ticks skipped by fast-forward since a reset.
func (emu *Emulator) Ticks() uint64 {
	return emu.ticks
}

// Faults returns the number of faulting register accesses since a reset.
func (emu *Emulator) Faults() int {
	return int(emu.faults.Load())
}

// ReadTimer reads a TIM2 register for the firmware.
func (emu *Emulator) ReadTimer(reg timer.Register) (value uint8) {
	value, err := emu.Timer.Read(reg)
	if err != nil {
		emu.fault(err)
	}
	return
}

// WriteTimer writes a TIM2 register for the firmware.
func (emu *Emulator) WriteTimer(reg timer.Register, value uint8) {
	err := emu.Timer.Write(reg, value)
	if err != nil {
		emu.fault(err)
	}
}

func (emu *Emulator) fault(err error) {
	emu.faults.Add(1)
	if emu.Verbose {
		log.Printf("emulator: fault %v", err)
	}
}

// idle advances TIM2 to its next compare interrupt while the core is in WFI.
func (emu *Emulator) idle() error {
	ticks, ok := emu.Timer.UntilInterrupt()
	if !ok {
		return nil
	}

	emu.ticks += uint64(ticks)
	emu.Timer.Step(ticks)

	return nil
}

func (emu *Emulator) trace(fw *firmware.Firmware) (err error) {
	emu.traps++

	if emu.Monitor != nil {
		err = emu.Monitor.OnTrap(emu.traps)
		if err != nil {
			return
		}
	}

	if emu.MaxTraps > 0 && emu.traps >= emu.MaxTraps {
		err = ErrTrapLimit
	}

	return
}

func (emu *Emulator) start() {
	emu.Core.Verbose = emu.Verbose
	emu.Timer.Verbose = emu.Verbose
	emu.Firmware.Verbose = emu.Verbose
	if emu.Monitor != nil {
		emu.Monitor.Verbose = emu.Verbose
	}

	if !emu.started {
		emu.Firmware.Start()
		emu.started = true
	}
}

// Tick runs one pass of the firmware main loop, fast-forwarding the wait.
func (emu *Emulator) Tick(ctx context.Context) (err error) {
	emu.Core.Idle = emu.idle
	emu.start()

	return emu.Firmware.Iterate(ctx)
}

// Run the firmware until ctx is done, the trap limit is reached or the
// monitor halts. Reaching the limit or a monitor halt is not an error.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	defer func() {
		switch {
		case err == nil:
		case errors.Is(err, ErrTrapLimit), errors.Is(err, monitor.ErrHalt):
			err = nil
		case errors.Is(err, context.Canceled):
		default:
			err = &ErrRuntime{Trap: emu.traps, Err: err}
		}
	}()

	if emu.Monitor != nil && emu.Monitor.Halted() {
		return
	}

	if emu.FastForward {
		for {
			err = emu.Tick(ctx)
			if err != nil {
				return
			}
			err = ctx.Err()
			if err != nil {
				return
			}
		}
	}

	emu.Core.Idle = nil
	emu.start()

	if emu.Verbose {
		log.Printf("emulator: real-time, tick %v", emu.Clock.Period)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return emu.Clock.Run(gctx, emu.Timer)
	})
	group.Go(func() (err error) {
		for {
			err = emu.Firmware.Iterate(gctx)
			if err != nil {
				return
			}
		}
	})

	err = group.Wait()

	return
}

// Symbols returns the debugger visible state of firmware, timer and core.
func (emu *Emulator) Symbols() iter.Seq2[string, string] {
	local := func(yield func(string, string) bool) {
		if !yield(SYMBOL_TRAP_COUNT, fmt.Sprintf("%d", emu.traps)) {
			return
		}
		yield(SYMBOL_TICKS, fmt.Sprintf("%d", emu.ticks))
	}

	return internal.IterSeq2Concat(
		emu.Firmware.Symbols(),
		emu.Timer.Symbols(),
		emu.Core.Symbols(),
		local,
	)
}

// Describe returns the formatted value of a symbol.
func (emu *Emulator) Describe(name string) (text string, ok bool) {
	return internal.IterSeq2Find(emu.Symbols(), name)
}

func unknown(err error) bool {
	return errors.Is(err, firmware.ErrSymbolUnknown) ||
		errors.Is(err, timer.ErrSymbolUnknown) ||
		errors.Is(err, mcu.ErrSymbolUnknown)
}

// Peek reads a symbol.
func (emu *Emulator) Peek(name string) (value uint64, err error) {
	switch name {
	case SYMBOL_TRAP_COUNT:
		return uint64(emu.traps), nil
	case SYMBOL_TICKS:
		return emu.ticks, nil
	}

	for _, peek := range []func(string) (uint64, error){
		emu.Firmware.Peek,
		emu.Timer.Peek,
		emu.Core.Peek,
	} {
		value, err = peek(name)
		if !unknown(err) {
			return
		}
	}

	err = fmt.Errorf("%v: %w", name, ErrSymbolUnknown)
	return
}

// Poke writes a symbol.
func (emu *Emulator) Poke(name string, value uint64) (err error) {
	switch name {
	case SYMBOL_TRAP_COUNT, SYMBOL_TICKS:
		return fmt.Errorf("%v: %w", name, firmware.ErrSymbolReadOnly)
	}

	for _, poke := range []func(string, uint64) error{
		emu.Firmware.Poke,
		emu.Timer.Poke,
		emu.Core.Poke,
	} {
		err = poke(name, value)
		if !unknown(err) {
			return
		}
	}

	err = fmt.Errorf("%v: %w", name, ErrSymbolUnknown)
	return
}
