// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package firmware

import (
	"context"
	"log"

	"github.com/ezrec/stm8light/mcu"
	"github.com/ezrec/stm8light/timer"
)

// Board is the hardware as seen by the firmware.
type Board interface {
	// Family of the microcontroller.
	Family() mcu.Family
	// ReadTimer reads a TIM2 register.
	ReadTimer(reg timer.Register) uint8
	// WriteTimer writes a TIM2 register.
	WriteTimer(reg timer.Register, value uint8)
	// EnablePeripheralClock ungates peripheral clocks.
	EnablePeripheralClock(mask uint8)
	// Attach installs an interrupt handler in the vector table.
	Attach(vector mcu.Vector, handler mcu.Handler)
	// EnableInterrupts unmasks interrupts (rim).
	EnableInterrupts()
	// Wfi waits in low-power mode for an interrupt.
	Wfi(ctx context.Context) error
	// Trap raises the software trap.
	Trap()
}

// Firmware is the traffic light application.
type Firmware struct {
	Verbose bool // Set to enable verbose logging.

	Board   Board       // Hardware the firmware runs on.
	Machine Machine     // Traffic light state machine.
	Bug     BugInjector // Counter corruption simulator.

	// Trace, if set, is called after every trap. A non-nil error stops Run.
	Trace func(fw *Firmware) error
}

// NewFirmware creates the application for a board.
func NewFirmware(board Board, seed int64) (fw *Firmware) {
	fw = &Firmware{
		Board:   board,
		Machine: NewMachine(),
		Bug:     NewBugInjector(seed),
	}

	return
}

// Reset returns the application data to its power-on values.
// The bug injector keeps its switch, byte order and random source.
func (fw *Firmware) Reset() {
	fw.Machine = NewMachine()
	fw.Bug.CountDown = 0
	fw.Bug.Corruptions = 0
}

// TrapISR manages the state transitions.
// Further interrupts are masked by the core while it runs.
func (fw *Firmware) TrapISR() {
	prior := fw.Machine.Current

	advanced := fw.Machine.Trap()

	if fw.Verbose {
		if advanced {
			log.Printf("firmware: trap %v -> %v (%d)", prior, fw.Machine.Current, fw.Machine.Occurrence(fw.Machine.Current))
		} else {
			log.Printf("firmware: trap %v -> %v", prior, fw.Machine.Current)
		}
	}
}

// TimerISR acknowledges the TIM2 channel 1 compare. It is only used to wake
// the core out of WFI.
func (fw *Firmware) TimerISR() {
	if (fw.Board.ReadTimer(timer.TIM2_SR1) & timer.SR1_CC1IF) != 0 {
		fw.Board.WriteTimer(timer.TIM2_SR1, ^timer.SR1_CC1IF)
	}
}

// InitTimer sets up TIM2 channel 1 as an output compare whose interrupt
// wakes the core out of WFI.
func (fw *Firmware) InitTimer() {
	family := fw.Board.Family()

	if family == mcu.FAMILY_STM8L {
		// TIM2 clock is not enabled by default.
		fw.Board.EnablePeripheralClock(mcu.PCKEN_TIM2)
	}

	fw.Board.WriteTimer(timer.TIM2_IER, timer.IER_CC1IE)

	// Keep unused channels away from common application values.
	fw.Board.WriteTimer(timer.TIM2_CCR2H, 0xff)
	fw.Board.WriteTimer(timer.TIM2_CCR2L, 0xff)
	if family.Tim2Channels() > 2 {
		fw.Board.WriteTimer(timer.TIM2_CCR3H, 0xff)
		fw.Board.WriteTimer(timer.TIM2_CCR3L, 0xff)
	}
}

// Wait programs a one-shot compare for count ticks and waits in WFI.
func (fw *Firmware) Wait(ctx context.Context, count uint16) (err error) {
	fw.Board.WriteTimer(timer.TIM2_CCR1H, uint8(count>>8))
	fw.Board.WriteTimer(timer.TIM2_CCR1L, uint8(count))

	// Reinit the counter before enable.
	fw.Board.WriteTimer(timer.TIM2_EGR, timer.EGR_UG)

	// One pulse mode, without update event.
	fw.Board.WriteTimer(timer.TIM2_CR1, timer.CR1_OPM|timer.CR1_UDIS|timer.CR1_CEN)

	return fw.Board.Wfi(ctx)
}

// Start performs the power-on sequence: countdown seed, vector table,
// timer setup and interrupt enable.
func (fw *Firmware) Start() {
	fw.Bug.Reseed()

	fw.Board.Attach(mcu.VECTOR_TRAP, fw.TrapISR)
	fw.Board.Attach(fw.Board.Family().Tim2CompareVector(), fw.TimerISR)

	fw.InitTimer()
	fw.Board.EnableInterrupts()

	if fw.Verbose {
		log.Printf("firmware: start %v, countdown %d", fw.Board.Family(), fw.Bug.CountDown)
	}
}

// Iterate runs one pass of the main loop: wait in the current state,
// maybe corrupt the transition counter, then raise the trap.
func (fw *Firmware) Iterate(ctx context.Context) (err error) {
	err = fw.Wait(ctx, fw.Machine.Timeout())
	if err != nil {
		return
	}

	if fw.Bug.Enabled {
		if fw.Bug.Tick(&fw.Machine.Transitions) && fw.Verbose {
			log.Printf("firmware: bug, transitions now 0x%08x", fw.Machine.Transitions)
		}
	}

	fw.Board.Trap()

	if fw.Trace != nil {
		err = fw.Trace(fw)
	}

	return
}

// Run starts the application and loops until ctx is done or Trace fails.
func (fw *Firmware) Run(ctx context.Context) (err error) {
	fw.Start()

	for {
		err = fw.Iterate(ctx)
		if err != nil {
			return
		}
	}
}
