// Package mcu implements the STM8 core as seen by interrupt driven firmware.
//
// The core owns the interrupt vector table, the global interrupt mask
// (rim/sim), the non-maskable software TRAP, the WFI low-power wait and the
// peripheral clock gating register. Handlers run one at a time in interrupt
// context; a peripheral requesting an interrupt while another handler runs
// waits until that handler returns.
package mcu
