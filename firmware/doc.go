// Package firmware implements the traffic light application for STM8 devices.
//
// The application is driven by two interrupts. The main loop programs TIM2
// for the timeout of the current state and waits in WFI until the compare
// interrupt wakes it, then raises a software TRAP whose handler advances the
// state machine GREEN, ORANGE, RED and back to GREEN. Occurrence counters are
// kept per state, and the machine switches itself OFF before any of them can
// overflow.
//
// A bug injector, armed from a debugger through the enable_bug symbol,
// periodically overwrites one byte of the transition counter.
package firmware
