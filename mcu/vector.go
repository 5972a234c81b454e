package mcu

import (
	"fmt"
)

// Vector is an index into the interrupt vector table.
type Vector int

const (
	VECTOR_RESET = Vector(0) // Reset.
	VECTOR_TRAP  = Vector(1) // Software trap, non-maskable.
	VECTOR_IRQ0  = Vector(2) // First peripheral interrupt.
	VECTOR_COUNT = 32        // Size of the vector table.
)

// Irq returns the vector of peripheral interrupt n.
func Irq(n int) Vector {
	return VECTOR_IRQ0 + Vector(n)
}

// Handler is an interrupt service routine.
type Handler func()

func (v Vector) String() string {
	switch {
	case v == VECTOR_RESET:
		return "reset"
	case v == VECTOR_TRAP:
		return "trap"
	case v >= VECTOR_IRQ0 && v < VECTOR_COUNT:
		return fmt.Sprintf("irq%d", int(v-VECTOR_IRQ0))
	}
	return fmt.Sprintf("Vector(%d)", int(v))
}

// Valid is true for vectors inside the table.
func (v Vector) Valid() bool {
	return v >= 0 && v < VECTOR_COUNT
}
