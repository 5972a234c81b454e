package mcu

import (
	"strings"
)

// Family selects the STM8 device family.
type Family int

//go:generate go tool stringer -linecomment -type=Family
const (
	FAMILY_STM8S = Family(0) // stm8s
	FAMILY_STM8L = Family(1) // stm8l
)

// ParseFamily converts a family name to a Family.
func ParseFamily(name string) (family Family, err error) {
	switch strings.ToLower(name) {
	case "stm8s", "stm8a":
		family = FAMILY_STM8S
	case "stm8l":
		family = FAMILY_STM8L
	default:
		err = ErrFamilyUnknown
	}
	return
}

// Tim2CompareVector is the vector of the TIM2 capture/compare interrupt.
func (family Family) Tim2CompareVector() Vector {
	if family == FAMILY_STM8L {
		return Irq(20)
	}
	return Irq(14)
}

// Tim2Channels is the number of TIM2 capture/compare channels.
func (family Family) Tim2Channels() int {
	if family == FAMILY_STM8L {
		return 2
	}
	return 3
}

// PeripheralClockReset is the reset value of the peripheral clock gating register.
// STM8L devices start with every peripheral clock gated.
func (family Family) PeripheralClockReset() uint8 {
	if family == FAMILY_STM8L {
		return 0x00
	}
	return 0xff
}
