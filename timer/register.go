package timer

// Register is a TIM2 register.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	TIM2_CR1   = Register(0)  // cr1
	TIM2_IER   = Register(1)  // ier
	TIM2_SR1   = Register(2)  // sr1
	TIM2_EGR   = Register(3)  // egr
	TIM2_CNTRH = Register(4)  // cntrh
	TIM2_CNTRL = Register(5)  // cntrl
	TIM2_PSCR  = Register(6)  // pscr
	TIM2_ARRH  = Register(7)  // arrh
	TIM2_ARRL  = Register(8)  // arrl
	TIM2_CCR1H = Register(9)  // ccr1h
	TIM2_CCR1L = Register(10) // ccr1l
	TIM2_CCR2H = Register(11) // ccr2h
	TIM2_CCR2L = Register(12) // ccr2l
	TIM2_CCR3H = Register(13) // ccr3h
	TIM2_CCR3L = Register(14) // ccr3l
)

// Register bits.
const (
	CR1_CEN  = uint8(0x01) // Counter enable.
	CR1_UDIS = uint8(0x02) // Update disable.
	CR1_OPM  = uint8(0x08) // One pulse mode.

	IER_UIE   = uint8(0x01) // Update interrupt enable.
	IER_CC1IE = uint8(0x02) // Capture/compare 1 interrupt enable.

	SR1_UIF   = uint8(0x01) // Update interrupt flag.
	SR1_CC1IF = uint8(0x02) // Capture/compare 1 interrupt flag.

	EGR_UG = uint8(0x01) // Update generation.

	PSCR_MASK = uint8(0x0f) // Prescaler exponent.
)
