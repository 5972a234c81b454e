package timer

import (
	"errors"

	"github.com/ezrec/stm8light/translate"
)

var f = translate.From

var (
	// Timer errors
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrClockGated      = errors.New(f("peripheral clock gated"))
	ErrSymbolUnknown   = errors.New(f("symbol unknown"))
)

// ErrRegister indicates a faulting register access.
type ErrRegister struct {
	Register Register
	Err      error
}

func (err *ErrRegister) Error() string {
	return f("tim2 %v: %v", err.Register, err.Err)
}

func (err *ErrRegister) Unwrap() error {
	return err.Err
}
