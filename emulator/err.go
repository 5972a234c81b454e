package emulator

import (
	"errors"

	"github.com/ezrec/stm8light/translate"
)

var f = translate.From

var (
	// Emulator errors
	ErrTrapLimit     = errors.New(f("trap limit reached"))
	ErrSymbolUnknown = errors.New(f("symbol unknown"))
)

// ErrRuntime indicates the trap count at a runtime error.
type ErrRuntime struct {
	Trap int
	Err  error
}

func (err *ErrRuntime) Error() string {
	return f("trap %d %v", err.Trap, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
