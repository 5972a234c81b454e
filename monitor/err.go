package monitor

import (
	"errors"

	"github.com/ezrec/stm8light/translate"
)

var f = translate.From

var (
	// Monitor errors
	ErrHalt          = errors.New(f("halted by monitor"))
	ErrHookInvalid   = errors.New(f("on_trap is not callable"))
	ErrValueInvalid  = errors.New(f("value is not an unsigned integer"))
	ErrExpression    = errors.New(f("expression is not an integer"))
	ErrWatchMissing  = errors.New(f("not watched"))
	ErrTargetMissing = errors.New(f("no target"))
)

// ErrScript indicates the script and phase of a failing monitor script.
type ErrScript struct {
	Name string
	Err  error
}

func (err *ErrScript) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrScript) Unwrap() error {
	return err.Err
}
