package firmware

import (
	"errors"

	"github.com/ezrec/stm8light/translate"
)

var f = translate.From

var (
	// Symbol errors
	ErrSymbolUnknown  = errors.New(f("symbol unknown"))
	ErrSymbolReadOnly = errors.New(f("symbol read only"))
	ErrSymbolRange    = errors.New(f("symbol value out of range"))
)

// ErrSymbol indicates a failed debugger access to a symbol.
type ErrSymbol struct {
	Name string
	Err  error
}

func (err *ErrSymbol) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrSymbol) Unwrap() error {
	return err.Err
}
