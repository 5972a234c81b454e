package mcu

import (
	"errors"

	"github.com/ezrec/stm8light/translate"
)

var f = translate.From

var (
	// Core errors
	ErrHalted         = errors.New(f("halted with no wake source"))
	ErrFamilyUnknown  = errors.New(f("family unknown"))
	ErrSymbolUnknown  = errors.New(f("symbol unknown"))
	ErrSymbolReadOnly = errors.New(f("symbol read only"))
)
