// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package monitor implements a scriptable debugger for the emulated firmware.
//
// Scripts are written in starlark. A script runs once when loaded, which is
// the place to poke initial values (such as enable_bug) and to set
// watchpoints. If the script defines on_trap(n), it is called after every
// trap with the number of traps so far. Script globals are frozen once the
// script has run, so state kept between traps belongs in the target.
//
// Builtins:
//
//	peek(name)          value of a symbol
//	poke(name, value)   write a symbol
//	watch(name)         report every change of a symbol
//	unwatch(name)       stop reporting a symbol
//	symbols()           dict of every symbol and its formatted value
//	halt()              stop the emulation after the current trap
//	print(...)          write to the monitor output
package monitor

import (
	"fmt"
	"io"
	"iter"
	"log"
	"os"
	"slices"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const HOOK_ON_TRAP = "on_trap" // Name of the per-trap hook.

// Target is the debugged system.
type Target interface {
	Peek(name string) (value uint64, err error)
	Poke(name string, value uint64) (err error)
	Symbols() iter.Seq2[string, string]
}

type watchpoint struct {
	name  string
	value uint64
}

// Monitor runs debugger scripts against a target.
type Monitor struct {
	Verbose bool      // Set to enable verbose logging.
	Output  io.Writer // Output of print() and watchpoints; os.Stdout if nil.
	Target  Target    // Debugged system.

	defines starlark.StringDict
	globals starlark.StringDict
	watches []watchpoint
	halted  bool
}

// NewMonitor creates a monitor for target.
func NewMonitor(target Target) (mon *Monitor) {
	mon = &Monitor{
		Target:  target,
		defines: starlark.StringDict{},
		globals: starlark.StringDict{},
	}

	return
}

// Define a named constant visible to scripts.
func (mon *Monitor) Define(name string, value uint64) {
	mon.defines[name] = starlark.MakeUint64(value)
}

// Halted is true once a script called halt().
func (mon *Monitor) Halted() bool {
	return mon.halted
}

// Watches returns the names of the watched symbols.
func (mon *Monitor) Watches() (names []string) {
	for _, wp := range mon.watches {
		names = append(names, wp.name)
	}
	return
}

func (mon *Monitor) output() io.Writer {
	if mon.Output == nil {
		return os.Stdout
	}
	return mon.Output
}

func (mon *Monitor) thread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(mon.output(), msg)
		},
	}
}

func (mon *Monitor) peek(name string) (value uint64, err error) {
	if mon.Target == nil {
		err = ErrTargetMissing
		return
	}
	return mon.Target.Peek(name)
}

func (mon *Monitor) predeclared() starlark.StringDict {
	pred := starlark.StringDict{
		"peek":    starlark.NewBuiltin("peek", mon.builtinPeek),
		"poke":    starlark.NewBuiltin("poke", mon.builtinPoke),
		"watch":   starlark.NewBuiltin("watch", mon.builtinWatch),
		"unwatch": starlark.NewBuiltin("unwatch", mon.builtinUnwatch),
		"symbols": starlark.NewBuiltin("symbols", mon.builtinSymbols),
		"halt":    starlark.NewBuiltin("halt", mon.builtinHalt),
	}
	for key, value := range mon.defines {
		pred[key] = value
	}
	return pred
}

func (mon *Monitor) builtinPeek(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}

	value, err := mon.peek(name)
	if err != nil {
		return nil, err
	}

	return starlark.MakeUint64(value), nil
}

func (mon *Monitor) builtinPoke(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var st_value starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "value", &st_value); err != nil {
		return nil, err
	}

	var value uint64
	switch v := st_value.(type) {
	case starlark.Bool:
		if v {
			value = 1
		}
	case starlark.Int:
		var ok bool
		value, ok = v.Uint64()
		if !ok {
			return nil, ErrValueInvalid
		}
	default:
		return nil, ErrValueInvalid
	}

	if mon.Target == nil {
		return nil, ErrTargetMissing
	}

	if mon.Verbose {
		log.Printf("monitor: poke %v 0x%x", name, value)
	}

	if err := mon.Target.Poke(name, value); err != nil {
		return nil, err
	}

	return starlark.None, nil
}

func (mon *Monitor) builtinWatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}

	value, err := mon.peek(name)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(mon.Watches(), name) {
		mon.watches = append(mon.watches, watchpoint{name: name, value: value})
	}

	return starlark.MakeUint64(value), nil
}

func (mon *Monitor) builtinUnwatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}

	index := slices.IndexFunc(mon.watches, func(wp watchpoint) bool { return wp.name == name })
	if index < 0 {
		return nil, fmt.Errorf("%v: %w", name, ErrWatchMissing)
	}
	mon.watches = slices.Delete(mon.watches, index, index+1)

	return starlark.None, nil
}

func (mon *Monitor) builtinSymbols(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	dict := starlark.NewDict(16)
	if mon.Target != nil {
		for name, text := range mon.Target.Symbols() {
			dict.SetKey(starlark.String(name), starlark.String(text))
		}
	}

	return dict, nil
}

func (mon *Monitor) builtinHalt(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	mon.halted = true

	return starlark.None, nil
}

// Load executes a script. src may be a string, []byte, io.Reader or nil
// to read filename. Globals of the script stay visible to later scripts,
// Eval and the on_trap hook.
func (mon *Monitor) Load(filename string, src any) (err error) {
	defer func() {
		if err != nil {
			err = &ErrScript{Name: filename, Err: err}
		}
	}()

	pred := mon.predeclared()
	for key, value := range mon.globals {
		pred[key] = value
	}

	opts := syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
	}
	globals, err := starlark.ExecFileOptions(&opts, mon.thread(filename), filename, src, pred)
	if err != nil {
		return
	}

	hook, ok := globals[HOOK_ON_TRAP]
	if ok {
		if _, callable := hook.(starlark.Callable); !callable {
			err = ErrHookInvalid
			return
		}
	}

	for key, value := range globals {
		mon.globals[key] = value
	}

	if mon.Verbose {
		log.Printf("monitor: loaded %v, %d globals", filename, len(globals))
	}

	return
}

// Eval evaluates an integer expression using symbols defined by scripts.
func (mon *Monitor) Eval(expr string) (value uint64, err error) {
	pred := mon.predeclared()
	for key, value := range mon.globals {
		pred[key] = value
	}

	opts := syntax.FileOptions{}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, mon.thread("eval"), "eval", prog, pred)
	if err != nil {
		return
	}

	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrExpression
		return
	}

	switch rc := st_rc.(type) {
	case starlark.Int:
		value, ok = rc.Uint64()
	case starlark.Bool:
		if rc {
			value = 1
		}
	default:
		ok = false
	}
	if !ok {
		err = fmt.Errorf("%v: %w", expr, ErrExpression)
	}

	return
}

// check reports watchpoints whose value changed.
func (mon *Monitor) check(count int) (err error) {
	for n := range mon.watches {
		wp := &mon.watches[n]
		var value uint64
		value, err = mon.peek(wp.name)
		if err != nil {
			return
		}
		if value != wp.value {
			fmt.Fprintln(mon.output(), f("watch %d: %v 0x%x -> 0x%x", count, wp.name, wp.value, value))
			wp.value = value
		}
	}
	return
}

// OnTrap runs after trap number count: watchpoints first, then the
// on_trap hook. Returns ErrHalt once a script has called halt().
func (mon *Monitor) OnTrap(count int) (err error) {
	err = mon.check(count)
	if err != nil {
		return &ErrScript{Name: "watch", Err: err}
	}

	hook, ok := mon.globals[HOOK_ON_TRAP]
	if ok {
		_, err = starlark.Call(mon.thread(HOOK_ON_TRAP), hook, starlark.Tuple{starlark.MakeInt(count)}, nil)
		if err != nil {
			return &ErrScript{Name: HOOK_ON_TRAP, Err: err}
		}
	}

	if mon.halted {
		err = ErrHalt
	}

	return
}
