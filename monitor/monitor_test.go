package monitor

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errUnknown = errors.New("unknown")

type fakeTarget map[string]uint64

func (ft fakeTarget) Peek(name string) (value uint64, err error) {
	value, ok := ft[name]
	if !ok {
		err = errUnknown
	}
	return
}

func (ft fakeTarget) Poke(name string, value uint64) (err error) {
	if _, ok := ft[name]; !ok {
		return errUnknown
	}
	ft[name] = value
	return
}

func (ft fakeTarget) Symbols() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, name := range slices.Sorted(maps.Keys(ft)) {
			if !yield(name, fmt.Sprintf("0x%x", ft[name])) {
				return
			}
		}
	}
}

func newTestMonitor() (mon *Monitor, target fakeTarget, out *bytes.Buffer) {
	target = fakeTarget{"transitions": 0, "enable_bug": 0, "current_state": 0}
	out = &bytes.Buffer{}
	mon = NewMonitor(target)
	mon.Output = out
	return
}

func TestMonitor_PeekPoke(t *testing.T) {
	assert := assert.New(t)

	mon, target, out := newTestMonitor()
	mon.Define("RED", 2)

	err := mon.Load("setup.star", `
poke("enable_bug", True)
poke("current_state", RED)
print("transitions", peek("transitions"))
`)
	assert.NoError(err)
	assert.Equal(uint64(1), target["enable_bug"])
	assert.Equal(uint64(2), target["current_state"])
	assert.Equal("transitions 0\n", out.String())
}

func TestMonitor_Errors(t *testing.T) {
	assert := assert.New(t)

	mon, _, _ := newTestMonitor()

	err := mon.Load("bad.star", `peek("pc")`)
	assert.ErrorIs(err, errUnknown)
	var script *ErrScript
	assert.ErrorAs(err, &script)
	assert.Equal("bad.star", script.Name)

	err = mon.Load("neg.star", `poke("transitions", -1)`)
	assert.ErrorIs(err, ErrValueInvalid)

	err = mon.Load("str.star", `poke("transitions", "one")`)
	assert.ErrorIs(err, ErrValueInvalid)

	err = mon.Load("hook.star", `on_trap = 3`)
	assert.ErrorIs(err, ErrHookInvalid)

	err = mon.Load("syntax.star", `def (`)
	assert.Error(err)

	err = mon.Load("unwatch.star", `unwatch("transitions")`)
	assert.ErrorIs(err, ErrWatchMissing)

	mon = NewMonitor(nil)
	err = mon.Load("none.star", `peek("transitions")`)
	assert.ErrorIs(err, ErrTargetMissing)
}

func TestMonitor_Watch(t *testing.T) {
	assert := assert.New(t)

	mon, target, out := newTestMonitor()

	assert.NoError(mon.Load("watch.star", `
watch("transitions")
watch("transitions")
`))
	assert.Equal([]string{"transitions"}, mon.Watches())

	target["transitions"] = 1
	assert.NoError(mon.OnTrap(1))
	target["transitions"] = 0xaa02
	assert.NoError(mon.OnTrap(2))
	assert.NoError(mon.OnTrap(3))

	assert.Equal("watch 1: transitions 0x0 -> 0x1\nwatch 2: transitions 0x1 -> 0xaa02\n", out.String())

	assert.NoError(mon.Load("unwatch.star", `unwatch("transitions")`))
	assert.Empty(mon.Watches())
}

func TestMonitor_OnTrap(t *testing.T) {
	assert := assert.New(t)

	mon, target, out := newTestMonitor()

	assert.NoError(mon.Load("hook.star", `
ARM_AT = 3

def on_trap(n):
    if n == ARM_AT:
        poke("enable_bug", 1)
    if peek("transitions") > 0xff:
        print("corrupted at", n)
        halt()
`))

	for n := 1; n <= 2; n++ {
		target["transitions"] = uint64(n)
		assert.NoError(mon.OnTrap(n))
	}
	assert.Equal(uint64(0), target["enable_bug"])

	target["transitions"] = 3
	assert.NoError(mon.OnTrap(3))
	assert.Equal(uint64(1), target["enable_bug"])
	assert.False(mon.Halted())

	target["transitions"] = 0xaa04
	err := mon.OnTrap(4)
	assert.ErrorIs(err, ErrHalt)
	assert.True(mon.Halted())
	assert.Equal("corrupted at 4\n", out.String())
}

func TestMonitor_OnTrapError(t *testing.T) {
	assert := assert.New(t)

	mon, _, _ := newTestMonitor()
	assert.NoError(mon.Load("hook.star", `
def on_trap(n):
    poke("nowhere", n)
`))

	err := mon.OnTrap(1)
	assert.ErrorIs(err, errUnknown)
	var script *ErrScript
	assert.ErrorAs(err, &script)
	assert.Equal(HOOK_ON_TRAP, script.Name)
}

func TestMonitor_Symbols(t *testing.T) {
	assert := assert.New(t)

	mon, target, out := newTestMonitor()
	target["transitions"] = 0x10

	assert.NoError(mon.Load("symbols.star", `
s = symbols()
for name in sorted(s.keys()):
    print(name, s[name])
`))
	assert.Equal("current_state 0x0\nenable_bug 0x0\ntransitions 0x10\n", out.String())
}

func TestMonitor_Eval(t *testing.T) {
	assert := assert.New(t)

	mon, target, _ := newTestMonitor()
	mon.Define("GREEN", 0)
	target["transitions"] = 0xaa03

	assert.NoError(mon.Load("consts.star", `LIMIT = 0x100`))

	value, err := mon.Eval(`peek("transitions") & ~0xff00`)
	assert.NoError(err)
	assert.Equal(uint64(3), value)

	value, err = mon.Eval(`LIMIT * 2 + GREEN`)
	assert.NoError(err)
	assert.Equal(uint64(0x200), value)

	value, err = mon.Eval(`peek("transitions") > LIMIT`)
	assert.NoError(err)
	assert.Equal(uint64(1), value)

	_, err = mon.Eval(`"text"`)
	assert.ErrorIs(err, ErrExpression)

	_, err = mon.Eval(`-1`)
	assert.ErrorIs(err, ErrExpression)
}
