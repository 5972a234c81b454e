// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ezrec/stm8light/emulator"
	"github.com/ezrec/stm8light/firmware"
	"github.com/ezrec/stm8light/mcu"
	"github.com/ezrec/stm8light/monitor"
	"github.com/ezrec/stm8light/timer"
)

func main() {
	var family string
	var period time.Duration
	var resolution time.Duration
	var seed int64
	var bug bool
	var script string
	var output string
	var traps int
	var fast bool
	var verbose bool

	flag.StringVar(&family, "f", "stm8l", "Device family (stm8l, stm8s)")
	flag.DurationVar(&period, "t", timer.DEFAULT_PERIOD, "Timer input tick period")
	flag.DurationVar(&resolution, "r", timer.DEFAULT_RESOLUTION, "Host clock resolution")
	flag.Int64Var(&seed, "s", 1, "Bug countdown seed")
	flag.BoolVar(&bug, "b", false, "Arm the bug injector")
	flag.StringVar(&script, "x", "", ".star monitor script to run")
	flag.StringVar(&output, "o", "-", "Monitor output")
	flag.IntVar(&traps, "n", 0, "Stop after this many traps")
	flag.BoolVar(&fast, "fast", false, "Fast-forward idle time")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	fam, err := mcu.ParseFamily(family)
	if err != nil {
		log.Fatalf("%v: %v", family, err)
	}

	emu := emulator.NewEmulator(fam, seed)
	emu.Verbose = verbose
	emu.FastForward = fast
	emu.MaxTraps = traps
	emu.Clock = timer.Clock{Period: period, Resolution: resolution}

	if len(script) != 0 {
		mon := monitor.NewMonitor(nil)
		if output != "-" {
			ouf, err := os.Create(output)
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
			defer ouf.Close()
			mon.Output = ouf
		}
		emu.AttachMonitor(mon)

		err = mon.Load(script, nil)
		if err != nil {
			log.Fatal(err)
		}
	}

	if bug {
		err = emu.Poke(firmware.SYMBOL_ENABLE_BUG, 1)
		if err != nil {
			log.Fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = emu.Run(ctx)
	stop()

	// Final state, as a debugger would show it.
	for name, text := range emu.Symbols() {
		fmt.Printf("%-24s %v\n", name, text)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
