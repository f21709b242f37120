// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"

	"github.com/ezrec/avrsim/cpu"
	"github.com/ezrec/avrsim/emulator"
	avrio "github.com/ezrec/avrsim/io"
)

func main() {
	var compile string
	var hex string
	var disassemble bool
	var save string
	var verbose bool
	var sram int
	var maxTicks int
	var profileDir string

	breakpoints := map[uint32]bool{}

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.StringVar(&hex, "x", "", "Intel HEX file to load")
	flag.BoolVar(&disassemble, "d", false, "Disassemble the program, do not execute")
	flag.StringVar(&save, "s", "", "Save the program as Intel HEX, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.IntVar(&sram, "sram", 0, "SRAM size in bytes (default 2048)")
	flag.IntVar(&maxTicks, "max", 0, "Stop after this many instructions")
	flag.StringVar(&profileDir, "profile", "", "Write a CPU profile to this directory")
	flag.Func("b", "Breakpoint at a program byte address (repeatable)", func(text string) error {
		addr, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return err
		}
		breakpoints[uint32(addr)] = true
		return nil
	})

	flag.Parse()

	if flag.NArg() != 0 {
		logrus.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) != 0 && len(hex) != 0 {
		logrus.Fatalf("%v: -c and -x are exclusive", os.Args[0])
	}

	if sram > cpu.SRAM_MAX {
		logrus.Fatalf("%v: -sram %v exceeds %v", os.Args[0], sram, cpu.SRAM_MAX)
	}

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if len(profileDir) != 0 {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(profileDir), profile.Quiet).Stop()
	}

	emu := emulator.NewEmulator(sram)
	emu.Verbose = verbose
	emu.MaxTicks = maxTicks
	emu.Breakpoints = breakpoints

	switch {
	case len(compile) != 0:
		inf, err := os.Open(compile)
		if err != nil {
			logrus.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			logrus.Fatalf("%v: %v", compile, err)
		}
	case len(hex) != 0:
		inf, err := os.Open(hex)
		if err != nil {
			logrus.Fatalf("%v: %v", hex, err)
		}
		defer inf.Close()

		err = emu.LoadHex(inf)
		if err != nil {
			logrus.Fatalf("%v: %v", hex, err)
		}
	default:
		logrus.Fatalf("%v: one of -c or -x is required", os.Args[0])
	}

	if disassemble {
		if verbose {
			for n, inst := range emu.Listing.Instructions {
				addr := emu.Listing.Offsets[n] << 1
				fmt.Printf("%06x:\t%v\t%v\n", addr, inst.Kind().Pattern(), inst)
			}
			return
		}
		for addr, text := range emu.Listing.Lines() {
			fmt.Printf("%06x:\t%v\n", addr, text)
		}
		return
	}

	if len(save) != 0 {
		image, err := emu.Image()
		if err != nil {
			logrus.Fatalf("%v: %v", save, err)
		}

		ouf, err := os.Create(save)
		if err != nil {
			logrus.Fatalf("%v: %v", save, err)
		}
		defer ouf.Close()

		err = avrio.WriteHex(ouf, image)
		if err != nil {
			logrus.Fatalf("%v: %v", save, err)
		}
		return
	}

	err := emu.Run()
	fmt.Print(emu.Cpu.String())
	switch {
	case errors.Is(err, emulator.ErrBreakpoint), errors.Is(err, emulator.ErrTickLimit):
		logrus.Info(err)
	case err != nil:
		logrus.Fatal(err)
	}
}
