package vm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// HAL is the host side of the machine: it feeds the keypad, presents the
// framebuffer and plays the tone. Host requests such as quit or reset are
// returned as errors from ReadInput and end Run.
type HAL interface {
	ReadInput(keyDown func(Key), keyUp func(Key)) error
	Draw(gfx []uint32) error
	Beep() error
}

type RunOptions struct {
	TimerHz        int // frames per second; timers tick once per frame
	CyclesPerFrame int // instructions executed per frame
}

// Run drives the machine until ctx is done or hal reports an error. Each
// frame polls input, executes CyclesPerFrame instructions, ticks the timers
// once and presents the framebuffer if it changed.
//
// A jump to self or a stack fault halts execution; timers, input and
// presentation keep running so the host can still reset or quit.
func (vm *VM) Run(ctx context.Context, hal HAL, opts RunOptions) error {
	if opts.TimerHz <= 0 || opts.CyclesPerFrame <= 0 {
		return fmt.Errorf("invalid run options: %+v", opts)
	}

	ticker := time.NewTicker(time.Second / time.Duration(opts.TimerHz))
	defer ticker.Stop()

	halted := false
	for {
		if err := hal.ReadInput(vm.KeyDown, vm.KeyUp); err != nil {
			return err
		}

		if !halted {
			halted = vm.runCycles(opts.CyclesPerFrame)
		}

		if vm.Tick() {
			if err := hal.Beep(); err != nil {
				return err
			}
		}

		if err := vm.Present(hal.Draw); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runCycles executes up to n instructions and reports whether the program
// halted.
func (vm *VM) runCycles(n int) bool {
	for i := 0; i < n; i++ {
		pc, sp := vm.pc, vm.sp

		if err := vm.Cycle(); err != nil {
			slog.Error("interpreter fault, waiting for reset", "err", err)
			return true
		}

		// a call to self still moves sp and runs on to the overflow fault
		if vm.pc == pc && vm.sp == sp && !vm.awaitingKey {
			slog.Info("program halted", "pc", fmt.Sprintf("0x%04x", pc))
			return true
		}
	}

	return false
}
