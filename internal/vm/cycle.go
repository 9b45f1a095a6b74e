package vm

import (
	"context"
	"fmt"
	"log/slog"
)

// opcode is a fetched instruction with its operand fields extracted.
type opcode struct {
	raw uint16
	x   uint8  // _X__
	y   uint8  // __Y_
	nnn uint16 // _NNN
	nn  uint8  // __NN
	n   uint8  // ___N
}

func newOpcode(raw uint16) opcode {
	return opcode{
		raw: raw,
		x:   uint8((raw & 0x0F00) >> 8),
		y:   uint8((raw & 0x00F0) >> 4),
		nnn: raw & 0x0FFF,
		nn:  uint8(raw & 0x00FF),
		n:   uint8(raw & 0x000F),
	}
}

// Cycle fetches, decodes and executes exactly one instruction. Unknown
// opcodes are skipped. A stack fault is returned as an error; the faulting
// instruction has no effect and pc still points at it.
func (vm *VM) Cycle() error {
	pc := vm.pc
	op := newOpcode(vm.fetchOpcode())
	instr := decode(op.raw)

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", pc),
			"opcode", fmt.Sprintf("0x%04x", op.raw),
			"instr", instr.Name(op),
		)
	}

	vm.pc += InstructionSize
	vm.awaitingKey = false

	if err := instr.Execute(vm, op); err != nil {
		vm.pc = pc
		return fmt.Errorf("%s at 0x%04x: %w", instr.Name(op), pc, err)
	}

	return nil
}

func (vm *VM) fetchOpcode() uint16 {
	hi := vm.memory[vm.pc&addrMask]
	lo := vm.memory[(vm.pc+1)&addrMask]

	opcode := uint16(hi)<<8 | uint16(lo) // Op code is two bytes
	return opcode
}

// Tick advances the delay and sound timers by one step. It returns true
// only on the tick where the sound timer goes from 1 to 0.
func (vm *VM) Tick() bool {
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}

	if vm.soundTimer > 0 {
		vm.soundTimer--
		return vm.soundTimer == 0
	}

	return false
}
