package vm

import (
	"fmt"
	"log/slog"
	"os"
)

// 16 hexadecimal glyphs, 4x5 pixels each.
var chip8Font = [...]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

const fontGlyphSize = 5

// LoadFonts copies the glyph table to FontStart.
func (vm *VM) LoadFonts() {
	copy(vm.memory[FontStart:], chip8Font[:])
}

// LoadROM reads the file at path and loads it into the program region.
// On failure the machine state is left untouched.
func (vm *VM) LoadROM(path string) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read rom %q: %w", path, err)
	}

	if err = vm.LoadProgram(bs); err != nil {
		return fmt.Errorf("unable to load rom %q: %w", path, err)
	}

	return nil
}

// LoadProgram copies program to ProgramStart and retains it for Reset. The
// rest of the program region is zeroed.
func (vm *VM) LoadProgram(program []byte) error {
	if len(program) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrROMTooLarge, len(program), MaxROMSize)
	}

	vm.program = append(vm.program[:0], program...)

	n := copy(vm.memory[ProgramStart:], vm.program)
	clear(vm.memory[int(ProgramStart)+n:])

	slog.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", n)
	return nil
}

// Reset zeroes all state, reloads the fonts and the retained program, and
// points pc back at ProgramStart. The rom file is not read again.
func (vm *VM) Reset() {
	vm.pc = ProgramStart
	vm.index = 0
	vm.sp = 0

	clear(vm.gfx[:])
	vm.drawFlag = true
	vm.awaitingKey = false

	clear(vm.stack[:])
	clear(vm.keypad[:])
	clear(vm.registers[:])
	clear(vm.memory[:])

	slog.Debug("load font", "at", fmt.Sprintf("0x%04x", FontStart), "n", len(chip8Font))
	vm.LoadFonts()

	slog.Info("reload program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(vm.program))
	copy(vm.memory[ProgramStart:], vm.program)

	vm.delayTimer = 0
	vm.soundTimer = 0
}
