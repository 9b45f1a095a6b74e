package vm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewOpcode(t *testing.T) {
	got := newOpcode(0xD123)
	want := opcode{raw: 0xD123, x: 0x1, y: 0x2, nnn: 0x123, nn: 0x23, n: 0x3}

	if diff := cmp.Diff(want, got, cmp.AllowUnexported(opcode{})); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownOpcodeIsNop(t *testing.T) {
	unknown := []uint16{
		0x0000, 0x0123, 0x00E1, 0x00FF,
		0x8008, 0x800D, 0x800F,
		0xE000, 0xE19F, 0xE1A2,
		0xF000, 0xF0FF, 0xF066, 0xF156,
	}

	for _, raw := range unknown {
		t.Run(fmt.Sprintf("0x%04x", raw), func(t *testing.T) {
			vm := newTestVM(t, raw)
			vm.registers = [RegisterCount]uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
			vm.index = 0x300
			vm.delayTimer = 5
			vm.soundTimer = 6
			vm.KeyDown(Key1)
			vm.ClearDirty()

			want := snapshot(vm)
			want.PC += InstructionSize

			mustCycle(t, vm, 1)

			if diff := cmp.Diff(want, snapshot(vm)); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStackOverflowIsFatal(t *testing.T) {
	vm := newTestVM(t, 0x2200) // jsr 0x200

	mustCycle(t, vm, StackSize)
	before := snapshot(vm)

	err := vm.Cycle()
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("err = %v, want ErrStackOverflow", err)
	}

	if diff := cmp.Diff(before, snapshot(vm)); diff != "" {
		t.Errorf("faulting call changed state (-want +got):\n%s", diff)
	}
}

func TestStackUnderflowIsFatal(t *testing.T) {
	vm := newTestVM(t, 0x00EE)
	before := snapshot(vm)

	err := vm.Cycle()
	if !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("err = %v, want ErrStackUnderflow", err)
	}

	if diff := cmp.Diff(before, snapshot(vm)); diff != "" {
		t.Errorf("faulting return changed state (-want +got):\n%s", diff)
	}
}

func TestNestedCalls(t *testing.T) {
	vm := newTestVM(t,
		0x2204, // 0x200: jsr 0x204
		0x1202, // 0x202: jmp 0x202
		0x2208, // 0x204: jsr 0x208
		0x00EE, // 0x206: rts
		0x00EE, // 0x208: rts
	)

	mustCycle(t, vm, 2)
	if vm.SP() != 2 || vm.PC() != 0x208 {
		t.Fatalf("sp = %d, pc = 0x%04x", vm.SP(), vm.PC())
	}

	mustCycle(t, vm, 2)
	if vm.SP() != 0 || vm.PC() != 0x202 {
		t.Fatalf("sp = %d, pc = 0x%04x", vm.SP(), vm.PC())
	}
}

func TestFetchWrapsAtEndOfMemory(t *testing.T) {
	vm := New()
	vm.pc = ProgramEnd
	vm.memory[ProgramEnd] = 0x61
	vm.memory[0] = 0x7F

	mustCycle(t, vm, 1)

	if got := vm.Register(1); got != 0x7F {
		t.Errorf("v1 = 0x%02x, want 0x7f", got)
	}
}

func TestTick(t *testing.T) {
	vm := New()
	vm.delayTimer = 2
	vm.soundTimer = 1

	if !vm.Tick() {
		t.Fatal("tick from sound timer 1 should request a tone")
	}
	if vm.SoundTimer() != 0 || vm.DelayTimer() != 1 {
		t.Fatalf("sound = %d, delay = %d", vm.SoundTimer(), vm.DelayTimer())
	}

	if vm.Tick() {
		t.Fatal("tick with sound timer 0 should not request a tone")
	}
	if vm.SoundTimer() != 0 || vm.DelayTimer() != 0 {
		t.Fatalf("sound = %d, delay = %d", vm.SoundTimer(), vm.DelayTimer())
	}

	if vm.Tick() || vm.DelayTimer() != 0 {
		t.Fatal("timers must not go below zero")
	}
}

func TestTickToneIsOneShot(t *testing.T) {
	vm := New()
	vm.soundTimer = 5

	tones := 0
	for i := 0; i < 10; i++ {
		if vm.Tick() {
			tones++
			if i != 4 {
				t.Errorf("tone on tick %d, want tick 4", i)
			}
		}
	}

	if tones != 1 {
		t.Errorf("got %d tones, want 1", tones)
	}
}
