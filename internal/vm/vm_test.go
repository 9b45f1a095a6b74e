package vm

import (
	"math/rand/v2"
	"testing"
)

// state is a comparable copy of everything an instruction may touch.
type state struct {
	Memory    [MemorySize]uint8
	Registers [RegisterCount]uint8
	Stack     [StackSize]uint16
	SP        uint16
	PC        uint16
	Index     uint16
	Delay     uint8
	Sound     uint8
	Gfx       [ScreenWidth * ScreenHeight]uint32
	Keypad    [KeyCount]bool
	DrawFlag  bool
}

func snapshot(vm *VM) state {
	return state{
		Memory:    vm.memory,
		Registers: vm.registers,
		Stack:     vm.stack,
		SP:        vm.sp,
		PC:        vm.pc,
		Index:     vm.index,
		Delay:     vm.delayTimer,
		Sound:     vm.soundTimer,
		Gfx:       vm.gfx,
		Keypad:    vm.keypad,
		DrawFlag:  vm.drawFlag,
	}
}

func assemble(program ...uint16) []byte {
	bs := make([]byte, 0, 2*len(program))
	for _, op := range program {
		bs = append(bs, byte(op>>8), byte(op))
	}
	return bs
}

func newTestVM(t *testing.T, program ...uint16) *VM {
	t.Helper()

	vm := New(WithRand(rand.New(rand.NewPCG(1, 2))))
	if err := vm.LoadProgram(assemble(program...)); err != nil {
		t.Fatalf("load program: %v", err)
	}
	return vm
}

func mustCycle(t *testing.T, vm *VM, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		if err := vm.Cycle(); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
}

func TestKeypad(t *testing.T) {
	vm := New()

	vm.KeyDown(KeyA)
	if !vm.IsKeyDown(KeyA) {
		t.Fatal("key A should be down")
	}

	vm.KeyUp(KeyA)
	if vm.IsKeyDown(KeyA) {
		t.Fatal("key A should be up")
	}
}

func TestPresent(t *testing.T) {
	vm := New()
	if !vm.Dirty() {
		t.Fatal("new machine should request a first draw")
	}

	calls := 0
	draw := func(gfx []uint32) error {
		calls++
		if len(gfx) != ScreenWidth*ScreenHeight {
			t.Fatalf("got %d pixels", len(gfx))
		}
		return nil
	}

	if err := vm.Present(draw); err != nil {
		t.Fatal(err)
	}
	if err := vm.Present(draw); err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("draw called %d times, want 1", calls)
	}
	if vm.Dirty() {
		t.Error("dirty flag should be cleared after present")
	}
}

func TestPixelWraps(t *testing.T) {
	vm := New()
	vm.gfx[screenAddr(1, 2)] = PixelOn

	if got := vm.Pixel(ScreenWidth+1, ScreenHeight+2); got != PixelOn {
		t.Errorf("Pixel = 0x%08x, want lit", got)
	}
}
