package hal

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kapitanov/chip8emu/internal/vm"
	"github.com/veandco/go-sdl2/sdl"
)

func TestKeyMapCoversKeypad(t *testing.T) {
	rows := [][]sdl.Scancode{
		{sdl.SCANCODE_1, sdl.SCANCODE_2, sdl.SCANCODE_3, sdl.SCANCODE_4},
		{sdl.SCANCODE_Q, sdl.SCANCODE_W, sdl.SCANCODE_E, sdl.SCANCODE_R},
		{sdl.SCANCODE_A, sdl.SCANCODE_S, sdl.SCANCODE_D, sdl.SCANCODE_F},
		{sdl.SCANCODE_Z, sdl.SCANCODE_X, sdl.SCANCODE_C, sdl.SCANCODE_V},
	}
	want := [][]vm.Key{
		{vm.Key1, vm.Key2, vm.Key3, vm.KeyC},
		{vm.Key4, vm.Key5, vm.Key6, vm.KeyD},
		{vm.Key7, vm.Key8, vm.Key9, vm.KeyE},
		{vm.KeyA, vm.Key0, vm.KeyB, vm.KeyF},
	}

	got := make([][]vm.Key, len(rows))
	for i, row := range rows {
		for _, code := range row {
			key, ok := KeyMap(code)
			if !ok {
				t.Fatalf("scancode %d not mapped", code)
			}
			got[i] = append(got[i], key)
		}
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}

	if _, ok := KeyMap(sdl.SCANCODE_P); ok {
		t.Error("P should not be mapped")
	}
}

func TestCommand(t *testing.T) {
	tests := map[sdl.Scancode]error{
		sdl.SCANCODE_RETURN:    ErrReboot,
		sdl.SCANCODE_BACKSPACE: ErrReboot,
		sdl.SCANCODE_ESCAPE:    ErrQuit,
		sdl.SCANCODE_X:         nil,
	}

	for code, want := range tests {
		if got := Command(code); !errors.Is(got, want) {
			t.Errorf("scancode %d: got %v, want %v", code, got, want)
		}
	}
}

func TestColorize(t *testing.T) {
	gfx := []uint32{vm.PixelOff, vm.PixelOn, vm.PixelOn, vm.PixelOff}
	dst := make([]uint32, len(gfx))

	Colorize(dst, gfx, 0xFFBEA700, 0xFF000000)

	want := []uint32{0xFF000000, 0xFFBEA700, 0xFFBEA700, 0xFF000000}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("colours mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchKey(t *testing.T) {
	var down, up []vm.Key
	keyDown := func(k vm.Key) { down = append(down, k) }
	keyUp := func(k vm.Key) { up = append(up, k) }

	steps := []struct {
		typ  uint32
		code sdl.Scancode
		want error
	}{
		{sdl.KEYDOWN, sdl.SCANCODE_Q, nil},
		{sdl.KEYUP, sdl.SCANCODE_Q, nil},
		{sdl.KEYDOWN, sdl.SCANCODE_V, nil},
		{sdl.KEYDOWN, sdl.SCANCODE_P, nil},
		{sdl.KEYUP, sdl.SCANCODE_ESCAPE, nil},
		{sdl.KEYDOWN, sdl.SCANCODE_ESCAPE, ErrQuit},
		{sdl.KEYDOWN, sdl.SCANCODE_RETURN, ErrReboot},
	}
	for _, s := range steps {
		if err := dispatchKey(s.typ, s.code, keyDown, keyUp); !errors.Is(err, s.want) {
			t.Errorf("type %d scancode %d: got %v, want %v", s.typ, s.code, err, s.want)
		}
	}

	if diff := cmp.Diff([]vm.Key{vm.Key4, vm.KeyF}, down); diff != "" {
		t.Errorf("key down mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]vm.Key{vm.Key4}, up); diff != "" {
		t.Errorf("key up mismatch (-want +got):\n%s", diff)
	}
}

func TestFPSCounter(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := fpsCounter{start: start}

	for i := 1; i < 60; i++ {
		if _, ok := c.frame(start.Add(time.Duration(i) * time.Second / 60)); ok {
			t.Fatalf("frame %d reported early", i)
		}
	}

	fps, ok := c.frame(start.Add(time.Second))
	if !ok || fps != 60 {
		t.Fatalf("fps = %v, ok = %v, want 60", fps, ok)
	}

	if _, ok := c.frame(start.Add(time.Second + time.Millisecond)); ok {
		t.Error("window not restarted")
	}
}
