package hal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"github.com/kapitanov/chip8emu/internal/vm"
	"github.com/veandco/go-sdl2/sdl"
)

type Options struct {
	Scale      int
	Foreground uint32 // ARGB8888
	Background uint32 // ARGB8888
}

// Beeper consumes tone requests.
type Beeper interface {
	Beep() error
}

type HAL struct {
	window          *sdl.Window
	renderer        *sdl.Renderer
	texture         *sdl.Texture
	backBuffer      []uint32
	backBufferPitch int

	fgColor uint32
	bgColor uint32
	beeper  Beeper
	fps     fpsCounter
}

var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

const windowTitle = "CHIP-8"

func New(opts Options, beeper Beeper) (*HAL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to init sdl: %w", err)
	}

	hal := &HAL{
		backBuffer:      make([]uint32, vm.ScreenWidth*vm.ScreenHeight),
		backBufferPitch: int(vm.ScreenWidth) * int(unsafe.Sizeof(uint32(0))),
		fgColor:         opts.Foreground,
		bgColor:         opts.Background,
		beeper:          beeper,
		fps:             fpsCounter{start: time.Now()},
	}
	if err := hal.open(opts.Scale); err != nil {
		hal.Shutdown()
		return nil, err
	}

	return hal, nil
}

func (hal *HAL) open(scale int) error {
	width, height := int32(vm.ScreenWidth*scale), int32(vm.ScreenHeight*scale)

	var err error
	hal.window, err = sdl.CreateWindow(windowTitle, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		width, height, sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return fmt.Errorf("failed to create sdl window: %w", err)
	}
	slog.Debug("hal: window", "width", width, "height", height)

	hal.renderer, err = sdl.CreateRenderer(hal.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("failed to create sdl renderer: %w", err)
	}
	if err = hal.renderer.SetLogicalSize(width, height); err != nil {
		return fmt.Errorf("failed to resize sdl renderer: %w", err)
	}

	hal.texture, err = hal.renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING,
		vm.ScreenWidth, vm.ScreenHeight)
	if err != nil {
		return fmt.Errorf("failed to create sdl texture: %w", err)
	}

	return nil
}

// Shutdown releases whatever New managed to create.
func (hal *HAL) Shutdown() {
	if hal.texture != nil {
		if err := hal.texture.Destroy(); err != nil {
			slog.Error("hal: destroy texture", "err", err)
		}
		hal.texture = nil
	}
	if hal.renderer != nil {
		if err := hal.renderer.Destroy(); err != nil {
			slog.Error("hal: destroy renderer", "err", err)
		}
		hal.renderer = nil
	}
	if hal.window != nil {
		if err := hal.window.Destroy(); err != nil {
			slog.Error("hal: destroy window", "err", err)
		}
		hal.window = nil
	}
	sdl.Quit()
}

// ReadInput drains pending SDL events once per frame. Control keys are
// reported as ErrReboot or ErrQuit; keypad keys go to the callbacks.
func (hal *HAL) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	if fps, ok := hal.fps.frame(time.Now()); ok {
		hal.window.SetTitle(fmt.Sprintf("%s - %.0f FPS", windowTitle, fps))
	}

	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e := e.(type) {
		case *sdl.QuitEvent:
			slog.Debug("hal: window closed")
			return ErrQuit
		case *sdl.KeyboardEvent:
			if err := dispatchKey(e.Type, e.Keysym.Scancode, keyDown, keyUp); err != nil {
				return err
			}
		}
	}

	return nil
}

func dispatchKey(typ uint32, code sdl.Scancode, keyDown, keyUp func(vm.Key)) error {
	if typ == sdl.KEYDOWN {
		if err := Command(code); err != nil {
			slog.Debug("hal: command", "cmd", err)
			return err
		}
	}

	key, ok := KeyMap(code)
	if !ok {
		return nil
	}
	if typ == sdl.KEYDOWN {
		keyDown(key)
	} else {
		keyUp(key)
	}
	return nil
}

// Command maps the host control keys: Enter or Backspace reset the
// machine, Escape quits.
func Command(code sdl.Scancode) error {
	switch code {
	case sdl.SCANCODE_RETURN, sdl.SCANCODE_BACKSPACE:
		return ErrReboot
	case sdl.SCANCODE_ESCAPE:
		return ErrQuit
	default:
		return nil
	}
}

// Physical                Logical
// ================        =================
// | 1 | 2 | 3 | 4 |       | 1 | 2 | 3 | C |
// | q | w | e | r |       | 4 | 5 | 6 | D |
// | a | s | d | f |  <=>  | 7 | 8 | 9 | E |
// | z | x | c | v |       | A | 0 | B | F |
// ================        =================
var keyMap = map[sdl.Scancode]vm.Key{
	sdl.SCANCODE_1: vm.Key1, sdl.SCANCODE_2: vm.Key2, sdl.SCANCODE_3: vm.Key3, sdl.SCANCODE_4: vm.KeyC,
	sdl.SCANCODE_Q: vm.Key4, sdl.SCANCODE_W: vm.Key5, sdl.SCANCODE_E: vm.Key6, sdl.SCANCODE_R: vm.KeyD,
	sdl.SCANCODE_A: vm.Key7, sdl.SCANCODE_S: vm.Key8, sdl.SCANCODE_D: vm.Key9, sdl.SCANCODE_F: vm.KeyE,
	sdl.SCANCODE_Z: vm.KeyA, sdl.SCANCODE_X: vm.Key0, sdl.SCANCODE_C: vm.KeyB, sdl.SCANCODE_V: vm.KeyF,
}

func KeyMap(code sdl.Scancode) (vm.Key, bool) {
	key, ok := keyMap[code]
	return key, ok
}

// Colorize maps framebuffer pixels onto the palette.
func Colorize(dst, gfx []uint32, fg, bg uint32) {
	for i, px := range gfx {
		if px != vm.PixelOff {
			dst[i] = fg
		} else {
			dst[i] = bg
		}
	}
}

func (hal *HAL) Draw(gfx []uint32) error {
	Colorize(hal.backBuffer, gfx, hal.fgColor, hal.bgColor)

	backBufferPtr := unsafe.Pointer(&hal.backBuffer[0])
	if err := hal.texture.Update(nil, backBufferPtr, hal.backBufferPitch); err != nil {
		return fmt.Errorf("failed to update sdl texture: %w", err)
	}

	if err := hal.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear sdl renderer: %w", err)
	}

	if err := hal.renderer.Copy(hal.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy sdl texture to renderer: %w", err)
	}

	hal.renderer.Present()
	return nil
}

func (hal *HAL) Beep() error {
	if hal.beeper == nil {
		return nil
	}
	if err := hal.beeper.Beep(); err != nil {
		return fmt.Errorf("failed to play tone: %w", err)
	}
	return nil
}
