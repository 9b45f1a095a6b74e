package vm

import (
	"errors"
	"math/rand/v2"
	"time"
)

const (
	MemorySize    = 4096
	StackSize     = 16
	RegisterCount = 16
	ScreenWidth   = 64
	ScreenHeight  = 32
	KeyCount      = 16

	FontStart       = uint16(0x050)
	ProgramStart    = uint16(0x200)
	ProgramEnd      = uint16(0xFFF)
	MaxROMSize      = MemorySize - int(ProgramStart)
	InstructionSize = 2

	// Framebuffer pixel values.
	PixelOff = uint32(0x00000000)
	PixelOn  = uint32(0xFFFFFFFF)

	addrMask = uint16(MemorySize - 1)
	flag     = 0x0F
)

var (
	ErrROMTooLarge    = errors.New("rom too large")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// VM holds the complete machine state. It is not safe for concurrent use:
// the driver goroutine writes registers, memory, framebuffer and keypad, and
// collaborators only read through Framebuffer/Dirty or write through
// KeyDown/KeyUp on that same goroutine.
type VM struct {
	memory    [MemorySize]uint8    // Memory (4k)
	registers [RegisterCount]uint8 // V registers (V0-VF)

	stack [StackSize]uint16 // Stack
	sp    uint16            // Stack pointer

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer uint8 // Delay timer
	soundTimer uint8 // Sound timer

	gfx         [ScreenWidth * ScreenHeight]uint32 // Graphics buffer
	keypad      [KeyCount]bool                     // Keypad
	drawFlag    bool                               // Framebuffer changed since last present
	awaitingKey bool                               // Last cycle rewound pc in FX0A

	program []byte // Retained ROM, restored on Reset
	rng     *rand.Rand
}

type Option func(*VM)

// WithRand replaces the time-seeded random source used by CXNN.
func WithRand(r *rand.Rand) Option {
	return func(vm *VM) {
		vm.rng = r
	}
}

// New returns a machine with fonts loaded, pc at ProgramStart and an empty
// program region.
func New(opts ...Option) *VM {
	seed := uint64(time.Now().UnixNano())
	vm := &VM{
		pc:       ProgramStart,
		drawFlag: true,
		rng:      rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
	for _, opt := range opts {
		opt(vm)
	}

	vm.LoadFonts()
	return vm
}

type Key uint8

const (
	Key0 = Key(iota)
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

func (vm *VM) KeyDown(key Key) {
	vm.keypad[key&0x0F] = true
}

func (vm *VM) KeyUp(key Key) {
	vm.keypad[key&0x0F] = false
}

func (vm *VM) IsKeyDown(key Key) bool {
	return vm.keypad[key&0x0F]
}

// Framebuffer returns a copy of the 64x32 pixel grid, row-major.
func (vm *VM) Framebuffer() [ScreenWidth * ScreenHeight]uint32 {
	return vm.gfx
}

// Pixel reports the value at (x, y); coordinates wrap.
func (vm *VM) Pixel(x, y int) uint32 {
	return vm.gfx[screenAddr(uint16(x), uint16(y))]
}

// Dirty reports whether the framebuffer changed since the last ClearDirty.
func (vm *VM) Dirty() bool {
	return vm.drawFlag
}

func (vm *VM) ClearDirty() {
	vm.drawFlag = false
}

// Present hands the framebuffer to draw if it is dirty and clears the flag
// once draw succeeds.
func (vm *VM) Present(draw func(gfx []uint32) error) error {
	if !vm.drawFlag {
		return nil
	}
	if err := draw(vm.gfx[:]); err != nil {
		return err
	}
	vm.drawFlag = false
	return nil
}

func (vm *VM) PC() uint16 {
	return vm.pc
}

func (vm *VM) Index() uint16 {
	return vm.index
}

func (vm *VM) SP() uint16 {
	return vm.sp
}

func (vm *VM) Register(x uint8) uint8 {
	return vm.registers[x&0x0F]
}

func (vm *VM) SetRegister(x, value uint8) {
	vm.registers[x&0x0F] = value
}

func (vm *VM) Registers() [RegisterCount]uint8 {
	return vm.registers
}

func (vm *VM) ReadMemory(addr uint16) uint8 {
	return vm.memory[addr&addrMask]
}

func (vm *VM) WriteMemory(addr uint16, value uint8) {
	vm.memory[addr&addrMask] = value
}

func (vm *VM) Memory() [MemorySize]uint8 {
	return vm.memory
}

func (vm *VM) DelayTimer() uint8 {
	return vm.delayTimer
}

func (vm *VM) SoundTimer() uint8 {
	return vm.soundTimer
}

// AwaitingKey reports whether the machine is spinning on FX0A.
func (vm *VM) AwaitingKey() bool {
	return vm.awaitingKey
}

func screenAddr(x, y uint16) uint16 {
	x %= ScreenWidth
	y %= ScreenHeight

	return ScreenWidth*y + x
}
