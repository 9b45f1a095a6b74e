package vm

import (
	"fmt"
)

type instruction struct {
	Name    func(op opcode) string
	Execute func(vm *VM, op opcode) error
}

// decode picks the handler from the top nibble. Families 0, 8, E and F
// share a top nibble and are told apart by their low nibble or low byte.
func decode(raw uint16) instruction {
	switch raw >> 12 {
	case 0x0:
		return decodeSystem(raw)
	case 0x1:
		return jmpInstruction
	case 0x2:
		return jsrInstruction
	case 0x3:
		return skeq1Instruction
	case 0x4:
		return skne1Instruction
	case 0x5:
		return skeq2Instruction
	case 0x6:
		return mov1Instruction
	case 0x7:
		return add1Instruction
	case 0x8:
		return decodeALU(raw)
	case 0x9:
		return skne2Instruction
	case 0xA:
		return mviInstruction
	case 0xB:
		return jmiInstruction
	case 0xC:
		return randInstruction
	case 0xD:
		return spriteInstruction
	case 0xE:
		return decodeKeys(raw)
	default:
		return decodeMisc(raw)
	}
}

// 00E0, 00EE. 0NNN machine routines are not supported. The whole low
// byte is matched, so 0000 and 00E1 fall through to a no-op.
func decodeSystem(raw uint16) instruction {
	switch raw & 0x00FF {
	case 0xE0:
		return clsInstruction
	case 0xEE:
		return rtsInstruction
	default:
		return nopInstruction
	}
}

// 8XY0 to 8XYE, keyed on the low nibble.
func decodeALU(raw uint16) instruction {
	switch raw & 0x000F {
	case 0x0:
		return mov2Instruction
	case 0x1:
		return orInstruction
	case 0x2:
		return andInstruction
	case 0x3:
		return xorInstruction
	case 0x4:
		return add2Instruction
	case 0x5:
		return subInstruction
	case 0x6:
		return shrInstruction
	case 0x7:
		return rsbInstruction
	case 0xE:
		return shlInstruction
	default:
		return nopInstruction
	}
}

// EX9E, EXA1, matched on the whole low byte like the 0 family.
func decodeKeys(raw uint16) instruction {
	switch raw & 0x00FF {
	case 0x9E:
		return skprInstruction
	case 0xA1:
		return skupInstruction
	default:
		return nopInstruction
	}
}

// FX07 to FX65, keyed on the low byte.
func decodeMisc(raw uint16) instruction {
	switch raw & 0x00FF {
	case 0x07:
		return gdelayInstruction
	case 0x0A:
		return keyInstruction
	case 0x15:
		return sdelayInstruction
	case 0x18:
		return ssoundInstruction
	case 0x1E:
		return adiInstruction
	case 0x29:
		return fontInstruction
	case 0x33:
		return bcdInstruction
	case 0x55:
		return strInstruction
	case 0x65:
		return ldrInstruction
	default:
		return nopInstruction
	}
}

func (vm *VM) skipIf(cond bool) {
	if cond {
		vm.pc += InstructionSize
	}
}

var (
	// 00E0	cls	Clear the screen
	clsInstruction = instruction{
		Name: func(op opcode) string {
			return "cls"
		},
		Execute: func(vm *VM, op opcode) error {
			clear(vm.gfx[:])
			vm.drawFlag = true
			return nil
		},
	}

	// 00EE	rts	return from subroutine call
	rtsInstruction = instruction{
		Name: func(op opcode) string {
			return "rts"
		},
		Execute: func(vm *VM, op opcode) error {
			if vm.sp == 0 {
				return ErrStackUnderflow
			}
			vm.sp--
			vm.pc = vm.stack[vm.sp]
			return nil
		},
	}

	// 1xxx	jmp xxx	jump to address xxx
	jmpInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("jmp 0x%04x", op.nnn)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.pc = op.nnn
			return nil
		},
	}

	// 2xxx	jsr xxx	jump to subroutine at address xxx
	jsrInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("jsr 0x%04x", op.nnn)
		},
		Execute: func(vm *VM, op opcode) error {
			if vm.sp >= StackSize {
				return ErrStackOverflow
			}
			vm.stack[vm.sp] = vm.pc
			vm.sp++
			vm.pc = op.nnn
			return nil
		},
	}

	// 3rxx	skeq vr,xx	skip if register r = constant
	skeq1Instruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("skeq v%x, %d", op.x, op.nn)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.skipIf(vm.registers[op.x] == op.nn)
			return nil
		},
	}

	// 4rxx	skne vr,xx	skip if register r <> constant
	skne1Instruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("skne v%x, %d", op.x, op.nn)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.skipIf(vm.registers[op.x] != op.nn)
			return nil
		},
	}

	// 5ry0	skeq vr,vy	skip if register r = register y
	skeq2Instruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("skeq v%x, v%x", op.x, op.y)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.skipIf(vm.registers[op.x] == vm.registers[op.y])
			return nil
		},
	}

	// 6rxx	mov vr,xx	move constant to register r
	mov1Instruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("mov v%x, %d", op.x, op.nn)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.registers[op.x] = op.nn
			return nil
		},
	}

	// 7rxx	add vr,xx	add constant to register r	No carry generated
	add1Instruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("add v%x, %d", op.x, op.nn)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.registers[op.x] += op.nn
			return nil
		},
	}

	// 8ry0	mov vr,vy	move register vy into vr
	mov2Instruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("mov v%x, v%x", op.x, op.y)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.registers[op.x] = vm.registers[op.y]
			return nil
		},
	}

	// 8ry1	or rx,ry	or register vy into register vx
	orInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("or v%x, v%x", op.x, op.y)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.registers[op.x] |= vm.registers[op.y]
			return nil
		},
	}

	// 8ry2	and rx,ry	and register vy into register vx
	andInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("and v%x, v%x", op.x, op.y)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.registers[op.x] &= vm.registers[op.y]
			return nil
		},
	}

	// 8ry3	xor rx,ry	exclusive or register ry into register rx
	xorInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("xor v%x, v%x", op.x, op.y)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.registers[op.x] ^= vm.registers[op.y]
			return nil
		},
	}

	// 8ry4	add vr,vy	add register vy to vr,carry in vf
	// VF is written before VX, so "add vf, vy" keeps the sum, not the carry.
	// The 8XY5 to 8XYE handlers read their operands after the flag write,
	// so a VF operand sees the new flag.
	add2Instruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("add v%x, v%x", op.x, op.y)
		},
		Execute: func(vm *VM, op opcode) error {
			sum := uint16(vm.registers[op.x]) + uint16(vm.registers[op.y])

			if sum > 0xFF {
				vm.registers[flag] = 1
			} else {
				vm.registers[flag] = 0
			}

			vm.registers[op.x] = uint8(sum)
			return nil
		},
	}

	// 8ry5	sub vr,vy	subtract register vy from vr	vf set to 1 if no borrow
	subInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("sub v%x, v%x", op.x, op.y)
		},
		Execute: func(vm *VM, op opcode) error {
			if vm.registers[op.x] > vm.registers[op.y] {
				vm.registers[flag] = 1
			} else {
				vm.registers[flag] = 0
			}

			// operands are read after the flag write
			vm.registers[op.x] -= vm.registers[op.y]
			return nil
		},
	}

	// 8r06	shr vr	shift register vr right, bit 0 goes into register vf
	shrInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("shr v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.registers[flag] = vm.registers[op.x] & 0x01
			vm.registers[op.x] >>= 1
			return nil
		},
	}

	// 8ry7	rsb vr,vy	subtract register vr from register vy, result in vr	vf set to 1 if no borrow
	rsbInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("rsb v%x, v%x", op.x, op.y)
		},
		Execute: func(vm *VM, op opcode) error {
			if vm.registers[op.y] > vm.registers[op.x] {
				vm.registers[flag] = 1
			} else {
				vm.registers[flag] = 0
			}

			vm.registers[op.x] = vm.registers[op.y] - vm.registers[op.x]
			return nil
		},
	}

	// 8r0e	shl vr	shift register vr left, bit 7 goes into register vf
	shlInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("shl v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.registers[flag] = vm.registers[op.x] >> 7
			vm.registers[op.x] <<= 1
			return nil
		},
	}

	// 9ry0	skne vr,vy	skip if register r <> register y
	skne2Instruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("skne v%x, v%x", op.x, op.y)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.skipIf(vm.registers[op.x] != vm.registers[op.y])
			return nil
		},
	}

	// axxx	mvi xxx	Load index register with constant xxx
	mviInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("mvi 0x%04x", op.nnn)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.index = op.nnn
			return nil
		},
	}

	// bxxx	jmi xxx	Jump to address xxx+register v0
	jmiInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("jmi 0x%04x", op.nnn)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.pc = op.nnn + uint16(vm.registers[0])
			return nil
		},
	}

	// crxx	rand vr,xx	vr = random byte masked by xx
	randInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("rand v%x, 0x%02x", op.x, op.nn)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.registers[op.x] = uint8(vm.rng.IntN(256)) & op.nn
			return nil
		},
	}

	// drys	sprite rx,ry,s	Draw sprite at screen location rx,ry height s
	// Sprites stored in memory at location in index register, 8 bits wide.
	// Wraps around the screen.
	// If when drawn, clears a pixel, vf is set to 1 otherwise it is zero.
	// All drawing is xor drawing (e.g. it toggles the screen pixels)
	spriteInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("sprite v%x, v%x, %d", op.x, op.y, op.n)
		},
		Execute: func(vm *VM, op opcode) error {
			xLocation := uint16(vm.registers[op.x]) % ScreenWidth
			yLocation := uint16(vm.registers[op.y]) % ScreenHeight

			vm.registers[flag] = 0
			for y := uint16(0); y < uint16(op.n); y++ {
				pixel := vm.memory[(vm.index+y)&addrMask]

				const width = uint16(8)
				for x := uint16(0); x < width; x++ {
					if pixel&(0x80>>x) == 0 {
						continue
					}

					addr := screenAddr(xLocation+x, yLocation+y)
					if vm.gfx[addr] != PixelOff {
						vm.registers[flag] = 1
					}

					vm.gfx[addr] ^= PixelOn
				}
			}

			vm.drawFlag = true
			return nil
		},
	}

	// ek9e	skpr k	skip if key (register rk) pressed
	skprInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("skpr v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.skipIf(vm.keypad[vm.registers[op.x]&0x0F])
			return nil
		},
	}

	// eka1	skup k	skip if key (register rk) not pressed
	skupInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("skup v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.skipIf(!vm.keypad[vm.registers[op.x]&0x0F])
			return nil
		},
	}

	// fr07	gdelay vr	get delay timer into vr
	gdelayInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("gdelay v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.registers[op.x] = vm.delayTimer
			return nil
		},
	}

	// fr0a	key vr	wait for keypress, put key in register vr
	// With no key down pc is rewound so the instruction runs again next cycle.
	keyInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("key v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			for i, down := range vm.keypad {
				if down {
					vm.registers[op.x] = uint8(i)
					return nil
				}
			}

			vm.pc -= InstructionSize
			vm.awaitingKey = true
			return nil
		},
	}

	// fr15	sdelay vr	set the delay timer to vr
	sdelayInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("sdelay v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.delayTimer = vm.registers[op.x]
			return nil
		},
	}

	// fr18	ssound vr	set the sound timer to vr
	ssoundInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("ssound v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.soundTimer = vm.registers[op.x]
			return nil
		},
	}

	// fr1e	adi vr	add register vr to the index register
	adiInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("adi v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			if uint32(vm.index)+uint32(vm.registers[op.x]) > 0x0FFF {
				vm.registers[flag] = 1
			} else {
				vm.registers[flag] = 0
			}

			vm.index += uint16(vm.registers[op.x])
			return nil
		},
	}

	// fr29	font vr	point I to the sprite for hexadecimal character in vr	Sprite is 5 bytes high
	fontInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("font v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			vm.index = FontStart + uint16(vm.registers[op.x])*fontGlyphSize
			return nil
		},
	}

	// fr33	bcd vr	store the bcd representation of register vr at location I,I+1,I+2	Doesn't change I
	bcdInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("bcd v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			x := vm.registers[op.x]

			vm.memory[vm.index&addrMask] = x / 100
			vm.memory[(vm.index+1)&addrMask] = (x / 10) % 10
			vm.memory[(vm.index+2)&addrMask] = x % 10
			return nil
		},
	}

	// fr55	str v0-vr	store registers v0-vr at location I onwards	Doesn't change I
	strInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("str v0-v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			for i := uint16(0); i <= uint16(op.x); i++ {
				vm.memory[(vm.index+i)&addrMask] = vm.registers[i]
			}
			return nil
		},
	}

	// fr65	ldr v0-vr	load registers v0-vr from location I onwards	Doesn't change I
	ldrInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("ldr v0-v%x", op.x)
		},
		Execute: func(vm *VM, op opcode) error {
			for i := uint16(0); i <= uint16(op.x); i++ {
				vm.registers[i] = vm.memory[(vm.index+i)&addrMask]
			}
			return nil
		},
	}

	// Anything else, including 0NNN machine routines, is skipped.
	nopInstruction = instruction{
		Name: func(op opcode) string {
			return fmt.Sprintf("nop 0x%04x", op.raw)
		},
		Execute: func(vm *VM, op opcode) error {
			return nil
		},
	}
)
