package chip8

import "fmt"

// opKind identifies one documented opcode pattern. Anything that does not
// match a pattern decodes to opUnknown and executes as a no-op.
type opKind uint8

const (
	opUnknown opKind = iota
	opCls            // 00E0
	opRet            // 00EE
	opSys            // 0NNN
	opJump           // 1NNN
	opCall           // 2NNN
	opSkipEq         // 3XNN
	opSkipNe         // 4XNN
	opSkipEqXY       // 5XY0
	opLoad           // 6XNN
	opAdd            // 7XNN
	opMove           // 8XY0
	opOr             // 8XY1
	opAnd            // 8XY2
	opXor            // 8XY3
	opAddCarry       // 8XY4
	opSub            // 8XY5
	opShiftRight     // 8XY6
	opSubReverse     // 8XY7
	opShiftLeft      // 8XYE
	opSkipNeXY       // 9XY0
	opLoadI          // ANNN
	opJumpV0         // BNNN
	opRandom         // CXNN
	opDraw           // DXYN
	opSkipKey        // EX9E
	opSkipNoKey      // EXA1
	opReadDelay      // FX07
	opWaitKey        // FX0A
	opSetDelay       // FX15
	opSetSound       // FX18
	opAddI           // FX1E
	opLoadFont       // FX29
	opStoreBCD       // FX33
	opStoreRegs      // FX55
	opLoadRegs       // FX65
)

// instruction is a decoded opcode with its standard field extractions.
type instruction struct {
	opcode uint16
	kind   opKind

	nnn uint16 // 12-bit address/constant
	nn  byte   // 8-bit constant
	n   byte   // 4-bit constant
	x   byte   // 4-bit register index
	y   byte   // 4-bit register index
}

// decode extracts the operand fields of a 16-bit opcode and classifies it.
// Pure function, no failure mode: unrecognized patterns are opUnknown.
func decode(opcode uint16) instruction {
	in := instruction{
		opcode: opcode,
		nnn:    opcode & 0x0FFF,
		nn:     byte(opcode),
		n:      byte(opcode & 0x0F),
		x:      byte(opcode >> 8 & 0x0F),
		y:      byte(opcode >> 4 & 0x0F),
	}

	switch opcode >> 12 {
	case 0x0:
		switch in.nn {
		case 0xE0:
			in.kind = opCls
		case 0xEE:
			in.kind = opRet
		default:
			in.kind = opSys
		}
	case 0x1:
		in.kind = opJump
	case 0x2:
		in.kind = opCall
	case 0x3:
		in.kind = opSkipEq
	case 0x4:
		in.kind = opSkipNe
	case 0x5:
		if in.n == 0x0 {
			in.kind = opSkipEqXY
		}
	case 0x6:
		in.kind = opLoad
	case 0x7:
		in.kind = opAdd
	case 0x8:
		switch in.n {
		case 0x0:
			in.kind = opMove
		case 0x1:
			in.kind = opOr
		case 0x2:
			in.kind = opAnd
		case 0x3:
			in.kind = opXor
		case 0x4:
			in.kind = opAddCarry
		case 0x5:
			in.kind = opSub
		case 0x6:
			in.kind = opShiftRight
		case 0x7:
			in.kind = opSubReverse
		case 0xE:
			in.kind = opShiftLeft
		}
	case 0x9:
		if in.n == 0x0 {
			in.kind = opSkipNeXY
		}
	case 0xA:
		in.kind = opLoadI
	case 0xB:
		in.kind = opJumpV0
	case 0xC:
		in.kind = opRandom
	case 0xD:
		in.kind = opDraw
	case 0xE:
		switch in.nn {
		case 0x9E:
			in.kind = opSkipKey
		case 0xA1:
			in.kind = opSkipNoKey
		}
	case 0xF:
		switch in.nn {
		case 0x07:
			in.kind = opReadDelay
		case 0x0A:
			in.kind = opWaitKey
		case 0x15:
			in.kind = opSetDelay
		case 0x18:
			in.kind = opSetSound
		case 0x1E:
			in.kind = opAddI
		case 0x29:
			in.kind = opLoadFont
		case 0x33:
			in.kind = opStoreBCD
		case 0x55:
			in.kind = opStoreRegs
		case 0x65:
			in.kind = opLoadRegs
		}
	}

	return in
}

// String renders the instruction with conventional mnemonics, for the
// debug trace log.
func (in instruction) String() string {
	switch in.kind {
	case opCls:
		return "CLS"
	case opRet:
		return "RET"
	case opSys:
		return fmt.Sprintf("SYS  #%03X", in.nnn)
	case opJump:
		return fmt.Sprintf("JP   #%03X", in.nnn)
	case opCall:
		return fmt.Sprintf("CALL #%03X", in.nnn)
	case opSkipEq:
		return fmt.Sprintf("SE   V%X, #%02X", in.x, in.nn)
	case opSkipNe:
		return fmt.Sprintf("SNE  V%X, #%02X", in.x, in.nn)
	case opSkipEqXY:
		return fmt.Sprintf("SE   V%X, V%X", in.x, in.y)
	case opLoad:
		return fmt.Sprintf("LD   V%X, #%02X", in.x, in.nn)
	case opAdd:
		return fmt.Sprintf("ADD  V%X, #%02X", in.x, in.nn)
	case opMove:
		return fmt.Sprintf("LD   V%X, V%X", in.x, in.y)
	case opOr:
		return fmt.Sprintf("OR   V%X, V%X", in.x, in.y)
	case opAnd:
		return fmt.Sprintf("AND  V%X, V%X", in.x, in.y)
	case opXor:
		return fmt.Sprintf("XOR  V%X, V%X", in.x, in.y)
	case opAddCarry:
		return fmt.Sprintf("ADD  V%X, V%X", in.x, in.y)
	case opSub:
		return fmt.Sprintf("SUB  V%X, V%X", in.x, in.y)
	case opShiftRight:
		return fmt.Sprintf("SHR  V%X", in.x)
	case opSubReverse:
		return fmt.Sprintf("SUBN V%X, V%X", in.x, in.y)
	case opShiftLeft:
		return fmt.Sprintf("SHL  V%X", in.x)
	case opSkipNeXY:
		return fmt.Sprintf("SNE  V%X, V%X", in.x, in.y)
	case opLoadI:
		return fmt.Sprintf("LD   I, #%03X", in.nnn)
	case opJumpV0:
		return fmt.Sprintf("JP   V0, #%03X", in.nnn)
	case opRandom:
		return fmt.Sprintf("RND  V%X, #%02X", in.x, in.nn)
	case opDraw:
		return fmt.Sprintf("DRW  V%X, V%X, %d", in.x, in.y, in.n)
	case opSkipKey:
		return fmt.Sprintf("SKP  V%X", in.x)
	case opSkipNoKey:
		return fmt.Sprintf("SKNP V%X", in.x)
	case opReadDelay:
		return fmt.Sprintf("LD   V%X, DT", in.x)
	case opWaitKey:
		return fmt.Sprintf("LD   V%X, K", in.x)
	case opSetDelay:
		return fmt.Sprintf("LD   DT, V%X", in.x)
	case opSetSound:
		return fmt.Sprintf("LD   ST, V%X", in.x)
	case opAddI:
		return fmt.Sprintf("ADD  I, V%X", in.x)
	case opLoadFont:
		return fmt.Sprintf("LD   F, V%X", in.x)
	case opStoreBCD:
		return fmt.Sprintf("LD   B, V%X", in.x)
	case opStoreRegs:
		return fmt.Sprintf("LD   [I], V%X", in.x)
	case opLoadRegs:
		return fmt.Sprintf("LD   V%X, [I]", in.x)
	}

	return fmt.Sprintf("DW   #%04X", in.opcode)
}
