// Package chip8 implements a CHIP-8 virtual machine: 4K of RAM, sixteen
// 8-bit registers, a bounded call stack, two 60 Hz timers, a 16-key pad
// and a 64x32 monochrome display. The package is a pure state machine;
// video, audio and input live with the caller.
package chip8

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	// DisplayWidth and DisplayHeight are the display buffer dimensions
	// in pixels.
	DisplayWidth  = 64
	DisplayHeight = 32

	// MaxROMSize is the largest program that fits between the entry
	// point and the end of RAM.
	MaxROMSize = ramSize - entryPoint

	ramSize    = 0x1000
	entryPoint = 0x200
	stackSize  = 12
	numKeys    = 16
)

// Errors surfaced by New and Step. A Step error is fatal: the VM halts
// and will not run again until Reset.
var (
	ErrROMTooLarge    = errors.New("rom too large")
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrStackUnderflow = errors.New("call stack underflow")
)

// State is the run state of the virtual machine.
type State uint8

const (
	StateRunning State = iota
	StatePaused
	StateHalted
)

// VM is a CHIP-8 virtual machine. It is not safe for concurrent use; a
// single frame loop owns it.
type VM struct {
	state State

	ram     [ramSize]byte
	display [DisplayWidth * DisplayHeight]bool
	stack   [stackSize]uint16
	v       [16]byte

	sp byte
	i  uint16
	pc uint16

	dt byte // delay timer
	st byte // sound timer

	keys    [numKeys]bool
	waiting bool // blocked on FX0A

	drawFlag bool

	rom    []byte
	rng    *rand.Rand
	logger *log.Logger
}

// New creates a virtual machine with the given program loaded at the
// entry point. The program bytes are recorded so Reset can reload them.
func New(rom []byte) (*VM, error) {
	vm := &VM{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := vm.Load(rom); err != nil {
		return nil, err
	}

	return vm, nil
}

// Load replaces the recorded program and performs a soft reset.
func (vm *VM) Load(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrROMTooLarge, len(rom), MaxROMSize)
	}

	vm.rom = append([]byte(nil), rom...)
	vm.Reset()

	return nil
}

// LoadFile reads a ROM image from disk and returns a virtual machine
// running it.
func LoadFile(path string) (*VM, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	return New(rom)
}

// Reset performs a soft reset: the recorded program is reloaded, all
// registers, timers, the call stack and the display return to their
// zero state and execution restarts at the entry point.
func (vm *VM) Reset() {
	vm.ram = [ramSize]byte{}
	copy(vm.ram[:], fontset[:])
	copy(vm.ram[entryPoint:], vm.rom)

	vm.display = [DisplayWidth * DisplayHeight]bool{}
	vm.stack = [stackSize]uint16{}
	vm.v = [16]byte{}
	vm.keys = [numKeys]bool{}

	vm.sp = 0
	vm.i = 0
	vm.pc = entryPoint
	vm.dt = 0
	vm.st = 0

	vm.waiting = false
	vm.drawFlag = true
	vm.state = StateRunning
}

// SetLogger enables debug tracing of executed instructions.
func (vm *VM) SetLogger(logger *log.Logger) {
	vm.logger = logger
}

// SeedRandom reseeds the RNG used by the CXNN instruction.
func (vm *VM) SeedRandom(seed int64) {
	vm.rng = rand.New(rand.NewSource(seed))
}

// State returns the current run state.
func (vm *VM) State() State {
	return vm.state
}

// Pause suspends execution. Step and RunFrame do nothing while paused.
func (vm *VM) Pause() {
	if vm.state == StateRunning {
		vm.state = StatePaused
	}
}

// Resume continues execution after a Pause. A halted VM stays halted.
func (vm *VM) Resume() {
	if vm.state == StatePaused {
		vm.state = StateRunning
	}
}

// Halt stops the VM for good, from any state. Only Reset revives it.
func (vm *VM) Halt() {
	vm.state = StateHalted
}

// Waiting reports whether the VM is blocked on an FX0A key wait.
func (vm *VM) Waiting() bool {
	return vm.waiting
}

// PressKey marks a keypad key 0x0-0xF as held down.
func (vm *VM) PressKey(key byte) {
	if key < numKeys {
		vm.keys[key] = true
	}
}

// ReleaseKey marks a keypad key 0x0-0xF as released.
func (vm *VM) ReleaseKey(key byte) {
	if key < numKeys {
		vm.keys[key] = false
	}
}

// Display returns the pixel buffer, row-major, index y*DisplayWidth+x.
func (vm *VM) Display() []bool {
	return vm.display[:]
}

// DrawFlag reports whether the display buffer changed since the last
// ClearDrawFlag.
func (vm *VM) DrawFlag() bool {
	return vm.drawFlag
}

// ClearDrawFlag marks the display buffer as presented.
func (vm *VM) ClearDrawFlag() {
	vm.drawFlag = false
}

// RunFrame executes up to n instructions followed by one timer tick,
// the per-frame contract of the 60 Hz loop. The batch ends early when
// the VM blocks on a key wait, since no progress is possible until the
// caller feeds new input. Does nothing unless the VM is running.
func (vm *VM) RunFrame(n int) error {
	if vm.state != StateRunning {
		return nil
	}

	for i := 0; i < n; i++ {
		if err := vm.Step(); err != nil {
			vm.state = StateHalted
			return err
		}

		if vm.waiting {
			break
		}
	}

	vm.Tick()

	return nil
}

// Step runs one fetch-decode-execute cycle.
func (vm *VM) Step() error {
	if vm.state != StateRunning {
		return nil
	}

	addr := vm.pc
	in := decode(vm.fetch())

	if vm.logger != nil {
		vm.logger.Debug("step",
			log.String("addr", fmt.Sprintf("%04X", addr)),
			log.Stringer("op", in))
	}

	return vm.exec(in)
}

// fetch reads the big-endian 16-bit word at the program counter and
// advances it.
func (vm *VM) fetch() uint16 {
	op := uint16(vm.readRAM(vm.pc))<<8 | uint16(vm.readRAM(vm.pc+1))
	vm.pc += 2

	return op
}

// readRAM and writeRAM wrap addresses into the 12-bit address space.
// I and PC are 16-bit registers but only 12 bits are significant.
func (vm *VM) readRAM(addr uint16) byte {
	return vm.ram[addr&(ramSize-1)]
}

func (vm *VM) writeRAM(addr uint16, b byte) {
	vm.ram[addr&(ramSize-1)] = b
}

// exec dispatches a decoded instruction. Every documented pattern has
// an arm; opUnknown falls through as a deliberate no-op, which some
// test ROMs rely on.
func (vm *VM) exec(in instruction) error {
	switch in.kind {
	case opCls:
		vm.cls()
	case opRet:
		return vm.ret()
	case opSys, opJump:
		vm.pc = in.nnn
	case opCall:
		return vm.call(in.nnn)
	case opSkipEq:
		vm.skipIf(vm.v[in.x] == in.nn)
	case opSkipNe:
		vm.skipIf(vm.v[in.x] != in.nn)
	case opSkipEqXY:
		vm.skipIf(vm.v[in.x] == vm.v[in.y])
	case opSkipNeXY:
		vm.skipIf(vm.v[in.x] != vm.v[in.y])
	case opLoad:
		vm.v[in.x] = in.nn
	case opAdd:
		vm.v[in.x] += in.nn
	case opMove:
		vm.v[in.x] = vm.v[in.y]
	case opOr:
		vm.v[in.x] |= vm.v[in.y]
	case opAnd:
		vm.v[in.x] &= vm.v[in.y]
	case opXor:
		vm.v[in.x] ^= vm.v[in.y]
	case opAddCarry:
		vm.addCarry(in.x, in.y)
	case opSub:
		vm.sub(in.x, in.y)
	case opShiftRight:
		vm.shiftRight(in.x)
	case opSubReverse:
		vm.subReverse(in.x, in.y)
	case opShiftLeft:
		vm.shiftLeft(in.x)
	case opLoadI:
		vm.i = in.nnn
	case opJumpV0:
		vm.pc = in.nnn + uint16(vm.v[0])
	case opRandom:
		vm.v[in.x] = byte(vm.rng.Intn(256)) & in.nn
	case opDraw:
		vm.draw(in.x, in.y, in.n)
	case opSkipKey:
		vm.skipIf(vm.keys[vm.v[in.x]&0x0F])
	case opSkipNoKey:
		vm.skipIf(!vm.keys[vm.v[in.x]&0x0F])
	case opReadDelay:
		vm.v[in.x] = vm.dt
	case opWaitKey:
		vm.waitKey(in.x)
	case opSetDelay:
		vm.dt = vm.v[in.x]
	case opSetSound:
		vm.st = vm.v[in.x]
	case opAddI:
		vm.i += uint16(vm.v[in.x])
	case opLoadFont:
		vm.i = uint16(vm.v[in.x]&0x0F) * 5
	case opStoreBCD:
		vm.storeBCD(in.x)
	case opStoreRegs:
		for r := byte(0); r <= in.x; r++ {
			vm.writeRAM(vm.i+uint16(r), vm.v[r])
		}
	case opLoadRegs:
		for r := byte(0); r <= in.x; r++ {
			vm.v[r] = vm.readRAM(vm.i + uint16(r))
		}
	case opUnknown:
		// no-op
	}

	return nil
}

// cls clears the display buffer.
func (vm *VM) cls() {
	vm.display = [DisplayWidth * DisplayHeight]bool{}
	vm.drawFlag = true
}

// call pushes the return address and jumps to a subroutine.
func (vm *VM) call(addr uint16) error {
	if vm.sp == stackSize {
		return fmt.Errorf("%w: call depth exceeds %d at %04X", ErrStackOverflow, stackSize, vm.pc-2)
	}

	vm.stack[vm.sp] = vm.pc
	vm.sp++
	vm.pc = addr

	return nil
}

// ret pops the return address of the current subroutine.
func (vm *VM) ret() error {
	if vm.sp == 0 {
		return fmt.Errorf("%w: return with empty stack at %04X", ErrStackUnderflow, vm.pc-2)
	}

	vm.sp--
	vm.pc = vm.stack[vm.sp]

	return nil
}

// skipIf skips the next instruction when the condition holds.
func (vm *VM) skipIf(cond bool) {
	if cond {
		vm.pc += 2
	}
}

// addCarry adds vy to vx, VF = 1 on 8-bit overflow.
func (vm *VM) addCarry(x, y byte) {
	sum := uint16(vm.v[x]) + uint16(vm.v[y])

	vm.v[x] = byte(sum)
	vm.v[0xF] = byte(sum >> 8)
}

// sub stores vx-vy into vx, VF = 1 when there is no borrow. The flag is
// computed before the store so it observes the original operands.
func (vm *VM) sub(x, y byte) {
	flag := byte(0)
	if vm.v[x] > vm.v[y] {
		flag = 1
	}

	vm.v[x] -= vm.v[y]
	vm.v[0xF] = flag
}

// subReverse stores vy-vx into vx, VF = 1 when there is no borrow.
func (vm *VM) subReverse(x, y byte) {
	flag := byte(0)
	if vm.v[y] > vm.v[x] {
		flag = 1
	}

	vm.v[x] = vm.v[y] - vm.v[x]
	vm.v[0xF] = flag
}

// shiftRight shifts vx right one bit, VF = the bit shifted out.
func (vm *VM) shiftRight(x byte) {
	flag := vm.v[x] & 0x01

	vm.v[x] >>= 1
	vm.v[0xF] = flag
}

// shiftLeft shifts vx left one bit, VF = the bit shifted out.
func (vm *VM) shiftLeft(x byte) {
	flag := vm.v[x] >> 7

	vm.v[x] <<= 1
	vm.v[0xF] = flag
}

// draw XORs an 8xN sprite at (vx, vy) into the display buffer. The
// start position wraps around the screen edges but the sprite itself
// clips: rows stop at the right edge and the sprite stops at the
// bottom edge. VF is set if any pixel is turned off, sticky for the
// whole sprite.
func (vm *VM) draw(x, y, n byte) {
	startX := vm.v[x] % DisplayWidth
	startY := vm.v[y] % DisplayHeight

	vm.v[0xF] = 0

	for row := byte(0); row < n; row++ {
		py := startY + row
		if py >= DisplayHeight {
			break
		}

		sprite := vm.readRAM(vm.i + uint16(row))

		for bit := byte(0); bit < 8; bit++ {
			px := startX + bit
			if px >= DisplayWidth {
				break
			}

			if sprite&(0x80>>bit) == 0 {
				continue
			}

			p := int(py)*DisplayWidth + int(px)
			if vm.display[p] {
				vm.v[0xF] = 1
			}
			vm.display[p] = !vm.display[p]
		}
	}

	vm.drawFlag = true
}

// waitKey scans the keypad in order and loads the first held key into
// vx. With no key held the program counter rewinds so the instruction
// re-executes next step, suspending the VM until input arrives.
func (vm *VM) waitKey(x byte) {
	for key := byte(0); key < numKeys; key++ {
		if vm.keys[key] {
			vm.v[x] = key
			vm.waiting = false
			return
		}
	}

	vm.pc -= 2
	vm.waiting = true
}

// storeBCD writes the decimal digits of vx to ram[I..I+2].
func (vm *VM) storeBCD(x byte) {
	v := vm.v[x]

	vm.writeRAM(vm.i, v/100)
	vm.writeRAM(vm.i+1, v%100/10)
	vm.writeRAM(vm.i+2, v%10)
}
