// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements a 6502 CPU instruction
// set and emulator.
package cpu

import "fmt"

// BrkHandler is an interface implemented by types that wish to be notified
// when a BRK instruction is about to be executed. When a handler is
// attached, it runs in place of the CPU's own BRK semantics, so a
// debugger can decide for itself whether encountering a BRK should halt
// the run loop, single-step past it, or something else entirely.
type BrkHandler interface {
	OnBrk(cpu *CPU)
}

// CPU represents a single 6502 CPU, including its registers and a
// pointer to the memory it operates on.
type CPU struct {
	Reg        Registers       // CPU registers
	Mem        Memory          // assigned memory
	InstSet    *InstructionSet // instruction set used by the CPU
	LastPC     uint16          // PC of the most recently executed instruction
	Halted     bool            // set once BRK has executed and not yet cleared by Reset
	debugger   *Debugger
	brkHandler BrkHandler
	storeByte  func(cpu *CPU, addr uint16, v byte)
}

// Addresses of interest in the 64 KiB address space.
const (
	loadOrigin  = 0x8000 // programs are copied here by Load
	vectorReset = 0xfffc // the reset vector: PC is loaded from here by Reset
)

// A DecodeError is returned by Step or Run when the CPU encounters a byte
// that is not a recognized opcode.
type DecodeError struct {
	Opcode byte
	PC     uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cpu: unrecognized opcode $%02X at $%04X", e.Opcode, e.PC)
}

// NewCPU creates an emulated 6502 CPU bound to the specified memory. The
// CPU begins in its raw zero-value state; call Load followed by Reset (or
// LoadAndRun) to bring it to the state a real 6502 is in when it powers on
// with a cartridge inserted.
func NewCPU(m Memory) *CPU {
	cpu := &CPU{
		Mem:       m,
		InstSet:   GetInstructionSet(),
		storeByte: (*CPU).storeByteNormal,
	}
	cpu.Reg.init()
	return cpu
}

// Load copies program into memory starting at $8000 and points the reset
// vector ($FFFC-$FFFD) at that address. It does not itself move PC or
// touch any register; call Reset afterward to start execution there.
func (cpu *CPU) Load(program []byte) {
	cpu.Mem.StoreBytes(loadOrigin, program)
	cpu.Mem.StoreAddress(vectorReset, loadOrigin)
}

// Reset performs the 6502 power-on/reset sequence: the accumulator and
// index registers are cleared, the stack pointer is set to $FD, the
// status register is set to $24 (Interrupt-disable and the reserved bit
// set, all else clear), and the program counter is loaded from the reset
// vector at $FFFC.
func (cpu *CPU) Reset() {
	cpu.Reg.A = 0
	cpu.Reg.X = 0
	cpu.Reg.Y = 0
	cpu.Reg.SP = 0xfd
	cpu.Reg.SetP(0x24)
	cpu.Reg.PC = cpu.Mem.LoadAddress(vectorReset)
	cpu.Halted = false
}

// LoadAndRun is a convenience that loads program, resets the CPU, and
// runs it to completion.
func (cpu *CPU) LoadAndRun(program []byte) error {
	cpu.Load(program)
	cpu.Reset()
	return cpu.Run()
}

// Run executes instructions, starting at the current PC, until a BRK
// instruction halts the CPU or an unrecognized opcode is encountered. It
// returns nil in the former case and a *DecodeError in the latter.
func (cpu *CPU) Run() error {
	for !cpu.Halted {
		if err := cpu.Step(); err != nil {
			return err
		}
	}
	return nil
}

// SetPC updates the CPU program counter to addr.
func (cpu *CPU) SetPC(addr uint16) {
	cpu.Reg.PC = addr
}

// GetInstruction returns the instruction opcode at the requested address.
func (cpu *CPU) GetInstruction(addr uint16) *Instruction {
	opcode := cpu.Mem.LoadByte(addr)
	return cpu.InstSet.Lookup(opcode)
}

// NextAddr returns the address of the next instruction following the
// instruction at addr.
func (cpu *CPU) NextAddr(addr uint16) uint16 {
	opcode := cpu.Mem.LoadByte(addr)
	inst := cpu.InstSet.Lookup(opcode)
	if inst.Length == 0 {
		return addr + 1 // unrecognized opcode: step over the single byte
	}
	return addr + uint16(inst.Length)
}

// Step executes a single instruction at the current PC. It returns a
// *DecodeError if the byte at PC is not a recognized opcode; the CPU's
// state is left unchanged in that case.
func (cpu *CPU) Step() error {
	opcode := cpu.Mem.LoadByte(cpu.Reg.PC)
	inst := cpu.InstSet.Lookup(opcode)
	if inst.fn == nil {
		return &DecodeError{Opcode: opcode, PC: cpu.Reg.PC}
	}

	// If a BRK instruction is about to be executed and a BRK handler has
	// been installed, call the handler instead of executing the
	// instruction. The handler is responsible for advancing the CPU (or
	// not) however it sees fit.
	if inst.Opcode == 0x00 && cpu.brkHandler != nil {
		cpu.brkHandler.OnBrk(cpu)
		return nil
	}

	var buf [2]byte
	operand := buf[:inst.Length-1]
	cpu.Mem.LoadBytes(cpu.Reg.PC+1, operand)
	cpu.LastPC = cpu.Reg.PC
	cpu.Reg.PC += uint16(inst.Length)

	inst.fn(cpu, inst, operand)

	if cpu.debugger != nil {
		cpu.debugger.onUpdatePC(cpu, cpu.Reg.PC)
	}
	return nil
}

// AttachBrkHandler attaches a handler that is called whenever a BRK
// instruction is about to execute, in place of the CPU's own BRK
// semantics.
func (cpu *CPU) AttachBrkHandler(handler BrkHandler) {
	cpu.brkHandler = handler
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU executes an instruction or stores a
// byte to memory.
func (cpu *CPU) AttachDebugger(debugger *Debugger) {
	cpu.debugger = debugger
	cpu.storeByte = (*CPU).storeByteDebugger
}

// DetachDebugger detaches the currently attached debugger from the CPU.
func (cpu *CPU) DetachDebugger() {
	cpu.debugger = nil
	cpu.storeByte = (*CPU).storeByteNormal
}

// load a byte value using the requested addressing mode and the operand
// to determine where to load it from.
func (cpu *CPU) load(mode Mode, operand []byte) byte {
	switch mode {
	case IMM:
		return operand[0]
	case ZPG:
		zpaddr := operandToAddress(operand)
		return cpu.Mem.LoadByte(zpaddr)
	case ZPX:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.X)
		return cpu.Mem.LoadByte(zpaddr)
	case ZPY:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.Y)
		return cpu.Mem.LoadByte(zpaddr)
	case ABS:
		addr := operandToAddress(operand)
		return cpu.Mem.LoadByte(addr)
	case ABX:
		addr := operandToAddress(operand)
		addr, _ = offsetAddress(addr, cpu.Reg.X)
		return cpu.Mem.LoadByte(addr)
	case ABY:
		addr := operandToAddress(operand)
		addr, _ = offsetAddress(addr, cpu.Reg.Y)
		return cpu.Mem.LoadByte(addr)
	case IDX:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.X)
		addr := cpu.Mem.LoadAddress(zpaddr)
		return cpu.Mem.LoadByte(addr)
	case IDY:
		zpaddr := operandToAddress(operand)
		addr := cpu.Mem.LoadAddress(zpaddr)
		addr, _ = offsetAddress(addr, cpu.Reg.Y)
		return cpu.Mem.LoadByte(addr)
	case ACC:
		return cpu.Reg.A
	default:
		panic("cpu: invalid addressing mode")
	}
}

// loadAddress loads a 16-bit address value using the requested addressing
// mode. Only ABS and IND use it, and only JMP uses IND: the page-wrap
// quirk that makes JMP ($12FF) misbehave lives inside Mem.LoadAddress.
func (cpu *CPU) loadAddress(mode Mode, operand []byte) uint16 {
	switch mode {
	case ABS:
		return operandToAddress(operand)
	case IND:
		addr := operandToAddress(operand)
		return cpu.Mem.LoadAddress(addr)
	default:
		panic("cpu: invalid addressing mode")
	}
}

// store a byte value using the specified addressing mode and operand to
// determine where to store it.
func (cpu *CPU) store(mode Mode, operand []byte, v byte) {
	switch mode {
	case ZPG:
		zpaddr := operandToAddress(operand)
		cpu.storeByte(cpu, zpaddr, v)
	case ZPX:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.X)
		cpu.storeByte(cpu, zpaddr, v)
	case ZPY:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.Y)
		cpu.storeByte(cpu, zpaddr, v)
	case ABS:
		addr := operandToAddress(operand)
		cpu.storeByte(cpu, addr, v)
	case ABX:
		addr := operandToAddress(operand)
		addr, _ = offsetAddress(addr, cpu.Reg.X)
		cpu.storeByte(cpu, addr, v)
	case ABY:
		addr := operandToAddress(operand)
		addr, _ = offsetAddress(addr, cpu.Reg.Y)
		cpu.storeByte(cpu, addr, v)
	case IDX:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.X)
		addr := cpu.Mem.LoadAddress(zpaddr)
		cpu.storeByte(cpu, addr, v)
	case IDY:
		zpaddr := operandToAddress(operand)
		addr := cpu.Mem.LoadAddress(zpaddr)
		addr, _ = offsetAddress(addr, cpu.Reg.Y)
		cpu.storeByte(cpu, addr, v)
	case ACC:
		cpu.Reg.A = v
	default:
		panic("cpu: invalid addressing mode")
	}
}

// branch executes a branch using the signed 8-bit relative operand.
func (cpu *CPU) branch(operand []byte) {
	offset := operandToAddress(operand)
	if offset < 0x80 {
		cpu.Reg.PC += uint16(offset)
	} else {
		cpu.Reg.PC -= uint16(0x100 - offset)
	}
}

// storeByteNormal stores v at addr with no debugger notification.
func (cpu *CPU) storeByteNormal(addr uint16, v byte) {
	cpu.Mem.StoreByte(addr, v)
}

// storeByteDebugger notifies the attached debugger before storing v at
// addr, so data breakpoints can see the value about to be written.
func (cpu *CPU) storeByteDebugger(addr uint16, v byte) {
	cpu.debugger.onDataStore(cpu, addr, v)
	cpu.Mem.StoreByte(addr, v)
}

// push a value v onto the stack.
func (cpu *CPU) push(v byte) {
	cpu.storeByte(cpu, stackAddress(cpu.Reg.SP), v)
	cpu.Reg.SP--
}

// pushAddress pushes addr onto the stack, high byte first.
func (cpu *CPU) pushAddress(addr uint16) {
	cpu.push(byte(addr >> 8))
	cpu.push(byte(addr))
}

// pop a value off the stack and return it.
func (cpu *CPU) pop() byte {
	cpu.Reg.SP++
	return cpu.Mem.LoadByte(stackAddress(cpu.Reg.SP))
}

// popAddress pops a 16-bit address off the stack.
func (cpu *CPU) popAddress() uint16 {
	lo := cpu.pop()
	hi := cpu.pop()
	return uint16(lo) | (uint16(hi) << 8)
}

// updateNZ updates the Zero and Sign flags based on v.
func (cpu *CPU) updateNZ(v byte) {
	cpu.Reg.Zero = (v == 0)
	cpu.Reg.Sign = ((v & 0x80) != 0)
}

// Add with Carry
func (cpu *CPU) adc(inst *Instruction, operand []byte) {
	acc := uint32(cpu.Reg.A)
	add := uint32(cpu.load(inst.Mode, operand))
	carry := boolToUint32(cpu.Reg.Carry)

	v := acc + add + carry
	cpu.Reg.Carry = (v >= 0x100)

	// Overflow occurs exactly when the two operands share a sign and the
	// result's sign differs from theirs: (acc^v)&(add^v)&0x80 != 0. Note
	// the parentheses around the bitwise terms -- & binds tighter than
	// != in Go, but that isn't true of every language this formula gets
	// ported into, and a dropped parenthesis here is a classic source of
	// a silently-wrong overflow flag.
	cpu.Reg.Overflow = (((acc ^ v) & (add ^ v) & 0x80) != 0)

	cpu.Reg.A = byte(v)
	cpu.updateNZ(cpu.Reg.A)
}

// Boolean AND
func (cpu *CPU) and(inst *Instruction, operand []byte) {
	cpu.Reg.A &= cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
}

// Arithmetic Shift Left
func (cpu *CPU) asl(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Carry = ((v & 0x80) == 0x80)
	v = v << 1
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// Branch if Carry Clear
func (cpu *CPU) bcc(inst *Instruction, operand []byte) {
	if !cpu.Reg.Carry {
		cpu.branch(operand)
	}
}

// Branch if Carry Set
func (cpu *CPU) bcs(inst *Instruction, operand []byte) {
	if cpu.Reg.Carry {
		cpu.branch(operand)
	}
}

// Branch if EQual (to zero)
func (cpu *CPU) beq(inst *Instruction, operand []byte) {
	if cpu.Reg.Zero {
		cpu.branch(operand)
	}
}

// Bit Test
func (cpu *CPU) bit(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Zero = ((v & cpu.Reg.A) == 0)
	cpu.Reg.Sign = ((v & 0x80) != 0)
	cpu.Reg.Overflow = ((v & 0x40) != 0)
}

// Branch if MInus (negative)
func (cpu *CPU) bmi(inst *Instruction, operand []byte) {
	if cpu.Reg.Sign {
		cpu.branch(operand)
	}
}

// Branch if Not Equal (not zero)
func (cpu *CPU) bne(inst *Instruction, operand []byte) {
	if !cpu.Reg.Zero {
		cpu.branch(operand)
	}
}

// Branch if PLus (positive)
func (cpu *CPU) bpl(inst *Instruction, operand []byte) {
	if !cpu.Reg.Sign {
		cpu.branch(operand)
	}
}

// Break. Unlike a real 6502, which pushes PC and P and vectors through
// $FFFE, this CPU treats BRK as a halt: it sets the Break flag and stops
// Run's instruction loop. A handler attached with AttachBrkHandler runs
// instead of this method, so none of this happens while one is attached.
func (cpu *CPU) brk(inst *Instruction, operand []byte) {
	cpu.Reg.Break = true
	cpu.Halted = true
}

// Branch if oVerflow Clear
func (cpu *CPU) bvc(inst *Instruction, operand []byte) {
	if !cpu.Reg.Overflow {
		cpu.branch(operand)
	}
}

// Branch if oVerflow Set
func (cpu *CPU) bvs(inst *Instruction, operand []byte) {
	if cpu.Reg.Overflow {
		cpu.branch(operand)
	}
}

// Clear Carry flag
func (cpu *CPU) clc(inst *Instruction, operand []byte) {
	cpu.Reg.Carry = false
}

// Clear Decimal flag
func (cpu *CPU) cld(inst *Instruction, operand []byte) {
	cpu.Reg.Decimal = false
}

// Clear InterruptDisable flag
func (cpu *CPU) cli(inst *Instruction, operand []byte) {
	cpu.Reg.InterruptDisable = false
}

// Clear oVerflow flag
func (cpu *CPU) clv(inst *Instruction, operand []byte) {
	cpu.Reg.Overflow = false
}

// Compare to accumulator
func (cpu *CPU) cmp(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Carry = (cpu.Reg.A >= v)
	cpu.updateNZ(cpu.Reg.A - v)
}

// Compare to X register
func (cpu *CPU) cpx(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Carry = (cpu.Reg.X >= v)
	cpu.updateNZ(cpu.Reg.X - v)
}

// Compare to Y register
func (cpu *CPU) cpy(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Carry = (cpu.Reg.Y >= v)
	cpu.updateNZ(cpu.Reg.Y - v)
}

// Decrement memory value
func (cpu *CPU) dec(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand) - 1
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// Decrement X register
func (cpu *CPU) dex(inst *Instruction, operand []byte) {
	cpu.Reg.X--
	cpu.updateNZ(cpu.Reg.X)
}

// Decrement Y register
func (cpu *CPU) dey(inst *Instruction, operand []byte) {
	cpu.Reg.Y--
	cpu.updateNZ(cpu.Reg.Y)
}

// Boolean XOR
func (cpu *CPU) eor(inst *Instruction, operand []byte) {
	cpu.Reg.A ^= cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
}

// Increment memory value
func (cpu *CPU) inc(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand) + 1
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// Increment X register
func (cpu *CPU) inx(inst *Instruction, operand []byte) {
	cpu.Reg.X++
	cpu.updateNZ(cpu.Reg.X)
}

// Increment Y register
func (cpu *CPU) iny(inst *Instruction, operand []byte) {
	cpu.Reg.Y++
	cpu.updateNZ(cpu.Reg.Y)
}

// Jump to memory address. For IND mode, the page-wrap bug in
// Mem.LoadAddress reproduces the NMOS 6502's well-known JMP ($xxFF)
// misbehavior: the high byte of the target wraps to the start of the
// same page rather than the next one.
func (cpu *CPU) jmp(inst *Instruction, operand []byte) {
	cpu.Reg.PC = cpu.loadAddress(inst.Mode, operand)
}

// Jump to subroutine
func (cpu *CPU) jsr(inst *Instruction, operand []byte) {
	addr := cpu.loadAddress(inst.Mode, operand)
	cpu.pushAddress(cpu.Reg.PC - 1)
	cpu.Reg.PC = addr
}

// load Accumulator
func (cpu *CPU) lda(inst *Instruction, operand []byte) {
	cpu.Reg.A = cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
}

// load the X register
func (cpu *CPU) ldx(inst *Instruction, operand []byte) {
	cpu.Reg.X = cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.X)
}

// load the Y register
func (cpu *CPU) ldy(inst *Instruction, operand []byte) {
	cpu.Reg.Y = cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.Y)
}

// Logical Shift Right
func (cpu *CPU) lsr(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Carry = ((v & 1) == 1)
	v = v >> 1
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// No-operation
func (cpu *CPU) nop(inst *Instruction, operand []byte) {
}

// Boolean OR
func (cpu *CPU) ora(inst *Instruction, operand []byte) {
	cpu.Reg.A |= cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
}

// Push Accumulator
func (cpu *CPU) pha(inst *Instruction, operand []byte) {
	cpu.push(cpu.Reg.A)
}

// Push Processor status. The pushed copy always has the Break and
// Reserved bits set to 1, regardless of the CPU's current Break state.
func (cpu *CPU) php(inst *Instruction, operand []byte) {
	cpu.push(cpu.Reg.SavePS(true))
}

// Pull (pop) Accumulator
func (cpu *CPU) pla(inst *Instruction, operand []byte) {
	cpu.Reg.A = cpu.pop()
	cpu.updateNZ(cpu.Reg.A)
}

// Pull (pop) Processor status. Break is always forced clear afterward:
// B and U are stack-only bits on real hardware, never meaningfully
// restorable into the live status register.
func (cpu *CPU) plp(inst *Instruction, operand []byte) {
	v := cpu.pop()
	cpu.Reg.RestorePS(v)
	cpu.Reg.Break = false
}

// Rotate Left
func (cpu *CPU) rol(inst *Instruction, operand []byte) {
	tmp := cpu.load(inst.Mode, operand)
	v := (tmp << 1) | boolToByte(cpu.Reg.Carry)
	cpu.Reg.Carry = ((tmp & 0x80) != 0)
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// Rotate Right
func (cpu *CPU) ror(inst *Instruction, operand []byte) {
	tmp := cpu.load(inst.Mode, operand)
	v := (tmp >> 1) | (boolToByte(cpu.Reg.Carry) << 7)
	cpu.Reg.Carry = ((tmp & 1) != 0)
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// Return from Interrupt. RTI's processor-status handling carries the
// same Break/Reserved masking rule as PLP; this core never pushes an
// interrupt frame itself, but RTI remains available to a program that
// constructs one manually (e.g. a BrkHandler that wants to resume).
func (cpu *CPU) rti(inst *Instruction, operand []byte) {
	v := cpu.pop()
	cpu.Reg.RestorePS(v)
	cpu.Reg.Break = false
	cpu.Reg.PC = cpu.popAddress()
}

// Return from Subroutine
func (cpu *CPU) rts(inst *Instruction, operand []byte) {
	addr := cpu.popAddress()
	cpu.Reg.PC = addr + 1
}

// Subtract with Carry
func (cpu *CPU) sbc(inst *Instruction, operand []byte) {
	acc := uint32(cpu.Reg.A)
	sub := uint32(cpu.load(inst.Mode, operand))
	carry := boolToUint32(cpu.Reg.Carry)

	v := 0xff + acc - sub + carry
	cpu.Reg.Carry = (v >= 0x100)
	cpu.Reg.Overflow = (((acc ^ sub) & (acc ^ v) & 0x80) != 0)

	cpu.Reg.A = byte(v)
	cpu.updateNZ(cpu.Reg.A)
}

// Set Carry flag
func (cpu *CPU) sec(inst *Instruction, operand []byte) {
	cpu.Reg.Carry = true
}

// Set Decimal flag
func (cpu *CPU) sed(inst *Instruction, operand []byte) {
	cpu.Reg.Decimal = true
}

// Set InterruptDisable flag
func (cpu *CPU) sei(inst *Instruction, operand []byte) {
	cpu.Reg.InterruptDisable = true
}

// Store Accumulator
func (cpu *CPU) sta(inst *Instruction, operand []byte) {
	cpu.store(inst.Mode, operand, cpu.Reg.A)
}

// Store X register
func (cpu *CPU) stx(inst *Instruction, operand []byte) {
	cpu.store(inst.Mode, operand, cpu.Reg.X)
}

// Store Y register
func (cpu *CPU) sty(inst *Instruction, operand []byte) {
	cpu.store(inst.Mode, operand, cpu.Reg.Y)
}

// Transfer Accumulator to X register
func (cpu *CPU) tax(inst *Instruction, operand []byte) {
	cpu.Reg.X = cpu.Reg.A
	cpu.updateNZ(cpu.Reg.X)
}

// Transfer Accumulator to Y register
func (cpu *CPU) tay(inst *Instruction, operand []byte) {
	cpu.Reg.Y = cpu.Reg.A
	cpu.updateNZ(cpu.Reg.Y)
}

// Transfer stack pointer to X register
func (cpu *CPU) tsx(inst *Instruction, operand []byte) {
	cpu.Reg.X = cpu.Reg.SP
	cpu.updateNZ(cpu.Reg.X)
}

// Transfer X register to Accumulator
func (cpu *CPU) txa(inst *Instruction, operand []byte) {
	cpu.Reg.A = cpu.Reg.X
	cpu.updateNZ(cpu.Reg.A)
}

// Transfer X register to the stack pointer
func (cpu *CPU) txs(inst *Instruction, operand []byte) {
	cpu.Reg.SP = cpu.Reg.X
}

// Transfer Y register to the Accumulator
func (cpu *CPU) tya(inst *Instruction, operand []byte) {
	cpu.Reg.A = cpu.Reg.Y
	cpu.updateNZ(cpu.Reg.A)
}
