// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "strings"

// An opsym is an internal symbol used to associate an opcode's data
// with its instruction implementation.
type opsym byte

const (
	symADC opsym = iota
	symAND
	symASL
	symBCC
	symBCS
	symBEQ
	symBIT
	symBMI
	symBNE
	symBPL
	symBRK
	symBVC
	symBVS
	symCLC
	symCLD
	symCLI
	symCLV
	symCMP
	symCPX
	symCPY
	symDEC
	symDEX
	symDEY
	symEOR
	symINC
	symINX
	symINY
	symJMP
	symJSR
	symLDA
	symLDX
	symLDY
	symLSR
	symNOP
	symORA
	symPHA
	symPHP
	symPLA
	symPLP
	symROL
	symROR
	symRTI
	symRTS
	symSBC
	symSEC
	symSED
	symSEI
	symSTA
	symSTX
	symSTY
	symTAX
	symTAY
	symTSX
	symTXA
	symTXS
	symTYA
)

type instfunc func(c *CPU, inst *Instruction, operand []byte)

// Emulator implementation for each opcode symbol.
type opcodeImpl struct {
	sym  opsym
	name string
	fn   instfunc
}

var impl = []opcodeImpl{
	{symADC, "ADC", (*CPU).adc},
	{symAND, "AND", (*CPU).and},
	{symASL, "ASL", (*CPU).asl},
	{symBCC, "BCC", (*CPU).bcc},
	{symBCS, "BCS", (*CPU).bcs},
	{symBEQ, "BEQ", (*CPU).beq},
	{symBIT, "BIT", (*CPU).bit},
	{symBMI, "BMI", (*CPU).bmi},
	{symBNE, "BNE", (*CPU).bne},
	{symBPL, "BPL", (*CPU).bpl},
	{symBRK, "BRK", (*CPU).brk},
	{symBVC, "BVC", (*CPU).bvc},
	{symBVS, "BVS", (*CPU).bvs},
	{symCLC, "CLC", (*CPU).clc},
	{symCLD, "CLD", (*CPU).cld},
	{symCLI, "CLI", (*CPU).cli},
	{symCLV, "CLV", (*CPU).clv},
	{symCMP, "CMP", (*CPU).cmp},
	{symCPX, "CPX", (*CPU).cpx},
	{symCPY, "CPY", (*CPU).cpy},
	{symDEC, "DEC", (*CPU).dec},
	{symDEX, "DEX", (*CPU).dex},
	{symDEY, "DEY", (*CPU).dey},
	{symEOR, "EOR", (*CPU).eor},
	{symINC, "INC", (*CPU).inc},
	{symINX, "INX", (*CPU).inx},
	{symINY, "INY", (*CPU).iny},
	{symJMP, "JMP", (*CPU).jmp},
	{symJSR, "JSR", (*CPU).jsr},
	{symLDA, "LDA", (*CPU).lda},
	{symLDX, "LDX", (*CPU).ldx},
	{symLDY, "LDY", (*CPU).ldy},
	{symLSR, "LSR", (*CPU).lsr},
	{symNOP, "NOP", (*CPU).nop},
	{symORA, "ORA", (*CPU).ora},
	{symPHA, "PHA", (*CPU).pha},
	{symPHP, "PHP", (*CPU).php},
	{symPLA, "PLA", (*CPU).pla},
	{symPLP, "PLP", (*CPU).plp},
	{symROL, "ROL", (*CPU).rol},
	{symROR, "ROR", (*CPU).ror},
	{symRTI, "RTI", (*CPU).rti},
	{symRTS, "RTS", (*CPU).rts},
	{symSBC, "SBC", (*CPU).sbc},
	{symSEC, "SEC", (*CPU).sec},
	{symSED, "SED", (*CPU).sed},
	{symSEI, "SEI", (*CPU).sei},
	{symSTA, "STA", (*CPU).sta},
	{symSTX, "STX", (*CPU).stx},
	{symSTY, "STY", (*CPU).sty},
	{symTAX, "TAX", (*CPU).tax},
	{symTAY, "TAY", (*CPU).tay},
	{symTSX, "TSX", (*CPU).tsx},
	{symTXA, "TXA", (*CPU).txa},
	{symTXS, "TXS", (*CPU).txs},
	{symTYA, "TYA", (*CPU).tya},
}

// Mode describes a memory addressing mode.
type Mode byte

// All possible memory addressing modes.
const (
	IMM Mode = iota // Immediate
	IMP             // Implied (no operand)
	REL             // Relative
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IND             // (Indirect) -- JMP only
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
	ACC             // Accumulator (no operand)
)

// Opcode data for an (opcode, mode) pair.
type opcodeData struct {
	sym    opsym // internal opcode symbol
	mode   Mode  // addressing mode
	opcode byte  // opcode hex value
	length byte  // length of opcode + operand in bytes
	cycles byte  // base CPU cycle count (observability only; not summed)
}

// All valid (opcode, mode) pairs recognized by this NMOS 6502 core.
var data = []opcodeData{
	{symLDA, IMM, 0xa9, 2, 2},
	{symLDA, ZPG, 0xa5, 2, 3},
	{symLDA, ZPX, 0xb5, 2, 4},
	{symLDA, ABS, 0xad, 3, 4},
	{symLDA, ABX, 0xbd, 3, 4},
	{symLDA, ABY, 0xb9, 3, 4},
	{symLDA, IDX, 0xa1, 2, 6},
	{symLDA, IDY, 0xb1, 2, 5},

	{symLDX, IMM, 0xa2, 2, 2},
	{symLDX, ZPG, 0xa6, 2, 3},
	{symLDX, ZPY, 0xb6, 2, 4},
	{symLDX, ABS, 0xae, 3, 4},
	{symLDX, ABY, 0xbe, 3, 4},

	{symLDY, IMM, 0xa0, 2, 2},
	{symLDY, ZPG, 0xa4, 2, 3},
	{symLDY, ZPX, 0xb4, 2, 4},
	{symLDY, ABS, 0xac, 3, 4},
	{symLDY, ABX, 0xbc, 3, 4},

	{symSTA, ZPG, 0x85, 2, 3},
	{symSTA, ZPX, 0x95, 2, 4},
	{symSTA, ABS, 0x8d, 3, 4},
	{symSTA, ABX, 0x9d, 3, 5},
	{symSTA, ABY, 0x99, 3, 5},
	{symSTA, IDX, 0x81, 2, 6},
	{symSTA, IDY, 0x91, 2, 6},

	{symSTX, ZPG, 0x86, 2, 3},
	{symSTX, ZPY, 0x96, 2, 4},
	{symSTX, ABS, 0x8e, 3, 4},

	{symSTY, ZPG, 0x84, 2, 3},
	{symSTY, ZPX, 0x94, 2, 4},
	{symSTY, ABS, 0x8c, 3, 4},

	{symADC, IMM, 0x69, 2, 2},
	{symADC, ZPG, 0x65, 2, 3},
	{symADC, ZPX, 0x75, 2, 4},
	{symADC, ABS, 0x6d, 3, 4},
	{symADC, ABX, 0x7d, 3, 4},
	{symADC, ABY, 0x79, 3, 4},
	{symADC, IDX, 0x61, 2, 6},
	{symADC, IDY, 0x71, 2, 5},

	{symSBC, IMM, 0xe9, 2, 2},
	{symSBC, ZPG, 0xe5, 2, 3},
	{symSBC, ZPX, 0xf5, 2, 4},
	{symSBC, ABS, 0xed, 3, 4},
	{symSBC, ABX, 0xfd, 3, 4},
	{symSBC, ABY, 0xf9, 3, 4},
	{symSBC, IDX, 0xe1, 2, 6},
	{symSBC, IDY, 0xf1, 2, 5},

	{symCMP, IMM, 0xc9, 2, 2},
	{symCMP, ZPG, 0xc5, 2, 3},
	{symCMP, ZPX, 0xd5, 2, 4},
	{symCMP, ABS, 0xcd, 3, 4},
	{symCMP, ABX, 0xdd, 3, 4},
	{symCMP, ABY, 0xd9, 3, 4},
	{symCMP, IDX, 0xc1, 2, 6},
	{symCMP, IDY, 0xd1, 2, 5},

	{symCPX, IMM, 0xe0, 2, 2},
	{symCPX, ZPG, 0xe4, 2, 3},
	{symCPX, ABS, 0xec, 3, 4},

	{symCPY, IMM, 0xc0, 2, 2},
	{symCPY, ZPG, 0xc4, 2, 3},
	{symCPY, ABS, 0xcc, 3, 4},

	{symBIT, ZPG, 0x24, 2, 3},
	{symBIT, ABS, 0x2c, 3, 4},

	{symCLC, IMP, 0x18, 1, 2},
	{symSEC, IMP, 0x38, 1, 2},
	{symCLI, IMP, 0x58, 1, 2},
	{symSEI, IMP, 0x78, 1, 2},
	{symCLD, IMP, 0xd8, 1, 2},
	{symSED, IMP, 0xf8, 1, 2},
	{symCLV, IMP, 0xb8, 1, 2},

	{symBCC, REL, 0x90, 2, 2},
	{symBCS, REL, 0xb0, 2, 2},
	{symBEQ, REL, 0xf0, 2, 2},
	{symBNE, REL, 0xd0, 2, 2},
	{symBMI, REL, 0x30, 2, 2},
	{symBPL, REL, 0x10, 2, 2},
	{symBVC, REL, 0x50, 2, 2},
	{symBVS, REL, 0x70, 2, 2},

	{symBRK, IMP, 0x00, 1, 7},

	{symAND, IMM, 0x29, 2, 2},
	{symAND, ZPG, 0x25, 2, 3},
	{symAND, ZPX, 0x35, 2, 4},
	{symAND, ABS, 0x2d, 3, 4},
	{symAND, ABX, 0x3d, 3, 4},
	{symAND, ABY, 0x39, 3, 4},
	{symAND, IDX, 0x21, 2, 6},
	{symAND, IDY, 0x31, 2, 5},

	{symORA, IMM, 0x09, 2, 2},
	{symORA, ZPG, 0x05, 2, 3},
	{symORA, ZPX, 0x15, 2, 4},
	{symORA, ABS, 0x0d, 3, 4},
	{symORA, ABX, 0x1d, 3, 4},
	{symORA, ABY, 0x19, 3, 4},
	{symORA, IDX, 0x01, 2, 6},
	{symORA, IDY, 0x11, 2, 5},

	{symEOR, IMM, 0x49, 2, 2},
	{symEOR, ZPG, 0x45, 2, 3},
	{symEOR, ZPX, 0x55, 2, 4},
	{symEOR, ABS, 0x4d, 3, 4},
	{symEOR, ABX, 0x5d, 3, 4},
	{symEOR, ABY, 0x59, 3, 4},
	{symEOR, IDX, 0x41, 2, 6},
	{symEOR, IDY, 0x51, 2, 5},

	{symINC, ZPG, 0xe6, 2, 5},
	{symINC, ZPX, 0xf6, 2, 6},
	{symINC, ABS, 0xee, 3, 6},
	{symINC, ABX, 0xfe, 3, 7},

	{symDEC, ZPG, 0xc6, 2, 5},
	{symDEC, ZPX, 0xd6, 2, 6},
	{symDEC, ABS, 0xce, 3, 6},
	{symDEC, ABX, 0xde, 3, 7},

	{symINX, IMP, 0xe8, 1, 2},
	{symINY, IMP, 0xc8, 1, 2},

	{symDEX, IMP, 0xca, 1, 2},
	{symDEY, IMP, 0x88, 1, 2},

	{symJMP, ABS, 0x4c, 3, 3},
	{symJMP, IND, 0x6c, 3, 5},

	{symJSR, ABS, 0x20, 3, 6},
	{symRTS, IMP, 0x60, 1, 6},

	{symRTI, IMP, 0x40, 1, 6},

	{symNOP, IMP, 0xea, 1, 2},

	{symTAX, IMP, 0xaa, 1, 2},
	{symTXA, IMP, 0x8a, 1, 2},
	{symTAY, IMP, 0xa8, 1, 2},
	{symTYA, IMP, 0x98, 1, 2},
	{symTXS, IMP, 0x9a, 1, 2},
	{symTSX, IMP, 0xba, 1, 2},

	{symPHA, IMP, 0x48, 1, 3},
	{symPLA, IMP, 0x68, 1, 4},
	{symPHP, IMP, 0x08, 1, 3},
	{symPLP, IMP, 0x28, 1, 4},

	{symASL, ACC, 0x0a, 1, 2},
	{symASL, ZPG, 0x06, 2, 5},
	{symASL, ZPX, 0x16, 2, 6},
	{symASL, ABS, 0x0e, 3, 6},
	{symASL, ABX, 0x1e, 3, 7},

	{symLSR, ACC, 0x4a, 1, 2},
	{symLSR, ZPG, 0x46, 2, 5},
	{symLSR, ZPX, 0x56, 2, 6},
	{symLSR, ABS, 0x4e, 3, 6},
	{symLSR, ABX, 0x5e, 3, 7},

	{symROL, ACC, 0x2a, 1, 2},
	{symROL, ZPG, 0x26, 2, 5},
	{symROL, ZPX, 0x36, 2, 6},
	{symROL, ABS, 0x2e, 3, 6},
	{symROL, ABX, 0x3e, 3, 7},

	{symROR, ACC, 0x6a, 1, 2},
	{symROR, ZPG, 0x66, 2, 5},
	{symROR, ZPX, 0x76, 2, 6},
	{symROR, ABS, 0x6e, 3, 6},
	{symROR, ABX, 0x7e, 3, 7},
}

// An Instruction describes a CPU instruction, including its name, its
// addressing mode, its opcode value, its operand size, and its base CPU
// cycle cost.
type Instruction struct {
	Name   string   // all-caps name of the instruction
	Mode   Mode     // addressing mode
	Opcode byte     // hexadecimal opcode value
	Length byte     // combined size of opcode and operand, in bytes
	Cycles byte     // base cycle count (observability only; this core does not stall)
	fn     instfunc // emulator implementation of the function
}

// An InstructionSet defines the set of all instructions recognized by
// this NMOS 6502 core. An entry with a nil fn is an unrecognized
// opcode; encountering one is a decode failure (see DecodeError).
type InstructionSet struct {
	instructions [256]Instruction          // all instructions by opcode
	variants     map[string][]*Instruction // variants of each instruction
}

// Lookup retrieves a CPU instruction corresponding to the requested
// opcode. The returned Instruction's fn is nil if the opcode is not
// recognized.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return &s.instructions[opcode]
}

// GetInstructions returns all CPU instructions whose name matches the
// provided string.
func (s *InstructionSet) GetInstructions(name string) []*Instruction {
	return s.variants[strings.ToUpper(name)]
}

// newInstructionSet builds the dense 256-entry opcode table.
func newInstructionSet() *InstructionSet {
	set := &InstructionSet{}

	symToImpl := make(map[opsym]*opcodeImpl, len(impl))
	for i := range impl {
		symToImpl[impl[i].sym] = &impl[i]
	}

	set.variants = make(map[string][]*Instruction)

	for _, d := range data {
		inst := &set.instructions[d.opcode]
		im := symToImpl[d.sym]

		inst.Name = im.name
		inst.Mode = d.mode
		inst.Opcode = d.opcode
		inst.Length = d.length
		inst.Cycles = d.cycles
		inst.fn = im.fn

		set.variants[inst.Name] = append(set.variants[inst.Name], inst)
	}

	return set
}

var instructionSet *InstructionSet

// GetInstructionSet returns the (lazily constructed) instruction set for
// this NMOS 6502 core. The table is immutable for the process lifetime.
func GetInstructionSet() *InstructionSet {
	if instructionSet == nil {
		instructionSet = newInstructionSet()
	}
	return instructionSet
}
