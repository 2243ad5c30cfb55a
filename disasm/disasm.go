// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set
// disassembler.
package disasm

import (
	"fmt"

	"github.com/jrsmith/go6502/cpu"
)

// Disassembler formatting for addressing modes.
var modeFormat = []string{
	"#$%s",    // IMM
	"%s",      // IMP
	"$%s",     // REL
	"$%s",     // ZPG
	"$%s,X",   // ZPX
	"$%s,Y",   // ZPY
	"$%s",     // ABS
	"$%s,X",   // ABX
	"$%s,Y",   // ABY
	"($%s)",   // IND
	"($%s,X)", // IDX
	"($%s),Y", // IDY
	"%s",      // ACC
}

var hex = "0123456789ABCDEF"

// hexString returns a hexadecimal string representation of the byte
// slice, with the bytes reversed so a little-endian operand reads
// most-significant-byte-first.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code in mem at addr. It returns a 'line' string
// representing the disassembled instruction and a 'next' address that
// starts the following instruction.
func Disassemble(mem cpu.Memory, addr uint16) (line string, next uint16) {
	opcode := mem.LoadByte(addr)
	set := cpu.GetInstructionSet()
	inst := set.Lookup(opcode)

	if inst.Length == 0 {
		return fmt.Sprintf(".BYTE $%02X", opcode), addr + 1
	}

	operand := make([]byte, inst.Length-1)
	mem.LoadBytes(addr+1, operand)

	next = addr + uint16(inst.Length)

	if inst.Mode == cpu.REL {
		offset := uint16(operand[0])
		var braddr uint16
		if offset < 0x80 {
			braddr = next + offset
		} else {
			braddr = next - (0x100 - offset)
		}
		operand = []byte{byte(braddr), byte(braddr >> 8)}
	}

	format := "%s " + modeFormat[inst.Mode]
	line = fmt.Sprintf(format, inst.Name, hexString(operand))
	return line, next
}
