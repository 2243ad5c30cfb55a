// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm_test

import (
	"testing"

	"github.com/jrsmith/go6502/cpu"
	"github.com/jrsmith/go6502/disasm"
)

func TestDisassembleImmediate(t *testing.T) {
	mem := cpu.NewFlatMemory()
	mem.StoreBytes(0x1000, []byte{0xA9, 0x05})
	line, next := disasm.Disassemble(mem, 0x1000)
	if line != "LDA #$05" {
		t.Errorf("Disassemble incorrect. exp: 'LDA #$05', got: %q", line)
	}
	if next != 0x1002 {
		t.Errorf("next address incorrect. exp: $1002, got: $%04X", next)
	}
}

func TestDisassembleAbsolute(t *testing.T) {
	mem := cpu.NewFlatMemory()
	mem.StoreBytes(0x1000, []byte{0x8D, 0x00, 0x20})
	line, next := disasm.Disassemble(mem, 0x1000)
	if line != "STA $2000" {
		t.Errorf("Disassemble incorrect. exp: 'STA $2000', got: %q", line)
	}
	if next != 0x1003 {
		t.Errorf("next address incorrect. exp: $1003, got: $%04X", next)
	}
}

func TestDisassembleRelativeBranchForward(t *testing.T) {
	mem := cpu.NewFlatMemory()
	mem.StoreBytes(0x1000, []byte{0xF0, 0x02}) // BEQ +2
	line, _ := disasm.Disassemble(mem, 0x1000)
	if line != "BEQ $1004" {
		t.Errorf("Disassemble incorrect. exp: 'BEQ $1004', got: %q", line)
	}
}

func TestDisassembleRelativeBranchBackward(t *testing.T) {
	mem := cpu.NewFlatMemory()
	mem.StoreBytes(0x1000, []byte{0xF0, 0xFE}) // BEQ -2
	line, _ := disasm.Disassemble(mem, 0x1000)
	if line != "BEQ $1000" {
		t.Errorf("Disassemble incorrect. exp: 'BEQ $1000', got: %q", line)
	}
}

func TestDisassembleUnrecognizedOpcode(t *testing.T) {
	mem := cpu.NewFlatMemory()
	mem.StoreBytes(0x1000, []byte{0x02})
	line, next := disasm.Disassemble(mem, 0x1000)
	if line != ".BYTE $02" {
		t.Errorf("Disassemble incorrect. exp: '.BYTE $02', got: %q", line)
	}
	if next != 0x1001 {
		t.Errorf("next address incorrect. exp: $1001, got: $%04X", next)
	}
}
