// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/jrsmith/go6502/cpu"
)

func TestLookupKnownOpcode(t *testing.T) {
	set := cpu.GetInstructionSet()
	inst := set.Lookup(0xA9) // LDA #imm
	if inst.Name != "LDA" {
		t.Errorf("Lookup($A9) name incorrect. exp: LDA, got: %s", inst.Name)
	}
	if inst.Mode != cpu.IMM {
		t.Errorf("Lookup($A9) mode incorrect. exp: IMM, got: %v", inst.Mode)
	}
	if inst.Length != 2 {
		t.Errorf("Lookup($A9) length incorrect. exp: 2, got: %d", inst.Length)
	}
}

func TestLookupUnrecognizedOpcode(t *testing.T) {
	set := cpu.GetInstructionSet()
	inst := set.Lookup(0x02)
	if inst == nil {
		t.Fatal("Lookup($02) returned nil; expected a placeholder Instruction with a nil fn")
	}
}

func TestGetInstructionsReturnsAllAddressingModeVariants(t *testing.T) {
	set := cpu.GetInstructionSet()
	variants := set.GetInstructions("LDA")
	if len(variants) == 0 {
		t.Fatal("GetInstructions(\"LDA\") returned no variants")
	}
	seen := make(map[cpu.Mode]bool)
	for _, v := range variants {
		if v.Name != "LDA" {
			t.Errorf("variant name incorrect. exp: LDA, got: %s", v.Name)
		}
		seen[v.Mode] = true
	}
	if !seen[cpu.IMM] || !seen[cpu.ZPG] || !seen[cpu.ABS] {
		t.Errorf("LDA is missing expected addressing-mode variants: %v", seen)
	}
}

func TestEveryOpcodeWithLengthHasName(t *testing.T) {
	set := cpu.GetInstructionSet()
	for op := 0; op < 256; op++ {
		inst := set.Lookup(byte(op))
		if inst.Length == 0 {
			continue // unrecognized opcode; no length to check
		}
		if inst.Name == "" {
			t.Errorf("opcode $%02X has a length but no name", op)
		}
	}
}
