// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/jrsmith/go6502/cpu"
)

func loadAndRun(t *testing.T, program []byte) *cpu.CPU {
	t.Helper()
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)
	if err := c.LoadAndRun(program); err != nil {
		t.Fatalf("LoadAndRun failed: %v", err)
	}
	return c
}

func expectA(t *testing.T, c *cpu.CPU, a byte) {
	t.Helper()
	if c.Reg.A != a {
		t.Errorf("A incorrect. exp: $%02X, got: $%02X", a, c.Reg.A)
	}
}

func expectX(t *testing.T, c *cpu.CPU, x byte) {
	t.Helper()
	if c.Reg.X != x {
		t.Errorf("X incorrect. exp: $%02X, got: $%02X", x, c.Reg.X)
	}
}

func expectMem(t *testing.T, c *cpu.CPU, addr uint16, v byte) {
	t.Helper()
	got := c.Mem.LoadByte(addr)
	if got != v {
		t.Errorf("Memory at $%04X incorrect. exp: $%02X, got: $%02X", addr, v, got)
	}
}

func TestLDAImmediate(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0x05, 0x00})
	expectA(t, c, 0x05)
	if c.Reg.Zero || c.Reg.Sign {
		t.Errorf("Z/N incorrect after LDA #$05")
	}
}

func TestLDAThenTAX(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0x05, 0xAA, 0x00})
	expectX(t, c, 0x05)
	if c.Reg.Zero || c.Reg.Sign {
		t.Errorf("Z/N incorrect after TAX")
	}
}

func TestINXWraps(t *testing.T) {
	c := loadAndRun(t, []byte{0xA2, 0xFF, 0xE8, 0xE8, 0x00})
	expectX(t, c, 0x01)
}

func TestLDATAXINX(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0xC0, 0xAA, 0xE8, 0x00})
	expectX(t, c, 0xC1)
}

func TestLDAZeroPage(t *testing.T) {
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)
	mem.StoreByte(0x10, 0x55)
	if err := c.LoadAndRun([]byte{0xA5, 0x10, 0x00}); err != nil {
		t.Fatalf("LoadAndRun failed: %v", err)
	}
	expectA(t, c, 0x55)
}

func TestADCNoCarry(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0x05, 0x69, 0x05, 0x00})
	expectA(t, c, 0x0A)
}

func TestADCWithCarryIn(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0x05, 0x38, 0x69, 0x05, 0x00})
	expectA(t, c, 0x0B)
}

func TestAND(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0x05, 0x29, 0x06, 0x00})
	expectA(t, c, 0x04)
}

func TestASLAccumulator(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0x05, 0x0A, 0x00})
	expectA(t, c, 0x0A)
}

func TestCMPEqual(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0x05, 0xC9, 0x05, 0x00})
	if !c.Reg.Zero || !c.Reg.Carry {
		t.Errorf("CMP equal: exp Z=1 C=1, got Z=%v C=%v", c.Reg.Zero, c.Reg.Carry)
	}
}

func TestJMPAbsolute(t *testing.T) {
	c := loadAndRun(t, []byte{0x4C, 0x05, 0x80, 0xEA, 0x00, 0xA9, 0x09, 0x00})
	expectA(t, c, 0x09)
}

func TestPHPThenPLP(t *testing.T) {
	c := loadAndRun(t, []byte{0x08, 0xA9, 0x00, 0x28, 0x00})
	if c.Reg.Zero {
		t.Errorf("exp Z=0 after PLP restores the pre-LDA status, got Z=1")
	}
}

func TestPHAThenPLA(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0xFC, 0x48, 0xA9, 0x06, 0x68, 0x00})
	expectA(t, c, 0xFC)
}

func TestROLAccumulatorTwice(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0xFC, 0x2A, 0x2A, 0x00})
	expectA(t, c, 0xF1)
	if !c.Reg.Carry {
		t.Errorf("exp C=1 after ROL A twice on $FC")
	}
}

func TestROLMemoryTwice(t *testing.T) {
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)
	mem.StoreByte(0x8030, 0x8F)
	if err := c.LoadAndRun([]byte{0x2E, 0x30, 0x80, 0x2E, 0x30, 0x80, 0x00}); err != nil {
		t.Fatalf("LoadAndRun failed: %v", err)
	}
	expectMem(t, c, 0x8030, 0x3D)
	if c.Reg.Carry {
		t.Errorf("exp C=0 after ROL $8030 twice on $8F")
	}
}

func TestSBCNoCarryIn(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0x55, 0xE9, 0x05, 0x00})
	expectA(t, c, 0x4F)
}

func TestSBCWithCarryIn(t *testing.T) {
	c := loadAndRun(t, []byte{0xA9, 0x55, 0x38, 0xE9, 0x05, 0x00})
	expectA(t, c, 0x50)
}

// TestIndirectJMPPageWrapBug reproduces the NMOS 6502's JMP ($xxFF) bug:
// the high byte of the target address is fetched from the start of the
// same page rather than the next one. The CPU then executes the BRK found
// at the jump target, so LastPC holds the address the JMP went to.
func TestIndirectJMPPageWrapBug(t *testing.T) {
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)
	mem.StoreByte(0x30FF, 0x40)
	mem.StoreByte(0x3100, 0x50)
	mem.StoreByte(0x3000, 0x80)
	if err := c.LoadAndRun([]byte{0x6C, 0xFF, 0x30, 0x00}); err != nil {
		t.Fatalf("LoadAndRun failed: %v", err)
	}
	if c.LastPC != 0x8040 {
		t.Errorf("JMP ($30FF) incorrect. exp: $8040, got: $%04X", c.LastPC)
	}
}

func TestDecodeError(t *testing.T) {
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)
	c.Load([]byte{0x02})
	c.Reset()
	err := c.Run()
	if err == nil {
		t.Fatal("exp a decode error for opcode $02, got nil")
	}
	de, ok := err.(*cpu.DecodeError)
	if !ok {
		t.Fatalf("exp *cpu.DecodeError, got %T", err)
	}
	if de.Opcode != 0x02 || de.PC != 0x8000 {
		t.Errorf("DecodeError incorrect: %+v", de)
	}
}

func TestLDASTARoundTrip(t *testing.T) {
	for _, v := range []byte{0x00, 0x01, 0x7F, 0x80, 0xFF, 0x55, 0xAA} {
		mem := cpu.NewFlatMemory()
		c := cpu.NewCPU(mem)
		program := []byte{0xA9, v, 0x8D, 0x00, 0x02, 0xA9, 0x00, 0xAD, 0x00, 0x02, 0x00}
		if err := c.LoadAndRun(program); err != nil {
			t.Fatalf("LoadAndRun failed: %v", err)
		}
		expectA(t, c, v)
	}
}

func TestADCThenSBCRoundTrip(t *testing.T) {
	for _, v := range []byte{0x00, 0x01, 0x7F, 0x80, 0xFF, 0x55, 0xAA} {
		mem := cpu.NewFlatMemory()
		c := cpu.NewCPU(mem)
		program := []byte{
			0xA9, 0x40, // LDA #$40
			0x18,       // CLC (carry in 0, so ADC adds exactly v)
			0x69, v,    // ADC v
			0x38,       // SEC (carry in for the matching SBC)
			0xE9, v,    // SBC v
			0x00,
		}
		if err := c.LoadAndRun(program); err != nil {
			t.Fatalf("LoadAndRun failed: %v", err)
		}
		expectA(t, c, 0x40)
	}
}

func TestCLCIdempotent(t *testing.T) {
	c1 := loadAndRun(t, []byte{0x38, 0x18, 0x18, 0x00})
	c2 := loadAndRun(t, []byte{0x38, 0x18, 0x00})
	if c1.Reg.Carry != c2.Reg.Carry {
		t.Errorf("SEC;CLC;CLC (C=%v) should equal SEC;CLC (C=%v)", c1.Reg.Carry, c2.Reg.Carry)
	}
}

func TestPHAPLARestoresSP(t *testing.T) {
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)
	c.Load([]byte{0xA9, 0x42, 0x48, 0x68, 0x00})
	c.Reset()
	spBefore := c.Reg.SP
	if err := c.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if c.Reg.SP != spBefore {
		t.Errorf("SP not restored by PHA/PLA: before=$%02X after=$%02X", spBefore, c.Reg.SP)
	}
}

func TestBRKSetsBreakAndHalts(t *testing.T) {
	c := loadAndRun(t, []byte{0x00})
	if !c.Halted {
		t.Error("exp Halted=true after BRK")
	}
	if !c.Reg.Break {
		t.Error("exp Break flag set after BRK")
	}
	if !c.Reg.FlagSet(cpu.BreakBit) {
		t.Error("exp FlagSet(BreakBit) true after BRK")
	}
}

func TestBrkHandlerReplacesHalt(t *testing.T) {
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)
	calls := 0
	// A handler runs in place of BRK's own halt semantics, so it alone is
	// responsible for ever stopping Run: it steps over the first BRK and
	// halts on the second, rather than leaving the CPU to spin through
	// zero-filled memory forever.
	c.AttachBrkHandler(brkHandlerFunc(func(cc *cpu.CPU) {
		calls++
		if calls > 1 {
			cc.Halted = true
			return
		}
		cc.Reg.PC++
	}))
	c.Load([]byte{0x00, 0xA9, 0x09, 0x00})
	c.Reset()
	if err := c.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("exp the attached BrkHandler to run for both BRK opcodes, got %d calls", calls)
	}
	expectA(t, c, 0x09)
}

type brkHandlerFunc func(cpu *cpu.CPU)

func (f brkHandlerFunc) OnBrk(c *cpu.CPU) { f(c) }
