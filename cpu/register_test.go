// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/jrsmith/go6502/cpu"
)

func TestSavePSRestorePSRoundTrip(t *testing.T) {
	var r cpu.Registers
	r.Carry = true
	r.Zero = false
	r.InterruptDisable = true
	r.Decimal = false
	r.Overflow = true
	r.Sign = true

	ps := r.SavePS(false)

	var r2 cpu.Registers
	r2.RestorePS(ps)

	if r2.Carry != r.Carry || r2.Zero != r.Zero || r2.InterruptDisable != r.InterruptDisable ||
		r2.Decimal != r.Decimal || r2.Overflow != r.Overflow || r2.Sign != r.Sign {
		t.Errorf("RestorePS(SavePS()) did not round-trip: exp %+v, got %+v", r, r2)
	}
}

func TestSavePSReservedBitAlwaysSet(t *testing.T) {
	var r cpu.Registers
	if ps := r.SavePS(false); ps&cpu.ReservedBit == 0 {
		t.Errorf("SavePS did not set the reserved bit: $%02X", ps)
	}
}

func TestSavePSForceBreakDoesNotStickRegister(t *testing.T) {
	var r cpu.Registers
	ps := r.SavePS(true)
	if ps&cpu.BreakBit == 0 {
		t.Errorf("SavePS(true) should force the break bit on in the saved byte: $%02X", ps)
	}
	if r.Break {
		t.Error("SavePS(true) should not modify r.Break itself")
	}
}

func TestRestorePSSetsBreak(t *testing.T) {
	var r cpu.Registers
	r.RestorePS(cpu.BreakBit)
	if !r.Break {
		t.Error("RestorePS should set Break from the break bit")
	}
}

func TestPAndSetP(t *testing.T) {
	var r cpu.Registers
	r.SetP(cpu.CarryBit | cpu.SignBit | cpu.BreakBit)
	if !r.Carry || !r.Sign || !r.Break {
		t.Errorf("SetP did not decode flags correctly: %+v", r)
	}
	if got := r.P(); got&(cpu.CarryBit|cpu.SignBit|cpu.BreakBit) != (cpu.CarryBit | cpu.SignBit | cpu.BreakBit) {
		t.Errorf("P() did not re-encode the same flags: $%02X", got)
	}
}

func TestFlagSet(t *testing.T) {
	var r cpu.Registers
	r.Carry = true
	r.Zero = true
	if !r.FlagSet(cpu.CarryBit) {
		t.Error("FlagSet(CarryBit) should be true")
	}
	if !r.FlagSet(cpu.CarryBit | cpu.ZeroBit) {
		t.Error("FlagSet(CarryBit|ZeroBit) should be true when both are set")
	}
	if r.FlagSet(cpu.OverflowBit) {
		t.Error("FlagSet(OverflowBit) should be false")
	}
}

func TestNewCPUStartsWithZeroedRegisters(t *testing.T) {
	c := cpu.NewCPU(cpu.NewFlatMemory())
	if c.Reg.A != 0 || c.Reg.X != 0 || c.Reg.Y != 0 || c.Reg.SP != 0 || c.Reg.PC != 0 {
		t.Errorf("NewCPU did not zero all registers: %+v", c.Reg)
	}
	if c.Reg.Carry || c.Reg.Break {
		t.Errorf("NewCPU did not clear status flags: %+v", c.Reg)
	}
}
