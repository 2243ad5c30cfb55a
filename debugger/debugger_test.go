// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package debugger

import (
	"strings"
	"testing"
)

func runScript(h *Host, script string) string {
	var out strings.Builder
	h.RunCommands(strings.NewReader(script), &out, false)
	return out.String()
}

func TestRegistersCommand(t *testing.T) {
	h := New()
	h.cpu.Load([]byte{0xA9, 0x05, 0x00})
	h.cpu.Reset()

	out := runScript(h, "registers\nquit\n")
	if !strings.Contains(out, "PC=8000") {
		t.Errorf("registers output missing PC: %q", out)
	}
}

func TestStepCommand(t *testing.T) {
	h := New()
	h.cpu.Load([]byte{0xA9, 0x05, 0x00})
	h.cpu.Reset()

	runScript(h, "step\nquit\n")
	if h.cpu.Reg.A != 0x05 {
		t.Errorf("step did not execute LDA #$05: A=$%02X", h.cpu.Reg.A)
	}
}

func TestBreakpointAddAndList(t *testing.T) {
	h := New()

	out := runScript(h, "breakpoint add $9000\nbreakpoint list\nquit\n")
	if !strings.Contains(out, "$9000") {
		t.Errorf("breakpoint list missing added breakpoint: %q", out)
	}
	if h.dbg.GetBreakpoint(0x9000) == nil {
		t.Error("breakpoint was not actually added to the debugger")
	}
}

func TestBreakpointRemove(t *testing.T) {
	h := New()
	h.dbg.AddBreakpoint(0x9000)

	runScript(h, "breakpoint remove $9000\nquit\n")
	if h.dbg.GetBreakpoint(0x9000) != nil {
		t.Error("breakpoint was not removed")
	}
}

func TestDataBreakpointAddConditional(t *testing.T) {
	h := New()

	runScript(h, "databreakpoint add $9000 $42\nquit\n")
	b := h.dbg.GetDataBreakpoint(0x9000)
	if b == nil {
		t.Fatal("conditional data breakpoint was not added")
	}
	if !b.Conditional || b.Value != 0x42 {
		t.Errorf("data breakpoint incorrect: %+v", b)
	}
}

func TestOnBreakpointStopsRun(t *testing.T) {
	h := New()
	// NOP, NOP, NOP, NOP, BRK -- breakpoint on the third NOP.
	h.cpu.Load([]byte{0xEA, 0xEA, 0xEA, 0xEA, 0x00})
	h.cpu.Reset()
	h.dbg.AddBreakpoint(0x8002)

	runScript(h, "run\nquit\n")
	if h.cpu.Reg.PC != 0x8002 {
		t.Errorf("run did not stop at the breakpoint: PC=$%04X", h.cpu.Reg.PC)
	}
	if h.cpu.Halted {
		t.Error("CPU should not be halted; it should be paused at the breakpoint")
	}
}

func TestSettingsSetAndDisplay(t *testing.T) {
	s := newSettings()
	if err := s.Set("disasmlines", 5); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if s.DisasmLines != 5 {
		t.Errorf("Set did not update DisasmLines: %d", s.DisasmLines)
	}

	var out strings.Builder
	s.Display(&out)
	if !strings.Contains(out.String(), "DisasmLines") {
		t.Errorf("Display missing DisasmLines: %q", out.String())
	}
}

func TestSetCommandUpdatesSetting(t *testing.T) {
	h := New()

	runScript(h, "set disasmlines 3\nquit\n")
	if h.settings.DisasmLines != 3 {
		t.Errorf("set command did not update DisasmLines: %d", h.settings.DisasmLines)
	}
}

func TestSetCommandUpdatesUint16Setting(t *testing.T) {
	h := New()

	runScript(h, "set nextdisasmaddr $1234\nquit\n")
	if h.settings.NextDisasmAddr != 0x1234 {
		t.Errorf("set command did not update NextDisasmAddr: $%04X", h.settings.NextDisasmAddr)
	}
}

func TestSetCommandWithNoArgsDisplaysSettings(t *testing.T) {
	h := New()

	out := runScript(h, "set\nquit\n")
	if !strings.Contains(out, "DisasmLines") {
		t.Errorf("set with no args should display current settings: %q", out)
	}
}

func TestSetCommandUnknownSetting(t *testing.T) {
	h := New()

	out := runScript(h, "set bogus 1\nquit\n")
	if !strings.Contains(out, "not found") {
		t.Errorf("set on an unknown setting should report an error: %q", out)
	}
}
