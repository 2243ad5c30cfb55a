// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package debugger implements an interactive command-line debugger for
// the 6502 CPU core in the cpu package: loading a program, stepping or
// running it, inspecting registers, disassembling memory, and setting
// address and data breakpoints.
package debugger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"

	"github.com/jrsmith/go6502/cpu"
	"github.com/jrsmith/go6502/disasm"
)

var cmds *cmd.Tree

func init() {
	cmds = cmd.NewTree("go6502", []cmd.Command{
		{
			Name:     "help",
			Shortcut: "?",
			Data:     (*Host).cmdHelp,
		},
		{
			Name:     "load",
			Brief:    "Load a binary into memory",
			HelpText: "load <filename> [<address>]",
			Data:     (*Host).cmdLoad,
		},
		{
			Name:     "reset",
			Brief:    "Reset the CPU",
			HelpText: "reset",
			Data:     (*Host).cmdReset,
		},
		{
			Name:     "registers",
			Shortcut: "r",
			Brief:    "Display register contents",
			HelpText: "registers",
			Data:     (*Host).cmdRegisters,
		},
		{
			Name:     "disassemble",
			Shortcut: "d",
			Brief:    "Disassemble code",
			HelpText: "disassemble [<address>] [<lines>]",
			Data:     (*Host).cmdDisassemble,
		},
		{
			Name:     "step",
			Shortcut: "s",
			Brief:    "Step the CPU one or more instructions",
			HelpText: "step [<count>]",
			Data:     (*Host).cmdStep,
		},
		{
			Name:     "run",
			Brief:    "Run the CPU",
			HelpText: "run [<address>]",
			Data:     (*Host).cmdRun,
		},
		{
			Name:     "set",
			Brief:    "Set a debugger configuration variable",
			HelpText: "set [<var> <value>]",
			Data:     (*Host).cmdSet,
		},
		{
			Name:     "breakpoint",
			Shortcut: "b",
			Brief:    "Breakpoint commands",
			Subcommands: cmd.NewTree("Breakpoint", []cmd.Command{
				{Name: "list", Brief: "List breakpoints", Data: (*Host).cmdBreakpointList},
				{Name: "add", Brief: "Add a breakpoint", HelpText: "breakpoint add <address>", Data: (*Host).cmdBreakpointAdd},
				{Name: "remove", Brief: "Remove a breakpoint", HelpText: "breakpoint remove <address>", Data: (*Host).cmdBreakpointRemove},
				{Name: "enable", Brief: "Enable a breakpoint", HelpText: "breakpoint enable <address>", Data: (*Host).cmdBreakpointEnable},
				{Name: "disable", Brief: "Disable a breakpoint", HelpText: "breakpoint disable <address>", Data: (*Host).cmdBreakpointDisable},
			}),
		},
		{
			Name:     "databreakpoint",
			Shortcut: "db",
			Brief:    "Data breakpoint commands",
			Subcommands: cmd.NewTree("Data breakpoint", []cmd.Command{
				{Name: "list", Brief: "List data breakpoints", Data: (*Host).cmdDataBreakpointList},
				{Name: "add", Brief: "Add a data breakpoint", HelpText: "databreakpoint add <address> [<value>]", Data: (*Host).cmdDataBreakpointAdd},
				{Name: "remove", Brief: "Remove a data breakpoint", HelpText: "databreakpoint remove <address>", Data: (*Host).cmdDataBreakpointRemove},
				{Name: "enable", Brief: "Enable a data breakpoint", HelpText: "databreakpoint enable <address>", Data: (*Host).cmdDataBreakpointEnable},
				{Name: "disable", Brief: "Disable a data breakpoint", HelpText: "databreakpoint disable <address>", Data: (*Host).cmdDataBreakpointDisable},
			}),
		},
		{
			Name:  "quit",
			Brief: "Quit the debugger",
			Data:  (*Host).cmdQuit,
		},
	})
}

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateBreakpoint
)

// A Host wires an emulated CPU and its memory to an interactive,
// line-oriented command session.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool

	mem *cpu.FlatMemory
	cpu *cpu.CPU
	dbg *cpu.Debugger

	lastCmd  *cmd.Selection
	state    state
	settings *settings
}

// New creates a debugger Host with a freshly constructed CPU and 64 KiB
// of flat memory.
func New() *Host {
	h := &Host{
		state:    stateProcessingCommands,
		settings: newSettings(),
	}

	h.mem = cpu.NewFlatMemory()
	h.cpu = cpu.NewCPU(h.mem)
	h.dbg = cpu.NewDebugger(h)
	h.cpu.AttachDebugger(h.dbg)

	return h
}

// RunCommands reads commands from r, one per line, and writes responses
// to w. When interactive is true, a prompt is displayed between commands
// and the current instruction is echoed after each step, for at most the
// first MaxStepLines steps of a step command.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	h.displayPC()

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var sel cmd.Selection
		if line != "" {
			sel, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			sel = *h.lastCmd
		}

		if sel.Command == nil {
			continue
		}
		h.lastCmd = &sel

		handler := sel.Command.Data.(func(*Host, cmd.Selection) error)
		if err := handler(h, sel); err != nil {
			break
		}
	}
}

// Break interrupts a running CPU, returning the session to the prompt.
// It is intended to be called from a signal handler (e.g. Ctrl-C).
func (h *Host) Break() {
	h.println()
	if h.state == stateRunning {
		h.displayPC()
	}
	h.state = stateProcessingCommands
	h.prompt()
}

func (h *Host) print(args ...interface{})                 { fmt.Fprint(h.output, args...); h.flush() }
func (h *Host) printf(format string, args ...interface{}) { fmt.Fprintf(h.output, format, args...); h.flush() }
func (h *Host) println(args ...interface{})               { fmt.Fprintln(h.output, args...); h.flush() }
func (h *Host) flush()                                    { h.output.Flush() }

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) displayPC() {
	if h.interactive {
		line, _ := h.disassemble(h.cpu.Reg.PC)
		h.println(line + "  " + registerString(&h.cpu.Reg))
	}
}

func (h *Host) cmdHelp(sel cmd.Selection) error {
	tree := cmds
	if len(sel.Args) > 0 {
		s, err := cmds.Lookup(strings.Join(sel.Args, " "))
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		if s.Command.Subcommands != nil {
			tree = s.Command.Subcommands
		} else {
			if s.Command.HelpText != "" {
				h.printf("Syntax: %s\n", s.Command.HelpText)
			}
			return nil
		}
	}
	h.printf("%s commands:\n", tree.Title)
	for _, c := range tree.Commands {
		if c.Brief != "" {
			h.printf("    %-15s  %s\n", c.Name, c.Brief)
		}
	}
	return nil
}

func (h *Host) cmdLoad(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		h.printf("Syntax: load <filename> [<address>]\n")
		return nil
	}

	filename := sel.Args[0]
	if !strings.Contains(filename, ".") {
		filename += ".bin"
	}

	addr := -1
	if len(sel.Args) >= 2 {
		a, err := parseAddr(sel.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = int(a)
	}

	program, err := os.ReadFile(filename)
	if err != nil {
		h.printf("Failed to read '%s': %v\n", filename, err)
		return nil
	}

	if addr < 0 {
		h.cpu.Load(program)
		h.cpu.Reset()
		h.printf("Loaded '%s'. PC=$%04X\n", filename, h.cpu.Reg.PC)
	} else {
		h.cpu.Mem.StoreBytes(uint16(addr), program)
		h.cpu.SetPC(uint16(addr))
		h.printf("Loaded '%s' to $%04X.\n", filename, addr)
	}
	return nil
}

func (h *Host) cmdReset(sel cmd.Selection) error {
	h.cpu.Reset()
	h.displayPC()
	return nil
}

func (h *Host) cmdRegisters(sel cmd.Selection) error {
	h.println(registerString(&h.cpu.Reg))
	return nil
}

func (h *Host) cmdDisassemble(sel cmd.Selection) error {
	addr := h.settings.NextDisasmAddr
	if addr == 0 {
		addr = h.cpu.Reg.PC
	}
	if len(sel.Args) > 0 {
		a, err := parseAddr(sel.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(sel.Args) > 1 {
		n, err := strconv.Atoi(sel.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = n
	}

	for i := 0; i < lines; i++ {
		line, next := h.disassemble(addr)
		h.println(line)
		addr = next
	}
	h.settings.NextDisasmAddr = addr
	return nil
}

func (h *Host) cmdStep(sel cmd.Selection) error {
	count := 1
	if len(sel.Args) > 0 {
		n, err := strconv.Atoi(sel.Args[0])
		if err == nil {
			count = n
		}
	}

	h.state = stateRunning
	for i := 0; i < count && h.state == stateRunning; i++ {
		if !h.step() {
			break
		}
		if i < h.settings.MaxStepLines {
			h.displayPC()
		}
	}
	h.state = stateProcessingCommands
	return nil
}

func (h *Host) cmdRun(sel cmd.Selection) error {
	if len(sel.Args) > 0 {
		addr, err := parseAddr(sel.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.cpu.SetPC(addr)
	}

	h.printf("Running from $%04X. Press ctrl-C to break.\n", h.cpu.Reg.PC)

	h.state = stateRunning
	for h.state == stateRunning {
		if !h.step() {
			break
		}
	}
	h.state = stateProcessingCommands
	return nil
}

func (h *Host) cmdSet(sel cmd.Selection) error {
	if len(sel.Args) == 0 {
		h.println("Settings:")
		h.settings.Display(h.output)
		h.flush()
		return nil
	}
	if len(sel.Args) < 2 {
		h.printf("Syntax: set <var> <value>\n")
		return nil
	}

	key := strings.ToLower(sel.Args[0])
	valueStr := sel.Args[1]

	var err error
	switch h.settings.Kind(key) {
	case reflect.Invalid:
		h.printf("Setting '%s' not found.\n", key)
		return nil
	case reflect.Uint16:
		var v uint16
		v, err = parseAddr(valueStr)
		if err == nil {
			err = h.settings.Set(key, v)
		}
	default:
		var n int
		n, err = strconv.Atoi(valueStr)
		if err == nil {
			err = h.settings.Set(key, n)
		}
	}

	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.println("Setting updated.")
	return nil
}

// step executes a single CPU instruction. It reports a decode failure
// and stops the run/step loop if the opcode is unrecognized.
func (h *Host) step() bool {
	if err := h.cpu.Step(); err != nil {
		h.printf("%v\n", err)
		return false
	}
	if h.cpu.Halted {
		h.println("BRK encountered; CPU halted.")
		return false
	}
	return true
}

func (h *Host) cmdBreakpointList(sel cmd.Selection) error {
	h.println("Addr  Enabled")
	h.println("----- -------")
	for _, b := range h.dbg.GetBreakpoints() {
		h.printf("$%04X %v\n", b.Address, !b.Disabled)
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		h.printf("Syntax: breakpoint add <address>\n")
		return nil
	}
	addr, err := parseAddr(sel.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.dbg.AddBreakpoint(addr)
	h.printf("Breakpoint added at $%04X.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointRemove(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		h.printf("Syntax: breakpoint remove <address>\n")
		return nil
	}
	addr, err := parseAddr(sel.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	if h.dbg.GetBreakpoint(addr) == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}
	h.dbg.RemoveBreakpoint(addr)
	h.printf("Breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointEnable(sel cmd.Selection) error {
	return h.setBreakpointDisabled(sel, false)
}

func (h *Host) cmdBreakpointDisable(sel cmd.Selection) error {
	return h.setBreakpointDisabled(sel, true)
}

func (h *Host) setBreakpointDisabled(sel cmd.Selection, disabled bool) error {
	if len(sel.Args) < 1 {
		h.printf("Syntax: breakpoint enable|disable <address>\n")
		return nil
	}
	addr, err := parseAddr(sel.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	b := h.dbg.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}
	b.Disabled = disabled
	h.printf("Breakpoint at $%04X updated.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointList(sel cmd.Selection) error {
	h.println("Addr  Enabled  Value")
	h.println("----- -------  -----")
	for _, b := range h.dbg.GetDataBreakpoints() {
		if b.Conditional {
			h.printf("$%04X %-5v    $%02X\n", b.Address, !b.Disabled, b.Value)
		} else {
			h.printf("$%04X %-5v    <none>\n", b.Address, !b.Disabled)
		}
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		h.printf("Syntax: databreakpoint add <address> [<value>]\n")
		return nil
	}
	addr, err := parseAddr(sel.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	if len(sel.Args) > 1 {
		v, err := parseByte(sel.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.dbg.AddConditionalDataBreakpoint(addr, v)
		h.printf("Conditional data breakpoint added at $%04X for value $%02X.\n", addr, v)
	} else {
		h.dbg.AddDataBreakpoint(addr)
		h.printf("Data breakpoint added at $%04X.\n", addr)
	}
	return nil
}

func (h *Host) cmdDataBreakpointRemove(sel cmd.Selection) error {
	if len(sel.Args) < 1 {
		h.printf("Syntax: databreakpoint remove <address>\n")
		return nil
	}
	addr, err := parseAddr(sel.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	if h.dbg.GetDataBreakpoint(addr) == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}
	h.dbg.RemoveDataBreakpoint(addr)
	h.printf("Data breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointEnable(sel cmd.Selection) error {
	return h.setDataBreakpointDisabled(sel, false)
}

func (h *Host) cmdDataBreakpointDisable(sel cmd.Selection) error {
	return h.setDataBreakpointDisabled(sel, true)
}

func (h *Host) setDataBreakpointDisabled(sel cmd.Selection, disabled bool) error {
	if len(sel.Args) < 1 {
		h.printf("Syntax: databreakpoint enable|disable <address>\n")
		return nil
	}
	addr, err := parseAddr(sel.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	b := h.dbg.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}
	b.Disabled = disabled
	h.printf("Data breakpoint at $%04X updated.\n", addr)
	return nil
}

func (h *Host) cmdQuit(sel cmd.Selection) error {
	h.cpu.DetachDebugger()
	return errors.New("exiting debugger")
}

// OnBreakpoint implements cpu.BreakpointHandler.
func (h *Host) OnBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	h.state = stateBreakpoint
	h.printf("Breakpoint hit at $%04X.\n", b.Address)
	h.displayPC()
}

// OnDataBreakpoint implements cpu.BreakpointHandler.
func (h *Host) OnDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	h.state = stateBreakpoint
	h.printf("Data breakpoint hit on address $%04X.\n", b.Address)
	h.displayPC()
}

func (h *Host) disassemble(addr uint16) (line string, next uint16) {
	var buf [3]byte
	line, _ = disasm.Disassemble(h.cpu.Mem, addr)
	next = h.cpu.NextAddr(addr)
	b := buf[:h.cpu.GetInstruction(addr).Length]
	h.cpu.Mem.LoadBytes(addr, b)
	return fmt.Sprintf("%04X-   %-8s    %-15s", addr, codeString(b), line), next
}

func registerString(r *cpu.Registers) string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X SP=%02X PC=%04X %s",
		r.A, r.X, r.Y, r.SP, r.PC, flagString(r))
}

func flagString(r *cpu.Registers) string {
	flags := []struct {
		set  bool
		char byte
	}{
		{r.Sign, 'N'}, {r.Overflow, 'V'}, {true, '-'}, {r.Break, 'B'},
		{r.Decimal, 'D'}, {r.InterruptDisable, 'I'}, {r.Zero, 'Z'}, {r.Carry, 'C'},
	}
	buf := make([]byte, len(flags))
	for i, f := range flags {
		if f.set {
			buf[i] = f.char
		} else {
			buf[i] = '.'
		}
	}
	return string(buf)
}

func codeString(b []byte) string {
	switch len(b) {
	case 1:
		return fmt.Sprintf("%02X", b[0])
	case 2:
		return fmt.Sprintf("%02X %02X", b[0], b[1])
	case 3:
		return fmt.Sprintf("%02X %02X %02X", b[0], b[1], b[2])
	default:
		return ""
	}
}

// parseAddr parses a 16-bit address. A leading '$' or '0x' selects
// hexadecimal; otherwise the string is read as hex directly, since
// that's how addresses are always displayed in this debugger.
func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address '%s'", s)
	}
	return uint16(v), nil
}

func parseByte(s string) (byte, error) {
	v, err := parseAddr(s)
	if err != nil || v > 0xff {
		return 0, fmt.Errorf("invalid byte value '%s'", s)
	}
	return byte(v), nil
}
