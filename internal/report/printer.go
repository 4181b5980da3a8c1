// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders the agent's user-facing terminal output: the
// [AI-DEBUG] log lines, the diagnosis block, and the suggested-command
// listing. Styling degrades to plain text when the writer is not a
// terminal.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	infoPrefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))  // cyan
	warnPrefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))  // yellow
	errPrefixStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))  // red
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("5")). // magenta
			Bold(true)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
)

// Printer writes the agent's human-facing output.
//
// Thread Safety:
//
//	Printer is not synchronized; the whole diagnostic cycle runs on one
//	goroutine.
type Printer struct {
	out    io.Writer
	styled bool
}

// NewPrinter creates a Printer for w. Color is enabled only when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{out: w, styled: styled}
}

// NewPlainPrinter creates a Printer that never styles, for tests and
// piped output.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{out: w}
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

// Info prints an [AI-DEBUG] informational line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(infoPrefixStyle, "[AI-DEBUG]"), fmt.Sprintf(format, args...))
}

// Warn prints an [AI-DEBUG WARN] line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(warnPrefixStyle, "[AI-DEBUG WARN]"), fmt.Sprintf(format, args...))
}

// Error prints an [AI-DEBUG ERROR] line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(errPrefixStyle, "[AI-DEBUG ERROR]"), fmt.Sprintf(format, args...))
}

// Header prints the banner opening the diagnosis block.
func (p *Printer) Header(title string) {
	fmt.Fprintf(p.out, "\n%s\n", p.render(headerStyle, "=== "+title+" ==="))
}

// Footer closes the diagnosis block.
func (p *Printer) Footer() {
	fmt.Fprintf(p.out, "%s\n\n", p.render(headerStyle, "======================="))
}

// Field prints a bold label followed by its value.
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.out, "%s %s\n", p.render(labelStyle, label+":"), value)
}

// List prints a 1-based enumeration of items.
func (p *Printer) List(title string, items []string) {
	fmt.Fprintf(p.out, "\n%s\n", p.render(warnPrefixStyle, title+":"))
	for i, item := range items {
		fmt.Fprintf(p.out, " %d. %s\n", i+1, item)
	}
}

// Command echoes a command immediately before it runs.
func (p *Printer) Command(cmd string) {
	fmt.Fprintf(p.out, "-> %s\n", p.render(commandStyle, cmd))
}

// Prompt writes a confirmation prompt without a trailing newline.
func (p *Printer) Prompt(text string) {
	fmt.Fprintf(p.out, "%s ", p.render(warnPrefixStyle, text+" [y/N]:"))
}
