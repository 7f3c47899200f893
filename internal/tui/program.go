package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Prog holds a reference to the running Bubble Tea program so that timer
// goroutines (key repeat, notice expiry, speech) can post messages back
// into the event loop.
var Prog *tea.Program

// SetProgram sets the global Prog variable.
func SetProgram(p *tea.Program) {
	Prog = p
}

// send posts msg to the running program. It is a no-op before SetProgram.
// It must not be called from Update: Program.Send blocks until the event
// loop reads the message.
func send(msg tea.Msg) {
	if Prog != nil {
		Prog.Send(msg)
	}
}
