//go:build windows

package config

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// invalidNameRune reports characters which cannot appear in file name.
func invalidNameRune(sym rune) bool {
	return sym < ' ' || strings.ContainsRune(`<>":/\|?*`, sym)
}

// EnableColorOutput checks if colorized output is possible and enables VT100
// sequence processing in Windows console.
func EnableColorOutput(stream *os.File) bool {
	if !colorAllowed() || !term.IsTerminal(int(stream.Fd())) {
		return false
	}

	h := windows.Handle(stream.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
