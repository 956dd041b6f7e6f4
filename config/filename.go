package config

import (
	"os"
	"strings"
	"unicode"
)

// unnamed replaces names which are empty after cleaning.
const unnamed = "_unnamed_"

// reservedNames cannot be used as file names on Windows regardless of
// extension. Workbooks produced here often travel to Windows desktops so
// the names are avoided everywhere.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// CleanFileName turns text (sheet or data source caption, expanded output
// name template) into a single file name segment: characters not allowed
// by the platform and control characters are dropped, leading dots and
// trailing dots and spaces are trimmed, reserved device names are prefixed.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if invalidNameRune(sym) || unicode.IsControl(sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(out, ".")
	out = strings.TrimRight(out, ". ")
	if len(out) == 0 {
		return unnamed
	}
	stem, _, _ := strings.Cut(out, ".")
	if reservedNames[strings.ToUpper(strings.TrimSpace(stem))] {
		out = "_" + out
	}
	return out
}

// colorAllowed honors NO_COLOR convention (https://no-color.org).
func colorAllowed() bool {
	return os.Getenv("NO_COLOR") == ""
}
