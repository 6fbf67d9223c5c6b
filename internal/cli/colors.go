// Package cli holds small terminal output helpers for the seed and
// benchmark binaries.
package cli

import (
	"fmt"
	"os"
)

const (
	ResetCode = "\033[0m"
	DimCode   = "\033[2m"
	Red       = "\033[31m"
	Green     = "\033[32m"
	Yellow    = "\033[33m"
	Blue      = "\033[34m"
	Purple    = "\033[35m"
	Cyan      = "\033[36m"
)

// enabled is a cached check for the NO_COLOR convention.
var enabled = func() bool {
	_, noColor := os.LookupEnv("NO_COLOR")
	return !noColor
}()

// Enabled reports whether output should carry ANSI colors.
func Enabled() bool {
	return enabled
}

// Style wraps text in a color code, or returns it untouched when colors
// are off.
func Style(text, colorCode string) string {
	if !enabled {
		return text
	}
	return fmt.Sprintf("%s%s%s", colorCode, text, ResetCode)
}

func CheckMark() string {
	return Style("✔", Green)
}

func CrossMark() string {
	return Style("✘", Red)
}

func Arrow() string {
	return Style("➜", Blue)
}
