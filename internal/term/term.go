// Package term holds the colours and layout helpers used for human-readable output.
package term

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// RuleWidth is the width of section separators.
const RuleWidth = 60

var (
	Bold    = color.New(color.Bold)
	Heading = color.New(color.Bold, color.FgBlue)
	Info    = color.New(color.FgBlue)
	Accent  = color.New(color.FgCyan)
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Failure = color.New(color.FgRed)
)

// DisableColor turns off colour for every style.
// Colour is already off when NO_COLOR is set or stdout is not a terminal.
func DisableColor() {
	color.NoColor = true
}

// Rule writes a full-width separator made of ch.
func Rule(w io.Writer, ch string) {
	_, _ = Bold.Fprintln(w, strings.Repeat(ch, RuleWidth))
}

// PadRight pads s with spaces to width terminal cells, accounting for wide characters.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Truncate shortens s to width terminal cells, ending with '...' when cut.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// Width returns the number of terminal cells s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Plural returns "s" when n is not 1.
func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
