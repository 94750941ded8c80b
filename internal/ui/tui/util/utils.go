package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateString cuts a string to fit within maxWidth visual width
func TruncateString(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	width := 0
	for i, r := range s {
		charWidth := runewidth.RuneWidth(r)
		// Check if adding this rune would exceed maxWidth
		if width+charWidth > maxWidth-3 { // Reserve space for "..."
			return s[:i] + "..."
		}
		width += charWidth
	}
	return s
}

// PadRight pads s with spaces up to the visual width
func PadRight(s string, width int) string {
	visual := runewidth.StringWidth(s)
	if visual >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visual)
}
