package util

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "routine.mp4", 20, "routine.mp4"},
		{"exact", "routine.mp4", 11, "routine.mp4"},
		{"ascii", "a-very-long-dance-routine.mp4", 12, "a-very-lo..."},
		{"wide runes", "練習影片練習影片.mp4", 10, "練習影..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateString(tt.input, tt.maxWidth)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, runewidth.StringWidth(got), tt.maxWidth)
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", PadRight("ab", 4))
	assert.Equal(t, "練習", PadRight("練習", 3+1))
	assert.Equal(t, "abcdef", PadRight("abcdef", 3))
}
