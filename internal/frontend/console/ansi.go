package console

import (
	"fmt"
	"regexp"
	"strings"
)

// SGR escape sequences used by the renderers.
const (
	Reset = "\x1b[0m"
	Bold  = "\x1b[1m"
	Dim   = "\x1b[2m"

	Green   = "\x1b[32m"
	Yellow  = "\x1b[33m"
	Blue    = "\x1b[34m"
	Magenta = "\x1b[35m"
	Cyan    = "\x1b[36m"
	White   = "\x1b[37m"

	BrightRed     = "\x1b[91m"
	BrightGreen   = "\x1b[92m"
	BrightYellow  = "\x1b[93m"
	BrightMagenta = "\x1b[95m"
	BrightCyan    = "\x1b[96m"
	BrightWhite   = "\x1b[97m"
)

var sgr = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Colorize wraps text in color and resets afterwards.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf is Colorize over fmt.Sprintf.
func Colorf(color, format string, args ...any) string {
	return Colorize(color, fmt.Sprintf(format, args...))
}

// StripANSI removes every SGR sequence, for output that is not a terminal.
func StripANSI(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	return sgr.ReplaceAllString(s, "")
}

// bar draws a fixed-width gauge of v out of limit.
func bar(v, limit float64, width int) string {
	if limit <= 0 {
		limit = 1
	}
	filled := max(0, min(width, int(v/limit*float64(width))))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
