//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// EnableColorOutput reports whether stream is a terminal able to show colors.
func EnableColorOutput(stream *os.File) bool {
	return stream != nil && term.IsTerminal(int(stream.Fd()))
}
