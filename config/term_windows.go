//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
	"golang.org/x/term"
)

const enableVirtualTerminalProcessing uint32 = 0x4

// EnableColorOutput reports whether stream is a terminal able to show colors
// and switches Windows console into VT100 mode. Consoles before Windows 10
// do not understand escape sequences.
func EnableColorOutput(stream *os.File) bool {
	if stream == nil || !term.IsTerminal(int(stream.Fd())) || !windows10() {
		return false
	}

	var mode uint32
	h := windows.Handle(stream.Fd())
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(h, mode|enableVirtualTerminalProcessing) == nil
}

func windows10() bool {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue("CurrentMajorVersionNumber")
	return err == nil && v >= 10
}
