//go:build !windows

package output

import (
	"syscall"
	"unsafe"
)

// winsize struct for ioctl TIOCGWINSZ
type winsize struct {
	Row    uint16
	Col    uint16
	Xpixel uint16
	Ypixel uint16
}

// probeTerminalWidth asks the tty for its column count
func probeTerminalWidth() int {
	ws := &winsize{}
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL,
		uintptr(syscall.Stdout),
		uintptr(syscall.TIOCGWINSZ),
		uintptr(unsafe.Pointer(ws)))
	if errno == 0 && ws.Col > 0 {
		return int(ws.Col)
	}
	return defaultWidth
}
