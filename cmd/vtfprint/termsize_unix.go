//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package main

import (
	"os"

	"github.com/golang/glog"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

type TermSize struct {
	Rows, Cols     uint
	XPixel, YPixel uint
}

// GetTermSize asks the controlling terminal for its size in cells and, if
// the terminal reports it, in pixels.
func GetTermSize() (TermSize, error) {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err == nil {
		defer f.Close()
		sz, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
		if err == nil {
			return TermSize{Rows: uint(sz.Row), Cols: uint(sz.Col), XPixel: uint(sz.Xpixel), YPixel: uint(sz.Ypixel)}, nil
		}
		glog.V(2).Infof("TIOCGWINSZ on /dev/tty: %v", err)
	}
	cols, rows, err := terminal.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return TermSize{}, err
	}
	return TermSize{Rows: uint(rows), Cols: uint(cols)}, nil
}
