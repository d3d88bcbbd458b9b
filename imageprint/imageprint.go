// Package imageprint prints decoded textures on a terminal. UNSUPPORTED
// debug package.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"

	"github.com/gookit/color"
	"github.com/pkg/errors"
)

// Mode selects how pixels are drawn.
type Mode int

const (
	MODE_24BIT Mode = iota
	MODE_256COLOR
	MODE_NOCOLOR
	MODE_ITERM
	MODE_RASTERM
)

var modeNames = map[string]Mode{
	"24bit":   MODE_24BIT,
	"256":     MODE_256COLOR,
	"none":    MODE_NOCOLOR,
	"iterm":   MODE_ITERM,
	"rasterm": MODE_RASTERM,
}

// ParseMode maps a flag value such as "24bit" or "rasterm" to a Mode.
func ParseMode(s string) (Mode, error) {
	if m, ok := modeNames[s]; ok {
		return m, nil
	}
	return 0, errors.Errorf("imageprint: unknown mode %q", s)
}

func (m Mode) String() string {
	for name, v := range modeNames {
		if v == m {
			return name
		}
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Printer draws images to W.
type Printer struct {
	W    io.Writer
	Mode Mode
	// Blanks draws colored blanks instead of ascii art shading.
	Blanks bool
	// Name is passed to iTerm as the file name.
	Name string
}

// Print draws i using p.Mode.
func (p *Printer) Print(i image.Image) error {
	switch p.Mode {
	case MODE_RASTERM:
		return printRasTerm(p.W, i)
	case MODE_ITERM:
		return p.printITerm(i)
	}
	b := i.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p.shade(i.At(x, y))
		}
		if p.Mode != MODE_NOCOLOR {
			fmt.Fprint(p.W, "\x1b[0m")
		}
		if _, err := fmt.Fprint(p.W, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) shade(col ic.Color) {
	c := ic.NRGBAModel.Convert(col).(ic.NRGBA)
	if c.A == 0 {
		if p.Mode == MODE_NOCOLOR {
			fmt.Fprint(p.W, "  ")
		} else {
			fmt.Fprint(p.W, "\x1b[0m  ")
		}
		return
	}

	cell := "  "
	if !p.Blanks {
		switch a := (int(c.R) + int(c.G) + int(c.B)) / 3; {
		case a < 32:
			cell = ".."
		case a < 64:
			cell = "--"
		case a < 128:
			cell = "=="
		default:
			cell = "##"
		}
	}

	switch p.Mode {
	case MODE_NOCOLOR:
		fmt.Fprint(p.W, cell)
	case MODE_256COLOR:
		fmt.Fprint(p.W, color.RGB(c.R, c.G, c.B, true).C256().Sprint(cell))
	default:
		fmt.Fprintf(p.W, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", c.R, c.G, c.B, cell)
	}
}

// printITerm draws an image using iTerm2's inline image escape sequence.
//
// https://www.iterm2.com/documentation-images.html
func (p *Printer) printITerm(i image.Image) error {
	name := base64.StdEncoding.EncodeToString([]byte(p.Name))
	b := &bytes.Buffer{}
	enc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(enc, i); err != nil {
		return errors.Wrap(err, "imageprint: encoding png for iterm")
	}
	enc.Close()
	_, err := fmt.Fprintf(p.W, "\n\033]1337;File=name=%s;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Dx(), i.Bounds().Dy(), b.String())
	return err
}
