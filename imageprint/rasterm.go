//go:build !windows

package imageprint

import (
	"fmt"
	"image"
	"io"

	"github.com/BourgeoisBear/rasterm"
	"github.com/andybons/gogif"
	"github.com/pkg/errors"
)

// printRasTerm draws an image using the kitty, iTerm or sixel protocol,
// whichever the terminal supports.
func printRasTerm(w io.Writer, i image.Image) error {
	if rasterm.IsTermKitty() {
		if err := (rasterm.Settings{}).KittyWriteImage(w, i); err != nil {
			return errors.Wrap(err, "imageprint: kitty")
		}
		fmt.Fprint(w, "\n")
		return nil
	}
	if rasterm.IsTermItermWez() {
		if err := (rasterm.Settings{}).ItermWriteImage(w, i); err != nil {
			return errors.Wrap(err, "imageprint: iterm")
		}
		fmt.Fprint(w, "\n")
		return nil
	}
	if capable, err := rasterm.IsSixelCapable(); capable && err == nil {
		paletted := image.NewPaletted(i.Bounds(), nil)
		quantizer := gogif.MedianCutQuantizer{NumColor: 64}
		quantizer.Quantize(paletted, i.Bounds(), i, image.Point{})

		if err := (rasterm.Settings{}).SixelWriteImage(w, paletted); err != nil {
			return errors.Wrap(err, "imageprint: sixel")
		}
		fmt.Fprint(w, "\n")
		return nil
	}
	return errors.New("imageprint: terminal supports neither kitty, iterm nor sixel images")
}
