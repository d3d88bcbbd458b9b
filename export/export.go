// Package export encodes decoded textures into formats other programs can
// display: PNG for stills, looping GIF for animations, and data URLs.
package export

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"time"

	"github.com/andybons/gogif"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"

	"github.com/panzi/pixbufloader-vtf/loader"
)

// Quantizer selects the palette generator used for GIF frames.
type Quantizer int

const (
	// QUANTIZER_MEDIAN_CUT uses go-quantize's median cut.
	QUANTIZER_MEDIAN_CUT Quantizer = iota
	// QUANTIZER_GOGIF uses gogif's median cut.
	QUANTIZER_GOGIF
)

var quantizerNames = map[string]Quantizer{
	"mediancut": QUANTIZER_MEDIAN_CUT,
	"gogif":     QUANTIZER_GOGIF,
}

// ParseQuantizer accepts "mediancut" or "gogif".
func ParseQuantizer(s string) (Quantizer, error) {
	if q, ok := quantizerNames[s]; ok {
		return q, nil
	}
	return 0, errors.Errorf("export: unknown quantizer %q", s)
}

func (q Quantizer) String() string {
	for name, v := range quantizerNames {
		if v == q {
			return name
		}
	}
	return "bad value"
}

// maxColors leaves one palette slot for transparency.
const maxColors = 255

// EncodePNG writes m as PNG.
func EncodePNG(w io.Writer, m image.Image) error {
	if err := png.Encode(w, m); err != nil {
		return errors.Wrap(err, "export: encoding png")
	}
	return nil
}

// palette computes at most maxColors colors for m, plus color.Transparent
// in slot 0.
func palette(m image.Image, q Quantizer) color.Palette {
	var p color.Palette
	switch q {
	case QUANTIZER_GOGIF:
		// gogif only quantizes into a paletted image.
		tmp := image.NewPaletted(m.Bounds(), nil)
		(&gogif.MedianCutQuantizer{NumColor: maxColors}).Quantize(tmp, m.Bounds(), m, m.Bounds().Min)
		p = tmp.Palette
	default:
		mc := quantize.MedianCutQuantizer{}
		p = mc.Quantize(make(color.Palette, 0, maxColors), m)
	}
	return append(color.Palette{color.Transparent}, p...)
}

// delay converts a frame duration to GIF's 100ths of a second.
func delay(d time.Duration) int {
	cs := int(d / (10 * time.Millisecond))
	if cs < 1 {
		cs = 1
	}
	return cs
}

// EncodeGIF writes anim as an animated GIF, looping forever if anim.Loop is
// set.
func EncodeGIF(w io.Writer, anim *loader.Animation, q Quantizer) error {
	if anim == nil || len(anim.Frames) == 0 {
		return errors.New("export: animation has no frames")
	}
	g := &gif.GIF{
		Config: image.Config{Width: anim.Width, Height: anim.Height},
	}
	if !anim.Loop {
		g.LoopCount = -1
	}
	for _, m := range anim.Frames {
		pm := image.NewPaletted(m.Bounds(), palette(m, q))
		draw.Draw(pm, m.Bounds(), m, m.Bounds().Min, draw.Over)
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, delay(anim.FrameDuration))
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	g.BackgroundIndex = 0
	if err := gif.EncodeAll(w, g); err != nil {
		return errors.Wrap(err, "export: encoding gif")
	}
	return nil
}

// Encode writes whichever of still and anim is set: PNG for a still, GIF
// for an animation. It returns the MIME type written.
func Encode(w io.Writer, still *loader.Still, anim *loader.Animation, q Quantizer) (string, error) {
	switch {
	case anim != nil:
		return "image/gif", EncodeGIF(w, anim, q)
	case still != nil:
		return "image/png", EncodePNG(w, still.Image)
	}
	return "", errors.New("export: nothing to encode")
}

// DataURL returns m as a base64 PNG data URL.
func DataURL(m image.Image) (string, error) {
	buf := &bytes.Buffer{}
	if err := EncodePNG(buf, m); err != nil {
		return "", err
	}
	b, err := dataurl.New(buf.Bytes(), "image/png").MarshalText()
	if err != nil {
		return "", errors.Wrap(err, "export: encoding data url")
	}
	return string(b), nil
}
