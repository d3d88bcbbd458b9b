package loader_test

import (
	"bytes"
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/panzi/pixbufloader-vtf/loader"
	"github.com/panzi/pixbufloader-vtf/ttesting"
	"github.com/panzi/pixbufloader-vtf/vtf"
	"github.com/panzi/pixbufloader-vtf/vtf/vtftest"
)

func TestDecodeSingleFrame(t *testing.T) {
	b := vtftest.New(4, 2).Build()

	still, err := loader.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ttesting.AssertEqualInt(t, "width", still.Image.Bounds().Dx(), 4)
	ttesting.AssertEqualInt(t, "height", still.Image.Bounds().Dy(), 2)
	ttesting.AssertEqualBytes(t, "pixel", still.Image.Pix[:4], []byte{1, 1, 1, 1})

	anim, err := loader.DecodeAnimated(b)
	if err != nil {
		t.Fatalf("DecodeAnimated: %v", err)
	}
	ttesting.AssertEqualInt(t, "animation frames", len(anim.Frames), 1)
	ttesting.AssertEqualBool(t, "loop", anim.Loop, true)
}

func TestDecodeAnimatedFromStartFrame(t *testing.T) {
	bld := vtftest.New(4, 4)
	bld.Frames = 5
	bld.StartFrame = 2
	b := bld.Build()

	anim, err := loader.DecodeAnimated(b)
	if err != nil {
		t.Fatalf("DecodeAnimated: %v", err)
	}
	ttesting.AssertEqualInt(t, "frames", len(anim.Frames), 3)
	for i, m := range anim.Frames {
		ttesting.AssertEqualInt(t, "frame order", int(m.Pix[0]), 2+i+1)
	}
	ttesting.AssertEqualBool(t, "loop", anim.Loop, true)
	if anim.FrameDuration != 250*time.Millisecond {
		t.Errorf("frame duration %v; want 250ms", anim.FrameDuration)
	}

	still, err := loader.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ttesting.AssertEqualInt(t, "still uses last frame", int(still.Image.Pix[0]), 5)
}

func TestDecodeBadSignature(t *testing.T) {
	b := vtftest.New(4, 4).Build()
	b[0] = 'X'
	_, err := loader.Decode(b)
	if !errors.Is(err, loader.ErrCorruptContainer) {
		t.Fatalf("got %v; want corrupt container", err)
	}
	ttesting.AssertEqualString(t, "message", err.Error(), "File signature does not match 'VTF'.")
	ttesting.AssertEqualString(t, "message matches parser", err.Error(), vtf.LastError())
}

func TestDecodeRasterLimit(t *testing.T) {
	loader.SetLimits(loader.Limits{MaxRasterBytes: 16})
	defer loader.SetLimits(loader.DefaultLimits)

	_, err := loader.Decode(vtftest.New(4, 4).Build())
	if !errors.Is(err, loader.ErrInsufficientMemory) {
		t.Fatalf("got %v; want insufficient memory", err)
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	bld := vtftest.New(4, 4)
	bld.Format = vtf.IMAGE_FORMAT_NV_DST16
	_, err := loader.Decode(bld.Build())
	if !errors.Is(err, loader.ErrConversionFailure) {
		t.Fatalf("got %v; want conversion failure", err)
	}
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := loader.DecodeFile(filepath.Join(t.TempDir(), "missing.vtf"))
	if !errors.Is(err, loader.ErrIoFailure) {
		t.Fatalf("got %v; want i/o failure", err)
	}
}

func TestAttributes(t *testing.T) {
	bld := vtftest.New(8, 8)
	bld.MinorVersion = 4
	bld.Flags = vtf.TEXTUREFLAGS_TRILINEAR | vtf.TEXTUREFLAGS_ANISOTROPIC
	bld.Format = vtf.IMAGE_FORMAT_DXT5
	bld.Mipmaps = 2

	_, attrs, err := loader.Inspect(bld.Build())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	want := map[string]string{
		"Version":        "7.4",
		"Format":         "DXT5",
		"Depth":          "1",
		"Bumpmap Scale":  "1",
		"Reflectivity":   "0.5, 0.25, 0.125",
		"Faces":          "1",
		"Mipmaps":        "2",
		"Frames":         "1",
		"Start Frame":    "0",
		"Flags":          "TRILINEAR, ANISOTROPIC",
		"Bits Per Pixel": "8",
		"Alpha Channel":  "True",
		"Compressed":     "True",
	}
	ttesting.AssertEqualInt(t, "attribute count", len(attrs), len(want))
	for k, v := range want {
		ttesting.AssertEqualString(t, k, attrs[k], v)
	}
}

func TestAttributesThumbnail(t *testing.T) {
	bld := vtftest.New(16, 16)
	bld.ThumbnailFormat = vtf.IMAGE_FORMAT_DXT1
	bld.ThumbnailWidth = 8
	bld.ThumbnailHeight = 4

	tex, attrs, err := loader.Inspect(bld.Build())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	ttesting.AssertEqualString(t, "Thumbnail Format", attrs["Thumbnail Format"], "DXT1")
	ttesting.AssertEqualString(t, "Thumbnail Size", attrs["Thumbnail Size"], "8x4")
	ttesting.AssertEqualString(t, "Thumbnail Bits Per Pixel", attrs["Thumbnail Bits Per Pixel"], "4")
	ttesting.AssertEqualString(t, "Thumbnail Alpha Channel", attrs["Thumbnail Alpha Channel"], "False")
	ttesting.AssertEqualString(t, "Thumbnail Compressed", attrs["Thumbnail Compressed"], "True")

	thumb, err := tex.Thumbnail()
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	ttesting.AssertEqualInt(t, "thumbnail width", thumb.Bounds().Dx(), 8)
}

func TestRegisteredWithImagePackage(t *testing.T) {
	b := vtftest.New(6, 3).Build()

	cfg, name, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	ttesting.AssertEqualString(t, "format", name, "vtf")
	ttesting.AssertEqualInt(t, "width", cfg.Width, 6)
	ttesting.AssertEqualInt(t, "height", cfg.Height, 3)

	m, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ttesting.AssertEqualInt(t, "decoded width", m.Bounds().Dx(), 6)
}

func TestFormatMatch(t *testing.T) {
	ttesting.AssertEqualInt(t, "vtf", loader.Format.Match([]byte("VTF\x00\x07")), 100)
	ttesting.AssertEqualInt(t, "nonzero fourth byte", loader.Format.Match([]byte("VTF\x01")), 0)
	ttesting.AssertEqualInt(t, "short", loader.Format.Match([]byte("VT")), 0)
	ttesting.AssertEqualBool(t, "not thread safe", loader.Format.Flags&loader.FORMAT_THREADSAFE != 0, false)

	p := loader.FormatInfo{Signature: []loader.Pattern{{Prefix: "*ab", Mask: "*x ", Relevance: 50}}}
	ttesting.AssertEqualInt(t, "anywhere", p.Match([]byte("...zb")), 50)
	ttesting.AssertEqualInt(t, "anywhere miss", p.Match([]byte("...za")), 0)
}

func TestDecodeOversizedHeader(t *testing.T) {
	_, err := loader.Decode(vtftest.Oversized())
	if !errors.Is(err, loader.ErrCorruptContainer) {
		t.Fatalf("got %v; want a corrupt container error", err)
	}
	if errors.Is(err, loader.ErrUnhandledFault) {
		t.Errorf("parse failure reported as a fault: %v", err)
	}
}
