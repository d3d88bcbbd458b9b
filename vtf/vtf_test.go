package vtf_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/panzi/pixbufloader-vtf/ttesting"
	"github.com/panzi/pixbufloader-vtf/vtf"
	"github.com/panzi/pixbufloader-vtf/vtf/vtftest"
)

func TestLoadVersions(t *testing.T) {
	for minor := 0; minor <= 5; minor++ {
		t.Run(fmt.Sprintf("7.%d", minor), func(t *testing.T) {
			b := vtftest.New(16, 8)
			b.MinorVersion = minor
			b.Frames = 3
			b.Mipmaps = 3
			b.ThumbnailFormat = vtf.IMAGE_FORMAT_DXT1
			b.ThumbnailWidth = 4
			b.ThumbnailHeight = 2

			f, err := vtf.Load(b.Build())
			if err != nil {
				t.Fatalf("failed to load: %v", err)
			}
			ttesting.AssertEqualInt(t, "width", f.Width(), 16)
			ttesting.AssertEqualInt(t, "height", f.Height(), 8)
			ttesting.AssertEqualInt(t, "depth", f.Depth(), 1)
			ttesting.AssertEqualInt(t, "frames", f.FrameCount(), 3)
			ttesting.AssertEqualInt(t, "faces", f.FaceCount(), 1)
			ttesting.AssertEqualInt(t, "mipmaps", f.MipmapCount(), 3)
			ttesting.AssertEqualInt(t, "major", f.MajorVersion(), 7)
			ttesting.AssertEqualInt(t, "minor", f.MinorVersion(), minor)
			ttesting.AssertEqualBool(t, "thumbnail", f.HasThumbnail(), true)
			ttesting.AssertEqualInt(t, "thumbnail size", len(f.ThumbnailData()), 8)
			if f.Reflectivity() != [3]float32{0.5, 0.25, 0.125} {
				t.Errorf("reflectivity: got %v", f.Reflectivity())
			}
		})
	}
}

func TestLoadBadSignature(t *testing.T) {
	_, err := vtf.Load([]byte("PNG\x00 and some more bytes to go past the header size, surely........"))
	if err == nil {
		t.Fatalf("loading a non-vtf buffer succeeded")
	}
	ttesting.AssertEqualString(t, "last error matches returned error", vtf.LastError(), err.Error())
	if !strings.Contains(err.Error(), "signature") {
		t.Errorf("got %q; want a signature complaint", err)
	}
}

func TestLoadEmpty(t *testing.T) {
	if _, err := vtf.Load(nil); err == nil {
		t.Fatalf("loading an empty buffer succeeded")
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]func(b *vtftest.Builder){
		"zero frames":       func(b *vtftest.Builder) { b.Frames = 0 },
		"zero mipmaps":      func(b *vtftest.Builder) { b.Mipmaps = 0 },
		"too many mipmaps":  func(b *vtftest.Builder) { b.Mipmaps = 9 },
		"bad format":        func(b *vtftest.Builder) { b.Format = vtf.ImageFormat(99) },
		"bad version":       func(b *vtftest.Builder) { b.MinorVersion = 6 },
		"bad thumbnail fmt": func(b *vtftest.Builder) { b.ThumbnailFormat = 77; b.ThumbnailWidth = 1; b.ThumbnailHeight = 1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := vtftest.New(8, 8)
			mutate(b)
			if _, err := vtf.Load(b.Build()); err == nil {
				t.Errorf("load succeeded; want error")
			}
		})
	}
}

func TestLoadTruncated(t *testing.T) {
	for _, minor := range []int{1, 4} {
		b := vtftest.New(8, 8)
		b.MinorVersion = minor
		full := b.Build()
		_, err := vtf.Load(full[:len(full)-1])
		if err == nil {
			t.Fatalf("7.%d: loading truncated file succeeded", minor)
		}
		if !strings.Contains(err.Error(), "truncated") {
			t.Errorf("7.%d: got %q; want truncation error", minor, err)
		}
	}
}

func TestDataAddressing(t *testing.T) {
	b := vtftest.New(8, 4)
	b.MinorVersion = 4
	b.Frames = 2
	b.Mipmaps = 2
	b.Flags = vtf.TEXTUREFLAGS_ENVMAP
	b.Fill = func(frame, face, slice, mip int, buf []byte) {
		for i := range buf {
			buf[i] = byte(frame<<6 | face<<3 | mip)
		}
	}
	f, err := vtf.Load(b.Build())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	ttesting.AssertEqualInt(t, "faces with spheremap", f.FaceCount(), 7)

	for frame := 0; frame < 2; frame++ {
		for face := 0; face < 7; face++ {
			for mip := 0; mip < 2; mip++ {
				d, err := f.Data(frame, face, 0, mip)
				if err != nil {
					t.Fatalf("Data(%d, %d, 0, %d): %v", frame, face, mip, err)
				}
				w, h, _ := vtf.ComputeMipmapDimensions(8, 4, 1, mip)
				want := bytes.Repeat([]byte{byte(frame<<6 | face<<3 | mip)}, w*h*4)
				ttesting.AssertEqualBytes(t, fmt.Sprintf("frame %d face %d mip %d", frame, face, mip), d, want)
			}
		}
	}

	if _, err := f.Data(2, 0, 0, 0); err == nil {
		t.Errorf("out of range frame accepted")
	}
	if _, err := f.Data(0, 0, 1, 0); err == nil {
		t.Errorf("out of range slice accepted")
	}
}

func TestEnvmapFaces75(t *testing.T) {
	b := vtftest.New(4, 4)
	b.MinorVersion = 5
	b.Flags = vtf.TEXTUREFLAGS_ENVMAP
	f, err := vtf.Load(b.Build())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	ttesting.AssertEqualInt(t, "faces without spheremap", f.FaceCount(), 6)
}

func TestVolumeSlices(t *testing.T) {
	b := vtftest.New(4, 4)
	b.Depth = 4
	b.Fill = func(frame, face, slice, mip int, buf []byte) {
		for i := range buf {
			buf[i] = byte(slice + 1)
		}
	}
	f, err := vtf.Load(b.Build())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	ttesting.AssertEqualInt(t, "depth", f.Depth(), 4)
	d, err := f.Data(0, 0, 2, 0)
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	ttesting.AssertEqualBytes(t, "third slice", d, bytes.Repeat([]byte{3}, 64))
}

func TestResourceDirectory(t *testing.T) {
	b := vtftest.New(4, 4)
	b.MinorVersion = 5
	b.ExtraResources = []vtf.Resource{{Tag: vtf.RSRC_CRC, Flags: vtf.RSRCF_HAS_NO_DATA_CHUNK, Data: 0xDEADBEEF}}
	f, err := vtf.Load(b.Build())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	res := f.Resources()
	ttesting.AssertEqualInt(t, "resource count", len(res), 2)
	if res[1].Tag != vtf.RSRC_CRC || res[1].HasData() || res[1].Data != 0xDEADBEEF {
		t.Errorf("crc resource: got %+v", res[1])
	}
	ttesting.AssertEqualBool(t, "no thumbnail", f.HasThumbnail(), false)
}

func TestFlagNames(t *testing.T) {
	flags := vtf.TEXTUREFLAGS_TRILINEAR | vtf.TEXTUREFLAGS_ANISOTROPIC | vtf.TEXTUREFLAGS_UNUSED7
	ttesting.AssertEqualString(t, "names", flags.String(), "TRILINEAR, ANISOTROPIC, UNUSED7")
	ttesting.AssertEqualString(t, "empty", vtf.TextureFlags(0).String(), "")
}

func TestComputeImageSize(t *testing.T) {
	ttesting.AssertEqualInt(t, "dxt1 rounds up to blocks", vtf.ComputeImageSize(5, 3, 1, vtf.IMAGE_FORMAT_DXT1), 16)
	ttesting.AssertEqualInt(t, "dxt5 1x1", vtf.ComputeImageSize(1, 1, 1, vtf.IMAGE_FORMAT_DXT5), 16)
	ttesting.AssertEqualInt(t, "rgb888", vtf.ComputeImageSize(3, 3, 2, vtf.IMAGE_FORMAT_RGB888), 54)
	ttesting.AssertEqualInt(t, "mip count", vtf.ComputeMipmapCount(16, 8, 1), 5)
}

func TestLoadOversized(t *testing.T) {
	b := vtftest.Oversized()
	ttesting.AssertEqualInt(t, "fixture size", len(b), 80+16)

	f, err := vtf.Load(b)
	if err == nil {
		t.Fatalf("loaded %dx%dx%d texture from %d bytes", f.Width(), f.Height(), f.Depth(), len(b))
	}
	if !strings.Contains(err.Error(), "corrupt") {
		t.Errorf("got %q; want a corruption error", err)
	}
	ttesting.AssertEqualString(t, "last error", vtf.LastError(), err.Error())
}

func TestLoadDataSizeAtLimit(t *testing.T) {
	// 3 frames of 256x256 RGBA fit exactly; one byte less does not.
	b := vtftest.New(256, 256)
	b.Frames = 3
	full := b.Build()
	if _, err := vtf.Load(full); err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if _, err := vtf.Load(full[:len(full)-1]); err == nil {
		t.Errorf("loaded a file one byte short")
	}
}
