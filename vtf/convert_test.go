package vtf_test

import (
	"testing"

	"github.com/panzi/pixbufloader-vtf/ttesting"
	"github.com/panzi/pixbufloader-vtf/vtf"
)

func convert(t *testing.T, src []byte, w, h int, format vtf.ImageFormat) []byte {
	t.Helper()
	dst := make([]byte, w*h*4)
	if err := vtf.ConvertToRGBA8888(src, dst, w, h, format); err != nil {
		t.Fatalf("converting %s: %v", format, err)
	}
	return dst
}

func TestConvertUncompressed(t *testing.T) {
	cases := []struct {
		format vtf.ImageFormat
		src    []byte
		want   []byte
	}{
		{vtf.IMAGE_FORMAT_RGBA8888, []byte{1, 2, 3, 4}, []byte{1, 2, 3, 4}},
		{vtf.IMAGE_FORMAT_ABGR8888, []byte{1, 2, 3, 4}, []byte{4, 3, 2, 1}},
		{vtf.IMAGE_FORMAT_ARGB8888, []byte{1, 2, 3, 4}, []byte{2, 3, 4, 1}},
		{vtf.IMAGE_FORMAT_BGRA8888, []byte{1, 2, 3, 4}, []byte{3, 2, 1, 4}},
		{vtf.IMAGE_FORMAT_BGRX8888, []byte{1, 2, 3, 4}, []byte{3, 2, 1, 255}},
		{vtf.IMAGE_FORMAT_RGB888, []byte{1, 2, 3}, []byte{1, 2, 3, 255}},
		{vtf.IMAGE_FORMAT_BGR888, []byte{1, 2, 3}, []byte{3, 2, 1, 255}},
		{vtf.IMAGE_FORMAT_I8, []byte{9}, []byte{9, 9, 9, 255}},
		{vtf.IMAGE_FORMAT_IA88, []byte{9, 8}, []byte{9, 9, 9, 8}},
		{vtf.IMAGE_FORMAT_A8, []byte{7}, []byte{0, 0, 0, 7}},
		{vtf.IMAGE_FORMAT_UV88, []byte{5, 6}, []byte{5, 6, 0, 255}},
		{vtf.IMAGE_FORMAT_RGB565, []byte{0x1F, 0x00}, []byte{255, 0, 0, 255}},
		{vtf.IMAGE_FORMAT_BGR565, []byte{0x1F, 0x00}, []byte{0, 0, 255, 255}},
		{vtf.IMAGE_FORMAT_BGRA5551, []byte{0x00, 0xFC}, []byte{255, 0, 0, 255}},
		{vtf.IMAGE_FORMAT_BGRA5551, []byte{0x1F, 0x00}, []byte{0, 0, 255, 0}},
		{vtf.IMAGE_FORMAT_BGRA4444, []byte{0x00, 0xFF}, []byte{255, 0, 0, 255}},
		{vtf.IMAGE_FORMAT_RGB888_BLUESCREEN, []byte{0, 0, 255}, []byte{0, 0, 0, 0}},
		{vtf.IMAGE_FORMAT_RGB888_BLUESCREEN, []byte{0, 1, 255}, []byte{0, 1, 255, 255}},
		{vtf.IMAGE_FORMAT_BGR888_BLUESCREEN, []byte{255, 0, 0}, []byte{0, 0, 0, 0}},
		{vtf.IMAGE_FORMAT_RGBA16161616, []byte{0xFF, 0xFF, 0x00, 0x80, 0, 0, 0xFF, 0xFF}, []byte{255, 128, 0, 255}},
		// 1.0, 0.5, 2.0 (clamped), 0.0
		{vtf.IMAGE_FORMAT_RGBA16161616F, []byte{0x00, 0x3C, 0x00, 0x38, 0x00, 0x40, 0, 0}, []byte{255, 128, 255, 0}},
		{vtf.IMAGE_FORMAT_R32F, []byte{0x00, 0x00, 0x80, 0x3F}, []byte{255, 255, 255, 255}},
	}
	for _, c := range cases {
		got := convert(t, c.src, 1, 1, c.format)
		ttesting.AssertEqualBytes(t, c.format.String(), got, c.want)
	}
}

// dxt1 builds an 8 byte color block from two rgb565 endpoints and the first
// index byte; the remaining texels use index 0.
func dxt1(c0, c1 uint16, idx byte) []byte {
	return []byte{byte(c0), byte(c0 >> 8), byte(c1), byte(c1 >> 8), idx, 0, 0, 0}
}

func TestConvertDXT1(t *testing.T) {
	// red, blue; texels 0..3 use indices 0, 1, 2, 3
	got := convert(t, dxt1(0xF800, 0x001F, 0xE4), 4, 4, vtf.IMAGE_FORMAT_DXT1)
	ttesting.AssertEqualBytes(t, "four color", got[:16], []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
		170, 0, 85, 255,
		85, 0, 170, 255,
	})
	ttesting.AssertEqualBytes(t, "second row uses index 0", got[16:20], []byte{255, 0, 0, 255})

	three := dxt1(0x001F, 0xF800, 0xE4)
	got = convert(t, three, 4, 4, vtf.IMAGE_FORMAT_DXT1)
	ttesting.AssertEqualBytes(t, "three color", got[:16], []byte{
		0, 0, 255, 255,
		255, 0, 0, 255,
		127, 0, 127, 255,
		0, 0, 0, 255,
	})
	got = convert(t, three, 4, 4, vtf.IMAGE_FORMAT_DXT1_ONEBITALPHA)
	ttesting.AssertEqualBytes(t, "punch through", got[12:16], []byte{0, 0, 0, 0})
}

func TestConvertDXTClipsPartialBlocks(t *testing.T) {
	block := []byte{0x00, 0xF8, 0x1F, 0x00, 0x44, 0, 0, 0}
	// index byte 0x44: texel 1 and 3 use index 1
	got := convert(t, block, 2, 2, vtf.IMAGE_FORMAT_DXT1)
	ttesting.AssertEqualBytes(t, "2x2", got, []byte{
		255, 0, 0, 255, 0, 0, 255, 255,
		255, 0, 0, 255, 255, 0, 0, 255,
	})
}

func TestConvertDXT3(t *testing.T) {
	src := append([]byte{0xF0, 0, 0, 0, 0, 0, 0, 0}, dxt1(0xF800, 0x001F, 0)...)
	got := convert(t, src, 4, 4, vtf.IMAGE_FORMAT_DXT3)
	ttesting.AssertEqualInt(t, "texel 0 alpha", int(got[3]), 0)
	ttesting.AssertEqualInt(t, "texel 1 alpha", int(got[7]), 255)
	ttesting.AssertEqualInt(t, "texel 0 red", int(got[0]), 255)
}

func TestConvertDXT5(t *testing.T) {
	// alpha endpoints 255, 0; texel 0 uses alpha index 1
	src := append([]byte{255, 0, 1, 0, 0, 0, 0, 0}, dxt1(0x07E0, 0, 0)...)
	got := convert(t, src, 4, 4, vtf.IMAGE_FORMAT_DXT5)
	ttesting.AssertEqualBytes(t, "texel 0", got[:4], []byte{0, 255, 0, 0})
	ttesting.AssertEqualBytes(t, "texel 1", got[4:8], []byte{0, 255, 0, 255})
}

func TestConvertATI1N(t *testing.T) {
	got := convert(t, []byte{200, 100, 0, 0, 0, 0, 0, 0}, 4, 4, vtf.IMAGE_FORMAT_ATI1N)
	ttesting.AssertEqualBytes(t, "grey", got[:4], []byte{200, 200, 200, 255})
}

func TestConvertErrors(t *testing.T) {
	dst := make([]byte, 64)
	if err := vtf.ConvertToRGBA8888(make([]byte, 16), dst, 4, 4, vtf.IMAGE_FORMAT_P8); err == nil {
		t.Errorf("P8 conversion succeeded")
	}
	if err := vtf.ConvertToRGBA8888(make([]byte, 63), dst, 4, 4, vtf.IMAGE_FORMAT_RGBA8888); err == nil {
		t.Errorf("short source accepted")
	}
	if err := vtf.ConvertToRGBA8888(make([]byte, 64), dst[:60], 4, 4, vtf.IMAGE_FORMAT_RGBA8888); err == nil {
		t.Errorf("short destination accepted")
	}
	if err := vtf.ConvertToRGBA8888(nil, dst, 0, 4, vtf.IMAGE_FORMAT_RGBA8888); err == nil {
		t.Errorf("zero width accepted")
	}
}
