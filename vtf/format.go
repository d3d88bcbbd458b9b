package vtf

import (
	"fmt"
)

// ImageFormat is the on-disk pixel encoding of a texture's image data.
//
// Implementation detail: iota is not used primarily for easier referencing in
// case of an error; the values are stored verbatim in the file header.
type ImageFormat int32

const (
	IMAGE_FORMAT_NONE ImageFormat = -1

	IMAGE_FORMAT_RGBA8888          ImageFormat = 0
	IMAGE_FORMAT_ABGR8888          ImageFormat = 1
	IMAGE_FORMAT_RGB888            ImageFormat = 2
	IMAGE_FORMAT_BGR888            ImageFormat = 3
	IMAGE_FORMAT_RGB565            ImageFormat = 4
	IMAGE_FORMAT_I8                ImageFormat = 5
	IMAGE_FORMAT_IA88              ImageFormat = 6
	IMAGE_FORMAT_P8                ImageFormat = 7
	IMAGE_FORMAT_A8                ImageFormat = 8
	IMAGE_FORMAT_RGB888_BLUESCREEN ImageFormat = 9
	IMAGE_FORMAT_BGR888_BLUESCREEN ImageFormat = 10
	IMAGE_FORMAT_ARGB8888          ImageFormat = 11
	IMAGE_FORMAT_BGRA8888          ImageFormat = 12
	IMAGE_FORMAT_DXT1              ImageFormat = 13
	IMAGE_FORMAT_DXT3              ImageFormat = 14
	IMAGE_FORMAT_DXT5              ImageFormat = 15
	IMAGE_FORMAT_BGRX8888          ImageFormat = 16
	IMAGE_FORMAT_BGR565            ImageFormat = 17
	IMAGE_FORMAT_BGRX5551          ImageFormat = 18
	IMAGE_FORMAT_BGRA4444          ImageFormat = 19
	IMAGE_FORMAT_DXT1_ONEBITALPHA  ImageFormat = 20
	IMAGE_FORMAT_BGRA5551          ImageFormat = 21
	IMAGE_FORMAT_UV88              ImageFormat = 22
	IMAGE_FORMAT_UVWQ8888          ImageFormat = 23
	IMAGE_FORMAT_RGBA16161616F     ImageFormat = 24
	IMAGE_FORMAT_RGBA16161616      ImageFormat = 25
	IMAGE_FORMAT_UVLX8888          ImageFormat = 26
	IMAGE_FORMAT_R32F              ImageFormat = 27
	IMAGE_FORMAT_RGB323232F        ImageFormat = 28
	IMAGE_FORMAT_RGBA32323232F     ImageFormat = 29
	IMAGE_FORMAT_NV_DST16          ImageFormat = 30
	IMAGE_FORMAT_NV_DST24          ImageFormat = 31
	IMAGE_FORMAT_NV_INTZ           ImageFormat = 32
	IMAGE_FORMAT_NV_RAWZ           ImageFormat = 33
	IMAGE_FORMAT_ATI_DST16         ImageFormat = 34
	IMAGE_FORMAT_ATI_DST24         ImageFormat = 35
	IMAGE_FORMAT_NV_NULL           ImageFormat = 36
	IMAGE_FORMAT_ATI2N             ImageFormat = 37
	IMAGE_FORMAT_ATI1N             ImageFormat = 38

	imageFormatCount = 39
)

// ImageFormatInfo describes an image format's storage properties.
type ImageFormatInfo struct {
	Name string

	BitsPerPixel      uint32
	BytesPerPixel     uint32 // zero for block compressed formats
	RedBitsPerPixel   uint32
	GreenBitsPerPixel uint32
	BlueBitsPerPixel  uint32
	AlphaBitsPerPixel uint32

	IsCompressed bool
	IsSupported  bool
}

var imageFormatInfos = [imageFormatCount]ImageFormatInfo{
	IMAGE_FORMAT_RGBA8888:          {"RGBA8888", 32, 4, 8, 8, 8, 8, false, true},
	IMAGE_FORMAT_ABGR8888:          {"ABGR8888", 32, 4, 8, 8, 8, 8, false, true},
	IMAGE_FORMAT_RGB888:            {"RGB888", 24, 3, 8, 8, 8, 0, false, true},
	IMAGE_FORMAT_BGR888:            {"BGR888", 24, 3, 8, 8, 8, 0, false, true},
	IMAGE_FORMAT_RGB565:            {"RGB565", 16, 2, 5, 6, 5, 0, false, true},
	IMAGE_FORMAT_I8:                {"I8", 8, 1, 0, 0, 0, 0, false, true},
	IMAGE_FORMAT_IA88:              {"IA88", 16, 2, 0, 0, 0, 8, false, true},
	IMAGE_FORMAT_P8:                {"P8", 8, 1, 0, 0, 0, 0, false, false},
	IMAGE_FORMAT_A8:                {"A8", 8, 1, 0, 0, 0, 8, false, true},
	IMAGE_FORMAT_RGB888_BLUESCREEN: {"RGB888 Bluescreen", 24, 3, 8, 8, 8, 0, false, true},
	IMAGE_FORMAT_BGR888_BLUESCREEN: {"BGR888 Bluescreen", 24, 3, 8, 8, 8, 0, false, true},
	IMAGE_FORMAT_ARGB8888:          {"ARGB8888", 32, 4, 8, 8, 8, 8, false, true},
	IMAGE_FORMAT_BGRA8888:          {"BGRA8888", 32, 4, 8, 8, 8, 8, false, true},
	IMAGE_FORMAT_DXT1:              {"DXT1", 4, 0, 0, 0, 0, 0, true, true},
	IMAGE_FORMAT_DXT3:              {"DXT3", 8, 0, 0, 0, 0, 8, true, true},
	IMAGE_FORMAT_DXT5:              {"DXT5", 8, 0, 0, 0, 0, 8, true, true},
	IMAGE_FORMAT_BGRX8888:          {"BGRX8888", 32, 4, 8, 8, 8, 0, false, true},
	IMAGE_FORMAT_BGR565:            {"BGR565", 16, 2, 5, 6, 5, 0, false, true},
	IMAGE_FORMAT_BGRX5551:          {"BGRX5551", 16, 2, 5, 5, 5, 0, false, true},
	IMAGE_FORMAT_BGRA4444:          {"BGRA4444", 16, 2, 4, 4, 4, 4, false, true},
	IMAGE_FORMAT_DXT1_ONEBITALPHA:  {"DXT1 One Bit Alpha", 4, 0, 0, 0, 0, 1, true, true},
	IMAGE_FORMAT_BGRA5551:          {"BGRA5551", 16, 2, 5, 5, 5, 1, false, true},
	IMAGE_FORMAT_UV88:              {"UV88", 16, 2, 8, 8, 0, 0, false, true},
	IMAGE_FORMAT_UVWQ8888:          {"UVWQ8888", 32, 4, 8, 8, 8, 8, false, true},
	IMAGE_FORMAT_RGBA16161616F:     {"RGBA16161616F", 64, 8, 16, 16, 16, 16, false, true},
	IMAGE_FORMAT_RGBA16161616:      {"RGBA16161616", 64, 8, 16, 16, 16, 16, false, true},
	IMAGE_FORMAT_UVLX8888:          {"UVLX8888", 32, 4, 8, 8, 8, 8, false, true},
	IMAGE_FORMAT_R32F:              {"R32F", 32, 4, 32, 0, 0, 0, false, true},
	IMAGE_FORMAT_RGB323232F:        {"RGB323232F", 96, 12, 32, 32, 32, 0, false, true},
	IMAGE_FORMAT_RGBA32323232F:     {"RGBA32323232F", 128, 16, 32, 32, 32, 32, false, true},
	IMAGE_FORMAT_NV_DST16:          {"nVidia DST16", 16, 2, 0, 0, 0, 0, false, false},
	IMAGE_FORMAT_NV_DST24:          {"nVidia DST24", 24, 3, 0, 0, 0, 0, false, false},
	IMAGE_FORMAT_NV_INTZ:           {"nVidia INTZ", 32, 4, 0, 0, 0, 0, false, false},
	IMAGE_FORMAT_NV_RAWZ:           {"nVidia RAWZ", 24, 3, 0, 0, 0, 0, false, false},
	IMAGE_FORMAT_ATI_DST16:         {"ATI DST16", 16, 2, 0, 0, 0, 0, false, false},
	IMAGE_FORMAT_ATI_DST24:         {"ATI DST24", 24, 3, 0, 0, 0, 0, false, false},
	IMAGE_FORMAT_NV_NULL:           {"nVidia NULL", 32, 4, 0, 0, 0, 0, false, false},
	IMAGE_FORMAT_ATI2N:             {"ATI2N", 8, 0, 0, 0, 0, 0, true, true},
	IMAGE_FORMAT_ATI1N:             {"ATI1N", 4, 0, 0, 0, 0, 0, true, true},
}

// Info returns the static metadata for the format. Unknown formats return
// an info with IsSupported false and a descriptive name.
func (f ImageFormat) Info() ImageFormatInfo {
	if f < 0 || f >= imageFormatCount {
		return ImageFormatInfo{Name: f.String()}
	}
	return imageFormatInfos[f]
}

// Valid reports whether the value is a known format tag.
func (f ImageFormat) Valid() bool {
	return f >= 0 && f < imageFormatCount
}

// String implements the stringer interface.
func (f ImageFormat) String() string {
	if f == IMAGE_FORMAT_NONE {
		return "None"
	}
	if f.Valid() {
		return imageFormatInfos[f].Name
	}
	return fmt.Sprintf("unknown image format %d", int32(f))
}

// blockSize returns the byte size of one 4x4 block for block compressed
// formats, or zero for everything else.
func (f ImageFormat) blockSize() int {
	switch f {
	case IMAGE_FORMAT_DXT1, IMAGE_FORMAT_DXT1_ONEBITALPHA, IMAGE_FORMAT_ATI1N:
		return 8
	case IMAGE_FORMAT_DXT3, IMAGE_FORMAT_DXT5, IMAGE_FORMAT_ATI2N:
		return 16
	}
	return 0
}

// ComputeImageSize returns the number of bytes a width x height x depth image
// occupies when encoded in the passed format.
func ComputeImageSize(width, height, depth int, format ImageFormat) int {
	return int(imageSize(width, height, depth, format))
}

// imageSize is ComputeImageSize in int64. Dimensions read from a header fit
// in 16 bits, so the product cannot overflow.
func imageSize(width, height, depth int, format ImageFormat) int64 {
	if bs := format.blockSize(); bs != 0 {
		bw := int64(width+3) / 4
		bh := int64(height+3) / 4
		if bw < 1 {
			bw = 1
		}
		if bh < 1 {
			bh = 1
		}
		return bw * bh * int64(bs) * int64(depth)
	}
	return int64(width) * int64(height) * int64(depth) * int64(format.Info().BytesPerPixel)
}

// ComputeMipmapDimensions returns the dimensions of the passed mipmap level
// (0 being the full size image) of a width x height x depth image.
func ComputeMipmapDimensions(width, height, depth, level int) (int, int, int) {
	return mipDim(width, level), mipDim(height, level), mipDim(depth, level)
}

func mipDim(v, level int) int {
	v >>= uint(level)
	if v < 1 {
		return 1
	}
	return v
}

// ComputeMipmapCount returns the number of mipmap levels a full chain would
// have for an image of the passed size.
func ComputeMipmapCount(width, height, depth int) int {
	count := 1
	for width > 1 || height > 1 || depth > 1 {
		width /= 2
		height /= 2
		depth /= 2
		count++
	}
	return count
}
