package vtf

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// ConvertToRGBA8888 decodes a width x height image encoded in the passed
// format into dst as non-premultiplied RGBA, 4 bytes per pixel, row-major.
//
// dst must hold at least width*height*4 bytes. The function is pure: it
// only reads src and only writes dst. On error dst may have been partially
// written and must be discarded.
func ConvertToRGBA8888(src, dst []byte, width, height int, format ImageFormat) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf("vtf: invalid image dimensions %dx%d", width, height)
	}
	info := format.Info()
	if !format.Valid() || !info.IsSupported {
		return errors.Errorf("vtf: conversion from %s is not supported", format)
	}
	if need := ComputeImageSize(width, height, 1, format); len(src) < need {
		return errors.Errorf("vtf: source too short for %dx%d %s: got %d bytes, want %d", width, height, format, len(src), need)
	}
	if need := width * height * 4; len(dst) < need {
		return errors.Errorf("vtf: destination too short for %dx%d RGBA8888: got %d bytes, want %d", width, height, len(dst), need)
	}

	switch format {
	case IMAGE_FORMAT_DXT1:
		decodeBlocks(src, dst, width, height, 8, decodeDXT1Block)
		return nil
	case IMAGE_FORMAT_DXT1_ONEBITALPHA:
		decodeBlocks(src, dst, width, height, 8, decodeDXT1OneBitAlphaBlock)
		return nil
	case IMAGE_FORMAT_DXT3:
		decodeBlocks(src, dst, width, height, 16, decodeDXT3Block)
		return nil
	case IMAGE_FORMAT_DXT5:
		decodeBlocks(src, dst, width, height, 16, decodeDXT5Block)
		return nil
	case IMAGE_FORMAT_ATI1N:
		decodeBlocks(src, dst, width, height, 8, decodeATI1NBlock)
		return nil
	case IMAGE_FORMAT_ATI2N:
		decodeBlocks(src, dst, width, height, 16, decodeATI2NBlock)
		return nil
	}

	pixel, ok := pixelDecoders[format]
	if !ok {
		return errors.Errorf("vtf: conversion from %s is not supported", format)
	}
	bpp := int(info.BytesPerPixel)
	n := width * height
	for i := 0; i < n; i++ {
		pixel(src[i*bpp:i*bpp+bpp], dst[i*4:i*4+4])
	}
	return nil
}

// pixelDecoder converts one pixel of an uncompressed format.
type pixelDecoder func(s, d []byte)

var pixelDecoders = map[ImageFormat]pixelDecoder{
	IMAGE_FORMAT_RGBA8888: func(s, d []byte) { d[0], d[1], d[2], d[3] = s[0], s[1], s[2], s[3] },
	IMAGE_FORMAT_ABGR8888: func(s, d []byte) { d[0], d[1], d[2], d[3] = s[3], s[2], s[1], s[0] },
	IMAGE_FORMAT_RGB888:   func(s, d []byte) { d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 0xFF },
	IMAGE_FORMAT_BGR888:   func(s, d []byte) { d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 0xFF },
	IMAGE_FORMAT_RGB565: func(s, d []byte) {
		v := binary.LittleEndian.Uint16(s)
		d[0], d[1], d[2], d[3] = expand5(uint8(v)&0x1F), expand6(uint8(v>>5)&0x3F), expand5(uint8(v>>11)), 0xFF
	},
	IMAGE_FORMAT_I8:   func(s, d []byte) { d[0], d[1], d[2], d[3] = s[0], s[0], s[0], 0xFF },
	IMAGE_FORMAT_IA88: func(s, d []byte) { d[0], d[1], d[2], d[3] = s[0], s[0], s[0], s[1] },
	IMAGE_FORMAT_A8:   func(s, d []byte) { d[0], d[1], d[2], d[3] = 0, 0, 0, s[0] },
	IMAGE_FORMAT_RGB888_BLUESCREEN: func(s, d []byte) {
		bluescreen(s[0], s[1], s[2], d)
	},
	IMAGE_FORMAT_BGR888_BLUESCREEN: func(s, d []byte) {
		bluescreen(s[2], s[1], s[0], d)
	},
	IMAGE_FORMAT_ARGB8888: func(s, d []byte) { d[0], d[1], d[2], d[3] = s[1], s[2], s[3], s[0] },
	IMAGE_FORMAT_BGRA8888: func(s, d []byte) { d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3] },
	IMAGE_FORMAT_BGRX8888: func(s, d []byte) { d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 0xFF },
	IMAGE_FORMAT_BGR565: func(s, d []byte) {
		v := binary.LittleEndian.Uint16(s)
		d[0], d[1], d[2], d[3] = expand5(uint8(v>>11)), expand6(uint8(v>>5)&0x3F), expand5(uint8(v)&0x1F), 0xFF
	},
	IMAGE_FORMAT_BGRX5551: func(s, d []byte) {
		v := binary.LittleEndian.Uint16(s)
		d[0], d[1], d[2], d[3] = expand5(uint8(v>>10)&0x1F), expand5(uint8(v>>5)&0x1F), expand5(uint8(v)&0x1F), 0xFF
	},
	IMAGE_FORMAT_BGRA4444: func(s, d []byte) {
		v := binary.LittleEndian.Uint16(s)
		d[0], d[1], d[2], d[3] = expand4(uint8(v>>8)&0x0F), expand4(uint8(v>>4)&0x0F), expand4(uint8(v)&0x0F), expand4(uint8(v>>12))
	},
	IMAGE_FORMAT_BGRA5551: func(s, d []byte) {
		v := binary.LittleEndian.Uint16(s)
		d[0], d[1], d[2] = expand5(uint8(v>>10)&0x1F), expand5(uint8(v>>5)&0x1F), expand5(uint8(v)&0x1F)
		d[3] = 0
		if v&0x8000 != 0 {
			d[3] = 0xFF
		}
	},
	IMAGE_FORMAT_UV88:     func(s, d []byte) { d[0], d[1], d[2], d[3] = s[0], s[1], 0, 0xFF },
	IMAGE_FORMAT_UVWQ8888: func(s, d []byte) { d[0], d[1], d[2], d[3] = s[0], s[1], s[2], s[3] },
	IMAGE_FORMAT_UVLX8888: func(s, d []byte) { d[0], d[1], d[2], d[3] = s[0], s[1], s[2], s[3] },
	IMAGE_FORMAT_RGBA16161616: func(s, d []byte) {
		for c := 0; c < 4; c++ {
			d[c] = uint8(binary.LittleEndian.Uint16(s[c*2:]) >> 8)
		}
	},
	IMAGE_FORMAT_RGBA16161616F: func(s, d []byte) {
		for c := 0; c < 4; c++ {
			f := float16.Frombits(binary.LittleEndian.Uint16(s[c*2:])).Float32()
			d[c] = unitByte(float64(f))
		}
	},
	IMAGE_FORMAT_R32F: func(s, d []byte) {
		v := unitByte(float64(math.Float32frombits(binary.LittleEndian.Uint32(s))))
		d[0], d[1], d[2], d[3] = v, v, v, 0xFF
	},
	IMAGE_FORMAT_RGB323232F: func(s, d []byte) {
		for c := 0; c < 3; c++ {
			d[c] = unitByte(float64(math.Float32frombits(binary.LittleEndian.Uint32(s[c*4:]))))
		}
		d[3] = 0xFF
	},
	IMAGE_FORMAT_RGBA32323232F: func(s, d []byte) {
		for c := 0; c < 4; c++ {
			d[c] = unitByte(float64(math.Float32frombits(binary.LittleEndian.Uint32(s[c*4:]))))
		}
	},
}

// bluescreen maps pure blue to fully transparent black.
func bluescreen(r, g, b uint8, d []byte) {
	if r == 0 && g == 0 && b == 0xFF {
		d[0], d[1], d[2], d[3] = 0, 0, 0, 0
		return
	}
	d[0], d[1], d[2], d[3] = r, g, b, 0xFF
}

// unitByte clamps a [0,1] float channel to a byte.
func unitByte(v float64) uint8 {
	return clampByte(v * 255)
}
