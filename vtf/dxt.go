package vtf

import (
	"math"
)

// block holds the 4x4 RGBA8888 texels decoded from one compressed block,
// row-major.
type block [16][4]uint8

type blockDecoder func(src []byte, out *block)

// decodeBlocks walks a block compressed image and writes the decoded texels
// into dst, clipping blocks that stick out past the image edge.
func decodeBlocks(src, dst []byte, width, height, blockSize int, decode blockDecoder) {
	var texels block
	bw := (width + 3) / 4
	bh := (height + 3) / 4
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			off := (by*bw + bx) * blockSize
			decode(src[off:off+blockSize], &texels)
			for ty := 0; ty < 4; ty++ {
				y := by*4 + ty
				if y >= height {
					break
				}
				for tx := 0; tx < 4; tx++ {
					x := bx*4 + tx
					if x >= width {
						break
					}
					copy(dst[(y*width+x)*4:], texels[ty*4+tx][:])
				}
			}
		}
	}
}

// rgb565 expands a DXT endpoint color (red in the high bits).
func rgb565(c uint16) [4]uint8 {
	return [4]uint8{
		expand5(uint8(c >> 11)),
		expand6(uint8(c>>5) & 0x3F),
		expand5(uint8(c) & 0x1F),
		0xFF,
	}
}

func expand4(v uint8) uint8 { return v * 17 }
func expand5(v uint8) uint8 { return v<<3 | v>>2 }
func expand6(v uint8) uint8 { return v<<2 | v>>4 }

// decodeColorBlock decodes the 8 byte color part shared by DXT1/3/5.
//
// When fourColor is false and the first endpoint is not greater than the
// second, the block uses three colors plus index 3, which is transparent
// black if punchThrough is set and opaque black otherwise.
func decodeColorBlock(src []byte, out *block, fourColor, punchThrough bool) {
	c0 := uint16(src[0]) | uint16(src[1])<<8
	c1 := uint16(src[2]) | uint16(src[3])<<8

	var palette [4][4]uint8
	palette[0] = rgb565(c0)
	palette[1] = rgb565(c1)
	if fourColor || c0 > c1 {
		for i := 0; i < 3; i++ {
			palette[2][i] = uint8((2*int(palette[0][i]) + int(palette[1][i])) / 3)
			palette[3][i] = uint8((int(palette[0][i]) + 2*int(palette[1][i])) / 3)
		}
		palette[2][3] = 0xFF
		palette[3][3] = 0xFF
	} else {
		for i := 0; i < 3; i++ {
			palette[2][i] = uint8((int(palette[0][i]) + int(palette[1][i])) / 2)
		}
		palette[2][3] = 0xFF
		if punchThrough {
			palette[3] = [4]uint8{0, 0, 0, 0}
		} else {
			palette[3] = [4]uint8{0, 0, 0, 0xFF}
		}
	}

	indices := uint32(src[4]) | uint32(src[5])<<8 | uint32(src[6])<<16 | uint32(src[7])<<24
	for i := 0; i < 16; i++ {
		out[i] = palette[(indices>>(2*uint(i)))&3]
	}
}

// decodeAlphaBlock decodes an 8 byte interpolated alpha block (DXT5, ATI1N,
// ATI2N) into 16 values.
func decodeAlphaBlock(src []byte, values *[16]uint8) {
	a0, a1 := int(src[0]), int(src[1])
	var palette [8]uint8
	palette[0] = uint8(a0)
	palette[1] = uint8(a1)
	if a0 > a1 {
		for i := 1; i < 7; i++ {
			palette[i+1] = uint8(((7-i)*a0 + i*a1) / 7)
		}
	} else {
		for i := 1; i < 5; i++ {
			palette[i+1] = uint8(((5-i)*a0 + i*a1) / 5)
		}
		palette[6] = 0
		palette[7] = 0xFF
	}

	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(src[2+i]) << (8 * uint(i))
	}
	for i := 0; i < 16; i++ {
		values[i] = palette[(bits>>(3*uint(i)))&7]
	}
}

func decodeDXT1Block(src []byte, out *block) {
	decodeColorBlock(src, out, false, false)
}

func decodeDXT1OneBitAlphaBlock(src []byte, out *block) {
	decodeColorBlock(src, out, false, true)
}

func decodeDXT3Block(src []byte, out *block) {
	decodeColorBlock(src[8:], out, true, false)
	for i := 0; i < 16; i++ {
		nibble := (src[i/2] >> (4 * uint(i%2))) & 0x0F
		out[i][3] = expand4(nibble)
	}
}

func decodeDXT5Block(src []byte, out *block) {
	var alpha [16]uint8
	decodeAlphaBlock(src, &alpha)
	decodeColorBlock(src[8:], out, true, false)
	for i := 0; i < 16; i++ {
		out[i][3] = alpha[i]
	}
}

func decodeATI1NBlock(src []byte, out *block) {
	var lum [16]uint8
	decodeAlphaBlock(src, &lum)
	for i := 0; i < 16; i++ {
		out[i] = [4]uint8{lum[i], lum[i], lum[i], 0xFF}
	}
}

// decodeATI2NBlock decodes a two channel normal map block and reconstructs
// the third component.
func decodeATI2NBlock(src []byte, out *block) {
	var x, y [16]uint8
	decodeAlphaBlock(src, &x)
	decodeAlphaBlock(src[8:], &y)
	for i := 0; i < 16; i++ {
		nx := float64(x[i])/127.5 - 1
		ny := float64(y[i])/127.5 - 1
		nz := 1 - nx*nx - ny*ny
		if nz < 0 {
			nz = 0
		}
		z := (math.Sqrt(nz) + 1) * 127.5
		out[i] = [4]uint8{x[i], y[i], clampByte(z), 0xFF}
	}
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 0xFF
	}
	return uint8(v + 0.5)
}
