// Package vtftest synthesizes vtf files for tests. UNSUPPORTED test helper
// package.
//
// This package has an API with no stability guarantees.
package vtftest

import (
	"bytes"
	"encoding/binary"

	"github.com/bradfitz/iter"

	"github.com/panzi/pixbufloader-vtf/vtf"
)

// Builder describes a vtf file to synthesize. The zero value is not useful;
// start from New.
type Builder struct {
	MinorVersion int

	Width, Height, Depth int
	Frames, StartFrame   int
	Mipmaps              int
	Flags                vtf.TextureFlags
	Format               vtf.ImageFormat
	Reflectivity         [3]float32
	BumpmapScale         float32

	ThumbnailFormat                 vtf.ImageFormat
	ThumbnailWidth, ThumbnailHeight int

	// ExtraResources are appended to the resource directory of 7.3+ files.
	ExtraResources []vtf.Resource

	// Fill populates one encoded slice. When nil, every byte of a frame's
	// image is set to byte(frame+1).
	Fill func(frame, face, slice, mipmap int, buf []byte)
}

// New returns a builder for a single frame, single mipmap RGBA8888 texture
// of the passed size, in format version 7.2.
func New(width, height int) *Builder {
	return &Builder{
		MinorVersion:    2,
		Width:           width,
		Height:          height,
		Depth:           1,
		Frames:          1,
		Mipmaps:         1,
		Format:          vtf.IMAGE_FORMAT_RGBA8888,
		Reflectivity:    [3]float32{0.5, 0.25, 0.125},
		BumpmapScale:    1,
		ThumbnailFormat: vtf.IMAGE_FORMAT_NONE,
	}
}

// diskHeader mirrors the on-disk layout of the version independent header.
type diskHeader struct {
	Signature          [4]byte
	Version            [2]uint32
	HeaderSize         uint32
	Width              uint16
	Height             uint16
	Flags              uint32
	Frames             uint16
	StartFrame         uint16
	_                  [4]byte
	Reflectivity       [3]float32
	_                  [4]byte
	BumpmapScale       float32
	HighResImageFormat int32
	MipmapCount        uint8
	LowResImageFormat  int32
	LowResImageWidth   uint8
	LowResImageHeight  uint8
}

func (b *Builder) faces() int {
	if !b.Flags.Has(vtf.TEXTUREFLAGS_ENVMAP) {
		return 1
	}
	if b.MinorVersion < 5 && b.StartFrame != 0xFFFF {
		return vtf.CUBEMAP_FACE_COUNT
	}
	return vtf.CUBEMAP_FACE_COUNT - 1
}

func (b *Builder) hasThumbnail() bool {
	return b.ThumbnailFormat != vtf.IMAGE_FORMAT_NONE && b.ThumbnailWidth > 0 && b.ThumbnailHeight > 0
}

// Thumbnail returns the encoded thumbnail bytes the builder emits: every
// byte is 0x7F.
func (b *Builder) Thumbnail() []byte {
	if !b.hasThumbnail() {
		return nil
	}
	return bytes.Repeat([]byte{0x7F}, vtf.ComputeImageSize(b.ThumbnailWidth, b.ThumbnailHeight, 1, b.ThumbnailFormat))
}

// ImageData returns the encoded high resolution image data block, mipmaps
// smallest first.
func (b *Builder) ImageData() []byte {
	depth := b.Depth
	if depth < 1 {
		depth = 1
	}
	buf := &bytes.Buffer{}
	for mip := b.Mipmaps - 1; mip >= 0; mip-- {
		w, h, d := vtf.ComputeMipmapDimensions(b.Width, b.Height, depth, mip)
		sliceSize := vtf.ComputeImageSize(w, h, 1, b.Format)
		for frame := range iter.N(b.Frames) {
			for face := range iter.N(b.faces()) {
				for slice := range iter.N(d) {
					s := make([]byte, sliceSize)
					if b.Fill != nil {
						b.Fill(frame, face, slice, mip, s)
					} else {
						for i := range s {
							s[i] = byte(frame + 1)
						}
					}
					buf.Write(s)
				}
			}
		}
	}
	return buf.Bytes()
}

// Build serializes the texture.
func (b *Builder) Build() []byte {
	thumb := b.Thumbnail()
	data := b.ImageData()

	h := diskHeader{
		Version:            [2]uint32{vtf.VERSION_MAJOR, uint32(b.MinorVersion)},
		Width:              uint16(b.Width),
		Height:             uint16(b.Height),
		Flags:              uint32(b.Flags),
		Frames:             uint16(b.Frames),
		StartFrame:         uint16(b.StartFrame),
		Reflectivity:       b.Reflectivity,
		BumpmapScale:       b.BumpmapScale,
		HighResImageFormat: int32(b.Format),
		MipmapCount:        uint8(b.Mipmaps),
		LowResImageFormat:  int32(vtf.IMAGE_FORMAT_NONE),
	}
	copy(h.Signature[:], vtf.Signature)
	if b.hasThumbnail() {
		h.LowResImageFormat = int32(b.ThumbnailFormat)
		h.LowResImageWidth = uint8(b.ThumbnailWidth)
		h.LowResImageHeight = uint8(b.ThumbnailHeight)
	}

	var resources []vtf.Resource
	switch {
	case b.MinorVersion < 2:
		h.HeaderSize = 64
	case b.MinorVersion == 2:
		h.HeaderSize = 80
	default:
		count := 1 + len(b.ExtraResources)
		if thumb != nil {
			count++
		}
		h.HeaderSize = uint32(80 + 8*count)
		offset := h.HeaderSize
		if thumb != nil {
			resources = append(resources, vtf.Resource{Tag: vtf.RSRC_LOW_RES_IMAGE, Data: offset})
			offset += uint32(len(thumb))
		}
		resources = append(resources, vtf.Resource{Tag: vtf.RSRC_IMAGE, Data: offset})
		resources = append(resources, b.ExtraResources...)
	}

	out := &bytes.Buffer{}
	binary.Write(out, binary.LittleEndian, &h)
	if b.MinorVersion >= 2 {
		binary.Write(out, binary.LittleEndian, uint16(b.Depth))
	}
	if b.MinorVersion >= 3 {
		out.Write(make([]byte, 3))
		binary.Write(out, binary.LittleEndian, uint32(len(resources)))
		out.Write(make([]byte, 8))
		binary.Write(out, binary.LittleEndian, resources)
	}
	if pad := int(h.HeaderSize) - out.Len(); pad > 0 {
		out.Write(make([]byte, pad))
	}
	out.Write(thumb)
	out.Write(data)
	return out.Bytes()
}

// Oversized returns a 7.2 file whose header claims 65535 frames of a
// 65535x65535x65535 RGBA32323232F volume while carrying a single texel of
// image data. The claimed size overflows 64 bit arithmetic.
func Oversized() []byte {
	b := New(1, 1)
	b.Format = vtf.IMAGE_FORMAT_RGBA32323232F
	out := b.Build()
	for _, offset := range []int{16, 18, 24, 63} { // width, height, frames, depth
		binary.LittleEndian.PutUint16(out[offset:], 0xFFFF)
	}
	return out
}

// Chunks splits b into consecutive pieces of the passed sizes; whatever
// remains after the last size becomes the final piece.
func Chunks(b []byte, sizes ...int) [][]byte {
	var out [][]byte
	for _, n := range sizes {
		if n > len(b) {
			n = len(b)
		}
		out = append(out, b[:n])
		b = b[n:]
	}
	return append(out, b)
}
