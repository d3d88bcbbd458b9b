package loader

// This file holds the static description of the format for plugin hosts,
// and the hooks that let the standard library's image package decode VTF.

import (
	"encoding/binary"
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"

	"github.com/panzi/pixbufloader-vtf/vtf"
)

func init() {
	image.RegisterFormat("vtf", vtf.Signature, decodeImage, decodeImageConfig)
}

// Pattern is a signature a file's leading bytes are matched against.
//
// Each byte of Mask says how the byte at the same offset of Prefix is
// compared: ' ' must match, '!' must not match, 'x' is ignored, 'z' must be
// zero and 'n' must be nonzero. A Mask shorter than Prefix is padded with
// ' '. A leading '*' in Prefix lets the rest of the pattern match at any
// offset.
type Pattern struct {
	Prefix    string
	Mask      string
	Relevance int
}

type FormatFlags uint32

const (
	FORMAT_WRITABLE   FormatFlags = 1 << 0
	FORMAT_SCALABLE   FormatFlags = 1 << 1
	FORMAT_THREADSAFE FormatFlags = 1 << 2
)

// FormatInfo describes an image format to a plugin host.
type FormatInfo struct {
	Name        string
	Description string
	MimeTypes   []string
	Extensions  []string
	Signature   []Pattern
	License     string
	Flags       FormatFlags
}

// Format describes this loader. It is not FORMAT_THREADSAFE: decoding is
// serialized by a package lock.
var Format = FormatInfo{
	Name:        "vtf",
	Description: "Valve Texture format",
	MimeTypes:   []string{"image/x-vtf"},
	Extensions:  []string{"vtf"},
	Signature: []Pattern{
		{Prefix: "VTF\x00", Mask: "   z", Relevance: 100},
	},
	License: "LGPL",
	Flags:   0,
}

// Match returns the relevance of the best signature pattern matching the
// start of b, or 0 if none does.
func (f *FormatInfo) Match(b []byte) int {
	best := 0
	for _, p := range f.Signature {
		if p.Relevance > best && p.match(b) {
			best = p.Relevance
		}
	}
	return best
}

func (p Pattern) match(b []byte) bool {
	prefix, mask := p.Prefix, p.Mask
	anywhere := false
	if len(prefix) > 0 && prefix[0] == '*' {
		anywhere = true
		prefix = prefix[1:]
		if len(mask) > 0 {
			mask = mask[1:]
		}
	}
	if !anywhere {
		return p.matchAt(b, prefix, mask)
	}
	for off := 0; off+len(prefix) <= len(b); off++ {
		if p.matchAt(b[off:], prefix, mask) {
			return true
		}
	}
	return false
}

func (p Pattern) matchAt(b []byte, prefix, mask string) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		m := byte(' ')
		if i < len(mask) {
			m = mask[i]
		}
		switch m {
		case ' ':
			if b[i] != prefix[i] {
				return false
			}
		case '!':
			if b[i] == prefix[i] {
				return false
			}
		case 'z':
			if b[i] != 0 {
				return false
			}
		case 'n':
			if b[i] == 0 {
				return false
			}
		case 'x':
		default:
			return false
		}
	}
	return true
}

// decodeImage implements image.Decode for VTF streams; it returns the
// still of the last frame.
func decodeImage(r io.Reader) (image.Image, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: IoFailure, Err: errors.Wrap(err, "vtf: could not read stream")}
	}
	still, err := Decode(b)
	if err != nil {
		return nil, err
	}
	return still.Image, nil
}

// configHeader is the leading part of every VTF header, enough to know the
// dimensions.
type configHeader struct {
	Signature  [4]byte
	Version    [2]uint32
	HeaderSize uint32
	Width      uint16
	Height     uint16
}

// decodeImageConfig reads only the first bytes of the header.
func decodeImageConfig(r io.Reader) (image.Config, error) {
	var h configHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return image.Config{}, &Error{Kind: CorruptContainer, Msg: "File too small to contain a VTF header.", Err: errors.Wrap(err, "vtf: could not read header")}
	}
	if Format.Match(h.Signature[:]) == 0 {
		return image.Config{}, &Error{Kind: CorruptContainer, Msg: "File signature does not match 'VTF'."}
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
