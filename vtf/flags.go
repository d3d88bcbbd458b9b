package vtf

import (
	"strings"
)

// TextureFlags is the bitmask of texture flags stored in the header.
type TextureFlags uint32

const (
	TEXTUREFLAGS_POINTSAMPLE       TextureFlags = 0x00000001
	TEXTUREFLAGS_TRILINEAR         TextureFlags = 0x00000002
	TEXTUREFLAGS_CLAMPS            TextureFlags = 0x00000004
	TEXTUREFLAGS_CLAMPT            TextureFlags = 0x00000008
	TEXTUREFLAGS_ANISOTROPIC       TextureFlags = 0x00000010
	TEXTUREFLAGS_HINT_DXT5         TextureFlags = 0x00000020
	TEXTUREFLAGS_SRGB              TextureFlags = 0x00000040 // NOCOMPRESS before 7.5
	TEXTUREFLAGS_NORMAL            TextureFlags = 0x00000080
	TEXTUREFLAGS_NOMIP             TextureFlags = 0x00000100
	TEXTUREFLAGS_NOLOD             TextureFlags = 0x00000200
	TEXTUREFLAGS_MINMIP            TextureFlags = 0x00000400
	TEXTUREFLAGS_PROCEDURAL        TextureFlags = 0x00000800
	TEXTUREFLAGS_ONEBITALPHA       TextureFlags = 0x00001000
	TEXTUREFLAGS_EIGHTBITALPHA     TextureFlags = 0x00002000
	TEXTUREFLAGS_ENVMAP            TextureFlags = 0x00004000
	TEXTUREFLAGS_RENDERTARGET      TextureFlags = 0x00008000
	TEXTUREFLAGS_DEPTHRENDERTARGET TextureFlags = 0x00010000
	TEXTUREFLAGS_NODEBUGOVERRIDE   TextureFlags = 0x00020000
	TEXTUREFLAGS_SINGLECOPY        TextureFlags = 0x00040000
	TEXTUREFLAGS_UNUSED0           TextureFlags = 0x00080000
	TEXTUREFLAGS_UNUSED1           TextureFlags = 0x00100000
	TEXTUREFLAGS_UNUSED2           TextureFlags = 0x00200000
	TEXTUREFLAGS_UNUSED3           TextureFlags = 0x00400000
	TEXTUREFLAGS_NODEPTHBUFFER     TextureFlags = 0x00800000
	TEXTUREFLAGS_UNUSED4           TextureFlags = 0x01000000
	TEXTUREFLAGS_CLAMPU            TextureFlags = 0x02000000
	TEXTUREFLAGS_VERTEXTEXTURE     TextureFlags = 0x04000000
	TEXTUREFLAGS_SSBUMP            TextureFlags = 0x08000000
	TEXTUREFLAGS_UNUSED5           TextureFlags = 0x10000000
	TEXTUREFLAGS_BORDER            TextureFlags = 0x20000000
	TEXTUREFLAGS_UNUSED6           TextureFlags = 0x40000000
	TEXTUREFLAGS_UNUSED7           TextureFlags = 0x80000000
)

// textureFlagNames is indexed by bit position; this is the canonical order
// in which flags are listed.
var textureFlagNames = [32]string{
	"POINTSAMPLE",
	"TRILINEAR",
	"CLAMPS",
	"CLAMPT",
	"ANISOTROPIC",
	"HINT_DXT5",
	"SRGB",
	"NORMAL",
	"NOMIP",
	"NOLOD",
	"MINMIP",
	"PROCEDURAL",
	"ONEBITALPHA",
	"EIGHTBITALPHA",
	"ENVMAP",
	"RENDERTARGET",
	"DEPTHRENDERTARGET",
	"NODEBUGOVERRIDE",
	"SINGLECOPY",
	"UNUSED0",
	"UNUSED1",
	"UNUSED2",
	"UNUSED3",
	"NODEPTHBUFFER",
	"UNUSED4",
	"CLAMPU",
	"VERTEXTEXTURE",
	"SSBUMP",
	"UNUSED5",
	"BORDER",
	"UNUSED6",
	"UNUSED7",
}

// Has reports whether all bits of flag are set.
func (f TextureFlags) Has(flag TextureFlags) bool {
	return f&flag == flag
}

// Names returns the symbolic names of all set flags, lowest bit first.
func (f TextureFlags) Names() []string {
	var names []string
	for bit := uint(0); bit < 32; bit++ {
		if f&(1<<bit) != 0 {
			names = append(names, textureFlagNames[bit])
		}
	}
	return names
}

// String implements the stringer interface.
func (f TextureFlags) String() string {
	return strings.Join(f.Names(), ", ")
}
