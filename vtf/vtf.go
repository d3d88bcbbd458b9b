package vtf

// This file contains code directly related to parsing the vtf container:
// header, resource directory and locating image data.

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Signature is the four byte magic every vtf file starts with.
const Signature = "VTF\x00"

const (
	VERSION_MAJOR     = 7
	VERSION_MINOR_MIN = 0
	VERSION_MINOR_MAX = 5

	// CUBEMAP_FACE_COUNT includes the spheremap face stored by files before 7.5.
	CUBEMAP_FACE_COUNT = 7

	// MAX_RESOURCES is the maximum number of resource directory entries.
	MAX_RESOURCES = 32

	// RSRCF_HAS_NO_DATA_CHUNK marks a resource whose Data field holds the
	// value itself instead of an offset.
	RSRCF_HAS_NO_DATA_CHUNK = 0x02
)

// Resource tags known to the parser.
var (
	RSRC_LOW_RES_IMAGE = [3]byte{0x01, 0x00, 0x00}
	RSRC_IMAGE         = [3]byte{0x30, 0x00, 0x00}
	RSRC_SHEET         = [3]byte{0x10, 0x00, 0x00}
	RSRC_CRC           = [3]byte{'C', 'R', 'C'}
	RSRC_LOD           = [3]byte{'L', 'O', 'D'}
	RSRC_TSO           = [3]byte{'T', 'S', 'O'}
	RSRC_KVD           = [3]byte{'K', 'V', 'D'}
)

// header is the part of the header common to all versions. Its on-disk size
// is 63 bytes; binary.Read does not introduce any alignment padding.
type header struct {
	Signature          [4]byte
	Version            [2]uint32
	HeaderSize         uint32
	Width              uint16
	Height             uint16
	Flags              TextureFlags
	Frames             uint16
	StartFrame         uint16
	_                  [4]byte
	Reflectivity       [3]float32
	_                  [4]byte
	BumpmapScale       float32
	HighResImageFormat ImageFormat
	MipmapCount        uint8
	LowResImageFormat  ImageFormat
	LowResImageWidth   uint8
	LowResImageHeight  uint8
}

const (
	headerSize70 = 63
	headerSize72 = 65
	headerSize73 = 80
)

// header73 follows the depth field in 7.3+ files.
type header73 struct {
	_             [3]byte
	ResourceCount uint32
	_             [8]byte
}

// Resource is one entry of a 7.3+ resource directory.
type Resource struct {
	Tag   [3]byte
	Flags uint8
	Data  uint32 // offset into the file, or the value itself if RSRCF_HAS_NO_DATA_CHUNK
}

// HasData reports whether the resource points at a data chunk.
func (r Resource) HasData() bool {
	return r.Flags&RSRCF_HAS_NO_DATA_CHUNK == 0
}

// File is a parsed vtf container. It references the buffer it was loaded
// from; the buffer must not be modified while the File is in use.
type File struct {
	header    header
	depth     int
	faces     int
	resources []Resource

	thumbnail []byte
	data      []byte
}

var lastError struct {
	sync.Mutex
	msg string
}

// LastError returns the message of the most recent Load failure in this
// process.
//
// The value is shared by all callers. Concurrent loads overwrite each
// other's message; callers that rely on it must serialize their loads.
func LastError() string {
	lastError.Lock()
	defer lastError.Unlock()
	return lastError.msg
}

func setLastError(err error) error {
	lastError.Lock()
	lastError.msg = err.Error()
	lastError.Unlock()
	return err
}

// Load parses the passed buffer as a vtf file. On failure the returned
// error's message is also stored for LastError.
func Load(b []byte) (*File, error) {
	f, err := load(b)
	if err != nil {
		return nil, setLastError(err)
	}
	return f, nil
}

func load(b []byte) (*File, error) {
	if len(b) < len(Signature) {
		return nil, errors.Errorf("File too small to contain a VTF signature (%d bytes).", len(b))
	}
	if string(b[:len(Signature)]) != Signature {
		return nil, errors.New("File signature does not match 'VTF'.")
	}
	if len(b) < headerSize70 {
		return nil, errors.Errorf("File too small to contain a VTF header (%d bytes).", len(b))
	}

	f := &File{}
	r := bytes.NewReader(b)
	if err := binary.Read(r, binary.LittleEndian, &f.header); err != nil {
		return nil, errors.Wrap(err, "Error reading VTF header")
	}
	h := &f.header

	if h.Version[0] != VERSION_MAJOR || h.Version[1] > VERSION_MINOR_MAX {
		return nil, errors.Errorf("File version %d.%d does not match %d.%d to %d.%d.",
			h.Version[0], h.Version[1], VERSION_MAJOR, VERSION_MINOR_MIN, VERSION_MAJOR, VERSION_MINOR_MAX)
	}

	var depth uint16
	var ext header73
	minHeaderSize := headerSize70
	f.depth = 1
	if h.Version[1] >= 2 {
		minHeaderSize = headerSize72
		if h.Version[1] >= 3 {
			minHeaderSize = headerSize73
		}
		if len(b) < minHeaderSize {
			return nil, errors.Errorf("File too small to contain a VTF %d.%d header (%d bytes).", h.Version[0], h.Version[1], len(b))
		}
		if err := binary.Read(r, binary.LittleEndian, &depth); err != nil {
			return nil, errors.Wrap(err, "Error reading VTF header depth")
		}
		if depth > 1 {
			f.depth = int(depth)
		}
	}
	if h.Version[1] >= 3 {
		if err := binary.Read(r, binary.LittleEndian, &ext); err != nil {
			return nil, errors.Wrap(err, "Error reading VTF resource count")
		}
		if ext.ResourceCount > MAX_RESOURCES {
			return nil, errors.Errorf("File may be corrupt; resource count %d exceeds maximum of %d.", ext.ResourceCount, MAX_RESOURCES)
		}
		minHeaderSize += int(ext.ResourceCount) * 8
	}

	if int(h.HeaderSize) < minHeaderSize || int(h.HeaderSize) > len(b) {
		return nil, errors.Errorf("File may be corrupt; invalid header size %d.", h.HeaderSize)
	}
	glog.V(3).Infof("vtf %d.%d: header size %d, %dx%dx%d, %d frames, format %s", h.Version[0], h.Version[1], h.HeaderSize, h.Width, h.Height, f.depth, h.Frames, h.HighResImageFormat)

	if h.Width == 0 || h.Height == 0 {
		return nil, errors.Errorf("File may be corrupt; invalid image dimensions %dx%d.", h.Width, h.Height)
	}
	if h.Frames == 0 {
		return nil, errors.New("File may be corrupt; frame count is zero.")
	}
	if !h.HighResImageFormat.Valid() {
		return nil, errors.Errorf("File may be corrupt; invalid image format %d.", int32(h.HighResImageFormat))
	}
	if maxMips := ComputeMipmapCount(int(h.Width), int(h.Height), f.depth); h.MipmapCount == 0 || int(h.MipmapCount) > maxMips {
		return nil, errors.Errorf("File may be corrupt; invalid mipmap count %d (want 1 to %d).", h.MipmapCount, maxMips)
	}

	f.faces = 1
	if h.Flags.Has(TEXTUREFLAGS_ENVMAP) {
		if h.Version[1] < 5 && h.StartFrame != 0xFFFF {
			f.faces = CUBEMAP_FACE_COUNT
		} else {
			f.faces = CUBEMAP_FACE_COUNT - 1
		}
	}

	thumbSize := 0
	if f.hasThumbnailHeader() {
		if !h.LowResImageFormat.Valid() {
			return nil, errors.Errorf("File may be corrupt; invalid thumbnail format %d.", int32(h.LowResImageFormat))
		}
		thumbSize = ComputeImageSize(int(h.LowResImageWidth), int(h.LowResImageHeight), 1, h.LowResImageFormat)
	}
	dataSize, ok := f.imageDataSize(int64(len(b)))
	if !ok {
		return nil, errors.Errorf("File may be corrupt; image data of %dx%dx%d, %d frames, %d faces, %d mipmaps in %s exceeds the file size of %d bytes.",
			h.Width, h.Height, f.depth, h.Frames, f.faces, h.MipmapCount, h.HighResImageFormat, len(b))
	}

	if h.Version[1] < 3 {
		offset := int(h.HeaderSize)
		if offset+thumbSize > len(b) {
			return nil, errors.Errorf("File may be corrupt; thumbnail data is truncated (need %d bytes at offset %d, have %d).", thumbSize, offset, len(b))
		}
		f.thumbnail = b[offset : offset+thumbSize]
		offset += thumbSize
		if offset+dataSize > len(b) {
			return nil, errors.Errorf("File may be corrupt; image data is truncated (need %d bytes at offset %d, have %d).", dataSize, offset, len(b))
		}
		f.data = b[offset : offset+dataSize]
		return f, nil
	}

	if _, err := r.Seek(headerSize73, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "Error seeking to VTF resource directory")
	}
	f.resources = make([]Resource, ext.ResourceCount)
	if err := binary.Read(r, binary.LittleEndian, f.resources); err != nil {
		return nil, errors.Wrap(err, "Error reading VTF resource directory")
	}

	foundImage := false
	for _, res := range f.resources {
		switch res.Tag {
		case RSRC_LOW_RES_IMAGE:
			if thumbSize == 0 {
				glog.Warning("vtf: thumbnail resource present, but header declares no thumbnail")
				continue
			}
			offset := int64(res.Data)
			if offset < int64(h.HeaderSize) || offset+int64(thumbSize) > int64(len(b)) {
				return nil, errors.Errorf("File may be corrupt; thumbnail data is truncated (need %d bytes at offset %d, have %d).", thumbSize, offset, len(b))
			}
			f.thumbnail = b[offset : offset+int64(thumbSize)]
		case RSRC_IMAGE:
			offset := int64(res.Data)
			if offset < int64(h.HeaderSize) || offset+int64(dataSize) > int64(len(b)) {
				return nil, errors.Errorf("File may be corrupt; image data is truncated (need %d bytes at offset %d, have %d).", dataSize, offset, len(b))
			}
			f.data = b[offset : offset+int64(dataSize)]
			foundImage = true
		default:
			glog.V(3).Infof("vtf: skipping resource %q (flags %02x, data %08x)", res.Tag[:], res.Flags, res.Data)
		}
	}
	if !foundImage {
		return nil, errors.New("File may be corrupt; image data resource is missing.")
	}
	return f, nil
}

func (f *File) hasThumbnailHeader() bool {
	h := &f.header
	return h.LowResImageFormat != IMAGE_FORMAT_NONE && h.LowResImageWidth != 0 && h.LowResImageHeight != 0
}

// imageDataSize is the total size of all mipmaps, frames, faces and slices.
// ok is false if it exceeds limit.
func (f *File) imageDataSize(limit int64) (size int, ok bool) {
	var total int64
	for level := 0; level < f.MipmapCount(); level++ {
		w, h, d := ComputeMipmapDimensions(f.Width(), f.Height(), f.depth, level)
		n, ok := mulLimit(limit, imageSize(w, h, d, f.Format()), int64(f.FrameCount()), int64(f.faces))
		if !ok {
			return 0, false
		}
		total += n
		if total > limit {
			return 0, false
		}
	}
	return int(total), true
}

// mulLimit multiplies non-negative factors. ok is false if the product
// exceeds limit.
func mulLimit(limit int64, factors ...int64) (product int64, ok bool) {
	product = 1
	for _, x := range factors {
		if x != 0 && product > limit/x {
			return 0, false
		}
		product *= x
	}
	return product, product <= limit
}

func (f *File) Width() int { return int(f.header.Width) }
func (f *File) Height() int { return int(f.header.Height) }
func (f *File) Depth() int { return f.depth }
func (f *File) FrameCount() int { return int(f.header.Frames) }
func (f *File) StartFrame() int { return int(f.header.StartFrame) }
func (f *File) FaceCount() int { return f.faces }
func (f *File) MipmapCount() int { return int(f.header.MipmapCount) }
func (f *File) Flags() TextureFlags { return f.header.Flags }
func (f *File) Format() ImageFormat { return f.header.HighResImageFormat }
func (f *File) BumpmapScale() float32 { return f.header.BumpmapScale }
func (f *File) Reflectivity() [3]float32 { return f.header.Reflectivity }
func (f *File) MajorVersion() int { return int(f.header.Version[0]) }
func (f *File) MinorVersion() int { return int(f.header.Version[1]) }
func (f *File) Resources() []Resource { return f.resources }
func (f *File) HasThumbnail() bool { return f.thumbnail != nil && f.hasThumbnailHeader() }
func (f *File) ThumbnailWidth() int { return int(f.header.LowResImageWidth) }
func (f *File) ThumbnailHeight() int { return int(f.header.LowResImageHeight) }
func (f *File) ThumbnailFormat() ImageFormat { return f.header.LowResImageFormat }

// ThumbnailData returns the raw low resolution image, or nil if the file has
// none.
func (f *File) ThumbnailData() []byte {
	if !f.HasThumbnail() {
		return nil
	}
	return f.thumbnail
}

// Data returns the raw encoded bytes of one slice of one face of one frame at
// the passed mipmap level. The returned slice aliases the loaded buffer.
func (f *File) Data(frame, face, slice, mipmap int) ([]byte, error) {
	if frame < 0 || frame >= f.FrameCount() {
		return nil, errors.Errorf("vtf: frame %d out of range [0,%d)", frame, f.FrameCount())
	}
	if face < 0 || face >= f.faces {
		return nil, errors.Errorf("vtf: face %d out of range [0,%d)", face, f.faces)
	}
	if mipmap < 0 || mipmap >= f.MipmapCount() {
		return nil, errors.Errorf("vtf: mipmap %d out of range [0,%d)", mipmap, f.MipmapCount())
	}
	mw, mh, md := ComputeMipmapDimensions(f.Width(), f.Height(), f.depth, mipmap)
	if slice < 0 || slice >= md {
		return nil, errors.Errorf("vtf: slice %d out of range [0,%d)", slice, md)
	}

	// Mipmaps are stored smallest first; each level holds all frames, each
	// frame all faces, each face all slices.
	// Load checked that the sum of all levels fits in the buffer, so none of
	// these products overflow.
	offset := 0
	for level := f.MipmapCount() - 1; level > mipmap; level-- {
		w, h, d := ComputeMipmapDimensions(f.Width(), f.Height(), f.depth, level)
		offset += ComputeImageSize(w, h, d, f.Format()) * f.FrameCount() * f.faces
	}
	faceSize := ComputeImageSize(mw, mh, md, f.Format())
	sliceSize := ComputeImageSize(mw, mh, 1, f.Format())
	offset += (frame*f.faces+face)*faceSize + slice*sliceSize

	return f.data[offset : offset+sliceSize], nil
}
