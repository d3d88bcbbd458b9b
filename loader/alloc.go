package loader

import (
	"image"
)

// Limits bound the memory a single decode may claim.
type Limits struct {
	// MaxBufferBytes caps the capacity a streaming session's buffer may
	// grow to, including its initial allocation.
	MaxBufferBytes int
	// MaxRasterBytes caps the size of one RGBA raster.
	MaxRasterBytes int64
}

// DefaultLimits are in effect until SetLimits is called.
var DefaultLimits = Limits{
	MaxBufferBytes: 1 << 30,
	MaxRasterBytes: 1 << 30,
}

// limits is guarded by decodeMu.
var limits = DefaultLimits

// SetLimits replaces the limits used by subsequent decodes. Zero fields
// keep their default.
func SetLimits(l Limits) {
	if l.MaxBufferBytes <= 0 {
		l.MaxBufferBytes = DefaultLimits.MaxBufferBytes
	}
	if l.MaxRasterBytes <= 0 {
		l.MaxRasterBytes = DefaultLimits.MaxRasterBytes
	}
	decodeMu.Lock()
	defer decodeMu.Unlock()
	limits = l
}

func currentLimits() Limits {
	decodeMu.Lock()
	defer decodeMu.Unlock()
	return limits
}

// Allocator hands out the rasters decoded frames are written into. Every
// raster obtained from NewRaster that does not end up in a returned result
// is passed back to Release.
type Allocator interface {
	NewRaster(width, height int) (*image.NRGBA, error)
	Release(m *image.NRGBA)
}

// heapAllocator allocates from the Go heap, refusing rasters larger than
// max bytes.
type heapAllocator struct {
	max int64
}

func (a heapAllocator) NewRaster(width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, newError(InsufficientMemory, nil, "Could not allocate %dx%d raster", width, height)
	}
	if size := int64(width) * int64(height) * 4; size > a.max {
		return nil, newError(InsufficientMemory, nil, "Could not allocate %dx%d raster (%d bytes exceeds limit of %d)", width, height, size, a.max)
	}
	return image.NewNRGBA(image.Rect(0, 0, width, height)), nil
}

// Release is a no-op; the garbage collector reclaims the pixels.
func (a heapAllocator) Release(m *image.NRGBA) {}
