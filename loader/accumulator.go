package loader

import (
	"github.com/golang/glog"
)

// DefaultCapacity is the initial capacity of a new Accumulator, unless its
// limit is smaller.
const DefaultCapacity = 8192

// Accumulator collects appended chunks into one contiguous buffer.
//
// Capacity starts at DefaultCapacity, or the limit if smaller, and only ever
// grows by doubling, so n bytes appended in any number of chunks cost O(n)
// copying overall.
type Accumulator struct {
	buf      []byte
	max      int
	released bool
}

// NewAccumulator returns an empty accumulator bounded by the current
// MaxBufferBytes limit.
func NewAccumulator() *Accumulator {
	return newAccumulator(currentLimits().MaxBufferBytes)
}

func newAccumulator(max int) *Accumulator {
	if max < 1 {
		max = 1
	}
	size := DefaultCapacity
	if max < size {
		size = max
	}
	return &Accumulator{
		buf: make([]byte, 0, size),
		max: max,
	}
}

// Append copies p to the end of the buffer, doubling the capacity as many
// times as needed. If the grown buffer would exceed the configured limit,
// the accumulator is released and an InsufficientMemory error is returned.
func (a *Accumulator) Append(p []byte) error {
	if a.released {
		return newError(UnhandledFault, nil, "Append called on a released buffer")
	}
	if len(p) == 0 {
		return nil
	}

	used := len(a.buf) + len(p)
	if used < len(a.buf) {
		a.Release()
		return newError(InsufficientMemory, nil, "Not enough memory")
	}
	if used > cap(a.buf) {
		size := cap(a.buf)
		for used > size {
			if size > a.max/2 {
				a.Release()
				return newError(InsufficientMemory, nil, "Not enough memory (buffer would exceed %d bytes)", a.max)
			}
			size *= 2
		}
		glog.V(3).Infof("loader: growing buffer from %d to %d bytes", cap(a.buf), size)
		buf := make([]byte, len(a.buf), size)
		copy(buf, a.buf)
		a.buf = buf
	}
	a.buf = append(a.buf, p...)
	return nil
}

// Bytes returns the accumulated bytes without copying. The slice is only
// valid until the next Append or Release.
func (a *Accumulator) Bytes() []byte {
	return a.buf
}

// Len is the number of bytes appended so far.
func (a *Accumulator) Len() int { return len(a.buf) }

// Cap is the current capacity. It never exceeds the limit.
func (a *Accumulator) Cap() int { return cap(a.buf) }

// Release drops the buffer. Further appends fail.
func (a *Accumulator) Release() {
	a.buf = nil
	a.released = true
}
