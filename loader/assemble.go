package loader

import (
	"image"
	"time"

	"github.com/golang/glog"
)

// FrameDuration is how long each animation frame is shown. Containers carry
// no timing information, so playback runs at a fixed 4 frames per second.
const FrameDuration = 250 * time.Millisecond

// Request says which results the caller can take.
type Request struct {
	Still     bool
	Animation bool
}

// Still is a single decoded frame plus the container's display attributes.
type Still struct {
	Image      *image.NRGBA
	Attributes map[string]string
}

// Animation is the ordered frame sequence of a texture. Frames is never
// empty in a successfully returned Animation.
type Animation struct {
	Width, Height int
	Frames        []*image.NRGBA
	FrameDuration time.Duration
	Loop          bool
}

// assemble converts t into the requested outputs.
//
// An animation is produced if one was requested and either the texture does
// not have exactly one frame or no still was requested. Otherwise a still of
// the last frame is produced if requested. With neither requested, both
// results are nil.
//
// On error nothing is returned and every raster obtained from alloc during
// the call has been released.
func assemble(t *DecodedTexture, req Request, alloc Allocator) (*Still, *Animation, error) {
	if req.Animation && (t.Frames() != 1 || !req.Still) {
		anim, err := assembleAnimation(t, alloc)
		if err != nil {
			return nil, nil, err
		}
		return nil, anim, nil
	}
	if req.Still {
		still, err := assembleStill(t, alloc)
		if err != nil {
			return nil, nil, err
		}
		return still, nil, nil
	}
	return nil, nil, nil
}

func assembleAnimation(t *DecodedTexture, alloc Allocator) (*Animation, error) {
	start := t.StartFrame()
	if start >= t.Frames() {
		glog.Warningf("loader: start frame %d out of range for %d frames, starting at 0", start, t.Frames())
		start = 0
	}
	glog.V(2).Infof("loader: assembling %dx%d animation of frames %d to %d", t.Width(), t.Height(), start, t.Frames()-1)

	frames := make([]*image.NRGBA, 0, t.Frames()-start)
	done := false
	defer func() {
		if done {
			return
		}
		for _, m := range frames {
			alloc.Release(m)
		}
	}()

	for i := start; i < t.Frames(); i++ {
		m, err := alloc.NewRaster(t.Width(), t.Height())
		if err != nil {
			return nil, asError(InsufficientMemory, err)
		}
		frames = append(frames, m)
		if err := convertFrame(t, i, m); err != nil {
			return nil, err
		}
	}

	done = true
	return &Animation{
		Width:         t.Width(),
		Height:        t.Height(),
		Frames:        frames,
		FrameDuration: FrameDuration,
		Loop:          true,
	}, nil
}

func assembleStill(t *DecodedTexture, alloc Allocator) (*Still, error) {
	last := t.Frames() - 1
	glog.V(2).Infof("loader: assembling %dx%d still from frame %d", t.Width(), t.Height(), last)

	m, err := alloc.NewRaster(t.Width(), t.Height())
	if err != nil {
		return nil, asError(InsufficientMemory, err)
	}
	done := false
	defer func() {
		if !done {
			alloc.Release(m)
		}
	}()

	if err := convertFrame(t, last, m); err != nil {
		return nil, err
	}
	still := &Still{Image: m, Attributes: Attributes(t)}
	done = true
	return still, nil
}
