package loader

import (
	"errors"
	"image"
	"testing"

	"github.com/panzi/pixbufloader-vtf/ttesting"
	"github.com/panzi/pixbufloader-vtf/vtf"
	"github.com/panzi/pixbufloader-vtf/vtf/vtftest"
)

// trackingAllocator fails its failAt-th allocation (1-based; 0 never fails)
// and remembers which rasters are still outstanding.
type trackingAllocator struct {
	failAt int
	calls  int
	live   map[*image.NRGBA]bool
}

func newTrackingAllocator(failAt int) *trackingAllocator {
	return &trackingAllocator{failAt: failAt, live: map[*image.NRGBA]bool{}}
}

func (a *trackingAllocator) NewRaster(width, height int) (*image.NRGBA, error) {
	a.calls++
	if a.calls == a.failAt {
		return nil, newError(InsufficientMemory, nil, "Could not allocate raster")
	}
	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	a.live[m] = true
	return m, nil
}

func (a *trackingAllocator) Release(m *image.NRGBA) {
	delete(a.live, m)
}

func mustDecodeContainer(t *testing.T, b *vtftest.Builder) *DecodedTexture {
	t.Helper()
	tex, err := decodeContainer(b.Build())
	if err != nil {
		t.Fatalf("decodeContainer: %v", err)
	}
	return tex
}

func TestAssembleAllocationFailureReleasesFrames(t *testing.T) {
	b := vtftest.New(8, 8)
	b.Frames = 5
	tex := mustDecodeContainer(t, b)

	alloc := newTrackingAllocator(5)
	still, anim, err := assemble(tex, Request{Animation: true}, alloc)
	if still != nil || anim != nil {
		t.Errorf("got partial results %v, %v", still, anim)
	}
	if !errors.Is(err, ErrInsufficientMemory) {
		t.Fatalf("got %v; want insufficient memory", err)
	}
	ttesting.AssertEqualInt(t, "allocations attempted", alloc.calls, 5)
	ttesting.AssertEqualInt(t, "leaked rasters", len(alloc.live), 0)
}

func TestAssembleConversionFailureReleasesFrames(t *testing.T) {
	b := vtftest.New(4, 4)
	b.Frames = 3
	b.Format = vtf.IMAGE_FORMAT_P8
	tex := mustDecodeContainer(t, b)

	for _, req := range []Request{{Animation: true}, {Still: true}} {
		alloc := newTrackingAllocator(0)
		_, _, err := assemble(tex, req, alloc)
		if !errors.Is(err, ErrConversionFailure) {
			t.Errorf("%+v: got %v; want conversion failure", req, err)
		}
		ttesting.AssertEqualInt(t, "leaked rasters", len(alloc.live), 0)
	}
}

func TestAssembleStillAllocationFailure(t *testing.T) {
	tex := mustDecodeContainer(t, vtftest.New(4, 4))
	alloc := newTrackingAllocator(1)
	_, _, err := assemble(tex, Request{Still: true}, alloc)
	if !errors.Is(err, ErrInsufficientMemory) {
		t.Fatalf("got %v; want insufficient memory", err)
	}
}

func TestAssembleDecisionRule(t *testing.T) {
	single := mustDecodeContainer(t, vtftest.New(4, 4))
	multi := func() *DecodedTexture {
		b := vtftest.New(4, 4)
		b.Frames = 3
		return mustDecodeContainer(t, b)
	}()

	cases := []struct {
		name      string
		tex       *DecodedTexture
		req       Request
		wantStill bool
		wantAnim  bool
	}{
		{"single, both", single, Request{Still: true, Animation: true}, true, false},
		{"single, still", single, Request{Still: true}, true, false},
		{"single, animation", single, Request{Animation: true}, false, true},
		{"multi, both", multi, Request{Still: true, Animation: true}, false, true},
		{"multi, still", multi, Request{Still: true}, true, false},
		{"multi, animation", multi, Request{Animation: true}, false, true},
		{"single, neither", single, Request{}, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			alloc := newTrackingAllocator(0)
			still, anim, err := assemble(c.tex, c.req, alloc)
			if err != nil {
				t.Fatalf("assemble: %v", err)
			}
			ttesting.AssertEqualBool(t, "still", still != nil, c.wantStill)
			ttesting.AssertEqualBool(t, "animation", anim != nil, c.wantAnim)
			if still != nil && still.Attributes == nil {
				t.Errorf("still has no attributes")
			}
		})
	}
}

func TestAssembleOutOfRangeStartFrame(t *testing.T) {
	b := vtftest.New(4, 4)
	b.Frames = 2
	b.StartFrame = 0xFFFF
	b.MinorVersion = 5
	b.Flags = vtf.TEXTUREFLAGS_ENVMAP
	tex := mustDecodeContainer(t, b)

	_, anim, err := assemble(tex, Request{Animation: true}, newTrackingAllocator(0))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	ttesting.AssertEqualInt(t, "frames", len(anim.Frames), 2)
}

func TestAccumulatorGrowsByDoubling(t *testing.T) {
	a := newAccumulator(DefaultLimits.MaxBufferBytes)
	ttesting.AssertEqualInt(t, "initial capacity", a.Cap(), DefaultCapacity)

	total := 0
	prev := a.Cap()
	for _, n := range []int{0, 1, 7, 4096, 1, 5000, 100000, 3} {
		if err := a.Append(make([]byte, n)); err != nil {
			t.Fatalf("Append(%d): %v", n, err)
		}
		total += n
		if a.Len() != total {
			t.Fatalf("after %d: len %d; want %d", n, a.Len(), total)
		}
		if a.Cap() < total {
			t.Fatalf("after %d: cap %d < len %d", n, a.Cap(), total)
		}
		for c := prev; c != a.Cap(); c *= 2 {
			if c > a.Cap() {
				t.Fatalf("capacity %d is not a doubling of %d", a.Cap(), prev)
			}
		}
		prev = a.Cap()
	}
	ttesting.AssertEqualInt(t, "final capacity", a.Cap(), 131072)
}

func TestAccumulatorLimit(t *testing.T) {
	a := newAccumulator(2 * DefaultCapacity)
	if err := a.Append(make([]byte, DefaultCapacity+1)); err != nil {
		t.Fatalf("Append within limit: %v", err)
	}
	err := a.Append(make([]byte, DefaultCapacity))
	if !errors.Is(err, ErrInsufficientMemory) {
		t.Fatalf("got %v; want insufficient memory", err)
	}
	ttesting.AssertEqualInt(t, "released", a.Len(), 0)
	if err := a.Append([]byte{1}); err == nil {
		t.Errorf("append after release succeeded")
	}
}

func TestAccumulatorLimitBelowDefaultCapacity(t *testing.T) {
	a := newAccumulator(100)
	ttesting.AssertEqualInt(t, "initial capacity", a.Cap(), 100)
	if err := a.Append(make([]byte, 100)); err != nil {
		t.Fatalf("Append up to the limit: %v", err)
	}
	err := a.Append([]byte{1})
	if !errors.Is(err, ErrInsufficientMemory) {
		t.Fatalf("got %v; want insufficient memory", err)
	}
}
