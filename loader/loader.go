package loader

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// decodeMu serializes every entry point. The vtf parser keeps its last
// error in process-wide state, so at most one decode may be in flight.
var decodeMu sync.Mutex

// Decode converts a whole container into a still image of its last frame,
// with display attributes attached.
func Decode(b []byte) (still *Still, err error) {
	decodeMu.Lock()
	defer decodeMu.Unlock()
	defer recoverFault(&err, func() { still = nil })

	still, _, err = decodeLocked(b, Request{Still: true}, nil)
	return still, err
}

// DecodeAnimated converts a whole container into an animation of every
// frame from the container's start frame on. Single frame textures yield a
// one frame animation.
func DecodeAnimated(b []byte) (anim *Animation, err error) {
	decodeMu.Lock()
	defer decodeMu.Unlock()
	defer recoverFault(&err, func() { anim = nil })

	_, anim, err = decodeLocked(b, Request{Animation: true}, nil)
	return anim, err
}

// DecodeFile reads the named file and decodes it like Decode.
func DecodeFile(path string) (*Still, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// DecodeFileAnimated reads the named file and decodes it like
// DecodeAnimated.
func DecodeFileAnimated(path string) (*Animation, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeAnimated(b)
}

// Inspect parses the container without converting any pixels, returning
// its properties and display attributes. The returned texture aliases b.
func Inspect(b []byte) (t *DecodedTexture, attrs map[string]string, err error) {
	decodeMu.Lock()
	defer decodeMu.Unlock()
	defer recoverFault(&err, func() { t, attrs = nil, nil })

	t, err = decodeContainer(b)
	if err != nil {
		return nil, nil, err
	}
	return t, Attributes(t), nil
}

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: IoFailure, Err: errors.Wrapf(err, "loader: reading %s", path)}
	}
	return b, nil
}

// decodeLocked runs the container decoder and the assembler on a complete
// buffer. size, if not nil, is told the texture dimensions before assembly.
//
// Must be called with decodeMu held.
func decodeLocked(b []byte, req Request, size func(width, height int)) (*Still, *Animation, error) {
	t, err := decodeContainer(b)
	if err != nil {
		return nil, nil, err
	}
	glog.V(2).Infof("loader: decoded %dx%d %s texture, %d frames starting at %d", t.Width(), t.Height(), t.Format(), t.Frames(), t.StartFrame())
	if size != nil {
		size(t.Width(), t.Height())
	}
	return assemble(t, req, heapAllocator{max: limits.MaxRasterBytes})
}

// recoverFault turns a panic into an UnhandledFault error stored in *err,
// after calling discard to drop any partial results.
func recoverFault(err *error, discard func()) {
	r := recover()
	if r == nil {
		return
	}
	glog.Errorf("loader: recovered from panic: %v", r)
	discard()
	switch v := r.(type) {
	case error:
		*err = &Error{Kind: UnhandledFault, Msg: v.Error(), Err: v}
	case string:
		*err = &Error{Kind: UnhandledFault, Msg: v}
	default:
		*err = &Error{Kind: UnhandledFault, Msg: fmt.Sprintf("Unhandled fault: %v", v)}
	}
}
