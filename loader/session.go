package loader

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ErrSessionClosed is returned by calls on a session that has already been
// finalized or has failed.
var ErrSessionClosed = errors.New("loader: session is closed")

// Callbacks are the host's notifications for a streaming Session. They are
// called synchronously with the package lock held and must not call back
// into this package.
type Callbacks struct {
	// Size, if set, receives the texture dimensions once the container has
	// been parsed, before any pixels are converted.
	Size func(width, height int)
	// Prepared receives the result of a successful Finalize, exactly once.
	// Exactly one of still and anim is non-nil.
	Prepared func(still *Still, anim *Animation)
	// Updated is never called; decoding happens all at once in Finalize.
	Updated func(x, y, width, height int)
	// StillOnly is set by hosts whose Prepared handler cannot take
	// animations. Otherwise multi-frame textures are delivered as
	// animations.
	StillOnly bool
}

// State is the lifecycle stage of a Session.
type State int

const (
	// STATE_OPEN accepts appends.
	STATE_OPEN State = iota
	// STATE_FINALIZING is decoding; callbacks run in this state.
	STATE_FINALIZING
	// STATE_DELIVERED has passed its result to Prepared.
	STATE_DELIVERED
	// STATE_FAILED ended in an error or was aborted.
	STATE_FAILED
)

func (s State) String() string {
	switch s {
	case STATE_OPEN:
		return "open"
	case STATE_FINALIZING:
		return "finalizing"
	case STATE_DELIVERED:
		return "delivered"
	case STATE_FAILED:
		return "failed"
	default:
		return "unknown"
	}
}

// Session accumulates a container delivered in chunks and decodes it once,
// on Finalize. A session is single use.
type Session struct {
	cb    Callbacks
	acc   *Accumulator
	state State
}

// Open starts a streaming session.
func Open(cb Callbacks) *Session {
	decodeMu.Lock()
	defer decodeMu.Unlock()
	return &Session{
		cb:    cb,
		acc:   newAccumulator(limits.MaxBufferBytes),
		state: STATE_OPEN,
	}
}

// State reports where the session is in its lifecycle.
func (s *Session) State() State {
	decodeMu.Lock()
	defer decodeMu.Unlock()
	return s.state
}

// Append adds a chunk. A failed append ends the session.
func (s *Session) Append(p []byte) (err error) {
	decodeMu.Lock()
	defer decodeMu.Unlock()
	if s.state != STATE_OPEN {
		return ErrSessionClosed
	}
	defer recoverFault(&err, s.fail)

	if err := s.acc.Append(p); err != nil {
		glog.Errorf("loader: append of %d bytes failed after %d bytes: %v", len(p), s.acc.Len(), err)
		s.fail()
		return err
	}
	return nil
}

// Finalize decodes everything appended so far and, on success, passes the
// result to the Prepared callback. The session is closed afterwards
// regardless of the outcome.
func (s *Session) Finalize() (err error) {
	decodeMu.Lock()
	defer decodeMu.Unlock()
	if s.state != STATE_OPEN {
		return ErrSessionClosed
	}
	s.state = STATE_FINALIZING
	defer recoverFault(&err, s.fail)

	req := Request{Still: true, Animation: !s.cb.StillOnly}
	still, anim, err := decodeLocked(s.acc.Bytes(), req, s.cb.Size)
	if err != nil {
		s.fail()
		return err
	}
	if s.cb.Prepared != nil {
		s.cb.Prepared(still, anim)
	}
	s.acc.Release()
	s.state = STATE_DELIVERED
	return nil
}

// Abort ends an open session without decoding what was appended. No
// callback is called. Aborting a closed session does nothing.
func (s *Session) Abort() {
	decodeMu.Lock()
	defer decodeMu.Unlock()
	if s.state != STATE_OPEN {
		return
	}
	glog.V(2).Infof("loader: session aborted after %d bytes", s.acc.Len())
	s.fail()
}

func (s *Session) fail() {
	s.acc.Release()
	s.state = STATE_FAILED
}
