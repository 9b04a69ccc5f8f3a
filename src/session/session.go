// Package session holds the value types of one capture→request→confirm→
// replace episode and the token-gated response handler slot.
package session

import (
	"errors"

	"github.com/google/uuid"

	"fixtext/src/focus"
	"fixtext/src/selection"
)

var (
	// ErrStaleResponse marks a reply whose token is no longer current.
	ErrStaleResponse = errors.New("stale response")
	// ErrFocusActivationFailed means the originating app could not be
	// brought forward before replacement.
	ErrFocusActivationFailed = errors.New("could not activate originating application")
	// ErrEmptyReply means the service answered with nothing usable.
	ErrEmptyReply = errors.New("service returned an empty reply")
)

// Token uniquely identifies a session or a standalone request.
type Token string

func NewToken() Token { return Token(uuid.NewString()) }

// State is the coordinator's state machine position.
type State int

const (
	Idle State = iota
	Capturing
	AwaitingResponse
	ResponseReady
	Applying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case AwaitingResponse:
		return "awaiting-response"
	case ResponseReady:
		return "response-ready"
	case Applying:
		return "applying"
	default:
		return "unknown"
	}
}

// Session is the single live episode. Source is zero when the originating
// application could not be identified.
type Session struct {
	ID      Token
	Capture *selection.CaptureResult
	Source  focus.AppHandle
	Pending string
}

// Reply is what the request pipeline produced for a token.
type Reply struct {
	Text string
	Err  error
}

// Handler consumes a reply and reports whether it acted on it.
type Handler func(Reply) bool

// Slot holds at most one handler registration. It is not safe for
// concurrent use; the coordinator goroutine owns it.
type Slot struct {
	token   Token
	handler Handler
}

// Register installs h for t, invalidating any earlier registration.
func (s *Slot) Register(t Token, h Handler) {
	s.token = t
	s.handler = h
}

func (s *Slot) Clear() {
	s.token = ""
	s.handler = nil
}

func (s *Slot) Active() bool { return s.handler != nil }

func (s *Slot) Token() Token { return s.token }

// Deliver invokes the registered handler if t matches. The registration is
// cleared before the handler runs so it can fire at most once.
func (s *Slot) Deliver(t Token, r Reply) (bool, error) {
	if s.handler == nil || t == "" || t != s.token {
		return false, ErrStaleResponse
	}
	h := s.handler
	s.Clear()
	return h(r), nil
}
