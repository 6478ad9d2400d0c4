// Package kiosk drives an attended gate terminal: a face is identified
// first, then the matching gate pass is scanned, then the gate holds open
// briefly before resetting for the next person.
package kiosk

import (
	"context"
	"fmt"
	"time"

	"github.com/gatewise/gatekeeper/internal/facematch"
	"github.com/gatewise/gatekeeper/internal/token"
	"github.com/gatewise/gatekeeper/internal/verify"
)

// State is the kiosk session phase.
type State string

const (
	StateAwaitingFace State = "AWAITING_FACE"
	StateAwaitingQR   State = "AWAITING_QR"
	StateVerified     State = "VERIFIED"
)

// EventKind classifies what happened while processing one frame.
type EventKind string

const (
	// EventIdle means the frame produced no transition: the face check is
	// timer-gated, no QR was found, or the hold period is still running.
	EventIdle                 EventKind = "IDLE"
	EventFaceMatched          EventKind = "FACE_MATCHED"
	EventFaceNotRecognized    EventKind = "FACE_NOT_RECOGNIZED"
	EventTokenRejected        EventKind = "TOKEN_REJECTED"
	EventIdentityInconsistent EventKind = "IDENTITY_INCONSISTENT"
	EventVerified             EventKind = "VERIFIED"
	EventSessionReset         EventKind = "SESSION_RESET"
)

// Event reports one frame's result to the presentation layer. The session
// never formats user-facing text; Detail carries a machine-readable reason.
type Event struct {
	Kind        EventKind
	State       State
	IdentityKey string
	Detail      string
}

// Identifier performs one-to-many face identification on a frame.
// Implemented by facematch.Engine.
type Identifier interface {
	Identify(ctx context.Context, probe []byte) (facematch.IdentifyResult, error)
}

// TokenChecker validates gate passes in two steps so the pass is only
// consumed once the identity cross-check succeeds. A pass scanned against
// the wrong face stays usable by its rightful owner. Implemented by
// token.Service.
type TokenChecker interface {
	Check(ctx context.Context, content string) (token.Claims, error)
	Consume(ctx context.Context, tokenID string) error
}

// QRDecoder extracts QR content from a frame. Found reports whether any QR
// code was present; decode failures on a frame are not errors.
type QRDecoder interface {
	Decode(frame []byte) (content string, found bool)
}

// FrameSource supplies captured frames to the kiosk loop. Implementations
// wrap the capture hardware or, for testing, a directory of images.
type FrameSource interface {
	Next(ctx context.Context) ([]byte, error)
}

// Session is the kiosk state machine. It is single-threaded: one goroutine
// feeds frames through Advance.
type Session struct {
	identifier Identifier
	tokens     TokenChecker
	decoder    QRDecoder

	minFaceInterval time.Duration
	holdDuration    time.Duration
	now             func() time.Time

	state           State
	matchedIdentity string
	verifiedAt      time.Time
	lastFaceCheck   time.Time
}

// NewSession creates a session in AWAITING_FACE.
func NewSession(identifier Identifier, tokens TokenChecker, decoder QRDecoder, minFaceInterval, holdDuration time.Duration) *Session {
	return &Session{
		identifier:      identifier,
		tokens:          tokens,
		decoder:         decoder,
		minFaceInterval: minFaceInterval,
		holdDuration:    holdDuration,
		now:             time.Now,
		state:           StateAwaitingFace,
	}
}

// State returns the current session phase.
func (s *Session) State() State {
	return s.state
}

// MatchedIdentity returns the identity matched by the face factor, empty
// in AWAITING_FACE.
func (s *Session) MatchedIdentity() string {
	return s.matchedIdentity
}

// VerifiedAt returns when the session entered VERIFIED, zero otherwise.
func (s *Session) VerifiedAt() time.Time {
	return s.verifiedAt
}

// Advance processes one frame and returns what happened. Policy failures
// (unrecognized face, rejected token, identity mismatch) are events; the
// error return is reserved for infrastructure faults.
func (s *Session) Advance(ctx context.Context, frame []byte) (Event, error) {
	switch s.state {
	case StateAwaitingFace:
		return s.advanceFace(ctx, frame)
	case StateAwaitingQR:
		return s.advanceQR(ctx, frame)
	case StateVerified:
		return s.advanceHold(), nil
	default:
		return Event{}, fmt.Errorf("unexpected session state %q", s.state)
	}
}

func (s *Session) advanceFace(ctx context.Context, frame []byte) (Event, error) {
	// A frame carrying QR content is not a face frame; skip it without
	// burning a timer-gated identification slot.
	if _, found := s.decoder.Decode(frame); found {
		return s.event(EventIdle, ""), nil
	}

	now := s.now()
	// Identification hits the embedding provider, so it runs at most once
	// per MinFaceInterval. Frames inside the window are dropped.
	if !s.lastFaceCheck.IsZero() && now.Sub(s.lastFaceCheck) < s.minFaceInterval {
		return s.event(EventIdle, ""), nil
	}
	s.lastFaceCheck = now

	result, err := s.identifier.Identify(ctx, frame)
	if err != nil {
		return Event{}, fmt.Errorf("identify face: %w", err)
	}

	switch result.Outcome {
	case facematch.IdentifyFound:
		s.state = StateAwaitingQR
		s.matchedIdentity = result.IdentityKey
		return s.event(EventFaceMatched, ""), nil
	case facematch.IdentifyNoFace, facematch.IdentifyNoEnrolledMatch:
		return s.event(EventFaceNotRecognized, string(result.Outcome)), nil
	default:
		return Event{}, fmt.Errorf("unexpected identify outcome %q", result.Outcome)
	}
}

func (s *Session) advanceQR(ctx context.Context, frame []byte) (Event, error) {
	content, found := s.decoder.Decode(frame)
	if !found {
		return s.event(EventIdle, ""), nil
	}

	claims, err := s.tokens.Check(ctx, content)
	if err != nil {
		if reason, ok := verify.TokenDenialReason(err); ok {
			return s.event(EventTokenRejected, string(reason)), nil
		}
		return Event{}, fmt.Errorf("check token: %w", err)
	}

	// Token claims are compared in canonical form; the matched identity is
	// already a store key. The pass is NOT consumed on a mismatch, so its
	// rightful owner can still use it, and the face match is retained so a
	// different pass can be presented.
	if facematch.NormalizeIdentityKey(claims.IdentityKey) != s.matchedIdentity {
		return s.event(EventIdentityInconsistent, claims.IdentityKey), nil
	}

	if err := s.tokens.Consume(ctx, claims.TokenID); err != nil {
		if reason, ok := verify.TokenDenialReason(err); ok {
			return s.event(EventTokenRejected, string(reason)), nil
		}
		return Event{}, fmt.Errorf("consume token: %w", err)
	}

	s.state = StateVerified
	s.verifiedAt = s.now()
	return s.event(EventVerified, ""), nil
}

func (s *Session) advanceHold() Event {
	if s.now().Sub(s.verifiedAt) >= s.holdDuration {
		s.reset()
		return s.event(EventSessionReset, "")
	}
	return s.event(EventIdle, "")
}

// Reset forces the session back to AWAITING_FACE from any state.
func (s *Session) Reset() Event {
	s.reset()
	return s.event(EventSessionReset, "")
}

func (s *Session) reset() {
	s.state = StateAwaitingFace
	s.matchedIdentity = ""
	s.verifiedAt = time.Time{}
	s.lastFaceCheck = time.Time{}
}

func (s *Session) event(kind EventKind, detail string) Event {
	return Event{
		Kind:        kind,
		State:       s.state,
		IdentityKey: s.matchedIdentity,
		Detail:      detail,
	}
}
