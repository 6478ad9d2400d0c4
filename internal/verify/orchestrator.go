package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatewise/gatekeeper/internal/facematch"
	"github.com/gatewise/gatekeeper/internal/metrics"
	"github.com/gatewise/gatekeeper/internal/token"
)

// TokenValidator validates presented QR content and returns the registered
// claims. Implemented by token.Service.
type TokenValidator interface {
	Validate(ctx context.Context, content string) (token.Claims, error)
}

// FaceVerifier performs one-to-one face verification against a claimed
// identity. Implemented by facematch.Engine.
type FaceVerifier interface {
	Verify(ctx context.Context, identityKey string, probe []byte) (facematch.VerifyResult, error)
}

// Orchestrator runs the two-factor check in fixed order: token first, face
// second. A token failure short-circuits; the face provider is never
// invoked for an invalid, unknown, expired or already-used pass.
type Orchestrator struct {
	tokens  TokenValidator
	faces   FaceVerifier
	metrics *metrics.Metrics
}

// NewOrchestrator wires the two factors together. Metrics may be nil.
func NewOrchestrator(tokens TokenValidator, faces FaceVerifier, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		tokens:  tokens,
		faces:   faces,
		metrics: m,
	}
}

// Verify runs one full verification attempt against presented QR content
// and a probe image. Policy failures come back as DENIED decisions, not
// errors; the error return is reserved for infrastructure faults.
func (o *Orchestrator) Verify(ctx context.Context, qrContent string, probe []byte) (Decision, error) {
	start := time.Now()

	claims, err := o.tokens.Validate(ctx, qrContent)
	if err != nil {
		if reason, ok := TokenDenialReason(err); ok {
			return o.record(Decision{Outcome: OutcomeDenied, Reason: reason}, start), nil
		}
		return Decision{}, fmt.Errorf("validate token: %w", err)
	}

	result, err := o.faces.Verify(ctx, claims.IdentityKey, probe)
	if err != nil {
		return Decision{}, fmt.Errorf("verify face for %s: %w", claims.IdentityKey, err)
	}

	d := Decision{
		IdentityKey: claims.IdentityKey,
		DisplayName: claims.DisplayName,
	}

	switch result.Outcome {
	case facematch.VerifyMatch:
		d.Outcome = OutcomeGranted
		d.Reason = ReasonSuccess
		d.Distance = &result.Distance
	case facematch.VerifyNoMatch:
		d.Outcome = OutcomeDenied
		d.Reason = ReasonFaceMismatch
		d.Distance = &result.Distance
	case facematch.VerifyUnknownIdentity:
		d.Outcome = OutcomeDenied
		d.Reason = ReasonUnknownIdentity
	case facematch.VerifyNoFace:
		d.Outcome = OutcomeDenied
		d.Reason = ReasonNoFaceDetected
	default:
		return Decision{}, fmt.Errorf("unexpected face verification outcome %q", result.Outcome)
	}

	return o.record(d, start), nil
}

func (o *Orchestrator) record(d Decision, start time.Time) Decision {
	if o.metrics == nil {
		return d
	}
	o.metrics.RecordDecision(string(d.Outcome), string(d.Reason))
	if d.Distance != nil {
		o.metrics.ObserveDistance(*d.Distance)
	}
	o.metrics.ObserveVerify(start)
	return d
}

// TokenDenialReason maps token validation errors onto denial reasons.
// Unmapped errors are infrastructure faults, not policy denials.
func TokenDenialReason(err error) (Reason, bool) {
	switch {
	case errors.Is(err, token.ErrInvalidFormat):
		return ReasonInvalidFormat, true
	case errors.Is(err, token.ErrUnknownToken):
		return ReasonUnknownToken, true
	case errors.Is(err, token.ErrExpired):
		return ReasonExpired, true
	case errors.Is(err, token.ErrConsumed):
		return ReasonConsumed, true
	}
	return "", false
}
