package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnknownToken is returned for well-formed content whose token ID is
	// absent from the registry. Unregistered tokens are always rejected;
	// there is no stateless trust-the-payload mode.
	ErrUnknownToken = errors.New("unknown token")
	// ErrExpired is returned when the token's validity window has elapsed.
	ErrExpired = errors.New("token expired")
	// ErrConsumed is returned when a single-use token is presented again.
	ErrConsumed = errors.New("token already used")
)

// Service issues gate passes and validates presented QR content.
type Service struct {
	registry Registry
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates a token service issuing passes valid for ttl.
func NewService(registry Registry, ttl time.Duration) *Service {
	return &Service{
		registry: registry,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue creates a fresh ACTIVE gate pass for an identity and stores it in
// the registry. Field values that would corrupt the wire format are
// rejected here, never at parse time.
func (s *Service) Issue(ctx context.Context, identityKey, displayName string) (GateToken, error) {
	now := s.now().UTC()
	t := GateToken{
		TokenID:     uuid.New().String(),
		IdentityKey: identityKey,
		DisplayName: displayName,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.ttl),
		Status:      StatusActive,
	}

	// Encoding validates the fields; a token that cannot be rendered as QR
	// content must never enter the registry.
	if _, err := EncodeContent(t); err != nil {
		return GateToken{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if err := s.registry.Put(ctx, t); err != nil {
		return GateToken{}, fmt.Errorf("register token: %w", err)
	}
	return t, nil
}

// Check validates presented QR content without consuming the token. Order
// matters: parse, then registry lookup, then expiry, then consumed status.
// The registry's copy is authoritative; payload claims are never trusted on
// their own. Callers that tie consumption to a later decision (the kiosk
// cross-check) call Consume themselves once that decision succeeds.
func (s *Service) Check(ctx context.Context, content string) (Claims, error) {
	ref, err := ParseContent(content)
	if err != nil {
		return Claims{}, err
	}

	t, err := s.registry.Get(ctx, ref.TokenID)
	if err != nil {
		return Claims{}, fmt.Errorf("lookup token: %w", err)
	}
	if t == nil {
		return Claims{}, ErrUnknownToken
	}

	if t.ExpiredAt(s.now()) {
		return Claims{}, ErrExpired
	}
	if t.Status == StatusConsumed {
		return Claims{}, ErrConsumed
	}

	return Claims{
		TokenID:     t.TokenID,
		IdentityKey: t.IdentityKey,
		DisplayName: t.DisplayName,
	}, nil
}

// Consume marks a token used. The first call wins; a second call fails with
// ErrConsumed.
func (s *Service) Consume(ctx context.Context, tokenID string) error {
	if err := s.registry.Consume(ctx, tokenID); err != nil {
		if errors.Is(err, ErrAlreadyConsumed) {
			return ErrConsumed
		}
		return fmt.Errorf("consume token: %w", err)
	}
	return nil
}

// Validate checks presented QR content and consumes the token on success.
// A successful Validate is the single use of a single-use pass.
func (s *Service) Validate(ctx context.Context, content string) (Claims, error) {
	claims, err := s.Check(ctx, content)
	if err != nil {
		return Claims{}, err
	}
	if err := s.Consume(ctx, claims.TokenID); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// Sweep removes expired tokens from the registry.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	return s.registry.Sweep(ctx, s.now())
}
