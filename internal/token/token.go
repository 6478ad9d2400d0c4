// Package token issues and validates gate-pass tokens. A token asserts a
// claimed identity for a short validity window and is presented at the gate
// as QR content.
package token

import "time"

// Status tracks a token through its lifecycle. ACTIVE is the only state a
// token is issued in; EXPIRED and CONSUMED are terminal.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusExpired  Status = "EXPIRED"
	StatusConsumed Status = "CONSUMED"
)

// GateToken is one issued gate pass held in the active-token registry.
type GateToken struct {
	TokenID     string    `json:"token_id"`
	IdentityKey string    `json:"identity_key"`
	DisplayName string    `json:"display_name"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Status      Status    `json:"status"`
}

// ExpiredAt reports whether the token's validity window has elapsed.
// The boundary is pinned: a token is expired at exactly ExpiresAt.
func (t GateToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Claims are the identity assertions recovered from a validated token.
type Claims struct {
	TokenID     string
	IdentityKey string
	DisplayName string
}
