package token

import (
	"errors"
	"fmt"
	"strings"
)

// Wire format for QR content: an ASCII positional record
//
//	GATEPASS|token_id|identity_key|display_name
//
// There is no escaping; field values containing the separator are rejected
// at issuance time, so positional splitting at the gate is safe.
const (
	contentTag       = "GATEPASS"
	contentSeparator = "|"
	contentFields    = 4
)

// ErrInvalidFormat is returned when presented content does not parse into
// the expected record shape. It fires before any registry lookup.
var ErrInvalidFormat = errors.New("invalid gate pass format")

// ContentRef is the parsed form of presented QR content. It is only a
// reference; the registry's copy of the token is authoritative.
type ContentRef struct {
	TokenID     string
	IdentityKey string
	DisplayName string
}

// EncodeContent renders a token as QR content. Field values containing the
// separator are rejected so the record stays positionally parseable.
func EncodeContent(t GateToken) (string, error) {
	for _, field := range []string{t.TokenID, t.IdentityKey, t.DisplayName} {
		if strings.Contains(field, contentSeparator) {
			return "", fmt.Errorf("field %q contains the separator %q", field, contentSeparator)
		}
	}
	if t.TokenID == "" || t.IdentityKey == "" {
		return "", errors.New("token id and identity key are required")
	}
	return strings.Join([]string{contentTag, t.TokenID, t.IdentityKey, t.DisplayName}, contentSeparator), nil
}

// ParseContent parses presented QR content. Wrong field count or wrong tag
// yields ErrInvalidFormat; no lookup happens here.
func ParseContent(content string) (ContentRef, error) {
	parts := strings.Split(content, contentSeparator)
	if len(parts) != contentFields {
		return ContentRef{}, ErrInvalidFormat
	}
	if parts[0] != contentTag {
		return ContentRef{}, ErrInvalidFormat
	}
	if parts[1] == "" || parts[2] == "" {
		return ContentRef{}, ErrInvalidFormat
	}
	return ContentRef{
		TokenID:     parts[1],
		IdentityKey: parts[2],
		DisplayName: parts[3],
	}, nil
}
