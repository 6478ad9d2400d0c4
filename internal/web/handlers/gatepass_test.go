package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gatewise/gatekeeper/internal/token"
)

func testGateToken() token.GateToken {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return token.GateToken{
		TokenID:     "tok-1",
		IdentityKey: "cs21b001",
		DisplayName: "Ada Lovelace",
		IssuedAt:    now,
		ExpiresAt:   now.Add(15 * time.Minute),
		Status:      token.StatusActive,
	}
}

func TestGatepassHandlerIssue(t *testing.T) {
	issuer := &stubIssuer{token: testGateToken()}
	enroller := &stubEnroller{}
	h := NewGatepassHandler(issuer, enroller, nil)

	req := multipartRequest(t, "/api/v1/gatepass",
		map[string]string{"identity": "cs21b001", "name": "Ada Lovelace"},
		nil,
	)
	rec := httptest.NewRecorder()
	h.Issue(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp gatepassResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TokenID != "tok-1" {
		t.Errorf("expected token id tok-1, got %q", resp.TokenID)
	}
	if !strings.HasPrefix(resp.QRContent, "GATEPASS|tok-1|cs21b001|") {
		t.Errorf("unexpected qr content %q", resp.QRContent)
	}

	// No image attached, so no enrollment happens.
	if len(enroller.identities) != 0 {
		t.Errorf("expected no enrollment, got %v", enroller.identities)
	}
}

func TestGatepassHandlerIssueWithRegistrationImage(t *testing.T) {
	issuer := &stubIssuer{token: testGateToken()}
	enroller := &stubEnroller{}
	h := NewGatepassHandler(issuer, enroller, nil)

	req := multipartRequest(t, "/api/v1/gatepass",
		map[string]string{"identity": "cs21b001", "name": "Ada Lovelace"},
		map[string][]byte{"image": []byte("jpeg bytes")},
	)
	rec := httptest.NewRecorder()
	h.Issue(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(enroller.identities) != 1 || enroller.identities[0] != "cs21b001" {
		t.Errorf("expected enrollment before issuing, got %v", enroller.identities)
	}
}

func TestGatepassHandlerCanonicalizesIdentity(t *testing.T) {
	issuer := &stubIssuer{token: testGateToken()}
	enroller := &stubEnroller{}
	h := NewGatepassHandler(issuer, enroller, nil)

	req := multipartRequest(t, "/api/v1/gatepass",
		map[string]string{"identity": "  CS21B001 ", "name": "Ada Lovelace"},
		map[string][]byte{"image": []byte("jpeg bytes")},
	)
	rec := httptest.NewRecorder()
	h.Issue(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	// The pass and the enrollment carry the same canonical key the match
	// store uses, whatever casing the caller sent.
	if len(issuer.identities) != 1 || issuer.identities[0] != "cs21b001" {
		t.Errorf("expected issuance with cs21b001, got %v", issuer.identities)
	}
	if len(enroller.identities) != 1 || enroller.identities[0] != "cs21b001" {
		t.Errorf("expected enrollment with cs21b001, got %v", enroller.identities)
	}
}

func TestGatepassHandlerMissingIdentity(t *testing.T) {
	issuer := &stubIssuer{token: testGateToken()}
	h := NewGatepassHandler(issuer, &stubEnroller{}, nil)

	req := multipartRequest(t, "/api/v1/gatepass",
		map[string]string{"name": "Ada"},
		nil,
	)
	rec := httptest.NewRecorder()
	h.Issue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if issuer.calls != 0 {
		t.Errorf("expected no issuance, got %d calls", issuer.calls)
	}
}

func TestGatepassHandlerInvalidFields(t *testing.T) {
	issuer := &stubIssuer{err: token.ErrInvalidFormat}
	h := NewGatepassHandler(issuer, &stubEnroller{}, nil)

	req := multipartRequest(t, "/api/v1/gatepass",
		map[string]string{"identity": "bad|identity", "name": "Ada"},
		nil,
	)
	rec := httptest.NewRecorder()
	h.Issue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid field characters, got %d", rec.Code)
	}
}
