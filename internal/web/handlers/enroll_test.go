package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatewise/gatekeeper/internal/embedding"
)

func TestEnrollHandler(t *testing.T) {
	enroller := &stubEnroller{}
	h := NewEnrollHandler(enroller)

	req := multipartRequest(t, "/api/v1/enroll",
		map[string]string{"identity": "cs21b001"},
		map[string][]byte{"image": []byte("jpeg bytes")},
	)
	rec := httptest.NewRecorder()
	h.Enroll(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "enrolled" || resp["identity"] != "cs21b001" {
		t.Errorf("unexpected response: %v", resp)
	}

	if len(enroller.identities) != 1 || enroller.identities[0] != "cs21b001" {
		t.Errorf("expected one enrollment for cs21b001, got %v", enroller.identities)
	}
	if string(enroller.images[0]) != "jpeg bytes" {
		t.Errorf("image bytes not passed through")
	}
}

func TestEnrollHandlerMissingIdentity(t *testing.T) {
	h := NewEnrollHandler(&stubEnroller{})

	req := multipartRequest(t, "/api/v1/enroll",
		map[string]string{},
		map[string][]byte{"image": []byte("jpeg bytes")},
	)
	rec := httptest.NewRecorder()
	h.Enroll(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestEnrollHandlerMissingImage(t *testing.T) {
	h := NewEnrollHandler(&stubEnroller{})

	req := multipartRequest(t, "/api/v1/enroll",
		map[string]string{"identity": "cs21b001"},
		nil,
	)
	rec := httptest.NewRecorder()
	h.Enroll(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestEnrollHandlerNoFace(t *testing.T) {
	h := NewEnrollHandler(&stubEnroller{err: embedding.ErrNoFace})

	req := multipartRequest(t, "/api/v1/enroll",
		map[string]string{"identity": "cs21b001"},
		map[string][]byte{"image": []byte("scenery")},
	)
	rec := httptest.NewRecorder()
	h.Enroll(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}
