package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatewise/gatekeeper/internal/token"
	"github.com/gatewise/gatekeeper/internal/verify"
)

// multipartRequest builds a multipart POST with text fields and optional
// file fields.
func multipartRequest(t *testing.T, path string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for name, data := range files {
		part, err := writer.CreateFormFile(name, name+".jpg")
		if err != nil {
			t.Fatalf("create file field %s: %v", name, err)
		}
		if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
			t.Fatalf("write file field %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type stubEnroller struct {
	err        error
	identities []string
	images     [][]byte
}

func (s *stubEnroller) Enroll(_ context.Context, identityKey string, image []byte) error {
	s.identities = append(s.identities, identityKey)
	s.images = append(s.images, image)
	return s.err
}

type stubIssuer struct {
	token      token.GateToken
	err        error
	calls      int
	identities []string
}

func (s *stubIssuer) Issue(_ context.Context, identityKey, displayName string) (token.GateToken, error) {
	s.calls++
	s.identities = append(s.identities, identityKey)
	if s.err != nil {
		return token.GateToken{}, s.err
	}
	t := s.token
	if t.IdentityKey == "" {
		t.IdentityKey = identityKey
	}
	if t.DisplayName == "" {
		t.DisplayName = displayName
	}
	return t, nil
}

type stubVerifier struct {
	decision verify.Decision
	err      error
	probes   [][]byte
}

func (s *stubVerifier) Verify(_ context.Context, _ string, probe []byte) (verify.Decision, error) {
	s.probes = append(s.probes, probe)
	if s.err != nil {
		return verify.Decision{}, s.err
	}
	return s.decision, nil
}
