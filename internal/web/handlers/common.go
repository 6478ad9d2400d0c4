package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gatewise/gatekeeper/internal/metrics"
	"github.com/gatewise/gatekeeper/internal/token"
	"github.com/gatewise/gatekeeper/internal/verify"
)

// maxUploadSize bounds multipart request bodies. Probe images are single
// downscaled JPEG frames, so 16 MiB is generous.
const maxUploadSize = 16 << 20

// Enroller registers a face embedding for an identity.
type Enroller interface {
	Enroll(ctx context.Context, identityKey string, image []byte) error
}

// Issuer creates gate passes.
type Issuer interface {
	Issue(ctx context.Context, identityKey, displayName string) (token.GateToken, error)
}

// Verifier runs the full two-factor verification.
type Verifier interface {
	Verify(ctx context.Context, qrContent string, probe []byte) (verify.Decision, error)
}

// Deps carries the collaborators the handlers need. Metrics may be nil.
type Deps struct {
	Enroller Enroller
	Issuer   Issuer
	Verifier Verifier
	Metrics  *metrics.Metrics
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// readFormFile reads one uploaded file from a parsed multipart form.
func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing file field %q", field)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("reading file field %q: %w", field, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file field %q", field)
	}
	return data, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
