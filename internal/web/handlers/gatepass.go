package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gatewise/gatekeeper/internal/embedding"
	"github.com/gatewise/gatekeeper/internal/facematch"
	"github.com/gatewise/gatekeeper/internal/metrics"
	"github.com/gatewise/gatekeeper/internal/token"
)

// GatepassHandler issues gate passes, optionally enrolling the face first
// so registration is a single request.
type GatepassHandler struct {
	issuer   Issuer
	enroller Enroller
	metrics  *metrics.Metrics
}

// NewGatepassHandler creates a new gatepass handler.
func NewGatepassHandler(issuer Issuer, enroller Enroller, m *metrics.Metrics) *GatepassHandler {
	return &GatepassHandler{
		issuer:   issuer,
		enroller: enroller,
		metrics:  m,
	}
}

type gatepassResponse struct {
	TokenID   string    `json:"token_id"`
	Identity  string    `json:"identity"`
	Name      string    `json:"name"`
	QRContent string    `json:"qr_content"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue handles POST /api/v1/gatepass. Multipart form: "identity" and
// "name" (text), plus an optional "image" file that enrolls the face
// before the pass is issued.
func (h *GatepassHandler) Issue(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	// The identity claim is canonicalized here so the pass carries the
	// same key the enrollment store uses.
	identity := facematch.NormalizeIdentityKey(r.FormValue("identity"))
	name := r.FormValue("name")
	if identity == "" {
		respondError(w, http.StatusBadRequest, "identity is required")
		return
	}

	if _, _, err := r.FormFile("image"); err == nil {
		image, err := readFormFile(r, "image")
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.enroller.Enroll(r.Context(), identity, image); err != nil {
			if errors.Is(err, embedding.ErrNoFace) {
				respondError(w, http.StatusUnprocessableEntity, "no face detected in image")
				return
			}
			respondError(w, http.StatusInternalServerError, "enrollment failed")
			return
		}
	}

	t, err := h.issuer.Issue(r.Context(), identity, name)
	if err != nil {
		if errors.Is(err, token.ErrInvalidFormat) {
			respondError(w, http.StatusBadRequest, "identity or name contains invalid characters")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to issue gate pass")
		return
	}

	content, err := token.EncodeContent(t)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode gate pass")
		return
	}

	if h.metrics != nil {
		h.metrics.RecordTokenIssued()
	}

	respondJSON(w, http.StatusCreated, gatepassResponse{
		TokenID:   t.TokenID,
		Identity:  t.IdentityKey,
		Name:      t.DisplayName,
		QRContent: content,
		IssuedAt:  t.IssuedAt,
		ExpiresAt: t.ExpiresAt,
	})
}
