package handlers

import (
	"errors"
	"net/http"

	"github.com/gatewise/gatekeeper/internal/embedding"
	"github.com/gatewise/gatekeeper/internal/facematch"
)

// EnrollHandler registers face embeddings for identities.
type EnrollHandler struct {
	enroller Enroller
}

// NewEnrollHandler creates a new enroll handler.
func NewEnrollHandler(enroller Enroller) *EnrollHandler {
	return &EnrollHandler{enroller: enroller}
}

// Enroll handles POST /api/v1/enroll. Multipart form: "identity" (text)
// and "image" (file). Re-enrollment replaces the stored embedding.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	identity := r.FormValue("identity")
	if identity == "" {
		respondError(w, http.StatusBadRequest, "identity is required")
		return
	}

	image, err := readFormFile(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.enroller.Enroll(r.Context(), identity, image); err != nil {
		switch {
		case errors.Is(err, embedding.ErrNoFace):
			respondError(w, http.StatusUnprocessableEntity, "no face detected in image")
		case errors.Is(err, facematch.ErrEmptyIdentityKey):
			respondError(w, http.StatusBadRequest, "identity is required")
		default:
			respondError(w, http.StatusInternalServerError, "enrollment failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "enrolled",
		"identity": identity,
	})
}
