package handlers

import (
	"net/http"
)

// VerifyHandler runs full two-factor verification attempts.
type VerifyHandler struct {
	verifier Verifier
}

// NewVerifyHandler creates a new verify handler.
func NewVerifyHandler(verifier Verifier) *VerifyHandler {
	return &VerifyHandler{verifier: verifier}
}

// Verify handles POST /api/v1/verify. Multipart form: "qr_content" (text,
// the scanned QR payload) and "image" (file, the probe frame). The
// decision is always 200; DENIED is a result, not an HTTP error.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	qrContent := r.FormValue("qr_content")
	if qrContent == "" {
		respondError(w, http.StatusBadRequest, "qr_content is required")
		return
	}

	probe, err := readFormFile(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	decision, err := h.verifier.Verify(r.Context(), qrContent, probe)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "verification failed")
		return
	}

	respondJSON(w, http.StatusOK, decision)
}
