package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const (
	defaultServerURL = "http://localhost:8000"
	defaultModel     = "facenet-vggface2" // model name for reference only
)

// Client computes face embeddings using the embedding server.
type Client struct {
	baseURL string
	model   string
	dim     int
	maxEdge int
	client  *http.Client
}

// NewClient creates a new embedding client. dim is the expected vector
// dimensionality; responses with a different dimension are rejected.
// maxEdge > 0 downscales oversized probe images before upload.
func NewClient(baseURL, model string, dim, maxEdge int) *Client {
	if baseURL == "" {
		baseURL = defaultServerURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		dim:     dim,
		maxEdge: maxEdge,
		client:  &http.Client{},
	}
}

// faceDetection represents a single detected face in the server response.
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	DetScore  float64   `json:"det_score"`
}

// faceResponse represents the response from the face embedding endpoint.
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// postMultipartImage constructs a multipart form with the image data and posts
// it to the given endpoint. The part carries an explicit Content-Type header
// based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Extract computes the face embedding for an image. When the server detects
// more than one face, the detection with the highest score is used. Oversized
// images are downscaled before upload when maxEdge is configured.
func (c *Client) Extract(ctx context.Context, imageData []byte) ([]float32, error) {
	if c.maxEdge > 0 {
		scaled, err := DownscaleJPEG(imageData, c.maxEdge)
		if err == nil {
			imageData = scaled
		}
		// Undecodable input is forwarded as-is; the server reports its own error.
	}

	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if faceResp.FacesCount == 0 || len(faceResp.Faces) == 0 {
		return nil, ErrNoFace
	}

	best := faceResp.Faces[0]
	for _, f := range faceResp.Faces[1:] {
		if f.DetScore > best.DetScore {
			best = f
		}
	}

	if len(best.Embedding) == 0 {
		return nil, ErrNoFace
	}
	if c.dim > 0 && len(best.Embedding) != c.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(best.Embedding), c.dim)
	}

	return best.Embedding, nil
}

// Model returns the model name being used.
func (c *Client) Model() string {
	return c.model
}

// detectMIMEType detects the MIME type from image data.
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	return "application/octet-stream"
}
