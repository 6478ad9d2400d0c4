package kiosk

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TextQRDecoder treats a frame holding a single printable text line as
// already-decoded QR content. Deployments with a camera inject a real
// image decoder behind the same QRDecoder interface.
type TextQRDecoder struct{}

// Decode reports the frame's text content when the frame is a short
// printable line, which is what a QR scanner hands over.
func (TextQRDecoder) Decode(frame []byte) (string, bool) {
	const maxContentLen = 512
	if len(frame) == 0 || len(frame) > maxContentLen || !utf8.Valid(frame) {
		return "", false
	}
	content := strings.TrimSpace(string(frame))
	if content == "" {
		return "", false
	}
	for _, r := range content {
		if !unicode.IsPrint(r) {
			return "", false
		}
	}
	return content, true
}
