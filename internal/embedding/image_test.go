package embedding

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDownscaleJPEG_SmallImageUnchanged(t *testing.T) {
	data := encodeTestJPEG(t, 100, 80)

	out, err := DownscaleJPEG(data, 640)
	if err != nil {
		t.Fatalf("DownscaleJPEG failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("image within bounds should be returned unchanged")
	}
}

func TestDownscaleJPEG_ShrinksWideImage(t *testing.T) {
	data := encodeTestJPEG(t, 800, 400)

	out, err := DownscaleJPEG(data, 200)
	if err != nil {
		t.Fatalf("DownscaleJPEG failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("expected width 200, got %d", img.Bounds().Dx())
	}
	if img.Bounds().Dy() != 100 {
		t.Errorf("expected height 100 (aspect preserved), got %d", img.Bounds().Dy())
	}
}

func TestDownscaleJPEG_ShrinksTallImage(t *testing.T) {
	data := encodeTestJPEG(t, 300, 600)

	out, err := DownscaleJPEG(data, 300)
	if err != nil {
		t.Fatalf("DownscaleJPEG failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if img.Bounds().Dy() != 300 {
		t.Errorf("expected height 300, got %d", img.Bounds().Dy())
	}
	if img.Bounds().Dx() != 150 {
		t.Errorf("expected width 150 (aspect preserved), got %d", img.Bounds().Dx())
	}
}

func TestDownscaleJPEG_InvalidData(t *testing.T) {
	if _, err := DownscaleJPEG([]byte("not an image"), 100); err == nil {
		t.Error("expected error for undecodable input")
	}
}
