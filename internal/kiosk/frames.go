package kiosk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirFrameSource replays files from a directory in lexical order as kiosk
// frames. It stands in for capture hardware. Image files act as face
// frames; .txt files carry pre-decoded QR content for TextQRDecoder.
type DirFrameSource struct {
	files []string
	pos   int
}

// NewDirFrameSource lists the image files in dir. The directory must
// contain at least one frame.
func NewDirFrameSource(dir string) (*DirFrameSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".txt":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no image frames in %s", dir)
	}
	sort.Strings(files)

	return &DirFrameSource{files: files}, nil
}

// Next returns the next frame, or io.EOF when the directory is exhausted.
func (f *DirFrameSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.pos >= len(f.files) {
		return nil, io.EOF
	}
	data, err := os.ReadFile(f.files[f.pos])
	if err != nil {
		return nil, fmt.Errorf("read frame %s: %w", f.files[f.pos], err)
	}
	f.pos++
	return data, nil
}
