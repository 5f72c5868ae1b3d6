// Package filestore keeps profile images on local disk.
package filestore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/burhani-guards/guards-api/internal/ports/out/imagestore"
)

const (
	profileDir = "profiles"

	// DefaultMaxDimension bounds the longer edge of stored JPEG and PNG images.
	DefaultMaxDimension = 512
)

// allowed maps accepted extensions to the MIME type the content must sniff as.
var allowed = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

type Store struct {
	root     string
	maxBytes int64
	maxDim   int
	newID    func() string
}

var _ imagestore.Store = (*Store)(nil)

func New(root string, maxBytes int64) *Store {
	return &Store{
		root:     root,
		maxBytes: maxBytes,
		maxDim:   DefaultMaxDimension,
		newID:    uuid.NewString,
	}
}

// Root is the directory relative paths returned by SaveProfileImage resolve against.
func (s *Store) Root() string { return s.root }

// SaveProfileImage validates the upload and writes it under profiles/. JPEG and PNG images larger
// than the maximum dimension are downscaled; GIF and WebP are stored byte for byte.
func (s *Store) SaveProfileImage(ctx context.Context, owner string, up imagestore.Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.maxBytes > 0 && int64(len(up.Data)) > s.maxBytes {
		return "", imagestore.ErrTooLarge
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(up.Filename), "."))
	want, ok := allowed[ext]
	if !ok || len(up.Data) == 0 {
		return "", imagestore.ErrUnsupportedType
	}
	if got := mimetype.Detect(up.Data); !got.Is(want) {
		return "", fmt.Errorf("%w: content is %s", imagestore.ErrUnsupportedType, got.String())
	}

	data := up.Data
	if want == "image/jpeg" || want == "image/png" {
		resized, err := s.downscale(data, ext)
		if err != nil {
			return "", err
		}
		data = resized
	}

	rel := filepath.Join(profileDir, fmt.Sprintf("%s_%s.%s", sanitize(owner), s.newID(), ext))
	if err := writeAtomic(filepath.Join(s.root, rel), data); err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func (s *Store) downscale(data []byte, ext string) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", imagestore.ErrUnsupportedType, err)
	}
	if !exceeds(img.Bounds(), s.maxDim) {
		return data, nil
	}
	img = imaging.Fit(img, s.maxDim, s.maxDim, imaging.Lanczos)

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func exceeds(b image.Rectangle, max int) bool {
	return b.Dx() > max || b.Dy() > max
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// sanitize keeps owner ids usable as a file name prefix.
func sanitize(owner string) string {
	var b strings.Builder
	for _, r := range owner {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "anon"
	}
	return b.String()
}
