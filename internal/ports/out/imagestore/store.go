package imagestore

import (
	"context"
	"errors"
)

var (
	// ErrTooLarge indicates the upload exceeds the configured size limit.
	ErrTooLarge = errors.New("image too large")
	// ErrUnsupportedType indicates the extension or sniffed content is not an accepted image type.
	ErrUnsupportedType = errors.New("unsupported image type")
)

// Upload is an image received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

// Store persists profile images and returns a relative path for the member record.
type Store interface {
	SaveProfileImage(ctx context.Context, owner string, up Upload) (string, error)
}
