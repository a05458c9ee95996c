package interfaces

import "context"

// ImageEncoder converts raw image bytes of any supported format into WebP bytes
type ImageEncoder interface {
	Encode(ctx context.Context, data []byte) ([]byte, error)
}
