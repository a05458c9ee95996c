package interfaces

import (
	"context"

	"github.com/m-mizutani/towebp/pkg/domain/model"
)

// ConvertUseCase defines single image conversion
type ConvertUseCase interface {
	// ConvertImage re-encodes an uploaded image as WebP
	ConvertImage(ctx context.Context, file *model.UploadedFile) (*model.ConvertedImage, error)
}

// ArchiveUseCase defines bundling of converted images
type ArchiveUseCase interface {
	// BuildArchive returns a zip archive holding one <name>.webp entry per image
	BuildArchive(ctx context.Context, images []model.ConvertedImage) ([]byte, error)
}
