package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/towebp/pkg/domain/model"
)

// ConverterClient defines the remote operations used by the batch orchestrator
type ConverterClient interface {
	// Convert uploads one file to the conversion endpoint
	Convert(ctx context.Context, file *model.UploadedFile) (*model.ConvertedImage, error)

	// DownloadAll posts images to the archive endpoint and writes the zip to w
	DownloadAll(ctx context.Context, images []model.ConvertedImage, w io.Writer) error
}
