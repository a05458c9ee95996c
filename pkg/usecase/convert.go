package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/towebp/pkg/domain/interfaces"
	"github.com/m-mizutani/towebp/pkg/domain/model"
)

type convertUseCase struct {
	encoder interfaces.ImageEncoder
}

// NewConvert creates a new instance of ConvertUseCase
func NewConvert(encoder interfaces.ImageEncoder) interfaces.ConvertUseCase {
	return &convertUseCase{
		encoder: encoder,
	}
}

// ConvertImage re-encodes one uploaded image as WebP
func (uc *convertUseCase) ConvertImage(ctx context.Context, file *model.UploadedFile) (*model.ConvertedImage, error) {
	logger := ctxlog.From(ctx)

	if file == nil {
		return nil, goerr.New("no file uploaded", goerr.T(model.ErrTagInvalidInput))
	}

	encoded, err := uc.encoder.Encode(ctx, file.Data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to convert image",
			goerr.V("name", file.Name),
			goerr.V("size", len(file.Data)),
		)
	}

	converted := model.NewConvertedImage(file.Name, encoded)

	logger.Info("Converted image",
		"name", file.Name,
		"input_bytes", len(file.Data),
		"output_bytes", len(encoded),
	)

	return converted, nil
}
