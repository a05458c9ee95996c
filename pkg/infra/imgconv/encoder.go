package imgconv

import (
	"bytes"
	"context"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/towebp/pkg/domain/model"

	// WebP inputs; imaging registers jpeg, png, gif, bmp and tiff
	_ "golang.org/x/image/webp"
)

// Name identifies this encoder in health responses
const Name = "libwebp"

// Encoder decodes any supported image, fits it inside a bounding box and
// re-encodes it as lossy WebP.
type Encoder struct {
	opts model.ConvertOptions
}

// Option is a functional option for Encoder configuration
type Option func(*Encoder)

// WithOptions replaces quality and bounding box
func WithOptions(opts model.ConvertOptions) Option {
	return func(e *Encoder) {
		e.opts = opts
	}
}

// New creates an Encoder. Without options it uses model.DefaultConvertOptions.
func New(opts ...Option) (*Encoder, error) {
	e := &Encoder{
		opts: model.DefaultConvertOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.opts.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid convert options",
			goerr.V("quality", e.opts.Quality),
			goerr.V("max_width", e.opts.MaxWidth),
			goerr.V("max_height", e.opts.MaxHeight),
		)
	}

	return e, nil
}

// Encode implements interfaces.ImageEncoder
func (e *Encoder) Encode(ctx context.Context, data []byte) ([]byte, error) {
	logger := ctxlog.From(ctx)

	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "conversion cancelled")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode image", goerr.V("size", len(data)))
	}

	src := img.Bounds()
	// Fit never enlarges: images already inside the box are only cloned
	fitted := imaging.Fit(img, e.opts.MaxWidth, e.opts.MaxHeight, imaging.Lanczos)
	dst := fitted.Bounds()

	var buf bytes.Buffer
	if err := webp.Encode(&buf, fitted, &webp.Options{Quality: float32(e.opts.Quality)}); err != nil {
		return nil, goerr.Wrap(err, "failed to encode webp",
			goerr.V("width", dst.Dx()),
			goerr.V("height", dst.Dy()),
		)
	}

	logger.Debug("Encoded image as webp",
		"src_width", src.Dx(),
		"src_height", src.Dy(),
		"dst_width", dst.Dx(),
		"dst_height", dst.Dy(),
		"quality", e.opts.Quality,
		"input_bytes", len(data),
		"output_bytes", buf.Len(),
	)

	return buf.Bytes(), nil
}
