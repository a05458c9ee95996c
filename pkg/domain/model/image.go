package model

import (
	"encoding/base64"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// WebPExt is the extension of every converted file
	WebPExt = ".webp"

	// WebPMimeType is the media type of converted images
	WebPMimeType = "image/webp"
)

// UploadedFile is a raw image as received from the user
type UploadedFile struct {
	Name string // Original filename including extension
	Data []byte // Raw file content
}

// ConvertedImage is a WebP-encoded image ready to be downloaded
type ConvertedImage struct {
	Name string `json:"name"`                // Original filename without extension
	Data string `json:"data" masq:"payload"` // Base64 encoded WebP bytes
}

// Validate checks that both name and payload are present
func (x ConvertedImage) Validate() error {
	return validation.ValidateStruct(&x,
		validation.Field(&x.Name, validation.Required),
		validation.Field(&x.Data, validation.Required),
	)
}

// FileName returns the name used when the image is saved
func (x ConvertedImage) FileName() string {
	return x.Name + WebPExt
}

// Bytes decodes the base64 payload
func (x ConvertedImage) Bytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(x.Data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid base64 image data",
			goerr.V("name", x.Name),
			goerr.T(ErrTagInvalidInput),
		)
	}
	return raw, nil
}

// DataURI returns the image as a data URI that a browser can download directly
func (x ConvertedImage) DataURI() string {
	return "data:" + WebPMimeType + ";base64," + x.Data
}

// NewConvertedImage builds a ConvertedImage from encoded WebP bytes and the
// original filename.
func NewConvertedImage(originalName string, webp []byte) *ConvertedImage {
	return &ConvertedImage{
		Name: TrimExt(originalName),
		Data: base64.StdEncoding.EncodeToString(webp),
	}
}

// TrimExt removes the last extension from name. An extension is a dot
// followed by at least one character that is neither a dot nor a slash.
func TrimExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return name
	}
	if strings.ContainsAny(name[idx+1:], "/") {
		return name
	}
	return name[:idx]
}

// ConvertOptions controls how images are re-encoded
type ConvertOptions struct {
	Quality   int `toml:"quality"`
	MaxWidth  int `toml:"max_width"`
	MaxHeight int `toml:"max_height"`
}

// DefaultConvertOptions returns quality 80 fitted inside 1920x1080
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		Quality:   80,
		MaxWidth:  1920,
		MaxHeight: 1080,
	}
}

// Validate checks the option ranges
func (x ConvertOptions) Validate() error {
	return validation.ValidateStruct(&x,
		validation.Field(&x.Quality, validation.Min(0), validation.Max(100)),
		validation.Field(&x.MaxWidth, validation.Required, validation.Min(1)),
		validation.Field(&x.MaxHeight, validation.Required, validation.Min(1)),
	)
}
