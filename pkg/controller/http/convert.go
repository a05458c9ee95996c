package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/towebp/pkg/domain/interfaces"
	"github.com/m-mizutani/towebp/pkg/domain/model"
	"github.com/m-mizutani/towebp/pkg/utils/errutil"
)

const (
	imageFormField = "image"

	// parsed multipart data above this size is spilled to temporary files
	multipartMemory = 32 << 20

	msgNoFile           = "No file uploaded"
	msgFileTooLarge     = "File too large"
	msgConversionFailed = "Conversion failed"
)

// ConvertResponse is the body of a successful conversion
type ConvertResponse struct {
	ConvertedImage *model.ConvertedImage `json:"convertedImage"`
}

// ConvertHandler handles single image conversion
type ConvertHandler struct {
	convertUC     interfaces.ConvertUseCase
	maxUploadSize int64
}

// NewConvertHandler creates a new ConvertHandler
func NewConvertHandler(convertUC interfaces.ConvertUseCase, maxUploadSize int64) *ConvertHandler {
	return &ConvertHandler{
		convertUC:     convertUC,
		maxUploadSize: maxUploadSize,
	}
}

// Handle processes conversion requests
func (h *ConvertHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	file, err := h.readUpload(r)
	if err != nil {
		switch {
		case model.IsTooLarge(err):
			logger.Warn("Upload exceeds size limit", "error", err)
			writeError(w, r, http.StatusRequestEntityTooLarge, msgFileTooLarge)
		case model.IsInvalidInput(err):
			logger.Warn("No file in conversion request", "error", err)
			writeError(w, r, http.StatusBadRequest, msgNoFile)
		default:
			errutil.Handle(ctx, "Failed to read upload", err)
			writeError(w, r, http.StatusInternalServerError, msgConversionFailed)
		}
		return
	}

	converted, err := h.convertUC.ConvertImage(ctx, file)
	if err != nil {
		errutil.Handle(ctx, "Failed to convert image", err)
		writeError(w, r, http.StatusInternalServerError, msgConversionFailed)
		return
	}

	writeJSON(w, r, http.StatusOK, &ConvertResponse{
		ConvertedImage: converted,
	})
}

// readUpload extracts the "image" form field
func (h *ConvertHandler) readUpload(r *http.Request) (*model.UploadedFile, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, goerr.Wrap(err, "request body too large",
				goerr.V("limit", maxErr.Limit),
				goerr.T(model.ErrTagTooLarge),
			)
		}
		return nil, goerr.Wrap(err, "failed to parse multipart form", goerr.T(model.ErrTagInvalidInput))
	}

	f, header, err := r.FormFile(imageFormField)
	if err != nil {
		return nil, goerr.Wrap(err, "image field is missing",
			goerr.V("field", imageFormField),
			goerr.T(model.ErrTagInvalidInput),
		)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read uploaded file", goerr.V("name", header.Filename))
	}

	return &model.UploadedFile{
		Name: header.Filename,
		Data: data,
	}, nil
}
