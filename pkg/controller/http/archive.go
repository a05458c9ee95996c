package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/towebp/pkg/domain/interfaces"
	"github.com/m-mizutani/towebp/pkg/domain/model"
	"github.com/m-mizutani/towebp/pkg/usecase"
	"github.com/m-mizutani/towebp/pkg/utils/errutil"
)

const (
	msgInvalidRequest = "Invalid request"
	msgArchiveFailed  = "Archive failed"
)

// ArchiveRequest is the body of a bulk download request
type ArchiveRequest struct {
	Images []model.ConvertedImage `json:"images"`
}

// Validate requires the images list; each image validates itself
func (x ArchiveRequest) Validate() error {
	return validation.ValidateStruct(&x,
		validation.Field(&x.Images, validation.NotNil),
	)
}

// ArchiveHandler bundles converted images into a zip download
type ArchiveHandler struct {
	archiveUC interfaces.ArchiveUseCase
}

// NewArchiveHandler creates a new ArchiveHandler
func NewArchiveHandler(archiveUC interfaces.ArchiveUseCase) *ArchiveHandler {
	return &ArchiveHandler{
		archiveUC: archiveUC,
	}
}

// Handle processes bulk download requests
func (h *ArchiveHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	var req ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode archive request", "error", err)
		writeError(w, r, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if err := req.Validate(); err != nil {
		logger.Warn("Invalid archive request", "error", err)
		writeError(w, r, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	data, err := h.archiveUC.BuildArchive(ctx, req.Images)
	if err != nil {
		if model.IsInvalidInput(err) {
			logger.Warn("Invalid image data in archive request", "error", err)
			writeError(w, r, http.StatusBadRequest, msgInvalidRequest)
			return
		}
		errutil.Handle(ctx, "Failed to build archive", err)
		writeError(w, r, http.StatusInternalServerError, msgArchiveFailed)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", usecase.ArchiveFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error("Failed to write archive response", "error", err)
	}
}
