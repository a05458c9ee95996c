package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/towebp/pkg/domain/interfaces"
	"github.com/m-mizutani/towebp/pkg/domain/model"
)

// ArchiveFileName is the file name proposed to the browser for bulk downloads
const ArchiveFileName = "converted_images.zip"

type archiveUseCase struct {
	now func() time.Time
}

// NewArchive creates a new instance of ArchiveUseCase
func NewArchive() interfaces.ArchiveUseCase {
	return &archiveUseCase{
		now: time.Now,
	}
}

// BuildArchive builds the whole zip archive in memory. Duplicate names are
// suffixed with " (n)" so that every image gets its own entry.
func (uc *archiveUseCase) BuildArchive(ctx context.Context, images []model.ConvertedImage) ([]byte, error) {
	logger := ctxlog.From(ctx)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]struct{}, len(images))
	modified := uc.now()

	for i, img := range images {
		data, err := img.Bytes()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode image data", goerr.V("index", i))
		}

		entryName := uniqueEntryName(sanitizeEntryName(img.Name), used)

		// WebP is already compressed
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entryName,
			Method:   zip.Store,
			Modified: modified,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create zip entry", goerr.V("entry", entryName))
		}

		if _, err := w.Write(data); err != nil {
			return nil, goerr.Wrap(err, "failed to write zip entry", goerr.V("entry", entryName))
		}

		if entryName != img.FileName() {
			logger.Debug("Renamed archive entry",
				"name", img.Name,
				"entry", entryName,
			)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finalize zip archive")
	}

	logger.Info("Built archive",
		"entries", len(images),
		"size_bytes", buf.Len(),
	)

	return buf.Bytes(), nil
}

// sanitizeEntryName keeps entries at the archive root
func sanitizeEntryName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	if name == "" || name == "." || name == ".." {
		return "image"
	}
	return name
}

// uniqueEntryName compares names case-insensitively so that "Cat" and "cat"
// do not overwrite each other when extracted on macOS or Windows.
func uniqueEntryName(base string, used map[string]struct{}) string {
	candidate := base + model.WebPExt
	for n := 1; ; n++ {
		key := strings.ToLower(candidate)
		if _, exists := used[key]; !exists {
			used[key] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s (%d)%s", base, n, model.WebPExt)
	}
}
