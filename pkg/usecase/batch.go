package usecase

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/towebp/pkg/domain/interfaces"
	"github.com/m-mizutani/towebp/pkg/domain/model"
)

// ProgressFunc is called once after every file of a batch resolves
type ProgressFunc func(p model.Progress)

// Batch drives the client side workflow: it converts selected files one at a
// time through the conversion endpoint and keeps successful results in memory.
type Batch struct {
	client     interfaces.ConverterClient
	onProgress ProgressFunc

	mu       sync.Mutex
	state    model.BatchState
	files    []*model.UploadedFile
	results  []model.ConvertedImage
	failed   []model.FileError
	progress float64
}

// BatchOption is a functional option for Batch
type BatchOption func(*Batch)

// WithProgress registers a progress callback
func WithProgress(fn ProgressFunc) BatchOption {
	return func(b *Batch) {
		b.onProgress = fn
	}
}

// NewBatch creates an idle batch
func NewBatch(client interfaces.ConverterClient, opts ...BatchOption) *Batch {
	b := &Batch{
		client: client,
		state:  model.BatchIdle,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Select replaces the file selection and clears previous results. A
// selection containing a nil file is rejected as a whole.
func (b *Batch) Select(files []*model.UploadedFile) error {
	for i, file := range files {
		if file == nil {
			return goerr.New("nil file in selection", goerr.V("index", i), goerr.T(model.ErrTagInvalidInput))
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == model.BatchConverting {
		return goerr.New("batch is converting", goerr.T(model.ErrTagInvalidInput))
	}

	b.files = files
	b.results = nil
	b.failed = nil
	b.progress = 0
	b.state = model.BatchIdle
	return nil
}

// Run converts the selected files sequentially. A failed file is logged and
// skipped; it never aborts the remaining conversions.
func (b *Batch) Run(ctx context.Context) (*model.BatchResult, error) {
	b.mu.Lock()
	if b.state == model.BatchConverting {
		b.mu.Unlock()
		return nil, goerr.New("batch is already converting", goerr.T(model.ErrTagInvalidInput))
	}
	files := b.files
	b.state = model.BatchConverting
	b.results = nil
	b.failed = nil
	b.progress = 0
	b.mu.Unlock()

	batchID := uuid.NewString()
	logger := ctxlog.From(ctx).With("batch_id", batchID)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Starting batch conversion", "files", len(files))

	var (
		results []model.ConvertedImage
		failed  []model.FileError
	)

	for i, file := range files {
		converted, err := b.client.Convert(ctx, file)
		if err != nil {
			logger.Error("Failed to convert file",
				"name", file.Name,
				"error", err,
			)
			failed = append(failed, model.FileError{Name: file.Name, Err: err})
		} else {
			results = append(results, *converted)
		}

		done := i + 1
		percent := float64(done) / float64(len(files)) * 100

		b.mu.Lock()
		b.progress = percent
		b.mu.Unlock()

		if b.onProgress != nil {
			b.onProgress(model.Progress{
				Name:    file.Name,
				Done:    done,
				Total:   len(files),
				Percent: percent,
				Err:     err,
			})
		}
	}

	b.mu.Lock()
	b.results = results
	b.failed = failed
	b.state = model.BatchDone
	if len(files) == 0 {
		b.progress = 100
	}
	b.mu.Unlock()

	logger.Info("Finished batch conversion",
		"converted", len(results),
		"failed", len(failed),
	)

	return &model.BatchResult{
		ID:     batchID,
		Images: results,
		Failed: failed,
		Total:  len(files),
	}, nil
}

// State returns the current state
func (b *Batch) State() model.BatchState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Progress returns the percentage of resolved files
func (b *Batch) Progress() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progress
}

// Results returns a copy of the successful conversions in input order
func (b *Batch) Results() []model.ConvertedImage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.ConvertedImage(nil), b.results...)
}

// SaveImage writes one converted image to dir as <name>.webp. This is the
// local counterpart of the browser's data URI download and never touches the
// network.
func SaveImage(dir string, img model.ConvertedImage) (string, error) {
	data, err := img.Bytes()
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.Base(img.FileName()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", goerr.Wrap(err, "failed to save image", goerr.V("path", path))
	}

	return path, nil
}

// SaveAll writes every result to dir and returns the written paths
func (b *Batch) SaveAll(dir string) ([]string, error) {
	results := b.Results()

	paths := make([]string, 0, len(results))
	for _, img := range results {
		path, err := SaveImage(dir, img)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// DownloadAll sends every result to the archive endpoint and writes the
// returned zip archive to w
func (b *Batch) DownloadAll(ctx context.Context, w io.Writer) error {
	b.mu.Lock()
	state := b.state
	results := append([]model.ConvertedImage(nil), b.results...)
	b.mu.Unlock()

	if state != model.BatchDone {
		return goerr.New("batch has not finished", goerr.V("state", state.String()))
	}
	if len(results) == 0 {
		return goerr.New("no converted images to download", goerr.T(model.ErrTagInvalidInput))
	}

	if err := b.client.DownloadAll(ctx, results, w); err != nil {
		return goerr.Wrap(err, "failed to download archive", goerr.V("images", len(results)))
	}

	return nil
}
