package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/towebp/pkg/cli/config"
	"github.com/m-mizutani/towebp/pkg/domain/model"
	"github.com/m-mizutani/towebp/pkg/infra/client"
	"github.com/m-mizutani/towebp/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdConvert() *cli.Command {
	var clientCfg config.Client

	return &cli.Command{
		Name:      "convert",
		Aliases:   []string{"c"},
		Usage:     "Convert local images through a towebp server",
		ArgsUsage: "FILE [FILE...]",
		Flags:     clientCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("no input files", goerr.T(model.ErrTagInvalidInput))
			}

			files, err := readFiles(paths)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(clientCfg.Output, 0755); err != nil {
				return goerr.Wrap(err, "failed to create output directory", goerr.V("path", clientCfg.Output))
			}

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}

			conv := client.New(clientCfg.Server,
				client.WithHTTPClient(&http.Client{Timeout: clientCfg.Timeout}),
			)
			batch := usecase.NewBatch(conv, usecase.WithProgress(printProgress(w)))

			if err := batch.Select(files); err != nil {
				return err
			}

			result, err := batch.Run(ctx)
			if err != nil {
				return err
			}

			if err := writeResults(ctx, w, batch, result, &clientCfg); err != nil {
				return err
			}

			printSummary(w, result)
			if len(result.Failed) > 0 {
				return goerr.New("some files failed to convert",
					goerr.V("failed", len(result.Failed)),
					goerr.V("total", result.Total),
				)
			}

			return nil
		},
	}
}

func readFiles(paths []string) ([]*model.UploadedFile, error) {
	files := make([]*model.UploadedFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
		}
		files = append(files, &model.UploadedFile{
			Name: filepath.Base(path),
			Data: data,
		})
	}
	return files, nil
}

func writeResults(ctx context.Context, w io.Writer, batch *usecase.Batch, result *model.BatchResult, cfg *config.Client) error {
	if len(result.Images) == 0 {
		ctxlog.From(ctx).Warn("No converted images to write")
		return nil
	}

	if !cfg.Zip {
		saved, err := batch.SaveAll(cfg.Output)
		if err != nil {
			return err
		}
		for _, path := range saved {
			fmt.Fprintf(w, "  saved %s\n", path)
		}
		return nil
	}

	path := filepath.Join(cfg.Output, usecase.ArchiveFileName)
	if err := saveArchive(ctx, batch, path); err != nil {
		return err
	}

	ctxlog.From(ctx).Info("Archive saved", slog.String("path", path))
	fmt.Fprintf(w, "  saved %s\n", path)
	return nil
}

// saveArchive downloads into a temporary file next to path and renames it
// only when the whole archive was written. path is never left half written.
func saveArchive(ctx context.Context, batch *usecase.Batch, path string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".towebp-*.zip")
	if err != nil {
		return goerr.Wrap(err, "failed to create archive file", goerr.V("path", path))
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err := batch.DownloadAll(ctx, f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close archive file", goerr.V("path", tmp))
	}
	// CreateTemp makes the file private
	if err := os.Chmod(tmp, 0644); err != nil {
		return goerr.Wrap(err, "failed to set archive permissions", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return goerr.Wrap(err, "failed to move archive into place", goerr.V("path", path))
	}

	return nil
}

func printProgress(w io.Writer) usecase.ProgressFunc {
	return func(p model.Progress) {
		status := color.GreenString("ok")
		if p.Err != nil {
			status = color.RedString("failed")
		}
		fmt.Fprintf(w, "[%3.0f%%] %d/%d %s %s\n", p.Percent, p.Done, p.Total, status, p.Name)
	}
}

func printSummary(w io.Writer, result *model.BatchResult) {
	converted := color.New(color.FgGreen, color.Bold).Sprintf("%d converted", len(result.Images))
	fmt.Fprintf(w, "%s of %d", converted, result.Total)
	if len(result.Failed) > 0 {
		fmt.Fprintf(w, ", %s", color.New(color.FgRed, color.Bold).Sprintf("%d failed", len(result.Failed)))
	}
	fmt.Fprintln(w)

	for _, f := range result.Failed {
		fmt.Fprintf(w, "  %s %s: %v\n", color.RedString("x"), f.Name, f.Err)
	}
}
