// Package ingest feeds résumé files from disk into the resume service.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jonathan/resume-reader/internal/store"
	"github.com/jonathan/resume-reader/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent uploads when no limit is configured.
const DefaultWorkers = 4

// Allowed extensions for discovery (lowercase, without '.').
var defaultExts = map[string]struct{}{
	"pdf":  {},
	"docx": {},
}

// Uploader is satisfied by *service.ResumeService.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (*types.ResumeRecord, error)
}

// Result is the outcome for a single file.
type Result struct {
	Path   string
	Record *types.ResumeRecord
	Err    error
}

// Ingestor uploads files with bounded parallelism.
type Ingestor struct {
	uploader Uploader
	workers  int
	logger   *slog.Logger
}

// NewIngestor returns an Ingestor. workers <= 0 uses DefaultWorkers.
func NewIngestor(uploader Uploader, workers int, logger *slog.Logger) *Ingestor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{uploader: uploader, workers: workers, logger: logger}
}

// Discover walks root and returns every .pdf and .docx file in lexical order.
func Discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && allowed(path, defaultExts) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	return paths, nil
}

// IngestFiles uploads every path. A failing file is reported in its Result and does not stop the others;
// only context cancellation aborts the batch.
func (in *Ingestor) IngestFiles(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = in.ingestOne(gCtx, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (in *Ingestor) ingestOne(ctx context.Context, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		in.logger.Warn("ingest.read.failed", "path", path, "error", err)
		return Result{Path: path, Err: fmt.Errorf("read %s: %w", path, err)}
	}

	name := filepath.Base(path)
	record, err := in.uploader.Upload(ctx, name, store.ContentTypeFor(name), data)
	if err != nil {
		in.logger.Warn("ingest.upload.failed", "path", path, "error", err)
		return Result{Path: path, Err: err}
	}

	in.logger.Info("ingest.ok", "path", path, "id", record.ID, "name", record.Name)
	return Result{Path: path, Record: record}
}

// Run ingests paths as they arrive until the channel closes or ctx ends.
// Each result is passed to onResult, which may be nil.
func (in *Ingestor) Run(ctx context.Context, paths <-chan string, onResult func(Result)) error {
	sem := make(chan struct{}, in.workers)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-paths:
			if !ok {
				return nil
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				res := in.ingestOne(ctx, path)
				if onResult != nil {
					onResult(res)
				}
			}()
		}
	}
}

func allowed(path string, exts map[string]struct{}) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	_, ok := exts[ext]
	return ok
}
