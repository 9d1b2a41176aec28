package usecases

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
	"github.com/ZhangYouJie-Major/AskIt/internal/logger"
)

const (
	DefaultUploadConcurrency = 4
	DefaultSettleDelay       = 300 * time.Millisecond
)

// UploadResult is the outcome of uploading one local file.
type UploadResult struct {
	Path     string
	Document *entities.Document
	Err      error
}

// Uploader loads local files and uploads them to one department.
type Uploader struct {
	loader       ports.FileLoader
	api          ports.DocumentAPI
	departmentID int
	concurrency  int

	// SettleDelay is how long a created file must stay unmodified before
	// Watch uploads it.
	SettleDelay time.Duration

	// OnResult, when set, is called after every upload. It may be called
	// from several goroutines.
	OnResult func(UploadResult)
}

// NewUploader creates an Uploader. concurrency <= 0 means
// DefaultUploadConcurrency.
func NewUploader(loader ports.FileLoader, api ports.DocumentAPI, departmentID, concurrency int) *Uploader {
	if concurrency <= 0 {
		concurrency = DefaultUploadConcurrency
	}
	return &Uploader{
		loader:       loader,
		api:          api,
		departmentID: departmentID,
		concurrency:  concurrency,
		SettleDelay:  DefaultSettleDelay,
	}
}

// UploadPaths uploads every path, at most concurrency at a time. Results
// are in input order. A failed file does not stop the others; the returned
// error summarizes failures.
func (u *Uploader) UploadPaths(ctx context.Context, paths []string) ([]UploadResult, error) {
	results := make([]UploadResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = u.upload(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	if failed > 0 {
		return results, errors.Errorf("%d of %d uploads failed", failed, len(paths))
	}
	return results, nil
}

// Watch uploads files created in dir until ctx ends or the watcher stops.
// A file is uploaded once it has settled; deleting it before then cancels
// the upload. Deletions are not propagated to the server.
func (u *Uploader) Watch(ctx context.Context, watcher ports.FileWatcher, dir string) error {
	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}
	logger.Logger().Info("watching for documents", "dir", dir, "department_id", u.departmentID)

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ready := make(chan string)
	timers := make(map[string]*time.Timer)
	schedule := func(path string) {
		timers[path] = time.AfterFunc(u.SettleDelay, func() {
			select {
			case ready <- path:
			case <-wctx.Done():
			}
		})
	}

	var g errgroup.Group
	g.SetLimit(u.concurrency)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
		cancel()
		_ = g.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			switch ev.Operation {
			case ports.FileCreated:
				if t, pending := timers[ev.Path]; pending {
					t.Stop()
				}
				schedule(ev.Path)
			case ports.FileModified:
				if t, pending := timers[ev.Path]; pending {
					t.Reset(u.SettleDelay)
				}
			case ports.FileDeleted:
				if t, pending := timers[ev.Path]; pending {
					t.Stop()
					delete(timers, ev.Path)
				}
			}

		case path := <-ready:
			if _, pending := timers[path]; !pending {
				continue
			}
			delete(timers, path)
			g.Go(func() error {
				u.upload(wctx, path)
				return nil
			})
		}
	}
}

func (u *Uploader) upload(ctx context.Context, path string) UploadResult {
	result := UploadResult{Path: path}

	file, err := u.loader.Load(ctx, path)
	if err != nil {
		result.Err = err
	} else {
		result.Document, result.Err = u.api.Upload(ctx, *file, u.departmentID)
	}

	if result.Err != nil {
		logger.Logger().Error("upload failed", "path", path, "error", result.Err)
	} else {
		logger.Logger().Info("uploaded", "path", path, "id", result.Document.ID, "status", result.Document.Status)
	}
	if u.OnResult != nil {
		u.OnResult(result)
	}
	return result
}
