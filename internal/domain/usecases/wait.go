package usecases

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
	"github.com/ZhangYouJie-Major/AskIt/internal/logger"
)

var (
	// ErrIngestionFailed is returned when the server reports status failed.
	ErrIngestionFailed = errors.New("document ingestion failed")
	// ErrNotVectorized is returned when polling gives up before completion.
	ErrNotVectorized = errors.New("document not vectorized yet")
)

// WaitOptions tunes WaitVectorized.
type WaitOptions struct {
	InitialInterval time.Duration // default 500ms
	MaxInterval     time.Duration // default 10s
	Timeout         time.Duration // 0 means until ctx ends
}

// WaitVectorized polls the document until it is vectorized, reported as
// failed, or the wait ends. Errors from Get end the wait immediately.
// The last observed document is returned alongside any error.
func WaitVectorized(ctx context.Context, api ports.DocumentAPI, documentID int, opts WaitOptions) (*entities.Document, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	if opts.InitialInterval > 0 {
		b.InitialInterval = opts.InitialInterval
	}
	b.MaxInterval = 10 * time.Second
	if opts.MaxInterval > 0 {
		b.MaxInterval = opts.MaxInterval
	}
	b.MaxElapsedTime = opts.Timeout
	b.Reset()

	var last *entities.Document
	operation := func() error {
		doc, err := api.Get(ctx, documentID)
		if err != nil {
			return backoff.Permanent(err)
		}
		last = doc

		switch {
		case doc.Vectorized:
			return nil
		case doc.Status == entities.StatusFailed:
			return backoff.Permanent(errors.Wrapf(ErrIngestionFailed, "document %d", documentID))
		default:
			return ErrNotVectorized
		}
	}
	notify := func(err error, next time.Duration) {
		status := ""
		if last != nil {
			status = last.Status
		}
		logger.Logger().Debug("waiting for vectorization", "id", documentID, "status", status, "next", next)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
	return last, err
}
