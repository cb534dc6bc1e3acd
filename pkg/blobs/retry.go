package blobs

import (
	"context"
	"errors"
	"os"
	"time"

	"k8s.io/klog/v2"
)

// RetryingReader retries failed downloads. A blob that does not exist is
// not retried.
type RetryingReader struct {
	Reader BlobReader

	// MaxAttempts includes the first attempt; values below 1 mean 1.
	MaxAttempts int
	Interval    time.Duration
}

var _ BlobReader = (*RetryingReader)(nil)

func (r *RetryingReader) Download(ctx context.Context, info BlobInfo, destPath string) error {
	log := klog.FromContext(ctx)

	attempt := 0
	for {
		attempt++

		err := r.Reader.Download(ctx, info, destPath)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return err
		}
		if attempt >= r.MaxAttempts {
			return err
		}

		log.Error(err, "downloading blob, will retry", "hash", info.Hash, "attempt", attempt)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(r.Interval):
		}
	}
}
