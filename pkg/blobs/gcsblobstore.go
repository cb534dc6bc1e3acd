package blobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"k8s.io/klog/v2"
)

// GCSBlobstore keeps blobs in a GCS bucket, one object per hash.
type GCSBlobstore struct {
	Bucket string

	// Client is used if set; otherwise each call creates its own client from
	// the ambient credentials.
	Client *storage.Client
}

var _ Blobstore = (*GCSBlobstore)(nil)

func (s *GCSBlobstore) client(ctx context.Context) (*storage.Client, func(), error) {
	if s.Client != nil {
		return s.Client, func() {}, nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("creating GCS storage client: %w", err)
	}
	return client, func() { client.Close() }, nil
}

func (s *GCSBlobstore) url(info BlobInfo) string {
	return "gs://" + s.Bucket + "/" + info.Hash
}

func (s *GCSBlobstore) Upload(ctx context.Context, sourcePath string, info BlobInfo) error {
	log := klog.FromContext(ctx)

	if err := info.Validate(); err != nil {
		return err
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	client, done, err := s.client(ctx)
	if err != nil {
		return err
	}
	defer done()

	gcsURL := s.url(info)
	obj := client.Bucket(s.Bucket).Object(info.Hash)
	if _, err := obj.Attrs(ctx); err == nil {
		log.V(2).Info("blob already in GCS", "url", gcsURL)
		return nil
	} else if !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("getting object attributes for %q: %w", gcsURL, err)
	}

	log.Info("uploading blob to GCS", "source", sourcePath, "destination", gcsURL)

	startedAt := time.Now()
	w := obj.NewWriter(ctx)
	w.ContentType = "application/yaml"
	n, err := io.Copy(w, src)
	if err != nil {
		w.Close()
		return fmt.Errorf("uploading to %q: %w", gcsURL, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing GCS writer for %q: %w", gcsURL, err)
	}

	log.Info("uploaded blob to GCS", "url", gcsURL, "bytes", n, "duration", time.Since(startedAt))
	return nil
}

func (s *GCSBlobstore) Download(ctx context.Context, info BlobInfo, destPath string) error {
	log := klog.FromContext(ctx)

	if err := info.Validate(); err != nil {
		return err
	}

	client, done, err := s.client(ctx)
	if err != nil {
		return err
	}
	defer done()

	gcsURL := s.url(info)
	startedAt := time.Now()
	r, err := client.Bucket(s.Bucket).Object(info.Hash).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("blob %q not in GCS: %w", gcsURL, os.ErrNotExist)
		}
		return fmt.Errorf("opening object %q: %w", gcsURL, err)
	}
	defer r.Close()

	n, err := writeToFile(ctx, r, destPath)
	if err != nil {
		return fmt.Errorf("downloading %q: %w", gcsURL, err)
	}

	log.Info("downloaded blob from GCS", "source", gcsURL, "destination", destPath, "bytes", n, "duration", time.Since(startedAt))
	return nil
}
