package blobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"
)

// Cache is a directory of blobs named by hash. Misses are filled from Reader,
// and Put writes through to Store.
//
// Errors carry a gRPC status code: NotFound for a blob neither the cache nor
// the reader has, InvalidArgument for a malformed hash and DataLoss for a
// download whose contents do not match its hash.
type Cache struct {
	Dir string

	// Reader fills misses; nil means the cache only serves what it holds.
	Reader BlobReader
	// Store receives blobs added with Put; nil keeps them local.
	Store Blobstore

	downloads singleflight.Group
}

// NewCache creates dir if needed.
func NewCache(dir string, reader BlobReader, store Blobstore) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory %q: %w", dir, err)
	}
	return &Cache{Dir: dir, Reader: reader, Store: store}, nil
}

func (c *Cache) path(info BlobInfo) string {
	return filepath.Join(c.Dir, info.Hash)
}

// Get opens the cached blob, downloading it first on a miss. Concurrent
// misses for the same hash share one download.
func (c *Cache) Get(ctx context.Context, info BlobInfo) (*os.File, error) {
	if err := info.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	localPath := c.path(info)
	f, err := os.Open(localPath)
	if err == nil {
		return f, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("opening blob %q: %w", info.Hash, err)
	}

	if c.Reader == nil {
		return nil, status.Errorf(codes.NotFound, "blob %q not found", info.Hash)
	}

	// The download outlives any one caller; each caller waits on its own ctx.
	fillCtx := context.WithoutCancel(ctx)
	ch := c.downloads.DoChan(info.Hash, func() (any, error) {
		return nil, c.fill(fillCtx, info)
	})
	select {
	case <-ctx.Done():
		return nil, status.FromContextError(ctx.Err()).Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
	}
	return os.Open(localPath)
}

// ReadFile returns the contents of a blob through Get.
func (c *Cache) ReadFile(ctx context.Context, info BlobInfo) ([]byte, error) {
	f, err := c.Get(ctx, info)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("reading blob %q: %w", info.Hash, err)
	}
	return buf.Bytes(), nil
}

func (c *Cache) fill(ctx context.Context, info BlobInfo) error {
	log := klog.FromContext(ctx)

	staging, err := os.MkdirTemp(c.Dir, ".fill-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	stagedPath := filepath.Join(staging, info.Hash)
	if err := c.Reader.Download(ctx, info, stagedPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return status.Errorf(codes.NotFound, "blob %q not found: %v", info.Hash, err)
		}
		return fmt.Errorf("downloading blob %q: %w", info.Hash, err)
	}

	got, err := InfoForFile(stagedPath)
	if err != nil {
		return err
	}
	if got.Hash != info.Hash {
		return status.Errorf(codes.DataLoss, "downloaded blob %q has hash %q", info.Hash, got.Hash)
	}

	if err := os.Rename(stagedPath, c.path(info)); err != nil {
		return fmt.Errorf("moving blob %q into cache: %w", info.Hash, err)
	}
	log.V(2).Info("cached blob", "hash", info.Hash)
	return nil
}

// Put adds b to the cache under its hash and uploads it to Store, if set.
func (c *Cache) Put(ctx context.Context, b []byte) (BlobInfo, error) {
	info := InfoForBytes(b)
	localPath := c.path(info)

	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		if _, err := writeToFile(ctx, bytes.NewReader(b), localPath); err != nil {
			return info, fmt.Errorf("writing blob %q: %w", info.Hash, err)
		}
	} else if err != nil {
		return info, fmt.Errorf("checking blob %q: %w", info.Hash, err)
	}

	if c.Store != nil {
		if err := c.Store.Upload(ctx, localPath, info); err != nil {
			return info, fmt.Errorf("uploading blob %q: %w", info.Hash, err)
		}
	}
	return info, nil
}
