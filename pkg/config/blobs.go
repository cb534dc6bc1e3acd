package config

import (
	"fmt"
	"net/url"

	"k8s.io/klog/v2"

	"github.com/daniel-j-h/graphiti/pkg/blobs"
)

// OpenCache builds the local blob cache. Misses are read from the blob server
// when one is configured and from the GCS bucket otherwise; documents added
// to the cache are uploaded to the bucket.
func (c *Config) OpenCache(log klog.Logger) (*blobs.Cache, error) {
	dir, err := c.ExpandCacheDir()
	if err != nil {
		return nil, err
	}

	var store blobs.Blobstore
	if bucket := c.Bucket(); bucket != "" {
		log.Info("using GCS cache", "bucket", bucket)
		store = &blobs.GCSBlobstore{Bucket: bucket}
	}

	var reader blobs.BlobReader
	switch {
	case c.Blobserver != "":
		u, err := url.Parse(c.Blobserver)
		if err != nil {
			return nil, fmt.Errorf("parsing blobserver url %q: %w", c.Blobserver, err)
		}
		log.Info("reading blobs from blobserver", "url", u)
		reader = &blobs.Blobserver{BaseURL: u}
	case store != nil:
		reader = store
	}
	if reader != nil {
		reader = &blobs.RetryingReader{
			Reader:      reader,
			MaxAttempts: c.MaxDownloadAttempts,
			Interval:    c.RetryInterval,
		}
	}

	return blobs.NewCache(dir, reader, store)
}
