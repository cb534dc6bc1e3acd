// Package blobs stores matrix documents by the SHA-256 of their contents.
package blobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

type BlobReader interface {
	// Download writes the blob to destPath. A missing blob is reported with an
	// error for which errors.Is(err, os.ErrNotExist) is true.
	Download(ctx context.Context, info BlobInfo, destPath string) error
}

type Blobstore interface {
	BlobReader
	// Upload stores the file at sourcePath under info.Hash. Uploading a hash
	// that already exists is a no-op.
	Upload(ctx context.Context, sourcePath string, info BlobInfo) error
}

type BlobInfo struct {
	// Hash is the lowercase hex SHA-256 of the blob.
	Hash string
}

// Validate rejects anything that is not a SHA-256 hex digest, so a hash can
// safely be used as a file name or object key.
func (i BlobInfo) Validate() error {
	if len(i.Hash) != sha256.Size*2 {
		return fmt.Errorf("blob hash %q must be %d hex characters", i.Hash, sha256.Size*2)
	}
	for _, c := range i.Hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("blob hash %q is not lowercase hex", i.Hash)
		}
	}
	return nil
}

func InfoForBytes(b []byte) BlobInfo {
	sum := sha256.Sum256(b)
	return BlobInfo{Hash: hex.EncodeToString(sum[:])}
}

func InfoForFile(p string) (BlobInfo, error) {
	f, err := os.Open(p)
	if err != nil {
		return BlobInfo{}, fmt.Errorf("opening %q: %w", p, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return BlobInfo{}, fmt.Errorf("hashing %q: %w", p, err)
	}
	return BlobInfo{Hash: hex.EncodeToString(h.Sum(nil))}, nil
}
