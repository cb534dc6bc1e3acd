package blobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"
)

// writeToFile copies src into a temp file next to destPath and renames it
// into place, so readers never observe a partial blob.
func writeToFile(ctx context.Context, src io.Reader, destPath string) (int64, error) {
	log := klog.FromContext(ctx)

	tempFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := tempFile.Name()

	renamed := false
	defer func() {
		if renamed {
			return
		}
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			log.Error(err, "removing temp file", "path", tempPath)
		}
	}()

	n, err := io.Copy(tempFile, src)
	if err != nil {
		tempFile.Close()
		return n, fmt.Errorf("copying blob: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return n, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		return n, fmt.Errorf("renaming temp file: %w", err)
	}
	renamed = true
	return n, nil
}
