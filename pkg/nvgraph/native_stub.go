//go:build !nvgraph || !cgo

package nvgraph

import "fmt"

func loadNative(path string) (Engine, error) {
	return nil, fmt.Errorf("%w: %q: built without the nvgraph build tag", ErrLibraryUnavailable, path)
}
