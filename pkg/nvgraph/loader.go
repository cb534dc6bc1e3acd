package nvgraph

import (
	"errors"
	"sync"
)

// DefaultLibraryName is the shared object looked up when no path is configured.
const DefaultLibraryName = "libnvgraph.so"

// ErrLibraryUnavailable is returned by Load when the native library cannot be
// located or bound, or when the binary was built without native support.
var ErrLibraryUnavailable = errors.New("nvgraph library unavailable")

var (
	loadOnce sync.Once
	loaded   Engine
	loadErr  error
)

// Load binds the native engine's function table for the whole process.
//
// Only the first call does any work; every later call returns the same engine
// or error, whatever path it is given. An empty path means DefaultLibraryName.
func Load(path string) (Engine, error) {
	loadOnce.Do(func() {
		if path == "" {
			path = DefaultLibraryName
		}
		loaded, loadErr = loadNative(path)
	})
	return loaded, loadErr
}
