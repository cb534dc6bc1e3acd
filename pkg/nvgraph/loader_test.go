//go:build !nvgraph || !cgo

package nvgraph

import (
	"errors"
	"testing"
)

func TestLoadWithoutNativeSupport(t *testing.T) {
	engine, err := Load("")
	if !errors.Is(err, ErrLibraryUnavailable) {
		t.Fatalf("Load: got %v, want ErrLibraryUnavailable", err)
	}
	if engine != nil {
		t.Errorf("Load returned engine %v alongside an error", engine)
	}

	// Later calls see the same result whatever the path.
	if _, again := Load("/opt/other/libnvgraph.so"); again != err {
		t.Errorf("second Load returned %v, want %v", again, err)
	}
}
