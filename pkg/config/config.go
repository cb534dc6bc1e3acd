// Package config holds the settings shared by the graphiti commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"github.com/daniel-j-h/graphiti/pkg/nvgraph"
	"github.com/daniel-j-h/graphiti/pkg/nvgraph/fallback"
)

const (
	// EngineAuto uses the native engine when it can be loaded and the
	// fallback otherwise.
	EngineAuto     = "auto"
	EngineNative   = "native"
	EngineFallback = "fallback"
)

type Config struct {
	Engine      string `yaml:"engine"`
	LibraryPath string `yaml:"libraryPath"`

	Listen string `yaml:"listen"`

	// CacheDir holds matrix documents by content hash.
	CacheDir string `yaml:"cacheDir"`
	// CacheBucket is a gs:// URL backing CacheDir.
	CacheBucket string `yaml:"cacheBucket"`
	// Blobserver is the base URL of an HTTP blob server, tried before CacheBucket.
	Blobserver string `yaml:"blobserver"`

	MaxDownloadAttempts int           `yaml:"maxDownloadAttempts"`
	RetryInterval       time.Duration `yaml:"retryInterval"`
}

func Default() Config {
	return Config{
		Engine:              EngineAuto,
		Listen:              ":8080",
		CacheDir:            "~/.cache/graphiti/blobs",
		MaxDownloadAttempts: 5,
		RetryInterval:       2 * time.Second,
	}
}

// Load reads the YAML file at path over Default, rejecting unknown fields, and
// then applies environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("opening config %q: %w", path, err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("decoding config %q: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Unset variables leave the
// field alone.
func (c *Config) ApplyEnv(getenv func(string) string) {
	for name, field := range map[string]*string{
		"GRAPHITI_ENGINE": &c.Engine,
		"NVGRAPH_LIBRARY": &c.LibraryPath,
		"CACHE_DIR":       &c.CacheDir,
		"CACHE_BUCKET":    &c.CacheBucket,
		"BLOBSERVER":      &c.Blobserver,
	} {
		if v := getenv(name); v != "" {
			*field = v
		}
	}
}

func (c *Config) Validate() error {
	switch c.Engine {
	case EngineAuto, EngineNative, EngineFallback:
	default:
		return fmt.Errorf("unknown engine %q (expected %s, %s or %s)", c.Engine, EngineAuto, EngineNative, EngineFallback)
	}
	if c.CacheBucket != "" && !strings.HasPrefix(c.CacheBucket, "gs://") {
		return fmt.Errorf("cacheBucket must be a GCS bucket URL (gs://<bucketName>), got %q", c.CacheBucket)
	}
	if c.MaxDownloadAttempts < 1 {
		return fmt.Errorf("maxDownloadAttempts must be at least 1, got %d", c.MaxDownloadAttempts)
	}
	if c.RetryInterval < 0 {
		return fmt.Errorf("retryInterval must not be negative, got %v", c.RetryInterval)
	}
	return nil
}

// ExpandCacheDir resolves a leading "~/" against the home directory.
func (c *Config) ExpandCacheDir() (string, error) {
	if !strings.HasPrefix(c.CacheDir, "~/") {
		return c.CacheDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(c.CacheDir, "~/")), nil
}

// Bucket returns the bucket name of CacheBucket, or "" if none is configured.
func (c *Config) Bucket() string {
	return strings.TrimPrefix(c.CacheBucket, "gs://")
}

// loadNative is replaced in tests.
var loadNative = nvgraph.Load

// OpenEngine returns the engine selected by c.Engine. With EngineAuto a
// missing native library is logged and the fallback is used instead; any
// other native load error is returned.
func (c *Config) OpenEngine(log klog.Logger) (nvgraph.Engine, error) {
	if c.Engine == EngineFallback {
		return fallback.NewEngine(), nil
	}

	engine, err := loadNative(c.LibraryPath)
	if err == nil {
		log.Info("using native engine", "library", c.LibraryPath)
		return engine, nil
	}
	if c.Engine == EngineAuto && errors.Is(err, nvgraph.ErrLibraryUnavailable) {
		log.Info("native engine unavailable, using fallback", "reason", err)
		return fallback.NewEngine(), nil
	}
	return nil, fmt.Errorf("loading native engine: %w", err)
}
