package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"k8s.io/klog/v2"

	"github.com/daniel-j-h/graphiti/pkg/blobs"
	"github.com/daniel-j-h/graphiti/pkg/config"
	"github.com/daniel-j-h/graphiti/pkg/graphiti"
	"github.com/daniel-j-h/graphiti/pkg/paths"
	"github.com/daniel-j-h/graphiti/pkg/sparse"
)

// exampleDocument is the adjacency matrix used when no matrix is given:
// adj(i, j) != 0 means an edge from i to j.
const exampleDocument = `format: csc
kind: float32
dense:
  - [0, 1, 0]
  - [1, 0, 1]
  - [1, 0, 0]
`

func main() {
	if err := run(context.Background(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	matrixPath string
	hash       string
	algorithm  string
	source     int
	upload     bool
}

func run(ctx context.Context, out io.Writer) error {
	var opt options
	opt.configPath = os.Getenv("GRAPHITI_CONFIG")
	opt.algorithm = string(graphiti.ShortestPath)
	opt.source = 1
	flag.StringVar(&opt.configPath, "config", opt.configPath, "path to YAML config file")
	flag.StringVar(&opt.matrixPath, "matrix", opt.matrixPath, "path to a YAML matrix document, - for stdin")
	flag.StringVar(&opt.hash, "hash", opt.hash, "hash of a stored matrix document")
	flag.StringVar(&opt.algorithm, "algorithm", opt.algorithm, "sssp or widest")
	flag.IntVar(&opt.source, "source", opt.source, "source vertex")
	flag.BoolVar(&opt.upload, "upload", opt.upload, "store the matrix document in the cache (and bucket, if configured) and print its hash")

	klog.InitFlags(nil)
	flag.Parse()

	cfg, err := config.Load(opt.configPath)
	if err != nil {
		return err
	}
	return runWithConfig(ctx, cfg, opt, out)
}

func runWithConfig(ctx context.Context, cfg config.Config, opt options, out io.Writer) error {
	log := klog.FromContext(ctx)

	algorithm, err := graphiti.ParseAlgorithm(opt.algorithm)
	if err != nil {
		return err
	}

	engine, err := cfg.OpenEngine(log)
	if err != nil {
		return err
	}
	lib := graphiti.New(engine, graphiti.WithLogger(log))

	version, err := lib.Version()
	if err != nil {
		return fmt.Errorf("reading engine version: %w", err)
	}
	fmt.Fprintf(out, "version %v\n", version)

	b, err := readDocument(ctx, cfg, opt)
	if err != nil {
		return err
	}
	doc, err := sparse.ParseDocument(b)
	if err != nil {
		return err
	}

	if opt.upload {
		cache, err := cfg.OpenCache(log)
		if err != nil {
			return err
		}
		info, err := cache.Put(ctx, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "hash %s\n", info.Hash)
	}

	result, err := paths.Run(ctx, lib, doc, paths.Query{Algorithm: algorithm, Source: opt.source})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %v\n", label(algorithm), result.Values)
	return nil
}

func label(algorithm graphiti.Algorithm) string {
	if algorithm == graphiti.WidestPath {
		return "widths"
	}
	return "etas"
}

func readDocument(ctx context.Context, cfg config.Config, opt options) ([]byte, error) {
	switch {
	case opt.hash != "" && opt.matrixPath != "":
		return nil, fmt.Errorf("-hash and -matrix are mutually exclusive")
	case opt.hash != "":
		cache, err := cfg.OpenCache(klog.FromContext(ctx))
		if err != nil {
			return nil, err
		}
		return cache.ReadFile(ctx, blobs.BlobInfo{Hash: opt.hash})
	case opt.matrixPath == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading matrix from stdin: %w", err)
		}
		return b, nil
	case opt.matrixPath != "":
		b, err := os.ReadFile(opt.matrixPath)
		if err != nil {
			return nil, fmt.Errorf("reading matrix: %w", err)
		}
		return b, nil
	}
	return []byte(exampleDocument), nil
}
