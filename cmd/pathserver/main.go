package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/time/rate"
	"k8s.io/klog/v2"

	"github.com/daniel-j-h/graphiti/pkg/config"
	"github.com/daniel-j-h/graphiti/pkg/graphiti"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := klog.FromContext(ctx)

	configPath := os.Getenv("GRAPHITI_CONFIG")
	flag.StringVar(&configPath, "config", configPath, "path to YAML config file")
	listen := ""
	flag.StringVar(&listen, "listen", listen, "listen address, overrides the config file")
	queriesPerSecond := 0.0
	flag.Float64Var(&queriesPerSecond, "max-qps", queriesPerSecond, "maximum path queries per second, 0 for no limit")

	klog.InitFlags(nil)
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
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
	log.Info("graph engine ready", "engine", engine.Name(), "version", version)

	cache, err := cfg.OpenCache(log)
	if err != nil {
		return err
	}

	limit := rate.Inf
	if queriesPerSecond > 0 {
		limit = rate.Limit(queriesPerSecond)
	}
	s := &server{
		lib:     lib,
		version: version,
		cache:   cache,
		limiter: rate.NewLimiter(limit, 1),
	}

	log.Info("serving", "listen", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, s.routes()); err != nil {
		return fmt.Errorf("serving on %q: %w", cfg.Listen, err)
	}
	return nil
}
