package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/rushteam/catalogkit/catalog"
	"github.com/rushteam/catalogkit/config"
	_ "github.com/rushteam/catalogkit/config/builders"
	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/engine"
	"github.com/rushteam/catalogkit/pipeline"
)

const (
	metaSettings = "settings"
	metaLogger   = "logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func catalogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "catalog",
			Aliases: []string{"c"},
			Usage:   "Path to the catalogue file (overrides catalog.path)",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Catalogue source: csv, yaml or store (overrides catalog.format)",
		},
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "catalogkit",
		Usage:  "Search, sort and filter a product catalogue",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a settings file (yaml, json or toml)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Show every product in the catalogue",
				Action: listCommand,
				Flags:  catalogFlags(),
			},
			{
				Name:   "query",
				Usage:  "Search products by name (falling back to category), then sort and filter",
				Action: queryCommand,
				Flags: append(catalogFlags(),
					&cli.StringSliceFlag{
						Name:    "term",
						Aliases: []string{"t"},
						Usage:   "Search term; repeat to run several queries concurrently",
					},
					&cli.StringFlag{
						Name:    "sort",
						Aliases: []string{"s"},
						Usage:   "Sort key: price or rating (defaults to query.sort_key)",
					},
					&cli.Float64Flag{
						Name:  "min-price",
						Usage: "Lowest price to keep (defaults to the lowest price found)",
					},
					&cli.Float64Flag{
						Name:  "max-price",
						Usage: "Highest price to keep (defaults to the highest price found)",
					},
					&cli.Float64Flag{
						Name:  "min-rating",
						Usage: "Minimum rating between 0 and 5 (defaults to query.min_rating)",
					},
					&cli.StringFlag{
						Name:  "pipeline",
						Usage: "Path to a pipeline config (overrides pipeline.path)",
					},
				),
			},
			{
				Name:   "snapshot",
				Usage:  "Load a catalogue file and store it as a snapshot in redis (redis.addr)",
				Action: snapshotCommand,
				Flags: append(catalogFlags(),
					&cli.StringFlag{
						Name:  "key",
						Usage: "Snapshot key (overrides catalog.key)",
					},
				),
			},
		},
	}
}

func setup(c *cli.Context) error {
	settings, err := config.LoadSettings(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		settings.Log.Level = c.String("log-level")
	}
	logger, err := settings.NewLogger()
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.Log.Level, err)
	}
	c.App.Metadata = map[string]any{
		metaSettings: settings,
		metaLogger:   logger,
	}
	return nil
}

func teardown(c *cli.Context) error {
	if logger, ok := c.App.Metadata[metaLogger].(*zap.Logger); ok {
		_ = logger.Sync()
	}
	return nil
}

func settingsFrom(c *cli.Context) (*config.Settings, *zap.Logger) {
	settings := c.App.Metadata[metaSettings].(*config.Settings)
	logger := c.App.Metadata[metaLogger].(*zap.Logger)
	if c.IsSet("catalog") {
		settings.Catalog.Path = c.String("catalog")
	}
	if c.IsSet("format") {
		settings.Catalog.Format = c.String("format")
	}
	return settings, logger
}

// openCatalog 按配置加载目录；store 格式会打开 HashStore 并在加载后关闭。
func openCatalog(ctx context.Context, s *config.Settings, logger *zap.Logger) (*catalog.Catalog, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var hs core.HashStore
	if s.Catalog.Format == config.FormatStore {
		var err error
		if hs, err = s.OpenStore(); err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		defer hs.Close()
	}
	loader, err := s.Loader(hs, logger)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(ctx, loader)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		zap.String("format", s.Catalog.Format),
		zap.Int("count", cat.Len()),
	)
	return cat, nil
}

func listCommand(c *cli.Context) error {
	settings, logger := settingsFrom(c)
	cat, err := openCatalog(c.Context, settings, logger)
	if err != nil {
		return err
	}
	return renderRecords(c.App.Writer, "All Products", cat.Records())
}

func queryCommand(c *cli.Context) error {
	settings, logger := settingsFrom(c)
	if c.IsSet("pipeline") {
		settings.Pipeline.Path = c.String("pipeline")
	}

	cat, err := openCatalog(c.Context, settings, logger)
	if err != nil {
		return err
	}
	var p *pipeline.Pipeline
	if p, err = settings.BuildPipeline(); err != nil {
		return err
	}
	collector, err := settings.NewCollector(logger)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if collector != nil {
		defer collector.Close()
	}
	eng := engine.New(cat,
		engine.WithPipeline(p),
		engine.WithLogger(logger),
		engine.WithQueryConfig(settings),
		engine.WithCollector(collector),
		engine.WithConcurrency(settings.Batch.Concurrency),
	)

	base := engine.Query{SortKey: c.String("sort")}
	if c.IsSet("min-price") || c.IsSet("max-price") {
		lo, hi := 0.0, math.Inf(1)
		if c.IsSet("min-price") {
			lo = c.Float64("min-price")
		}
		if c.IsSet("max-price") {
			hi = c.Float64("max-price")
		}
		base.PriceRange = &core.PriceRange{Lo: lo, Hi: hi}
	}
	if c.IsSet("min-rating") {
		r := c.Float64("min-rating")
		base.MinRating = &r
	}

	terms := c.StringSlice("term")
	if len(terms) <= 1 {
		q := base
		if len(terms) == 1 {
			q.Term = terms[0]
		}
		res, err := eng.Run(c.Context, q)
		if err != nil {
			return err
		}
		return renderResult(c.App.Writer, res)
	}

	queries := make([]engine.Query, 0, len(terms))
	for _, term := range terms {
		q := base
		q.Term = term
		queries = append(queries, q)
	}
	results, err := eng.RunBatch(c.Context, queries)
	if err != nil {
		return err
	}
	for _, res := range results {
		if err := renderResult(c.App.Writer, res); err != nil {
			return err
		}
	}
	return nil
}

func snapshotCommand(c *cli.Context) error {
	settings, logger := settingsFrom(c)
	if settings.Catalog.Format == config.FormatStore {
		return fmt.Errorf("snapshot reads a csv or yaml catalogue, got format %q", config.FormatStore)
	}
	if c.IsSet("key") {
		settings.Catalog.Key = c.String("key")
	}
	if settings.Redis.Addr == "" {
		return fmt.Errorf("snapshot needs redis.addr (CATALOGKIT_REDIS_ADDR): an in-process store is gone when the command exits")
	}

	cat, err := openCatalog(c.Context, settings, logger)
	if err != nil {
		return err
	}
	hs, err := settings.OpenStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer hs.Close()

	if err := catalog.SaveToStore(c.Context, hs, settings.Catalog.Key, cat.Records()); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved %d products to %s key %q\n", cat.Len(), hs.Name(), settings.Catalog.Key)
	return nil
}
