// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/poiesic/packvault"
	"github.com/poiesic/packvault/config"
	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/ingestion"
	"github.com/poiesic/packvault/manifest"
	"github.com/poiesic/packvault/search"
	"github.com/poiesic/packvault/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "packvault",
		Usage: "Deduplicating modpack knowledge base",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Vector store backend (badger, pinecone)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
			},
			&cli.StringFlag{
				Name:  "pinecone-host",
				Usage: "Pinecone index host URL",
			},
			&cli.StringFlag{
				Name:  "embedding-provider",
				Usage: "Embedding provider (ollama, openai)",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest a modpack archive or manifest",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "archive",
						Aliases: []string{"a"},
						Usage:   "Path to a modpack zip containing manifest.json",
					},
					&cli.StringFlag{
						Name:    "manifest",
						Aliases: []string{"m"},
						Usage:   "Path to a bare manifest.json",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Only process the first N references (0 processes all)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent ingestion workers",
					},
					&cli.DurationFlag{
						Name:  "dispatch-interval",
						Usage: "Delay between dispatching references",
					},
					&cli.BoolFlag{
						Name:  "no-overrides",
						Usage: "Skip KubeJS override scripts",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search stored documents",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of hits",
						Value:   search.DefaultMaxHits,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Only return documents of this type (base_mod, pack_overview, pack_override)",
					},
					&cli.BoolFlag{
						Name:  "verbatim",
						Usage: "Only keep hits containing every query word",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show stored document counts",
				Action: statusCommand,
			},
		},
	}
}

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.NewLoader(slog.Default()).Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"store", &cfg.Store.Backend},
		{"db", &cfg.Store.Path},
		{"pinecone-host", &cfg.Store.PineconeHost},
		{"embedding-provider", &cfg.Embedding.Provider},
		{"embedding-host", &cfg.Embedding.Host},
		{"embedding-model", &cfg.Embedding.Model},
	}
	for _, o := range overrides {
		if c.IsSet(o.flag) {
			*o.target = c.String(o.flag)
		}
	}
	return cfg, nil
}

// readManifest loads the manifest named by exactly one of --archive or
// --manifest. The archive is nil for a bare manifest.
func readManifest(c *cli.Context) (*core.Manifest, *manifest.Archive, error) {
	archivePath, manifestPath := c.String("archive"), c.String("manifest")
	switch {
	case archivePath != "" && manifestPath != "":
		return nil, nil, errors.New("--archive and --manifest are mutually exclusive")
	case archivePath == "" && manifestPath == "":
		return nil, nil, errors.New("one of --archive or --manifest is required")
	}

	if manifestPath != "" {
		f, err := os.Open(manifestPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open manifest: %w", err)
		}
		defer f.Close()
		m, err := manifest.Parse(f)
		if err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	}

	archive, err := manifest.OpenArchive(archivePath)
	if err != nil {
		return nil, nil, err
	}
	m, err := archive.Manifest()
	if err != nil {
		archive.Close()
		return nil, nil, err
	}
	return m, archive, nil
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Malformed input stops the run before anything is opened.
	m, archive, err := readManifest(c)
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("workers") {
		cfg.Pipeline.Workers = c.Int("workers")
	}
	if c.IsSet("dispatch-interval") {
		cfg.Pipeline.DispatchInterval = c.Duration("dispatch-interval")
	}

	vault, err := packvault.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	defer vault.Close()

	refCount := len(m.References)
	if limit := c.Int("limit"); limit > 0 {
		refCount = min(refCount, limit)
	}
	tracker := ingestion.NewProgressTracker(c.App.ErrWriter, refCount, cfg.Pipeline.ProgressInterval)
	opts := []ingestion.Option{
		ingestion.WithProgress(tracker.Observe),
		ingestion.WithReferenceLimit(c.Int("limit")),
	}
	if c.Bool("no-overrides") {
		opts = append(opts, ingestion.WithOverrideLimit(-1))
	}
	pipeline, err := vault.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(c.App.ErrWriter, "Pack: %s %s (Minecraft %s, %s)\n", m.Name, m.Version, m.MinecraftVersion, m.Origin)
	fmt.Fprintf(c.App.ErrWriter, "References: %d of %d\n", refCount, len(m.References))
	fmt.Fprintf(c.App.ErrWriter, "Catalogs: %s\n", strings.Join(vault.Fetcher().Catalogs(), ", "))
	fmt.Fprintln(c.App.ErrWriter)

	tracker.Start()
	rs, err := pipeline.RunPack(ctx, m, archive)
	tracker.Finish()
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintln(c.App.Writer, rs.Summary())
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("a search query is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	vault, err := packvault.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	defer vault.Close()

	searcher, err := vault.NewSearcher(search.WithVerbatim(c.Bool("verbatim")))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	var filter storage.Filter
	if kind := c.String("type"); kind != "" {
		filter = storage.Filter{core.AttrType: kind}
	}
	results, err := searcher.Search(c.Context, query, c.Int("top-k"), filter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Fprintf(c.App.Writer, "%d: %s %q [%0.3f]\n", i, hit.ID, displayName(hit.Attributes), hit.Score)
	}
	return nil
}

func displayName(attrs core.Attributes) string {
	for _, key := range []string{core.AttrTitle, core.AttrPackName, core.AttrFilePath} {
		if v := attrs.String(key); v != "" {
			return v
		}
	}
	return ""
}

func statusCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	vault, err := packvault.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	defer vault.Close()

	status, err := vault.Status(c.Context)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Documents: %d\n", status.Documents)
	for _, kind := range status.Types() {
		fmt.Fprintf(c.App.Writer, "  %-16s %d\n", kind+":", status.ByType[kind])
	}
	if status.Truncated {
		fmt.Fprintf(c.App.Writer, "Type counts cover the first %d documents only\n", cfg.Pipeline.SnapshotLimit)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
