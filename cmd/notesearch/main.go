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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/notesearch"
	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/metrics"
	"github.com/poiesic/notesearch/storage/redis"
	"github.com/poiesic/notesearch/warm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "notesearch",
		Usage: "Semantic search over personal notes",
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
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"NOTESEARCH_CONFIG"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank notes by similarity to a query",
				ArgsUsage: "[query]",
				Before:    applyConfigFile,
				Action:    searchCommand,
				Flags: append(append(providerFlags(), cacheFlags()...),
					&cli.StringFlag{
						Name:    "notes",
						Aliases: []string{"n"},
						Usage:   "Path to the notes export (JSON array of {id, content})",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Search query (defaults to the positional arguments)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results (0 for all)",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of notes embedded concurrently",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
					&cli.StringFlag{
						Name:  "metrics-file",
						Usage: "Write Prometheus metrics for the search to this file",
					},
				),
			},
			{
				Name:   "warm",
				Usage:  "Precompute note embeddings into the cache",
				Before: applyConfigFile,
				Action: warmCommand,
				Flags: append(append(providerFlags(), cacheFlags()...),
					&cli.StringFlag{
						Name:    "notes",
						Aliases: []string{"n"},
						Usage:   "Path to the notes export (JSON array of {id, content})",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of notes to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of notes embedded concurrently",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N notes",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per embedding call",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "prune",
						Usage: "Remove cache entries for notes missing from the export",
					},
				),
			},
			{
				Name:      "tokenize",
				Usage:     "Show the model input for a piece of text",
				ArgsUsage: "<text>",
				Before:    applyConfigFile,
				Action:    tokenizeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "vocab",
						Aliases: []string{"v"},
						Usage:   "Path to the WordPiece vocabulary file",
					},
					&cli.BoolFlag{
						Name:  "full",
						Usage: "Print all positions including padding",
					},
				},
			},
		},
	}
}

// providerFlags returns the flags shared by commands that embed text.
func providerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "vocab",
			Aliases: []string{"v"},
			Usage:   "Path to the WordPiece vocabulary file",
		},
		&cli.StringFlag{
			Name:  "provider",
			Usage: "Embedding provider (hashing, openai)",
			Value: ai.ProviderHashing,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "all-minilm",
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "Bearer token for the embedding service",
			EnvVars: []string{"NOTESEARCH_API_TOKEN"},
		},
		&cli.IntFlag{
			Name:  "dimension",
			Usage: "Embedding dimension (0 accepts any size from the service)",
			Value: core.Dim,
		},
	}
}

// cacheFlags returns the flags selecting where embeddings are cached.
func cacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "cache",
			Usage: "Path to the embedding cache directory",
		},
		&cli.StringSliceFlag{
			Name:  "redis-addr",
			Usage: "Redis address for a shared embedding cache (overrides --cache)",
		},
		&cli.StringFlag{
			Name:  "redis-username",
			Usage: "Redis username",
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password",
			EnvVars: []string{"NOTESEARCH_REDIS_PASSWORD"},
		},
		&cli.IntFlag{
			Name:  "redis-db",
			Usage: "Redis database number",
		},
	}
}

// requireFlags reports the first of names that has no value.
func requireFlags(c *cli.Context, names ...string) error {
	for _, name := range names {
		if c.String(name) == "" {
			return fmt.Errorf("required flag %q not set", name)
		}
	}
	return nil
}

// aiConfigFromFlags builds a validated provider configuration.
func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	config := ai.NewConfig(
		ai.WithProvider(c.String("provider")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("dimension")),
	)
	if token := c.String("api-token"); token != "" {
		config.APIToken = token
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

// cacheOption returns the engine option for the configured cache, or nil.
func cacheOption(c *cli.Context) notesearch.EngineOption {
	if addrs := c.StringSlice("redis-addr"); len(addrs) > 0 {
		return notesearch.WithRedisCache(redis.Config{
			Addrs:    addrs,
			Username: c.String("redis-username"),
			Password: c.String("redis-password"),
			DB:       c.Int("redis-db"),
		})
	}
	if dir := c.String("cache"); dir != "" {
		return notesearch.WithCacheDir(dir)
	}
	return nil
}

// cacheDescription names the configured cache for status output.
func cacheDescription(c *cli.Context) string {
	if addrs := c.StringSlice("redis-addr"); len(addrs) > 0 {
		return "redis://" + strings.Join(addrs, ",")
	}
	return c.String("cache")
}

// searchResult is the JSON form of a ranked note.
type searchResult struct {
	Rank    int    `json:"rank"`
	ID      string `json:"id"`
	Content string `json:"content"`
}

func searchCommand(c *cli.Context) error {
	if err := requireFlags(c, "vocab", "notes"); err != nil {
		return err
	}

	query := c.String("query")
	if query == "" {
		query = strings.Join(c.Args().Slice(), " ")
	}

	notes, err := loadNotes(c.String("notes"))
	if err != nil {
		return err
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	opts := []notesearch.EngineOption{notesearch.WithAIConfig(aiConfig)}
	if opt := cacheOption(c); opt != nil {
		opts = append(opts, opt)
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, notesearch.WithSearchPoolSize(workers))
	}

	engine, err := notesearch.NewEngine(c.String("vocab"), opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	var results []core.Document
	if path := c.String("metrics-file"); path != "" {
		reg := prometheus.NewRegistry()
		collector, err := metrics.NewCollector(reg)
		if err != nil {
			return err
		}
		results = engine.SearchWithMonitor(c.Context, query, notes, collector.Monitor())
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	} else {
		results = engine.Search(c.Context, query, notes)
	}

	if dropped := len(notes) - len(results); dropped > 0 {
		slog.Warn("some notes could not be embedded and were left out", "count", dropped)
	}
	if limit := c.Int("limit"); limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	out := c.App.Writer
	if c.Bool("json") {
		rows := make([]searchResult, len(results))
		for i, doc := range results {
			rows[i] = searchResult{Rank: i + 1, ID: doc.ID, Content: doc.Content}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	for i, doc := range results {
		fmt.Fprintf(out, "%3d. %s\t%s\n", i+1, doc.ID, preview(doc.Content, 60))
	}
	return nil
}

func warmCommand(c *cli.Context) error {
	if err := requireFlags(c, "vocab", "notes"); err != nil {
		return err
	}
	cache := cacheOption(c)
	if cache == nil {
		return fmt.Errorf("a cache is required: set --cache or --redis-addr")
	}

	notes, err := loadNotes(c.String("notes"))
	if err != nil {
		return err
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	warmConfig := &warm.Config{
		BatchSize:      c.Int("batch-size"),
		Workers:        c.Int("workers"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Prune:          c.Bool("prune"),
	}
	if err := warmConfig.Validate(); err != nil {
		return err
	}

	engine, err := notesearch.NewEngine(c.String("vocab"),
		notesearch.WithAIConfig(aiConfig),
		cache)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	warmer, err := engine.NewWarmer(warmConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Notes: %s\n", c.String("notes"))
	fmt.Fprintf(c.App.ErrWriter, "Cache: %s\n", cacheDescription(c))
	fmt.Fprintf(c.App.ErrWriter, "Provider: %s\n", aiConfig.Provider)
	fmt.Fprintln(c.App.ErrWriter)

	stats, err := warmer.Run(c.Context, notes)
	if err != nil {
		return fmt.Errorf("warm-up failed: %w", err)
	}
	if stats.Skipped > 0 {
		slog.Warn("notes without an id were not cached", "count", stats.Skipped)
	}
	return nil
}

func tokenizeCommand(c *cli.Context) error {
	if err := requireFlags(c, "vocab"); err != nil {
		return err
	}
	if c.NArg() == 0 {
		return fmt.Errorf("text to tokenize is required")
	}
	text := strings.Join(c.Args().Slice(), " ")

	engine, err := notesearch.NewEngine(c.String("vocab"))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	input := engine.Tokenize(text)
	n := input.Len()
	if c.Bool("full") {
		n = len(input.IDs)
	}

	vocab := engine.Vocabulary()
	tokens := make([]string, n)
	for i, id := range input.IDs[:n] {
		token, ok := vocab.TokenOf(id)
		if !ok {
			token = "?"
		}
		tokens[i] = token
	}

	out := c.App.Writer
	fmt.Fprintf(out, "tokens: %s\n", strings.Join(tokens, " "))
	fmt.Fprintf(out, "ids:    %v\n", input.IDs[:n])
	fmt.Fprintf(out, "mask:   %v\n", input.AttentionMask[:n])
	fmt.Fprintf(out, "length: %d/%d\n", input.Len(), core.MaxLen)
	return nil
}

// preview shortens text to at most n runes on a single line.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-1]) + "…"
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
