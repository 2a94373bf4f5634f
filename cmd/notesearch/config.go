package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML configuration file. Every field is optional;
// command-line flags override the file.
type fileConfig struct {
	Vocab     string          `yaml:"vocab"`
	Notes     string          `yaml:"notes"`
	Embedding embeddingConfig `yaml:"embedding"`
	Cache     cacheConfig     `yaml:"cache"`
	Search    searchConfig    `yaml:"search"`
	Warm      warmConfig      `yaml:"warm"`
}

type embeddingConfig struct {
	Provider  string `yaml:"provider"`  // hashing, openai
	Host      string `yaml:"host"`
	Model     string `yaml:"model"`
	APIToken  string `yaml:"api_token"`
	Dimension *int   `yaml:"dimension"` // 0 disables the dimension check
}

type cacheConfig struct {
	Dir   string      `yaml:"dir"`
	Redis redisConfig `yaml:"redis"`
}

type redisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

type searchConfig struct {
	Limit   *int `yaml:"limit"`
	Workers int  `yaml:"workers"`
}

type warmConfig struct {
	BatchSize      int    `yaml:"batch_size"`
	Workers        int    `yaml:"workers"`
	ReportInterval int    `yaml:"report_interval"`
	MaxRetries     int    `yaml:"max_retries"`
	RetryDelay     string `yaml:"retry_delay"` // Go duration, e.g. 500ms
	Prune          *bool  `yaml:"prune"`
}

// loadConfigFile reads a configuration file. Values of the form ${VAR}
// are replaced from the environment before parsing.
func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// settings maps flag names to the values the file provides for command.
// The search and warm sections only apply to their own command.
func (f *fileConfig) settings(command string) map[string][]string {
	s := map[string][]string{}
	add := func(name string, values ...string) {
		for _, v := range values {
			if v != "" {
				s[name] = append(s[name], v)
			}
		}
	}

	add("vocab", f.Vocab)
	add("notes", f.Notes)
	add("provider", f.Embedding.Provider)
	add("embedding-host", f.Embedding.Host)
	add("embedding-model", f.Embedding.Model)
	add("api-token", f.Embedding.APIToken)
	if f.Embedding.Dimension != nil {
		add("dimension", strconv.Itoa(*f.Embedding.Dimension))
	}
	add("cache", f.Cache.Dir)
	add("redis-addr", f.Cache.Redis.Addrs...)
	add("redis-username", f.Cache.Redis.Username)
	add("redis-password", f.Cache.Redis.Password)
	if f.Cache.Redis.DB != 0 {
		add("redis-db", strconv.Itoa(f.Cache.Redis.DB))
	}
	addInt := func(name string, v int) {
		if v != 0 {
			add(name, strconv.Itoa(v))
		}
	}

	switch command {
	case "search":
		if f.Search.Limit != nil {
			add("limit", strconv.Itoa(*f.Search.Limit))
		}
		addInt("workers", f.Search.Workers)
	case "warm":
		addInt("batch-size", f.Warm.BatchSize)
		addInt("workers", f.Warm.Workers)
		addInt("report-interval", f.Warm.ReportInterval)
		addInt("max-retries", f.Warm.MaxRetries)
		add("retry-delay", f.Warm.RetryDelay)
		if f.Warm.Prune != nil {
			add("prune", strconv.FormatBool(*f.Warm.Prune))
		}
	}
	return s
}

// applyConfigFile fills flags the user did not set from the --config file.
func applyConfigFile(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		return nil
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		return err
	}

	settings := cfg.settings(c.Command.Name)
	for _, flag := range c.Command.Flags {
		name := flag.Names()[0]
		values, ok := settings[name]
		if !ok || c.IsSet(name) {
			continue
		}
		for _, v := range values {
			if err := c.Set(name, v); err != nil {
				return fmt.Errorf("invalid config value for %s: %w", name, err)
			}
		}
	}
	return nil
}
