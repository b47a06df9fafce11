// Package config loads slimecats configuration.
//
// Sources, lowest precedence first: built-in defaults, the YAML file, a .env
// file next to it, and the process environment. The result is validated
// against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no config file is named.
const DefaultPath = "slimecats.yaml"

// Environment variables that override the file.
const (
	EnvWorkspace     = "SLIMECATS_WORKSPACE"
	EnvAuthorAddress = "SLIMECATS_AUTHOR_ADDRESS"
	EnvAuthorSecret  = "SLIMECATS_AUTHOR_SECRET"
	EnvDatabase      = "SLIMECATS_DATABASE"
	EnvPeers         = "SLIMECATS_PEERS"
)

//go:embed schema.cue
var schemaSource string

var (
	// ErrInvalidConfig means the merged configuration failed validation.
	ErrInvalidConfig = errors.New("config: invalid")

	// ErrNoAuthor means a command needed an author keypair and none is set.
	ErrNoAuthor = errors.New("config: no author keypair configured")
)

// Config is the merged configuration.
type Config struct {
	Workspace string       `yaml:"workspace" json:"workspace"`
	Author    AuthorConfig `yaml:"author" json:"author"`
	Database  string       `yaml:"database" json:"database"`
	Peers     []string     `yaml:"peers" json:"peers"`
	Sync      SyncConfig   `yaml:"sync" json:"sync"`
	Pub       PubConfig    `yaml:"pub" json:"pub"`
	Log       LogConfig    `yaml:"log" json:"log"`

	// Path is the file the config was read from, empty if none.
	Path string `yaml:"-" json:"-"`
}

type AuthorConfig struct {
	Address string `yaml:"address" json:"address"`
	Secret  string `yaml:"secret" json:"secret"`
}

type SyncConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

type PubConfig struct {
	Listen     string `yaml:"listen" json:"listen"`
	GRPCListen string `yaml:"grpc_listen" json:"grpc_listen"`
	DataDir    string `yaml:"data_dir" json:"data_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workspace: "+slimecatsdo.iu8nhj2anvr74slnjei",
		Database:  "slimecats.db",
		Peers:     []string{},
		Sync: SyncConfig{
			Interval: 5 * time.Minute,
			Timeout:  30 * time.Second,
		},
		Pub: PubConfig{
			Listen:  ":3333",
			DataDir: "pub-data",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path, falling back to DefaultPath when path is empty. A
// missing default file is not an error; a missing named file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	dotenv, err := readDotenv(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if c.Peers == nil {
		c.Peers = []string{}
	}
	return nil
}

// readDotenv reads a .env file without touching the process environment.
func readDotenv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvWorkspace); ok {
		c.Workspace = v
	}
	if v, ok := lookup(EnvAuthorAddress); ok {
		c.Author.Address = v
	}
	if v, ok := lookup(EnvAuthorSecret); ok {
		c.Author.Secret = v
	}
	if v, ok := lookup(EnvDatabase); ok {
		c.Database = v
	}
	if v, ok := lookup(EnvPeers); ok {
		c.Peers = splitList(v)
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks c against the embedded schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	view := *c
	if view.Peers == nil {
		view.Peers = []string{}
	}
	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(view))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.TrimSpace(cueerrors.Details(err, nil)))
	}
	return nil
}

// HasAuthor reports whether a keypair is configured.
func (c *Config) HasAuthor() bool {
	return c.Author.Address != "" && c.Author.Secret != ""
}

// SlogLevel maps log.level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
