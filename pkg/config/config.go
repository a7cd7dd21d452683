package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/guptam/altimeter/pkg/encode"
	"github.com/guptam/altimeter/pkg/logging"
	"github.com/guptam/altimeter/pkg/rdfgraph"
)

// DefaultFile is the config file read from the working directory.
const DefaultFile = "altimeter.toml"

// EnvPrefix prefixes environment overrides, e.g. ALTIMETER_SERVE_PORT=9090.
const EnvPrefix = "ALTIMETER_"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for the application
type Config struct {
	GraphName    string      `koanf:"graph_name"`
	GraphVersion string      `koanf:"graph_version"`
	Namespace    string      `koanf:"namespace"`
	ArtifactPath string      `koanf:"artifact_path"`
	Output       string      `koanf:"output"`
	Format       string      `koanf:"format"`
	RDFSyntax    string      `koanf:"rdf_syntax"`
	Schemas      []string    `koanf:"schemas"`
	SkipErrors   bool        `koanf:"skip_errors"`
	Concurrency  Concurrency `koanf:"concurrency"`
	Serve        Serve       `koanf:"serve"`
	Verbosity    string      `koanf:"verbosity"`
}

// Concurrency bounds parallel work.
type Concurrency struct {
	MaxParseWorkers int `koanf:"max_parse_workers"`
}

// Serve configures the HTTP server.
type Serve struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"graph_name":    "alti",
		"graph_version": "1",
		"namespace":     "alti:",
		"artifact_path": "artifact.json",
		"output":        "-",
		"format":        string(encode.FormatLPG),
		"rdf_syntax":    string(rdfgraph.SyntaxNTriples),
		"schemas":       []string{},
		"skip_errors":   false,
		"concurrency": map[string]interface{}{
			"max_parse_workers": 8,
		},
		"serve": map[string]interface{}{
			"port":  8080,
			"watch": false,
		},
		"verbosity": "info",
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
//
// path names the config file; an empty path means DefaultFile, which may be
// absent. An explicitly named file must exist.
func Load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if err := k.Load(file.Provider(DefaultFile), toml.Parser()); err != nil {
		logging.Trace("no config file loaded", "path", DefaultFile, "error", err)
	}

	// 3. Environment Variables
	// Only the first underscore after a section name nests, so
	// ALTIMETER_CONCURRENCY_MAX_PARSE_WORKERS maps to concurrency.max_parse_workers.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, flagKey(f)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

var sections = []string{"concurrency", "serve"}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// flagKeys maps command flags onto nested config keys. Other flags map by
// replacing dashes with underscores.
var flagKeys = map[string]string{
	"artifact": "artifact_path",
	"schema":   "schemas",
	"port":     "serve.port",
	"watch":    "serve.watch",
	"workers":  "concurrency.max_parse_workers",
}

func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", "_")
		}
		return key, posflag.FlagVal(fs, f)
	}
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	if _, err := encode.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := rdfgraph.ParseSyntax(c.RDFSyntax); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := rdfgraph.Namespace(c.Namespace).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.GraphName == "" {
		return fmt.Errorf("%w: graph_name must not be empty", ErrInvalidConfig)
	}
	if c.Concurrency.MaxParseWorkers <= 0 {
		return fmt.Errorf("%w: concurrency.max_parse_workers must be positive, got %d",
			ErrInvalidConfig, c.Concurrency.MaxParseWorkers)
	}
	if c.Serve.Port <= 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("%w: serve.port out of range: %d", ErrInvalidConfig, c.Serve.Port)
	}
	if _, err := logging.ParseVerbosity(c.Verbosity); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
