// Package config loads the service configuration.
//
// Values come from four layers, lowest precedence first: built-in defaults, an
// optional YAML file, an optional dotenv file and the process environment. The
// dotenv file never overrides variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sanonone/kektorrag/pkg/embeddings"
	"github.com/sanonone/kektorrag/pkg/text"
)

// Config holds every tunable of the service.
type Config struct {
	// --- Embedding provider ---
	APIKey           string        `yaml:"api_key"`
	EmbeddingModel   string        `yaml:"embedding_model"`
	EmbeddingBaseURL string        `yaml:"embedding_base_url"`
	EmbeddingTimeout time.Duration `yaml:"embedding_timeout"`

	// --- HTTP server ---
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	CORSAllowOrigins []string      `yaml:"cors_allow_origins"`
	MaxBodyBytes     int64         `yaml:"max_body_bytes"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
	MetricsEnabled   bool          `yaml:"metrics_enabled"`
	MCPEnabled       bool          `yaml:"mcp_enabled"`

	// --- Chunking ---
	DefaultChunkSize    int    `yaml:"default_chunk_size"`
	DefaultChunkOverlap int    `yaml:"default_chunk_overlap"`
	ChunkingStrategy    string `yaml:"chunking_strategy"`
	// "rune", "word" or "token"
	ChunkUnit     string `yaml:"chunk_unit"`
	TokenEncoding string `yaml:"token_encoding"`

	// --- Logging ---
	LogLevel       string `yaml:"log_level"`
	LogDevelopment bool   `yaml:"log_development"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		EmbeddingModel:   "openai/text-embedding-3-small",
		EmbeddingBaseURL: embeddings.DefaultBaseURL,
		EmbeddingTimeout: 60 * time.Second,

		Host:             "0.0.0.0",
		Port:             8000,
		CORSAllowOrigins: []string{"*"},
		MaxBodyBytes:     10 << 20,
		ShutdownTimeout:  10 * time.Second,
		MetricsEnabled:   true,
		MCPEnabled:       true,

		DefaultChunkSize:    512,
		DefaultChunkOverlap: 50,
		ChunkingStrategy:    text.StrategySentence,
		ChunkUnit:           text.UnitToken,
		TokenEncoding:       text.DefaultTokenEncoding,

		LogLevel: "info",
	}
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load builds the configuration from defaults, the YAML file at yamlPath and the
// dotenv file at envFile (either may be empty) and the environment, then validates it.
// A missing dotenv file is not an error.
func Load(yamlPath, envFile string) (Config, error) {
	cfg := Default()

	// Loaded first so ${VAR} references in the YAML file can see it.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("could not load env file '%s': %w", envFile, err)
		}
	}

	if yamlPath != "" {
		if err := loadYAML(yamlPath, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadYAML decodes path over cfg. It uses Strict Mode (KnownFields) to prevent
// silent errors due to typos.
func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	decoder := yaml.NewDecoder(strings.NewReader(expanded))
	decoder.KnownFields(true)

	// io.EOF means an empty file: keep the defaults.
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error

	envString("OPENROUTER_API_KEY", &cfg.APIKey)
	envString("OPENROUTER_EMBEDDING_MODEL", &cfg.EmbeddingModel)
	envString("OPENROUTER_BASE_URL", &cfg.EmbeddingBaseURL)
	errs = append(errs, envDuration("EMBEDDING_TIMEOUT", &cfg.EmbeddingTimeout))

	envString("HOST", &cfg.Host)
	errs = append(errs, envInt("PORT", &cfg.Port))
	if v, ok := os.LookupEnv("CORS_ALLOW_ORIGINS"); ok {
		cfg.CORSAllowOrigins = splitList(v)
	}
	errs = append(errs,
		envInt64("MAX_BODY_BYTES", &cfg.MaxBodyBytes),
		envDuration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout),
		envBool("METRICS_ENABLED", &cfg.MetricsEnabled),
		envBool("MCP_ENABLED", &cfg.MCPEnabled),
		envInt("DEFAULT_CHUNK_SIZE", &cfg.DefaultChunkSize),
		envInt("DEFAULT_CHUNK_OVERLAP", &cfg.DefaultChunkOverlap),
	)

	envString("CHUNKING_STRATEGY", &cfg.ChunkingStrategy)
	envString("CHUNK_UNIT", &cfg.ChunkUnit)
	envString("TOKEN_ENCODING", &cfg.TokenEncoding)

	envString("LOG_LEVEL", &cfg.LogLevel)
	errs = append(errs, envBool("LOG_DEVELOPMENT", &cfg.LogDevelopment))

	return errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.DefaultChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("default_chunk_size must be positive, got %d", c.DefaultChunkSize))
	}
	if c.DefaultChunkOverlap < 0 || c.DefaultChunkOverlap >= c.DefaultChunkSize {
		errs = append(errs, fmt.Errorf("default_chunk_overlap must be in [0, %d), got %d", c.DefaultChunkSize, c.DefaultChunkOverlap))
	}
	if !text.IsStrategy(c.ChunkingStrategy) {
		errs = append(errs, fmt.Errorf("unknown chunking_strategy %q", c.ChunkingStrategy))
	}
	switch c.ChunkUnit {
	case text.UnitRune, text.UnitWord, text.UnitToken:
	default:
		errs = append(errs, fmt.Errorf("unknown chunk_unit %q", c.ChunkUnit))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be in 1-65535, got %d", c.Port))
	}
	if c.EmbeddingModel == "" {
		errs = append(errs, errors.New("embedding_model must not be empty"))
	}
	if c.EmbeddingTimeout <= 0 {
		errs = append(errs, fmt.Errorf("embedding_timeout must be positive, got %s", c.EmbeddingTimeout))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	*dst = b
	return nil
}

// envDuration accepts Go durations ("90s") and plain seconds ("90").
func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = time.Duration(secs * float64(time.Second))
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", key, v)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
