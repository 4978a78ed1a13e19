package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/baserah/baserah/internal/agent"
	"github.com/baserah/baserah/internal/analyzer"
	"github.com/baserah/baserah/internal/equation"
	"github.com/baserah/baserah/internal/inference"
	"github.com/baserah/baserah/internal/knowledge"
	"github.com/baserah/baserah/internal/lexicon"
	"github.com/baserah/baserah/internal/memory"
	"github.com/baserah/baserah/internal/seed"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix prefixes every environment override, e.g. BASERAH_SERVER_ADDR
const EnvPrefix = "BASERAH"

// Transports served by the MCP server
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// LexiconConfig holds dictionary settings
type LexiconConfig struct {
	Dimensions int `mapstructure:"dimensions"`
}

// SeedConfig lists where the lexicon and knowledge base come from
type SeedConfig struct {
	Builtin bool             `mapstructure:"builtin"` // Load the embedded default seed
	Files   []string         `mapstructure:"files"`
	SQL     []seed.SQLSource `mapstructure:"sql"`
	Dgraph  bool             `mapstructure:"dgraph"` // Also load facts from the Dgraph mirror
	Mirror  bool             `mapstructure:"mirror"` // Write seeded facts to the Dgraph mirror
}

// ServerConfig holds MCP server settings
type ServerConfig struct {
	Transport string  `mapstructure:"transport"`
	Addr      string  `mapstructure:"addr"`
	RateLimit float64 `mapstructure:"rate_limit"` // Tool calls per second, per tool
	Burst     int     `mapstructure:"burst"`
}

// Config is the complete application configuration
type Config struct {
	Lexicon   LexiconConfig          `mapstructure:"lexicon"`
	Analyzer  *analyzer.Config       `mapstructure:"analyzer"`
	Knowledge *knowledge.Config      `mapstructure:"knowledge"`
	Intent    *inference.Config      `mapstructure:"intent"`
	Generator *agent.GeneratorConfig `mapstructure:"generator"`
	Settings  *agent.Settings        `mapstructure:"settings"`
	History   *memory.Config         `mapstructure:"history"`
	Seed      SeedConfig             `mapstructure:"seed"`
	Server    ServerConfig           `mapstructure:"server"`
	Pool      *inference.PoolConfig  `mapstructure:"pool"`
	Equation  *equation.Config       `mapstructure:"equation"`
	Debug     bool                   `mapstructure:"debug"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Lexicon:   LexiconConfig{Dimensions: lexicon.DefaultDimensions},
		Analyzer:  analyzer.DefaultConfig(),
		Knowledge: knowledge.DefaultConfig(),
		Intent:    inference.DefaultConfig(),
		Generator: agent.DefaultGeneratorConfig(),
		Settings:  agent.DefaultSettings(),
		History:   memory.DefaultConfig(),
		Seed:      SeedConfig{Builtin: true},
		Server: ServerConfig{
			Transport: TransportStdio,
			Addr:      "localhost:8090",
			RateLimit: 20,
			Burst:     40,
		},
		Pool:     inference.DefaultPoolConfig(),
		Equation: equation.DefaultConfig(),
	}
}

// SetDefaults registers the scalar defaults so environment variables can
// override keys absent from the config file
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("debug", d.Debug)
	v.SetDefault("lexicon.dimensions", d.Lexicon.Dimensions)
	v.SetDefault("analyzer.similarity_threshold", d.Analyzer.SimilarityThreshold)
	v.SetDefault("knowledge.propagation_threshold", d.Knowledge.PropagationThreshold)
	v.SetDefault("generator.knowledge_threshold", d.Generator.KnowledgeThreshold)
	v.SetDefault("generator.seed", d.Generator.Seed)
	v.SetDefault("settings.writing_style", string(d.Settings.WritingStyle))
	v.SetDefault("settings.detail_level", string(d.Settings.DetailLevel))
	v.SetDefault("settings.components.knowledge", d.Settings.Components.Knowledge)
	v.SetDefault("settings.components.fluency", d.Settings.Components.Fluency)
	v.SetDefault("settings.components.history", d.Settings.Components.History)
	v.SetDefault("history.capacity", d.History.Capacity)
	v.SetDefault("history.redis_url", d.History.RedisURL)
	v.SetDefault("history.redis_password", d.History.RedisPassword)
	v.SetDefault("history.dgraph_alpha_url", d.History.DgraphAlphaURL)
	v.SetDefault("history.badger_path", d.History.BadgerPath)
	v.SetDefault("history.sqlite_path", d.History.SQLitePath)
	v.SetDefault("seed.builtin", d.Seed.Builtin)
	v.SetDefault("server.transport", d.Server.Transport)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.burst", d.Server.Burst)
	v.SetDefault("pool.workers", d.Pool.Workers)
	v.SetDefault("equation.seed", d.Equation.Seed)
}

// ConfigureEnv enables BASERAH_* environment overrides on v
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v over the defaults and validates the result
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Settings.Normalize()
	cfg.Server.Transport = strings.ToLower(strings.TrimSpace(cfg.Server.Transport))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	unit := func(name string, v float64) {
		check(v >= 0 && v <= 1, "%s must be within [0,1], got %v", name, v)
	}

	check(c.Lexicon.Dimensions >= 10 && c.Lexicon.Dimensions <= 20,
		"lexicon.dimensions must be within [10,20], got %d", c.Lexicon.Dimensions)

	unit("analyzer.similarity_threshold", c.Analyzer.SimilarityThreshold)
	unit("analyzer.keyword_threshold", c.Analyzer.KeywordThreshold)
	unit("analyzer.entity_threshold", c.Analyzer.EntityThreshold)
	unit("knowledge.propagation_threshold", c.Knowledge.PropagationThreshold)
	unit("generator.knowledge_threshold", c.Generator.KnowledgeThreshold)
	unit("generator.template_confidence", c.Generator.TemplateConfidence)
	check(c.Intent.TopFacts > 0, "intent.top_facts must be positive, got %d", c.Intent.TopFacts)

	for _, intent := range c.Generator.KnowledgeIntents {
		check(intent.Valid(), "generator.knowledge_intents: unknown intent %q", intent)
	}
	for _, r := range append(append([]inference.CategoryRule{}, c.Intent.KeywordRules...), c.Intent.EntityRules...) {
		check(r.Intent.Valid(), "intent rule for %q: unknown intent %q", r.Category, r.Intent)
	}
	for _, r := range c.Intent.Interrogatives {
		check(r.Intent.Valid(), "interrogative %q: unknown intent %q", r.Word, r.Intent)
	}

	if err := c.Settings.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("settings: %w", err))
	}

	check(c.History.Capacity > 0, "history.capacity must be positive, got %d", c.History.Capacity)
	for _, b := range c.History.Backends {
		check(b.Valid(), "history.backends: unknown backend %q", b)
	}

	for _, src := range c.Seed.SQL {
		switch src.Driver {
		case seed.DriverSQLite, seed.DriverPostgres, seed.DriverMySQL:
		default:
			errs = append(errs, fmt.Errorf("seed.sql: unsupported driver %q", src.Driver))
		}
	}

	check(c.Server.Transport == TransportStdio || c.Server.Transport == TransportHTTP,
		"server.transport must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Server.Transport)
	check(c.Server.RateLimit > 0, "server.rate_limit must be positive, got %v", c.Server.RateLimit)
	check(c.Server.Burst > 0, "server.burst must be positive, got %d", c.Server.Burst)
	check(c.Pool.Workers > 0 && c.Pool.QueueSize > 0 && c.Pool.MaxConcurrent > 0,
		"pool sizes must be positive")
	check(c.Equation.LearningRate > 0, "equation.learning_rate must be positive, got %v", c.Equation.LearningRate)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
