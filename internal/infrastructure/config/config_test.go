package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, 8000, cfg.LLM.MaxTextLength)
	assert.Equal(t, 2, cfg.LLM.Workers)
	assert.True(t, cfg.Parser.ArticleAmounts)
	assert.Equal(t, 3, cfg.Parser.MinKeywordLength)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LLM_ENABLED", "true")
	t.Setenv("LLM_MODEL", "llama3.1:8b")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("APP_PARSER_UNITS", "cup,sprigs")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "llama3.1:8b", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"cup", "sprigs"}, cfg.Parser.Units)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "disk")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cache backend")
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, MaxBodyBytes: 1024},
		Cache:  CacheConfig{Enabled: true, Backend: "memory", MaxSize: 10, TTL: time.Minute, CleanupInterval: time.Minute},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = 0 }, "server port"},
		{"bad cache size", func(c *Config) { c.Cache.MaxSize = 0 }, "cache max size"},
		{"cache disabled skips checks", func(c *Config) { c.Cache = CacheConfig{} }, ""},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }, "redis address"},
		{"llm without model", func(c *Config) { c.LLM = LLMConfig{Enabled: true, BaseURL: "http://llm"} }, "llm model"},
		{"llm without workers", func(c *Config) { c.LLM = LLMConfig{Enabled: true, BaseURL: "http://llm", Model: "m"} }, "llm workers"},
		{"llm valid", func(c *Config) {
			c.LLM = LLMConfig{Enabled: true, BaseURL: "http://llm", Model: "m", Workers: 1, QueueSize: 4}
		}, ""},
		{"bad rate limit", func(c *Config) { c.RateLimit = RateLimitConfig{Enabled: true} }, "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParserConfigVocabulary(t *testing.T) {
	vocab := ParserConfig{ArticleAmounts: true}.Vocabulary()
	assert.Contains(t, vocab.Units, "cups")
	assert.Contains(t, vocab.Stopwords, "fresh")
	assert.Equal(t, 3, vocab.MinKeywordLength)

	vocab = ParserConfig{
		Units:            []string{"sprigs"},
		Stopwords:        []string{"Chopped"},
		MinKeywordLength: 4,
	}.Vocabulary()
	assert.Equal(t, map[string]string{"sprigs": "sprigs"}, vocab.Units)
	assert.Contains(t, vocab.Stopwords, "chopped")
	assert.NotContains(t, vocab.Stopwords, "fresh")
	assert.False(t, vocab.ArticleAmounts)
	assert.Equal(t, 4, vocab.MinKeywordLength)
}
