package config

import "time"

// LLMConfig selects and bounds the generative model provider.
type LLMConfig struct {
	Provider       string
	Timeout        time.Duration
	RateLimit      float64
	Burst          int
	MaxPromptBytes int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI or a compatible API
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

type HeuristicsConfig struct {
	ExtraSenderDomains []string
	ExtraWebsiteHosts  []string
	ExtraNumberMarkers []string
	ImageMinWidth      int
	ImageMinHeight     int
	ImageMinBytes      int
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	Redis            RedisConfig
}

type HistoryConfig struct {
	Type             string
	SQLitePath       string
	MySQLDSN         string
	PostgresDSN      string
	RecordTimeout    time.Duration
	Limit            int
	// Retention is how long records are kept. Zero keeps them forever.
	Retention        time.Duration
	CleanupFrequency time.Duration
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

type ServerConfig struct {
	ListenAddress   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	AllowedOrigins  []string
	RateLimit       RateLimitConfig
}

type SMTPHeaders struct {
	Risk     string
	Score    string
	Warnings string
}

type SMTPConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
	BlockHigh       bool
	SubjectPrefix   string
	Headers         SMTPHeaders
	RelayAddress    string
}

func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:       c.GetString("llm.provider"),
		Timeout:        c.GetDuration("llm.timeout"),
		RateLimit:      c.GetFloat64("llm.rate_limit"),
		Burst:          c.GetInt("llm.burst"),
		MaxPromptBytes: c.GetInt("llm.max_prompt_bytes"),
	}
}

func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

func (c *Config) GetHeuristics() HeuristicsConfig {
	return HeuristicsConfig{
		ExtraSenderDomains: c.GetStringSlice("heuristics.extra_sender_domains"),
		ExtraWebsiteHosts:  c.GetStringSlice("heuristics.extra_website_hosts"),
		ExtraNumberMarkers: c.GetStringSlice("heuristics.extra_number_markers"),
		ImageMinWidth:      c.GetInt("heuristics.image.min_width"),
		ImageMinHeight:     c.GetInt("heuristics.image.min_height"),
		ImageMinBytes:      c.GetInt("heuristics.image.min_bytes"),
	}
}

func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              c.GetDuration("cache.ttl"),
		CleanupFrequency: c.GetDuration("cache.cleanup_frequency"),
		Redis: RedisConfig{
			Addr:      c.GetString("cache.redis.addr"),
			Password:  c.GetString("cache.redis.password"),
			DB:        c.GetInt("cache.redis.db"),
			KeyPrefix: c.GetString("cache.redis.key_prefix"),
		},
	}
}

func (c *Config) GetHistory() HistoryConfig {
	return HistoryConfig{
		Type:             c.GetString("history.type"),
		SQLitePath:       c.GetString("history.sqlite_path"),
		MySQLDSN:         c.GetString("history.mysql_dsn"),
		PostgresDSN:      c.GetString("history.postgres_dsn"),
		RecordTimeout:    c.GetDuration("history.record_timeout"),
		Limit:            c.GetInt("history.limit"),
		Retention:        c.GetDuration("history.retention"),
		CleanupFrequency: c.GetDuration("history.cleanup_frequency"),
	}
}

func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		RequestTimeout:  c.GetDuration("server.request_timeout"),
		ShutdownTimeout: c.GetDuration("server.shutdown_timeout"),
		MaxBodyBytes:    int64(c.GetInt("server.max_body_bytes")),
		AllowedOrigins:  c.GetStringSlice("server.cors.allowed_origins"),
		RateLimit: RateLimitConfig{
			Enabled:           c.GetBool("server.rate_limit.enabled"),
			RequestsPerSecond: c.GetFloat64("server.rate_limit.requests_per_second"),
			Burst:             c.GetInt("server.rate_limit.burst"),
		},
	}
}

func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:         c.GetBool("smtp.enabled"),
		ListenAddress:   c.GetString("smtp.listen_address"),
		Domain:          c.GetString("smtp.domain"),
		MaxMessageBytes: int64(c.GetInt("smtp.max_message_bytes")),
		BlockHigh:       c.GetBool("smtp.block_high"),
		SubjectPrefix:   c.GetString("smtp.subject_prefix"),
		Headers: SMTPHeaders{
			Risk:     c.GetString("smtp.headers.risk"),
			Score:    c.GetString("smtp.headers.score"),
			Warnings: c.GetString("smtp.headers.warnings"),
		},
		RelayAddress: c.GetString("smtp.relay.address"),
	}
}
