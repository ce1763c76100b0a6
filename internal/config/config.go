package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// LLMConfig contains all generation-backend related settings.
type LLMConfig struct {
	// Provider selects the generation backend implementation.
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai"`

	// GeminiAPIKey authenticates against the Gemini API. Required when
	// Provider is "gemini".
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`

	// OpenAIAPIKey authenticates against an OpenAI-compatible endpoint.
	// Required when Provider is "openai".
	OpenAIAPIKey string `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`

	// OpenAIBaseURL optionally points the OpenAI client at a compatible
	// self-hosted server. Empty means the public API.
	OpenAIBaseURL string `mapstructure:"openai_base_url" validate:"omitempty,url"`

	// ModelName is the provider model identifier.
	ModelName string `mapstructure:"model_name" validate:"required"`

	// MaxRetries bounds provider-internal retries for transient errors.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RetryDelaySeconds is the base delay for exponential backoff.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// SessionConfig tunes the session orchestration core.
type SessionConfig struct {
	// DispatchTimeoutSeconds caps each backend call issued by the
	// task dispatcher.
	DispatchTimeoutSeconds int `mapstructure:"dispatch_timeout_seconds" validate:"required,gt=0,lte=300"`

	// SummaryCacheTTLMinutes is how long a resolved summary stays
	// cached per subject.
	SummaryCacheTTLMinutes int `mapstructure:"summary_cache_ttl_minutes" validate:"required,gt=0"`

	// RatingAdvanceDelayMillis is the pause between accepting a
	// difficulty rating in review mode and advancing the deck.
	RatingAdvanceDelayMillis int `mapstructure:"rating_advance_delay_millis" validate:"required,gt=0,lte=10000"`

	// AutoAdvanceIntervalSeconds is the study-mode auto-advance period.
	AutoAdvanceIntervalSeconds int `mapstructure:"auto_advance_interval_seconds" validate:"required,gt=0,lte=600"`
}
