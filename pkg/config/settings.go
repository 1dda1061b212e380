// Package config loads runtime settings from the environment and persona tables from files.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Settings holds every environment-driven knob of the sentinel binary.
type Settings struct {
	Tables   string `env:"SENTINEL_TABLES"`
	Port     int    `env:"SENTINEL_PORT" envDefault:"8080"`
	LogLevel string `env:"SENTINEL_LOG_LEVEL" envDefault:"info"`

	// Chat replies are shown after this pause by interactive front ends.
	TypingDelay time.Duration `env:"SENTINEL_TYPING_DELAY" envDefault:"1200ms"`

	// Sessions
	SessionTTL    time.Duration `env:"SENTINEL_SESSION_TTL" envDefault:"24h"`
	SweepSchedule string        `env:"SENTINEL_SWEEP_SCHEDULE" envDefault:"@every 5m"`
	RateLimit     float64       `env:"SENTINEL_RATE_LIMIT" envDefault:"5"`
	RateBurst     int           `env:"SENTINEL_RATE_BURST" envDefault:"10"`
	MaxInputSize  int           `env:"SENTINEL_MAX_INPUT_SIZE"`
	MaskPII       bool          `env:"SENTINEL_MASK_PII" envDefault:"false"`

	// Interactive commands keep transcripts here so sessions can be resumed.
	SessionDir string `env:"SENTINEL_SESSION_DIR" envDefault:".sentinel/sessions"`

	// Storage (redis when RedisAddr is set)
	RedisAddr     string `env:"SENTINEL_REDIS_ADDR"`
	RedisPassword string `env:"SENTINEL_REDIS_PASSWORD"`
	RedisDB       int    `env:"SENTINEL_REDIS_DB" envDefault:"0"`
	EncryptionKey string `env:"SENTINEL_ENCRYPTION_KEY"` // base64, 32 bytes once decoded

	// Text generation (offline when OpenAIAPIKey is empty)
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`
	OpenAIModel      string        `env:"OPENAI_MODEL"`
	GeneratorTimeout time.Duration `env:"SENTINEL_GENERATOR_TIMEOUT" envDefault:"15s"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
}

// ErrInvalidSettings wraps environment parsing and validation failures.
var ErrInvalidSettings = errors.New("invalid settings")

// LoadSettings reads the given dotenv files (missing files are skipped) and then parses
// the environment. Variables already set in the environment win over dotenv values.
func LoadSettings(dotenvFiles ...string) (*Settings, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidSettings, f, err)
		}
	}

	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (s *Settings) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidSettings, s.Port)
	}
	if s.RateLimit < 0 || s.RateBurst < 0 {
		return fmt.Errorf("%w: rate limit and burst must not be negative", ErrInvalidSettings)
	}
	if s.EncryptionKey != "" {
		if _, err := s.Key(); err != nil {
			return err
		}
	}
	return nil
}

// Key decodes EncryptionKey. It returns nil when encryption is disabled.
func (s *Settings) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key is not base64: %v", ErrInvalidSettings, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: encryption key must decode to 32 bytes, got %d", ErrInvalidSettings, len(key))
	}
	return key, nil
}

// Online reports whether a text generator is configured.
func (s *Settings) Online() bool {
	return s.OpenAIAPIKey != ""
}

// Addr returns the HTTP listen address.
func (s *Settings) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
