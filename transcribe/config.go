package transcribe

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the client settings read from the environment
type Config struct {
	BaseURL         string
	Models          []string
	DefaultModel    string
	DefaultLanguage string
	Timeout         time.Duration
	Debug           bool
}

// LoadConfig reads configuration from the environment. Call godotenv.Load
// first to pick up a .env file.
func LoadConfig() (Config, error) {
	cfg := Config{
		BaseURL:         DefaultBaseURL,
		DefaultLanguage: DefaultLanguage,
		Timeout:         DefaultTimeout,
	}

	if v := strings.TrimSpace(os.Getenv("WHISPERFORM_URL")); v != "" {
		cfg.BaseURL = v
	}

	if v := os.Getenv("WHISPER_MODELS"); v != "" {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				cfg.Models = append(cfg.Models, item)
			}
		}
	}
	cfg.DefaultModel = strings.TrimSpace(os.Getenv("WHISPER_MODEL"))

	if v := strings.TrimSpace(os.Getenv("WHISPER_LANGUAGE")); v != "" {
		lang, err := NormalizeLanguage(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid WHISPER_LANGUAGE: %w", err)
		}
		cfg.DefaultLanguage = lang
	}

	if v := strings.TrimSpace(os.Getenv("WHISPERFORM_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid WHISPERFORM_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = d
	}

	cfg.Debug = os.Getenv("WHISPERFORM_DEBUG") == "1"

	return cfg, nil
}

// Catalog builds the model selector options for this configuration
func (c Config) Catalog() []ModelOption {
	return BuildModelCatalog(c.Models, c.DefaultModel)
}

// GetConfigHelp returns help text for pointing the client at a server
func GetConfigHelp() string {
	return `whisperform needs a running Whisper transcription server.

Set the server URL with a flag or an environment variable:

   whisperform -url http://localhost:5000
   export WHISPERFORM_URL="http://localhost:5000"

Or create a .env file with:
   WHISPERFORM_URL=http://localhost:5000
   WHISPER_MODELS=tiny,base,small,medium
   WHISPER_MODEL=medium
   WHISPER_LANGUAGE=auto
   WHISPERFORM_TIMEOUT=15m`
}
