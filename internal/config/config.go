package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/affigen/internal/casefile"
)

// DefaultStationName is used until a station is configured or saved.
const DefaultStationName = "Los Banos Police Station"

// Generation providers.
const (
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Generation
	LLMProvider     string
	OllamaURL       string
	OllamaModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	GenerateTimeout time.Duration

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// State
	JobTTL     time.Duration
	SessionTTL time.Duration
	DBPath     string

	// Logging
	LogFile string

	// PDF
	PDFFallbackPdftotext bool

	// Station seeds the registry when it holds none.
	Station casefile.PoliceStation
}

// fileConfig is the optional YAML overlay named by AFFIGEN_CONFIG.
type fileConfig struct {
	Station struct {
		Name          string `yaml:"name"`
		Barangay      string `yaml:"barangay"`
		Municipality  string `yaml:"municipality"`
		Province      string `yaml:"province"`
		Region        string `yaml:"region"`
		PostalCode    string `yaml:"postal_code"`
		ContactNumber string `yaml:"contact_number"`
		Email         string `yaml:"email"`
	} `yaml:"station"`
	LLM struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
	} `yaml:"llm"`
}

// Load reads .env (if present), then the YAML file named by AFFIGEN_CONFIG
// (if set), then environment variables, which win.
func Load() (Config, error) {
	_ = godotenv.Load()

	var fc fileConfig
	if path := os.Getenv("AFFIGEN_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	provider := envOr("LLM_PROVIDER", fc.LLM.Provider)
	if provider == "" {
		provider = ProviderOllama
	}
	ollamaModel, anthropicModel := "gemma3:4b", "claude-sonnet-4-5-20250929"
	if fc.LLM.Model != "" {
		if provider == ProviderAnthropic {
			anthropicModel = fc.LLM.Model
		} else {
			ollamaModel = fc.LLM.Model
		}
	}

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("AFFIGEN_API_KEY"),

		LLMProvider:     provider,
		OllamaURL:       envOr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:     envOr("OLLAMA_MODEL", ollamaModel),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", anthropicModel),
		GenerateTimeout: envDuration("GENERATE_TIMEOUT", 10*time.Minute),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20<<20),

		JobTTL:     envDuration("JOB_TTL", 1*time.Hour),
		SessionTTL: envDuration("SESSION_TTL", 2*time.Hour),
		DBPath:     envOr("DB_PATH", "affigen.db"),

		LogFile: os.Getenv("LOG_FILE"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		Station: casefile.PoliceStation{
			Name: fc.Station.Name,
			Address: casefile.PhilippineAddress{
				Barangay:           fc.Station.Barangay,
				CityOrMunicipality: fc.Station.Municipality,
				Province:           fc.Station.Province,
				Region:             fc.Station.Region,
				PostalCode:         fc.Station.PostalCode,
				Country:            "Philippines",
			},
			ContactNumber: fc.Station.ContactNumber,
			Email:         fc.Station.Email,
		},
	}

	if cfg.Station.Name == "" {
		cfg.Station.Name = DefaultStationName
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 10 * time.Minute
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOllama:
		if c.OllamaURL == "" {
			return errors.New("OLLAMA_URL is required for the ollama provider")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return errors.New("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want ollama or anthropic)", c.LLMProvider)
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
