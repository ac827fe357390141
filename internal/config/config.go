package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	LogMode    string `env:"LOG_MODE"`
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`
	ServiceURL string `env:"SERVICE_URL"`

	OutputDir       string `env:"OUTPUT_DIR" env-default:"./storage"`
	DefaultFilename string `env:"DEFAULT_FILENAME" env-default:"extracted_data.xlsx"`

	MaxAttempts             int           `env:"MAX_ATTEMPTS" env-default:"3"`
	BackoffBase             time.Duration `env:"BACKOFF_BASE" env-default:"1s"`
	ConnectivityMaxAttempts int           `env:"CONNECTIVITY_MAX_ATTEMPTS" env-default:"3"`
	ConnectivityBackoffBase time.Duration `env:"CONNECTIVITY_BACKOFF_BASE" env-default:"1s"`

	FileCooldown   time.Duration `env:"FILE_COOLDOWN" env-default:"2500ms"`
	SuccessDwell   time.Duration `env:"SUCCESS_DWELL" env-default:"3s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"5m"`

	MaxFileSize    int64 `env:"MAX_FILE_SIZE" env-default:"52428800"`
	StrictPDFCheck bool  `env:"STRICT_PDF_CHECK" env-default:"false"`
	HealthCheck    bool  `env:"HEALTH_CHECK" env-default:"true"`
}

func checkEnv(envVars []string) error {
	var missingVars []string

	for _, envVar := range envVars {
		if value, exists := os.LookupEnv(envVar); !exists || value == "" {
			missingVars = append(missingVars, envVar)
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("error: this env vars are missing: %v", missingVars)
	} else {
		return nil
	}
}

func validateEnv() error {
	err := checkEnv([]string{
		"LOG_MODE",
		"SERVICE_URL",
	})
	if err != nil {
		return err
	}

	return nil
}

// Validate rejects values the batch driver cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.MaxAttempts < 1:
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	case c.ConnectivityMaxAttempts < 1:
		return fmt.Errorf("CONNECTIVITY_MAX_ATTEMPTS must be at least 1, got %d", c.ConnectivityMaxAttempts)
	case c.BackoffBase < 0, c.ConnectivityBackoffBase < 0:
		return errors.New("backoff base must not be negative")
	case c.FileCooldown < 0, c.SuccessDwell < 0:
		return errors.New("cooldown and dwell must not be negative")
	case c.RequestTimeout <= 0:
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	case c.MaxFileSize <= 0:
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.MaxFileSize)
	case c.OutputDir == "":
		return errors.New("OUTPUT_DIR must not be empty")
	}
	return nil
}

// LoadConfig reads the env file at path, when present, on top of the
// process environment.
func LoadConfig(path string) (*Config, error) {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load configuration file: %w", err)
	}

	err = validateEnv()
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("LoadConfig: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	return cfg, nil
}
