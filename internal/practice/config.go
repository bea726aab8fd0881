package practice

import (
	"fmt"
	"log"
	"os"
	"time"

	"wordrush/shared/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from PRACTICE_* environment variables.
type Config struct {
	APIURL         string        `envconfig:"API_URL" default:"http://localhost:4000"`
	Email          string        `envconfig:"EMAIL"`
	Password       string        `envconfig:"PASSWORD"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`

	StorePath string `envconfig:"STORE_PATH" default:"wordrush-practice.db"`
	CacheSize int    `envconfig:"CACHE_SIZE" default:"64"`

	NarrationBaseDelay    time.Duration `envconfig:"NARRATION_BASE_DELAY" default:"600ms"`
	NarrationPerRuneDelay time.Duration `envconfig:"NARRATION_PER_RUNE_DELAY" default:"70ms"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"warn"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"console"`
	LogOutput   string `envconfig:"LOG_OUTPUT" default:"stderr"`
}

// LoadConfig reads an optional .env file and the PRACTICE_* environment.
// The password may also come from the practice_password secret.
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		if err = godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("practice", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	password, err := utils.ReadSecretOrEnv("practice_password", cfg.Password)
	if err != nil && cfg.Email != "" {
		return nil, err
	}
	cfg.Password = password

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("PRACTICE_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	return &cfg, nil
}
