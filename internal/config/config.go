// /internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	YtdlpPath      string `env:"YTDLP_PATH" envDefault:"./bin/yt-dlp"`
	YtdlpFormat    string `env:"YTDLP_FORMAT" envDefault:"bestaudio[ext=m4a]/m4a"`
	YtdlpContainer string `env:"YTDLP_CONTAINER" envDefault:"m4a"`
	TempDir        string `env:"YTDLP_TEMP_DIR"`

	CatalogProxy   string        `env:"CATALOG_PROXY"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"15s"`
	CatalogRPS     float64       `env:"CATALOG_RPS" envDefault:"5"`

	PlaylistPageLimit  int `env:"PLAYLIST_PAGE_LIMIT" envDefault:"20"`
	SearchLimit        int `env:"SEARCH_LIMIT" envDefault:"10"`
	RelatedSearchLimit int `env:"RELATED_SEARCH_LIMIT" envDefault:"5"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"64"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAge     int    `env:"LOG_MAX_AGE" envDefault:"7"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is fine, the environment may be set by the host
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.YtdlpPath == "" {
		return fmt.Errorf("YTDLP_PATH is empty")
	}
	if c.YtdlpContainer == "" {
		return fmt.Errorf("YTDLP_CONTAINER is empty")
	}
	if c.CatalogRPS <= 0 {
		return fmt.Errorf("CATALOG_RPS must be positive, got %v", c.CatalogRPS)
	}
	if c.PlaylistPageLimit <= 0 || c.SearchLimit <= 0 || c.RelatedSearchLimit <= 0 {
		return fmt.Errorf("page and search limits must be positive")
	}
	return nil
}
