package config

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type (
	catalog struct {
		Source  string `env:"CATALOG_SOURCE" envDefault:"data/cards.json"`
		Refresh bool   `env:"CATALOG_REFRESH" envDefault:"false"`
	}

	assets struct {
		Dir           string `env:"ASSET_DIR" envDefault:"data/assets"`
		ProgressEvery int    `env:"ASSET_PROGRESS_EVERY" envDefault:"100"`
		QueueSize     int    `env:"ASSET_QUEUE_SIZE" envDefault:"8"`
	}

	logging struct {
		Level       string `env:"LOG_LEVEL" envDefault:"info"`
		Development bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
	}

	Config struct {
		Port               int    `env:"PORT" envDefault:"8080"`
		GinMode            string `env:"GIN_MODE" envDefault:"release"`
		DBPath             string `env:"DB_PATH" envDefault:"data/deckbuilder.db"`
		SortLocale         string `env:"SORT_LOCALE" envDefault:"ja"`
		HTTPTimeoutSeconds int    `env:"HTTP_TIMEOUT_SECONDS" envDefault:"12"`
		Catalog            catalog
		Assets             assets
		Logging            logging
	}
)

var (
	conf    Config
	confErr error
	once    = &sync.Once{}
)

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Get returns the process configuration, loading it on first use.
func Get() (Config, error) {
	once.Do(func() {
		conf, confErr = Load()
	})
	return conf, confErr
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
