package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"sandlot-scorebook/internal/constants"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	// NATSUrl is optional; when empty the post-commit fan-out stays
	// in-process only.
	NATSUrl string

	RegulationInnings  int
	ExtraInningCeiling int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:             getEnv("DB_PATH", "scorebook.db"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		NATSUrl:            getEnv("NATS_URL", ""),
		RegulationInnings:  getEnvInt("REGULATION_INNINGS", constants.RegulationInnings),
		ExtraInningCeiling: getEnvInt("EXTRA_INNING_CEILING", constants.ExtraInningCeiling),
	}

	if cfg.ExtraInningCeiling < cfg.RegulationInnings {
		return nil, fmt.Errorf("EXTRA_INNING_CEILING (%d) must be at least REGULATION_INNINGS (%d)",
			cfg.ExtraInningCeiling, cfg.RegulationInnings)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("nats_url", cfg.NATSUrl).
		Int("regulation_innings", cfg.RegulationInnings).
		Int("extra_inning_ceiling", cfg.ExtraInningCeiling).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
