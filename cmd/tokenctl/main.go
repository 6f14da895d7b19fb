package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/tendant/simple-token/internal/cli"
	"github.com/tendant/simple-token/pkg/config"
	"github.com/tendant/simple-token/pkg/token"
)

type Config struct {
	DatabaseConfig config.DatabaseConfig
	JwtConfig      config.JwtConfig
	TokenSettings  config.TokenSettingsConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load(config.GetEnvOrDefault("TOKEN_ENV_FILE", ".env"))

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read config", "error", err)
		os.Exit(1)
	}

	open := func(ctx context.Context) (token.Stores, func(), error) {
		if err := cfg.DatabaseConfig.Validate(); err != nil {
			return token.Stores{}, nil, err
		}
		dbConfig := cfg.DatabaseConfig.ToDbConfig()
		pool, err := dbutils.NewDbPool(ctx, dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User, "error", err)
			return token.Stores{}, nil, err
		}
		return token.PostgresStores(pool, cfg.TokenSettings.ToMap()), pool.Close, nil
	}

	root := cli.NewRootCmd(open, cli.Defaults{
		JwtSecret:   cfg.JwtConfig.Secret,
		JwtIssuer:   cfg.JwtConfig.Issuer,
		JwtAudience: cfg.JwtConfig.Audience,
		CallerTTL:   config.GetEnvDuration("CALLER_TOKEN_TTL", time.Hour),
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
