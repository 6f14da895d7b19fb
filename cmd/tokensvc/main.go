package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/tendant/simple-token/pkg/authz"
	"github.com/tendant/simple-token/pkg/config"
	"github.com/tendant/simple-token/pkg/metrics"
	"github.com/tendant/simple-token/pkg/router"
	"github.com/tendant/simple-token/pkg/token"
	"github.com/tendant/simple-token/pkg/token/api"
)

type ApiConfig struct {
	Prefix      string `env:"TOKEN_API_PREFIX" env-default:"/api/token"`
	MetricsPath string `env:"METRICS_PATH" env-default:"/metrics"`
}

type Config struct {
	DatabaseConfig config.DatabaseConfig
	AppConfig      app.AppConfig
	JwtConfig      config.JwtConfig
	AuthzConfig    config.AuthzConfig
	TokenSettings  config.TokenSettingsConfig
	ApiConfig      ApiConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	envFile := config.GetEnvOrDefault("TOKEN_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		slog.Info("No env file loaded", "file", envFile, "error", err)
	}

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read config", "error", err)
		os.Exit(1)
	}
	for name, validate := range map[string]func() error{
		"database": cfg.DatabaseConfig.Validate,
		"jwt":      cfg.JwtConfig.Validate,
		"settings": cfg.TokenSettings.Validate,
	} {
		if err := validate(); err != nil {
			slog.Error("Invalid configuration", "section", name, "error", err)
			os.Exit(1)
		}
	}

	dbConfig := cfg.DatabaseConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User, "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tokenService := token.NewService(
		token.PostgresStores(pool, cfg.TokenSettings.ToMap()),
		authz.NewRoleAuthorizer(cfg.AuthzConfig),
		token.WithPublisher(token.SlogPublisher{}),
		token.WithRecorder(metrics.NewPrometheusRecorder(reg)),
	)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	router.SetupRoutes(server.R, router.Config{
		Prefix:         cfg.ApiConfig.Prefix,
		TokenHandler:   api.NewHandler(tokenService),
		JWTAuth:        jwtauth.New("HS256", []byte(cfg.JwtConfig.Secret), nil),
		Issuer:         cfg.JwtConfig.Issuer,
		Audience:       cfg.JwtConfig.Audience,
		MetricsPath:    cfg.ApiConfig.MetricsPath,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	slog.Info("Starting token service", "prefix", cfg.ApiConfig.Prefix, "metrics", cfg.ApiConfig.MetricsPath)
	server.Run()
}
