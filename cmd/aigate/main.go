package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/linguachat/tutor-core/internal/core"
	"github.com/linguachat/tutor-core/internal/gateway"
	logx "github.com/linguachat/tutor-core/pkg/logger"
)

// AppConfig defines all configurable parameters for the credential-gate
// sidecar that fronts the local model runtime.
type AppConfig struct {
	Environment core.Environment `envconfig:"APP_ENV" default:"development"`
	Gate        gateway.Config
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})

	if err := cfg.Gate.Validate(cfg.Environment); err != nil {
		logx.Fatal().Err(err).Msg("refusing to start unauthenticated")
	}

	router, err := gateway.NewRouter(cfg.Gate)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build gate")
	}

	logx.Info().
		Str("addr", cfg.Gate.ListenAddr).
		Str("upstream", cfg.Gate.UpstreamURL).
		Msg("ai gate listening, forwarding authenticated requests to model runtime")
	if err := router.Run(cfg.Gate.ListenAddr); err != nil {
		logx.Fatal().Err(err).Msg("server exited")
	}
}
