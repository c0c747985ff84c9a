package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/linguachat/tutor-core/internal/api"
	"github.com/linguachat/tutor-core/internal/channel"
	"github.com/linguachat/tutor-core/internal/core"
	"github.com/linguachat/tutor-core/internal/gateway"
	"github.com/linguachat/tutor-core/internal/inference"
	"github.com/linguachat/tutor-core/internal/tutor"
	"github.com/linguachat/tutor-core/internal/tutor/model"
	"github.com/linguachat/tutor-core/internal/tutor/repo"
	logx "github.com/linguachat/tutor-core/pkg/logger"
	pkgredis "github.com/linguachat/tutor-core/pkg/redis"
)

// AppConfig defines all configurable parameters for the relay service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"APP_ENV" default:"development"`
	ListenAddr  string           `envconfig:"LISTEN_ADDR" default:":5001"`

	// Infrastructure
	Redis pkgredis.Config

	// Collaborators
	Stream    model.StreamConfig
	Inference model.InferenceConfig

	// Tutor persona
	Tutor     model.TutorConfig
	Heartbeat model.HeartbeatConfig
	State     model.StateConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})

	// Same fail-closed policy as the gate: a production relay must not run
	// with the well-known placeholder secret.
	if cfg.Environment.IsProduction() && cfg.Inference.APIKey == gateway.PlaceholderKey {
		logx.Fatal().Msg("AI_SERVICE_KEY is the well-known placeholder; refusing to start in production")
	}

	timeout, err := time.ParseDuration(cfg.Inference.Timeout)
	if err != nil {
		logx.Fatal().Err(err).Str("value", cfg.Inference.Timeout).Msg("invalid AI_TIMEOUT")
	}
	period, err := time.ParseDuration(cfg.Heartbeat.Period)
	if err != nil {
		logx.Fatal().Err(err).Str("value", cfg.Heartbeat.Period).Msg("invalid TYPING_HEARTBEAT_PERIOD")
	}

	forwarder := inference.NewClient(inference.Config{
		BaseURL: cfg.Inference.BaseURL,
		APIKey:  cfg.Inference.APIKey,
		Model:   cfg.Inference.Model,
		Timeout: timeout,
	})

	channels, err := channel.NewStreamProvider(cfg.Stream.APIKey, cfg.Stream.APISecret, cfg.Stream.ChannelType)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise stream chat client")
	}
	identity := cfg.Tutor.Identity()
	if err := channels.EnsureTutorUser(ctx, identity); err != nil {
		// The tutor may already exist upstream; later sends will surface any
		// real problem.
		logx.Warn().Err(err).Msg("failed to upsert tutor user")
	}

	var state model.ChannelStateRepository
	if cfg.Redis.Enabled() {
		greetedTTL, err := time.ParseDuration(cfg.State.GreetedTTL)
		if err != nil {
			logx.Fatal().Err(err).Str("value", cfg.State.GreetedTTL).Msg("invalid CHANNEL_GREETED_TTL")
		}
		turnTTL, err := time.ParseDuration(cfg.State.TurnLockTTL)
		if err != nil {
			logx.Fatal().Err(err).Str("value", cfg.State.TurnLockTTL).Msg("invalid CHANNEL_TURN_LOCK_TTL")
		}
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to initialise redis client")
		}
		defer rdb.Close()
		state = repo.NewRedisChannelStateRepository(rdb, greetedTTL, turnTTL)
		logx.Info().Msg("channel state repository enabled")
	} else {
		logx.Info().Msg("redis not configured, turns are unguarded and wakes undeduplicated")
	}

	relay := tutor.NewRelay(channels, forwarder, identity, cfg.Tutor.DefaultLanguage, period)
	router := api.NewRouter(api.NewHandler(relay, state))

	logx.Info().Str("addr", cfg.ListenAddr).Msg("tutor relay listening")
	if err := router.Run(cfg.ListenAddr); err != nil {
		logx.Fatal().Err(err).Msg("server exited")
	}
}
