package tutor

import (
	"context"
	"time"

	errx "github.com/linguachat/tutor-core/internal/core/error"
	"github.com/linguachat/tutor-core/internal/tutor/model"
	"github.com/linguachat/tutor-core/internal/tutor/prompts"
	logx "github.com/linguachat/tutor-core/pkg/logger"
)

// fallbackText is posted when inference or delivery fails, so the human is
// not left staring at a typing indicator that never resolves.
const fallbackText = "😴 I'm currently sleeping (AI Service Unavailable or Unauthorized)."

// Forwarder issues completion round-trips to the model runtime.
type Forwarder interface {
	ChatCompletion(ctx context.Context, systemPrompt, userMessage string) (string, error)
	Warmup(ctx context.Context) error
}

// Relay orchestrates tutoring turns: it builds the persona prompt, keeps the
// typing indicator alive while inference is in flight, and posts the reply or
// a fallback into the channel.
type Relay struct {
	channels        model.ChannelProvider
	forwarder       Forwarder
	identity        model.TutorIdentity
	defaultLanguage string
	heartbeatPeriod time.Duration
}

func NewRelay(channels model.ChannelProvider, forwarder Forwarder, identity model.TutorIdentity, defaultLanguage string, heartbeatPeriod time.Duration) *Relay {
	return &Relay{
		channels:        channels,
		forwarder:       forwarder,
		identity:        identity,
		defaultLanguage: defaultLanguage,
		heartbeatPeriod: heartbeatPeriod,
	}
}

// RelayTurn runs one tutoring turn. The returned TurnResult reports what
// reached the channel; err is non-nil whenever the turn did not complete
// cleanly, including when the fallback apology was delivered.
func (r *Relay) RelayTurn(ctx context.Context, in model.TurnInput) (*model.TurnResult, error) {
	if in.ChannelID == "" || in.Message == "" {
		return nil, errx.BadRequest("Channel ID and message are required")
	}

	logx.Info().
		Str("channelID", in.ChannelID).
		Str("targetLanguage", in.TargetLanguage).
		Msg("tutor turn received")

	systemPrompt, err := prompts.RenderTutorSystem(ctx, in.TargetLanguage, r.defaultLanguage)
	if err != nil {
		return nil, err
	}

	ch := r.channels.Channel(in.ChannelID)

	reply, err := r.completeWithHeartbeat(ctx, ch, systemPrompt, in.Message)
	if err != nil {
		logx.Error().Err(err).Str("channelID", in.ChannelID).Msg("inference failed, attempting fallback message")
		return r.deliverFallback(ctx, ch, err)
	}

	if err := ch.SendMessage(ctx, reply, r.identity); err != nil {
		logx.Error().Err(err).Str("channelID", in.ChannelID).Msg("failed to post tutor reply, attempting fallback message")
		return r.deliverFallback(ctx, ch, err)
	}

	// Explicitly clear the typing indicator now that the reply is visible.
	if err := ch.SendEvent(ctx, model.EventTypingStop, r.identity.ID); err != nil {
		logx.Warn().Err(err).Str("channelID", in.ChannelID).Msg("failed to send typing stop")
	}

	logx.Info().Str("channelID", in.ChannelID).Msg("tutor reply delivered")
	return &model.TurnResult{Outcome: model.OutcomeDelivered, Reply: reply}, nil
}

// completeWithHeartbeat scopes the liveness heartbeat to the inference call:
// it starts before the call and is stopped on every way out of it.
func (r *Relay) completeWithHeartbeat(ctx context.Context, ch model.Channel, systemPrompt, userMessage string) (string, error) {
	hb := StartHeartbeat(ctx, ch, r.identity.ID, r.heartbeatPeriod)
	defer hb.Stop()

	return r.forwarder.ChatCompletion(ctx, systemPrompt, userMessage)
}

// deliverFallback posts the apology message and converts cause into the
// turn's final result. A failed fallback post is logged only.
func (r *Relay) deliverFallback(ctx context.Context, ch model.Channel, cause error) (*model.TurnResult, error) {
	if postErr := ch.SendMessage(ctx, fallbackText, r.identity); postErr != nil {
		logx.Error().Err(postErr).Msg("failed to send fallback message")
		return &model.TurnResult{Outcome: model.OutcomeRejected}, cause
	}
	return &model.TurnResult{Outcome: model.OutcomeFallbackDelivered}, cause
}
