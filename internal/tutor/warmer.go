package tutor

import (
	"context"
	"fmt"

	errx "github.com/linguachat/tutor-core/internal/core/error"
	logx "github.com/linguachat/tutor-core/pkg/logger"
)

// welcomeText greets a channel on first contact with the tutor persona.
const welcomeText = "👋 Hi! I'm your AI Language Tutor.\n\n" +
	"I can help you practice 8 different languages. Just select a language from the dropdown above and say 'Hello' to start!\n\n" +
	"(I might take a few seconds to wake up initially 😴)"

// WakeUp cold-starts a channel: it posts the welcome message synchronously,
// then fires a detached warm-up inference so the first real turn does not pay
// the model load latency. WakeUp returns as soon as the welcome message is
// posted; the warm-up outcome is only ever logged.
func (r *Relay) WakeUp(ctx context.Context, channelID string) error {
	if channelID == "" {
		return errx.BadRequest("Channel ID required")
	}

	ch := r.channels.Channel(channelID)
	if err := ch.SendMessage(ctx, welcomeText, r.identity); err != nil {
		return fmt.Errorf("send welcome message: %w", err)
	}

	logx.Info().Str("channelID", channelID).Msg("welcome message posted, warming up model")
	r.warmUp()
	return nil
}

// warmUp runs the warm-up completion on a detached context so its lifetime is
// independent of the request that triggered it. The forwarder's own timeout
// still bounds the call.
func (r *Relay) warmUp() {
	go func() {
		if err := r.forwarder.Warmup(context.Background()); err != nil {
			logx.Warn().Err(err).Msg("model warm-up failed (runtime might be offline)")
			return
		}
		logx.Info().Msg("model warmed up")
	}()
}
