package tutor

import (
	"context"
	"sync"
	"time"

	"github.com/linguachat/tutor-core/internal/tutor/model"
	logx "github.com/linguachat/tutor-core/pkg/logger"
)

// Heartbeat keeps the tutor's typing indicator alive while a turn is in
// flight. The chat transport expires typing indicators after a few seconds,
// so the indicator must be refreshed until the reply is ready.
//
// A Heartbeat is owned by exactly one turn: created at turn start and stopped
// on every exit path. Emission failures are logged and swallowed; the
// heartbeat is liveness UX, not a correctness mechanism.
type Heartbeat struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartHeartbeat emits typing.start attributed to actorID once immediately,
// then on every period until Stop is called.
func StartHeartbeat(ctx context.Context, ch model.Channel, actorID string, period time.Duration) *Heartbeat {
	hb := &Heartbeat{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	emit := func() {
		if err := ch.SendEvent(ctx, model.EventTypingStart, actorID); err != nil {
			logx.Error().Err(err).Str("actorID", actorID).Msg("failed to send typing heartbeat")
		}
	}

	// First pulse fires before the inference call starts so the indicator is
	// visible right away.
	emit()

	go func() {
		defer close(hb.done)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-hb.stop:
				return
			case <-ticker.C:
				emit()
			}
		}
	}()

	return hb
}

// Stop cancels future emissions and waits for the periodic task to exit, so
// no emission can outlive the turn once Stop returns. It is idempotent and
// safe to call from any exit path.
func (h *Heartbeat) Stop() {
	h.once.Do(func() {
		close(h.stop)
	})
	<-h.done
}
