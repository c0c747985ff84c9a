package tutor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	errx "github.com/linguachat/tutor-core/internal/core/error"
	"github.com/linguachat/tutor-core/internal/tutor/model"
)

const testPeriod = 5 * time.Millisecond

var testIdentity = model.TutorIdentity{
	ID:   "ai-tutor-1",
	Name: "AI-Tutor",
	Role: "ai-tutor",
}

func newTestRelay(ch *fakeChannel, fw *fakeForwarder) *Relay {
	return NewRelay(&fakeProvider{ch: ch}, fw, testIdentity, "Spanish", testPeriod)
}

func TestRelayTurnMissingFields(t *testing.T) {
	cases := []struct {
		name string
		in   model.TurnInput
	}{
		{"missing channel", model.TurnInput{Message: "hola"}},
		{"missing message", model.TurnInput{ChannelID: "c1"}},
		{"missing both", model.TurnInput{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ch := &fakeChannel{}
			fw := &fakeForwarder{reply: "unused"}

			res, err := newTestRelay(ch, fw).RelayTurn(context.Background(), tc.in)

			require.ErrorIs(t, err, errx.ErrBadRequest)
			require.Nil(t, res)
			require.Equal(t, 0, fw.callCount())
			require.Empty(t, ch.messages())
			require.Equal(t, 0, ch.eventCount(model.EventTypingStart))
		})
	}
}

func TestRelayTurnDeliversReply(t *testing.T) {
	ch := &fakeChannel{}
	fw := &fakeForwarder{reply: "¡Muy bien, gracias!"}

	res, err := newTestRelay(ch, fw).RelayTurn(context.Background(), model.TurnInput{
		ChannelID:      "c1",
		Message:        "Hola, como estas?",
		TargetLanguage: "Spanish",
	})

	require.NoError(t, err)
	require.Equal(t, model.OutcomeDelivered, res.Outcome)
	require.Equal(t, "¡Muy bien, gracias!", res.Reply)

	msgs := ch.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "¡Muy bien, gracias!", msgs[0].text)
	require.Equal(t, testIdentity.ID, msgs[0].from.ID)

	require.GreaterOrEqual(t, ch.eventCount(model.EventTypingStart), 1)
	require.Equal(t, 1, ch.eventCount(model.EventTypingStop))
	require.Equal(t, model.EventTypingStop, ch.lastEvent())
}

func TestRelayTurnStopsHeartbeatAfterDelivery(t *testing.T) {
	ch := &fakeChannel{}
	fw := &fakeForwarder{reply: "ok"}

	_, err := newTestRelay(ch, fw).RelayTurn(context.Background(), model.TurnInput{ChannelID: "c1", Message: "hi"})
	require.NoError(t, err)

	starts := ch.eventCount(model.EventTypingStart)
	time.Sleep(5 * testPeriod)
	require.Equal(t, starts, ch.eventCount(model.EventTypingStart), "heartbeat leaked past the turn")
}

func TestRelayTurnFallsBackOnForwarderFailure(t *testing.T) {
	for _, cause := range []error{
		fmt.Errorf("%w: connection refused", errx.ErrBackendUnavailable),
		&errx.BackendStatusError{StatusCode: 500, Body: "boom"},
		fmt.Errorf("%w: missing completion content", errx.ErrBackendProtocol),
	} {
		ch := &fakeChannel{}
		fw := &fakeForwarder{err: cause}

		res, err := newTestRelay(ch, fw).RelayTurn(context.Background(), model.TurnInput{ChannelID: "c1", Message: "hola"})

		require.Error(t, err)
		require.Equal(t, model.OutcomeFallbackDelivered, res.Outcome)

		msgs := ch.messages()
		require.Len(t, msgs, 1, "fallback must be attempted exactly once")
		require.Equal(t, fallbackText, msgs[0].text)
		require.Equal(t, testIdentity.ID, msgs[0].from.ID)

		starts := ch.eventCount(model.EventTypingStart)
		time.Sleep(5 * testPeriod)
		require.Equal(t, starts, ch.eventCount(model.EventTypingStart), "heartbeat leaked past a failed turn")
	}
}

func TestRelayTurnRejectedWhenFallbackPostFails(t *testing.T) {
	cause := fmt.Errorf("%w: connection refused", errx.ErrBackendUnavailable)
	ch := &fakeChannel{msgErrs: []error{errors.New("channel down")}}
	fw := &fakeForwarder{err: cause}

	res, err := newTestRelay(ch, fw).RelayTurn(context.Background(), model.TurnInput{ChannelID: "c1", Message: "hola"})

	require.ErrorIs(t, err, errx.ErrBackendUnavailable)
	require.Equal(t, model.OutcomeRejected, res.Outcome)
	require.Len(t, ch.messages(), 1)
}

func TestRelayTurnFallsBackWhenReplyPostFails(t *testing.T) {
	ch := &fakeChannel{msgErrs: []error{errors.New("send rejected")}}
	fw := &fakeForwarder{reply: "lost reply"}

	res, err := newTestRelay(ch, fw).RelayTurn(context.Background(), model.TurnInput{ChannelID: "c1", Message: "hola"})

	require.Error(t, err)
	require.Equal(t, model.OutcomeFallbackDelivered, res.Outcome)

	msgs := ch.messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "lost reply", msgs[0].text)
	require.Equal(t, fallbackText, msgs[1].text)
}

func TestRelayTurnToleratesHeartbeatFailures(t *testing.T) {
	ch := &fakeChannel{eventErr: errors.New("presence bus flaking")}
	fw := &fakeForwarder{
		reply: "still fine",
		delay: func() { time.Sleep(3 * testPeriod) },
	}

	res, err := newTestRelay(ch, fw).RelayTurn(context.Background(), model.TurnInput{ChannelID: "c1", Message: "hola"})

	require.NoError(t, err)
	require.Equal(t, model.OutcomeDelivered, res.Outcome)
	require.Len(t, ch.messages(), 1)
}

func TestWakeUpReturnsBeforeWarmupResolves(t *testing.T) {
	ch := &fakeChannel{}
	fw := &fakeForwarder{
		warmupStarted: make(chan struct{}),
		warmupBlock:   make(chan struct{}),
	}
	defer close(fw.warmupBlock)

	err := newTestRelay(ch, fw).WakeUp(context.Background(), "c1")
	require.NoError(t, err)

	msgs := ch.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, welcomeText, msgs[0].text)

	// The warm-up fires detached and is still in flight when WakeUp returns.
	select {
	case <-fw.warmupStarted:
	case <-time.After(time.Second):
		t.Fatal("warm-up was never issued")
	}
}

func TestWakeUpMissingChannel(t *testing.T) {
	ch := &fakeChannel{}
	fw := &fakeForwarder{warmupStarted: make(chan struct{})}

	err := newTestRelay(ch, fw).WakeUp(context.Background(), "")

	require.ErrorIs(t, err, errx.ErrBadRequest)
	require.Empty(t, ch.messages())
	select {
	case <-fw.warmupStarted:
		t.Fatal("warm-up issued for a rejected wake")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestWakeUpFailsWhenWelcomePostFails(t *testing.T) {
	ch := &fakeChannel{msgErrs: []error{errors.New("channel down")}}
	fw := &fakeForwarder{warmupStarted: make(chan struct{})}

	err := newTestRelay(ch, fw).WakeUp(context.Background(), "c1")

	require.Error(t, err)
	select {
	case <-fw.warmupStarted:
		t.Fatal("warm-up issued even though the welcome failed")
	case <-time.After(20 * time.Millisecond):
	}
}
