package model

import "context"

// Event types understood by the chat transport.
const (
	EventTypingStart = "typing.start"
	EventTypingStop  = "typing.stop"
)

// TutorIdentity is the fixed synthetic participant representing the AI
// persona in every channel.
type TutorIdentity struct {
	ID    string
	Name  string
	Image string
	Role  string
}

// Channel is one externally-owned conversation: an ordered message log plus a
// presence/event bus. Both operations are append-only and eventually
// delivered by the transport.
type Channel interface {
	// SendMessage posts a persisted message attributed to the given identity.
	SendMessage(ctx context.Context, text string, from TutorIdentity) error

	// SendEvent emits an ephemeral presence event attributed to actorID.
	SendEvent(ctx context.Context, eventType, actorID string) error
}

// ChannelProvider resolves a channel handle from its opaque identifier.
type ChannelProvider interface {
	Channel(channelID string) Channel
}

// ChannelStateRepository tracks per-channel bookkeeping that outlives a
// single turn: whether the tutor already greeted the channel, and whether a
// turn is currently in flight.
type ChannelStateRepository interface {
	// WasGreeted reports whether the channel has already been greeted.
	WasGreeted(ctx context.Context, channelID string) (bool, error)

	// MarkGreeted records the greeting and reports whether this call was the
	// first to do so.
	MarkGreeted(ctx context.Context, channelID string) (bool, error)

	// AcquireTurn takes the channel's in-flight turn slot, reporting false
	// when another turn holds it.
	AcquireTurn(ctx context.Context, channelID string) (bool, error)

	// ReleaseTurn frees the in-flight turn slot.
	ReleaseTurn(ctx context.Context, channelID string) error
}
