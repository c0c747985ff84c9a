package channel

import (
	"context"
	"fmt"

	stream "github.com/GetStream/stream-chat-go/v5"

	"github.com/linguachat/tutor-core/internal/tutor/model"
)

// StreamProvider adapts the Stream Chat server SDK to the relay's channel
// collaborator interfaces.
type StreamProvider struct {
	client      *stream.Client
	channelType string
}

func NewStreamProvider(apiKey, apiSecret, channelType string) (*StreamProvider, error) {
	client, err := stream.NewClient(apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("create stream client: %w", err)
	}
	return &StreamProvider{client: client, channelType: channelType}, nil
}

// EnsureTutorUser upserts the tutor identity into Stream so its messages and
// presence events resolve to a real participant with a name and avatar.
func (p *StreamProvider) EnsureTutorUser(ctx context.Context, id model.TutorIdentity) error {
	_, err := p.client.UpsertUser(ctx, &stream.User{
		ID:    id.ID,
		Name:  id.Name,
		Image: id.Image,
		Role:  id.Role,
	})
	if err != nil {
		return fmt.Errorf("upsert tutor user: %w", err)
	}
	return nil
}

func (p *StreamProvider) Channel(channelID string) model.Channel {
	return &streamChannel{ch: p.client.Channel(p.channelType, channelID)}
}

type streamChannel struct {
	ch *stream.Channel
}

// SendMessage posts a persisted message as the given identity. Display
// fields come from the upserted user, so only the ID travels with the send.
func (c *streamChannel) SendMessage(ctx context.Context, text string, from model.TutorIdentity) error {
	_, err := c.ch.SendMessage(ctx, &stream.Message{Text: text}, from.ID)
	return err
}

func (c *streamChannel) SendEvent(ctx context.Context, eventType, actorID string) error {
	_, err := c.ch.SendEvent(ctx, &stream.Event{Type: stream.EventType(eventType)}, actorID)
	return err
}

var _ model.ChannelProvider = (*StreamProvider)(nil)
