package model

// TurnInput is one inbound tutoring request: a human message addressed to the
// tutor persona in a channel.
type TurnInput struct {
	ChannelID      string `json:"channelId"`
	Message        string `json:"message"`
	TargetLanguage string `json:"targetLanguage"`
}

// Outcome classifies how a turn ended.
type Outcome int

const (
	// OutcomeDelivered means the completion text was posted to the channel.
	OutcomeDelivered Outcome = iota
	// OutcomeFallbackDelivered means inference or delivery failed and the
	// apology message was posted instead.
	OutcomeFallbackDelivered
	// OutcomeRejected means neither the reply nor the fallback reached the
	// channel.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeFallbackDelivered:
		return "fallback_delivered"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// TurnResult reports the outcome of a turn and, when delivered, the reply text.
type TurnResult struct {
	Outcome Outcome
	Reply   string
}
