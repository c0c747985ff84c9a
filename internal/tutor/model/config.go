package model

// ================ Config ================

type TutorConfig struct {
	// DefaultLanguage is used when a turn does not name a teaching language.
	DefaultLanguage string `envconfig:"TUTOR_DEFAULT_LANGUAGE" default:"Spanish"`

	// Fixed identity the AI persona uses in every channel. The ID is stable
	// so frontends can reliably recognise tutor messages.
	ID    string `envconfig:"TUTOR_ID" default:"64b6e5b8e9b0e2b9c8b7f3a1"`
	Name  string `envconfig:"TUTOR_NAME" default:"AI-Tutor"`
	Image string `envconfig:"TUTOR_IMAGE" default:"https://robohash.org/ai-tutor.png?set=set4"`
	Role  string `envconfig:"TUTOR_ROLE" default:"ai-tutor"`
}

// Identity returns the tutor's fixed participant identity.
func (c TutorConfig) Identity() TutorIdentity {
	return TutorIdentity{ID: c.ID, Name: c.Name, Image: c.Image, Role: c.Role}
}

type InferenceConfig struct {
	BaseURL string `envconfig:"AI_SERVICE_URL" default:"http://127.0.0.1:8080"`
	APIKey  string `envconfig:"AI_SERVICE_KEY" required:"true"`
	Model   string `envconfig:"AI_MODEL" default:"llama3.2"`
	Timeout string `envconfig:"AI_TIMEOUT" default:"120s"`
}

type HeartbeatConfig struct {
	// Period must stay below the chat transport's typing-indicator timeout or
	// the indicator flickers mid-turn.
	Period string `envconfig:"TYPING_HEARTBEAT_PERIOD" default:"3s"`
}

type StreamConfig struct {
	APIKey      string `envconfig:"STREAM_API_KEY" required:"true"`
	APISecret   string `envconfig:"STREAM_API_SECRET" required:"true"`
	ChannelType string `envconfig:"STREAM_CHANNEL_TYPE" default:"messaging"`
}

type StateConfig struct {
	GreetedTTL  string `envconfig:"CHANNEL_GREETED_TTL" default:"720h"`
	TurnLockTTL string `envconfig:"CHANNEL_TURN_LOCK_TTL" default:"2m"`
}
