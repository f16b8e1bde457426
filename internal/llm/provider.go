package llm

import "context"

// Role is the provider-side speaker vocabulary. Providers only know two
// parties: the user and the model.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one prior exchange in the conversation history
type Turn struct {
	Role Role
	Text string
}

// HarmCategory identifies a content-safety category
type HarmCategory int

const (
	HarmCategoryHarassment HarmCategory = iota + 1
	HarmCategoryHateSpeech
)

// BlockThreshold is the minimum harm probability that gets blocked
type BlockThreshold int

const (
	BlockLowAndAbove BlockThreshold = iota + 1
	BlockMediumAndAbove
	BlockOnlyHigh
	BlockNone
)

// SafetySetting pairs a category with its blocking threshold
type SafetySetting struct {
	Category  HarmCategory
	Threshold BlockThreshold
}

// Request contains chat reply parameters
type Request struct {
	// History holds the prior turns, oldest first. Message is not part of it.
	History           []Turn
	Message           string
	SystemInstruction string
	MaxOutputTokens   int32
	SafetySettings    []SafetySetting
}

// Response contains LLM generation result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Reply sends the conversation and returns the model's answer
	Reply(ctx context.Context, req Request) (*Response, error)
}

// Gateway is the boundary the chat service talks to. Reply fails with an
// error wrapping domain.ErrUnavailable when no provider is configured.
type Gateway interface {
	Available() bool
	Reply(ctx context.Context, req Request) (*Response, error)
}
