package llm

// AuraSystemInstruction is the persona every chat reply is generated under
const AuraSystemInstruction = "You are Aura, a supportive and empathetic AI therapist. " +
	"Your goal is to listen, understand, and provide gentle, helpful guidance. " +
	"Do not give medical advice. Focus on active listening, validation, and suggesting mindfulness techniques. " +
	"Keep your responses concise and caring."

// DefaultMaxOutputTokens bounds the length of a single reply
const DefaultMaxOutputTokens int32 = 500

// Persona is the fixed generation setup applied to every reply
type Persona struct {
	SystemInstruction string
	MaxOutputTokens   int32
	SafetySettings    []SafetySetting
}

// DefaultPersona returns the Aura persona: harassment and hate speech are
// blocked from medium probability upwards.
func DefaultPersona() Persona {
	return Persona{
		SystemInstruction: AuraSystemInstruction,
		MaxOutputTokens:   DefaultMaxOutputTokens,
		SafetySettings: []SafetySetting{
			{Category: HarmCategoryHarassment, Threshold: BlockMediumAndAbove},
			{Category: HarmCategoryHateSpeech, Threshold: BlockMediumAndAbove},
		},
	}
}

// NewRequest builds a reply request for message on top of history
func (p Persona) NewRequest(history []Turn, message string) Request {
	safety := make([]SafetySetting, len(p.SafetySettings))
	copy(safety, p.SafetySettings)

	return Request{
		History:           history,
		Message:           message,
		SystemInstruction: p.SystemInstruction,
		MaxOutputTokens:   p.MaxOutputTokens,
		SafetySettings:    safety,
	}
}
