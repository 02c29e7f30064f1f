package models

// Tones available for interactive drafting. Values double as Telegram
// callback tokens, so they must stay stable.
const (
	ToneHuman        = "Human"
	ToneProfessional = "Professional"
	ToneFunny        = "Funny"
	ToneLogical      = "Logical"
	ToneTechnical    = "Technical"
	ToneMathematical = "Mathematical"
)

var AllTones = []string{
	ToneHuman,
	ToneProfessional,
	ToneFunny,
	ToneLogical,
	ToneTechnical,
	ToneMathematical,
}

func IsTone(s string) bool {
	for _, t := range AllTones {
		if t == s {
			return true
		}
	}
	return false
}

// Draft is a single candidate post before publishing.
type Draft struct {
	Topic     string
	Tone      string
	StyleHint string
	Text      string
}

// Review session states
const (
	ReviewStateAwaitingTopic = "awaiting_topic"
	ReviewStateAwaitingTone  = "awaiting_tone"
	ReviewStateReviewing     = "reviewing"
	ReviewStatePublished     = "published"
	ReviewStateCancelled     = "cancelled"
)

// Review session modes
const (
	ReviewModeSingle = "single"
	ReviewModeDual   = "dual"
)

// Valid review-session transitions: from -> []to. Reviewing loops on
// itself (edits, attachments, regeneration); a generation failure in
// awaiting_tone drops back to awaiting_topic.
var ValidReviewTransitions = map[string][]string{
	ReviewStateAwaitingTopic: {ReviewStateAwaitingTone, ReviewStateCancelled},
	ReviewStateAwaitingTone:  {ReviewStateReviewing, ReviewStateAwaitingTopic, ReviewStateCancelled},
	ReviewStateReviewing:     {ReviewStateReviewing, ReviewStatePublished, ReviewStateAwaitingTopic, ReviewStateCancelled},
	ReviewStatePublished:     {},
	ReviewStateCancelled:     {},
}

func IsValidReviewTransition(from, to string) bool {
	allowed, ok := ValidReviewTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
