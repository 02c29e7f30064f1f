package generator

import (
	"fmt"

	"github.com/postforge/bot/internal/models"
)

// Persona instructions per tone. Unknown tones fall back to Professional.
var tonePersonas = map[string]string{
	models.ToneHuman: "You are a regular person sharing their journey. " +
		"Use a casual, authentic, and relatable tone. " +
		"Use first-person language ('I', 'my'). " +
		"Do not sound corporate or like an expert. Just a human learning and sharing.",
	models.ToneProfessional: "You are a tech founder and expert developer deeply knowledgeable in AI, LLMs, ML, DL, and RL. " +
		"The tone should be professional, insightful, and concise, reflecting deep technical understanding. " +
		"Avoid generic buzzwords. Use industry-standard terminology where appropriate.",
	models.ToneFunny: "You are a witty tech enthusiast. " +
		"Make it humorous, sarcastic, or ironic. " +
		"Poke fun at the complexities of tech/AI if appropriate.",
	models.ToneLogical: "You are a purely logical analyst. " +
		"Focus on facts, cause-and-effect, and reasoning. " +
		"Be structured and objective.",
	models.ToneTechnical: "You are a senior engineer writing for other engineers. " +
		"Dive into the technical details, architecture, or code-level specifics. " +
		"Assume the reader is technical.",
	models.ToneMathematical: "You are a mathematician looking at tech. " +
		"Use mathematical analogies, probability, or abstract reasoning. " +
		"Be precise.",
}

// buildPrompt assembles the system persona and user request for one
// generation call. styleHint is an optional framing instruction used by
// the autonomous scheduler.
func buildPrompt(topic, tone, styleHint string) (system, user string) {
	persona, ok := tonePersonas[tone]
	if !ok {
		persona = tonePersonas[models.ToneProfessional]
	}

	system = persona +
		" STRICT CONSTRAINT: The tweet MUST be under 280 characters. " +
		"OPTIMIZE FOR ENGAGEMENT: Start with a strong hook or question. " +
		"End with a clear Call to Action (CTA) or a thought-provoking statement. " +
		"Do not sound like a bot. " +
		"Include 2-3 relevant hashtags at the end to maximize reach. " +
		"Reply with just the tweet content."

	user = fmt.Sprintf("Write a tweet about %s.", topic)
	if styleHint != "" {
		user += " " + styleHint
	}
	return system, user
}
