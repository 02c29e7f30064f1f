package generator

import "strings"

// Denylist of case-insensitive substrings that mark a draft as a model
// refusal, meta-commentary, or preamble artifact rather than a post.
var denylist = []string{
	"as an ai",
	"as a language model",
	"i cannot",
	"i can't",
	"i'm unable to",
	"i am unable to",
	"here is a tweet",
	"here's a tweet",
	"here is your tweet",
	"sure, here",
	"certainly, here",
	"[insert",
}

// Valid reports whether text is publishable content. Length is enforced
// upstream; this only rejects empty text and denylist matches.
func Valid(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, phrase := range denylist {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}
