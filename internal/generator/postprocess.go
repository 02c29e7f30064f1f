package generator

import "strings"

var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'“':  '”',
	'‘':  '’',
	'«':  '»',
}

// cleanup normalizes raw model output: trims whitespace, strips one pair
// of enclosing quotes, and drops markdown emphasis markers the models
// tend to sprinkle in despite the prompt.
func cleanup(raw string) string {
	text := strings.TrimSpace(raw)

	runes := []rune(text)
	if len(runes) >= 2 {
		if closer, ok := quotePairs[runes[0]]; ok && runes[len(runes)-1] == closer {
			text = strings.TrimSpace(string(runes[1 : len(runes)-1]))
		}
	}

	text = strings.NewReplacer("*", "", "_", "").Replace(text)
	return strings.TrimSpace(text)
}
