package story

import "strings"

// Default choices offered when a model reply contains nothing parseable.
var defaultChoices = []string{"Continue the story", "Ask what's happening"}

const maxChoices = 2

// speakableLimit caps how much of a reply is handed to text-to-speech.
const speakableLimit = 500

// ExtractChoices pulls the two player options out of a model reply.
// Preferred format is "CHOICE A: ..." / "CHOICE B: ..." lines; bullet
// points and numbered lists are accepted as fallbacks. When fewer than
// two options are found the defaults are returned.
func ExtractChoices(text string) []string {
	var choices []string

	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "CHOICE ") {
			continue
		}
		if _, after, found := strings.Cut(line, ":"); found {
			choices = append(choices, strings.TrimSpace(after))
		}
	}

	if len(choices) == 0 {
		for _, line := range strings.Split(text, "\n") {
			trimmed := strings.TrimSpace(line)
			for _, marker := range []string{"- ", "• ", "* "} {
				if strings.HasPrefix(trimmed, marker) {
					choices = append(choices, strings.TrimSpace(trimmed[len(marker):]))
					break
				}
			}
		}
	}

	if len(choices) == 0 {
		for _, line := range strings.Split(text, "\n") {
			trimmed := strings.TrimSpace(line)
			for _, marker := range []string{"1. ", "2. "} {
				if strings.HasPrefix(trimmed, marker) {
					choices = append(choices, strings.TrimSpace(trimmed[len(marker):]))
					break
				}
			}
		}
	}

	if len(choices) < maxChoices {
		choices = append([]string{}, defaultChoices...)
	}

	return choices[:maxChoices]
}

// Narrative returns the part of a reply suitable for text-to-speech:
// everything before the choice block, capped at a sane length.
func Narrative(text string) string {
	if before, _, found := strings.Cut(text, "CHOICE A"); found {
		text = before
	}
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > speakableLimit {
		text = string(runes[:speakableLimit])
	}
	return text
}
