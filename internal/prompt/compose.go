package prompt

import "fmt"

// Compose builds the provider prompt from the user prompt and style preset.
func Compose(userPrompt, style string) string {
	p, _ := Lookup(style)
	return fmt.Sprintf("%s. Style: %s. Visual guidance: %s. Negative prompts: %s.", userPrompt, style, p.Guidance, p.Negatives)
}
