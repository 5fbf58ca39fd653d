package prompt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultStyle is applied when a request carries no style.
const DefaultStyle = "cinematic"

// Preset carries the visual guidance appended to prompts of a given style.
type Preset struct {
	Guidance  string
	Negatives string
}

var presets = map[string]Preset{
	"cinematic": {
		Guidance:  "cinematic lighting, shallow depth of field, smooth camera dolly, 24fps film look",
		Negatives: "no watermarks, no text artifacts, avoid jitter",
	},
	"anime": {
		Guidance:  "stylized anime look, dynamic motion lines, vibrant palette, cel shading",
		Negatives: "avoid photorealism, avoid noise",
	},
	"product": {
		Guidance:  "clean studio lighting, 360-degree orbit, seamless background, crisp focus",
		Negatives: "no hands, no fingers, no logos",
	},
}

// Lookup returns the preset for style. Unknown styles yield an empty preset.
func Lookup(style string) (Preset, bool) {
	p, ok := presets[style]
	return p, ok
}

// Styles lists the styles that have presets.
func Styles() []string {
	return []string{"cinematic", "anime", "product"}
}

// Normalize trims the prompt and lower-cases the style, defaulting to
// DefaultStyle. The result is the canonical input for hashing and composing.
func Normalize(userPrompt, style string) (string, string) {
	userPrompt = strings.TrimSpace(userPrompt)
	style = cases.Lower(language.Und).String(strings.TrimSpace(style))
	if style == "" {
		style = DefaultStyle
	}
	return userPrompt, style
}
