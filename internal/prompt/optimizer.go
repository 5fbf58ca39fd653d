package prompt

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Optimizer rewrites a user prompt into one that tends to produce better video.
type Optimizer interface {
	Optimize(ctx context.Context, userPrompt, style string) (string, error)
}

// StaticOptimizer is a deterministic, offline Optimizer driven by the style
// presets.
type StaticOptimizer struct{}

func NewStaticOptimizer() *StaticOptimizer {
	return &StaticOptimizer{}
}

func (s *StaticOptimizer) Optimize(ctx context.Context, userPrompt, style string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sentence := sentenceCase(strings.Join(strings.Fields(userPrompt), " "))
	if sentence == "" {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(sentence)

	title := cases.Title(language.Und).String(style)
	preset, ok := Lookup(style)
	if !ok {
		if title != "" {
			b.WriteString(" " + title + " style.")
		}
		return b.String(), nil
	}

	lower := strings.ToLower(sentence)
	var cues []string
	for _, cue := range strings.Split(preset.Guidance, ",") {
		cue = strings.TrimSpace(cue)
		if cue == "" || strings.Contains(lower, strings.ToLower(cue)) {
			continue
		}
		cues = append(cues, cue)
	}
	if len(cues) > 0 {
		b.WriteString(" " + title + " style with " + strings.Join(cues, ", ") + ".")
	} else {
		b.WriteString(" " + title + " style.")
	}
	if preset.Negatives != "" {
		b.WriteString(" Avoid: " + preset.Negatives + ".")
	}
	return b.String(), nil
}

// sentenceCase upper-cases the first letter and guarantees terminal punctuation.
func sentenceCase(text string) string {
	if text == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(text)
	text = string(unicode.ToUpper(r)) + text[size:]
	switch text[len(text)-1] {
	case '.', '!', '?':
		return text
	}
	return text + "."
}

var _ Optimizer = (*StaticOptimizer)(nil)
