package services

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/WWJD/models"
)

const guidanceSystemPrompt = `You are a compassionate guide who answers the question "what would Jesus do?" for a person's life situation. Ground your answer in the Gospels and other scripture, be practical and non-judgmental.

Reply with JSON only, in this shape:
{"response": "guidance text", "verses": ["Book Chapter:Verse - verse text"], "tags": ["tag"]}

Give 2 to 4 verses and 2 to 4 short lowercase tags such as "forgiveness", "family", "work", "grief" or "anxiety".`

const maxFallbackVerses = 4

// GuidanceGenerator turns a situation into guidance. Implementations return
// the raw model text through ParseGuidance.
type GuidanceGenerator interface {
	Generate(ctx context.Context, situation string) (models.Guidance, error)
}

func guidanceUserPrompt(situation string) string {
	return "Here is my situation: " + situation + "\n\nWhat would Jesus do?"
}

var versePattern = regexp.MustCompile(`(\d?\s*[A-Za-z]+\s+\d+:\d+(?:-\d+)?)`)

// ParseGuidance reads generator output. JSON wrapped in a markdown fence is
// accepted. Anything that is not JSON becomes the response text, with up to
// four verse references pulled out of it and no tags.
func ParseGuidance(content string) models.Guidance {
	body := strings.TrimSpace(content)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var parsed models.Guidance
	if err := json.Unmarshal([]byte(body), &parsed); err == nil && strings.TrimSpace(parsed.Response) != "" {
		if parsed.Verses == nil {
			parsed.Verses = []string{}
		}
		parsed.Tags = normalizeTags(parsed.Tags)
		return parsed
	}

	verses := versePattern.FindAllString(content, maxFallbackVerses)
	for i := range verses {
		verses[i] = strings.TrimSpace(verses[i])
	}
	if verses == nil {
		verses = []string{}
	}
	return models.Guidance{
		Response: content,
		Verses:   verses,
		Tags:     []string{},
	}
}

// normalizeTags lowercases and trims tags, dropping empties and duplicates.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = models.NormalizeTopic(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
