package services

import "strings"

const MaxRelatedSituations = 3

// RelatedKeyword is the word used to look up guidance related to text: its
// first word longer than three characters, or "" when there is none.
func RelatedKeyword(text string) string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	for _, word := range strings.Fields(cleaned) {
		if len(word) > 3 {
			return word
		}
	}
	return ""
}
