package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/WWJD/models"
)

type MatchConfig struct {
	MinKeywords   int
	MinMatches    int
	MinPercentage float64
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{MinKeywords: 2, MinMatches: 2, MinPercentage: 0.4}
}

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

var stopWords = toSet(
	// pronouns and determiners
	"the", "and", "for", "you", "your", "yours", "she", "her", "hers", "him",
	"his", "they", "them", "their", "theirs", "our", "ours", "its", "this",
	"that", "these", "those", "who", "whom", "whose", "what", "which", "myself",
	"yourself", "himself", "herself", "itself", "ourselves", "themselves",
	"some", "any", "all", "each", "every", "other", "another", "such",
	// auxiliaries
	"are", "was", "were", "been", "being", "have", "has", "had", "having",
	"does", "did", "doing", "will", "would", "shall", "should", "can", "could",
	"may", "might", "must", "get", "got", "getting",
	// prepositions and conjunctions
	"about", "above", "after", "again", "against", "also", "because", "before",
	"below", "between", "but", "from", "into", "just", "like", "more", "most",
	"nor", "not", "now", "off", "once", "only", "out", "over", "own", "same",
	"than", "then", "there", "through", "too", "under", "until", "very", "when",
	"where", "while", "why", "how", "with", "without", "really", "still",
	"even", "much", "many", "lot",
	// contraction stems
	"don", "doesn", "didn", "isn", "aren", "wasn", "weren", "won", "wouldn",
	"couldn", "shouldn", "haven", "hasn", "hadn", "cant", "dont", "ive",
	"youre", "theyre", "im",
	// generic in this domain
	"jesus", "god", "christ", "lord", "feel", "feeling", "feels", "want",
	"wants", "know", "think", "need", "help", "going", "make", "situation",
	"someone", "something", "thing", "things",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Keywords extracts the matching keywords of text. Duplicates are kept so a
// repeated word weighs more.
func Keywords(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	keywords := []string{}
	for _, token := range strings.Fields(cleaned) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

// BestMatch scores candidates against keywords and returns the highest
// scoring eligible candidate. Candidates must be ordered most recent first;
// a later candidate only wins with a strictly higher score.
func BestMatch(keywords []string, candidates []models.SituationCandidate, minMatches int, minPercentage float64) *models.SituationCandidate {
	if len(keywords) == 0 {
		return nil
	}

	var best *models.SituationCandidate
	bestScore := -1.0
	for i := range candidates {
		text := strings.ToLower(candidates[i].Situation_Text)
		matchCount := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matchCount++
			}
		}
		matchPercentage := float64(matchCount) / float64(len(keywords))
		if matchCount < minMatches || matchPercentage < minPercentage {
			continue
		}
		score := float64(matchCount) + matchPercentage
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	return best
}

type SituationCandidateSource interface {
	SituationCandidates(ctx context.Context) ([]models.SituationCandidate, error)
}

type DuplicateMatcher struct {
	source SituationCandidateSource
	config MatchConfig
}

func NewDuplicateMatcher(source SituationCandidateSource, config MatchConfig) *DuplicateMatcher {
	return &DuplicateMatcher{source: source, config: config}
}

func (m *DuplicateMatcher) Config() MatchConfig {
	return m.config
}

// FindSimilar returns the stored situation closest to question, or nil when
// the question has too few keywords or nothing is close enough. Every stored
// situation is scanned. A minMatches of zero or less uses the configured one.
func (m *DuplicateMatcher) FindSimilar(ctx context.Context, question string, minMatches int) (*models.SituationCandidate, error) {
	if minMatches <= 0 {
		minMatches = m.config.MinMatches
	}
	keywords := Keywords(question)
	if len(keywords) < m.config.MinKeywords {
		return nil, nil
	}
	candidates, err := m.source.SituationCandidates(ctx)
	if err != nil {
		return nil, err
	}
	return BestMatch(keywords, candidates, minMatches, m.config.MinPercentage), nil
}
