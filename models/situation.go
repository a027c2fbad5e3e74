package models

import (
	"time"

	"github.com/lib/pq"
)

const MaxSituationLength = 400

// Situation is a submitted life situation together with its generated
// guidance. Average_Rating and Rating_Count are aggregated from
// situation_rating on every read and are never written.
type Situation struct {
	Situation_ID    int            `json:"id" goqu:"skipinsert"`
	Situation_Text  string         `json:"situation"`
	Response_Text   string         `json:"response"`
	Verses          pq.StringArray `json:"verses"`
	Tags            pq.StringArray `json:"tags"`
	Datetime_Create time.Time      `json:"createdAt" goqu:"skipinsert"`
	Average_Rating  float64        `json:"averageRating" goqu:"skipinsert"`
	Rating_Count    int            `json:"ratingCount" goqu:"skipinsert"`
}

type SituationCreate struct {
	Situation string `json:"situation"`
}

// Guidance is the structured output of the guidance generator.
type Guidance struct {
	Response string   `json:"response"`
	Verses   []string `json:"verses"`
	Tags     []string `json:"tags"`
}

type MatchedFrom struct {
	ID        int    `json:"id"`
	Situation string `json:"situation"`
}

// Outcome is the terminal state a submission ended in.
type Outcome string

const (
	OutcomeBlocked         Outcome = "blocked"
	OutcomeMatchedExisting Outcome = "matched_existing"
	OutcomePersisted       Outcome = "persisted"
)

// Submission is the response body of POST /situations. ID is nil for
// blocked submissions, which are never stored.
type Submission struct {
	ID                *int         `json:"id"`
	Situation         string       `json:"situation"`
	Response          string       `json:"response"`
	Verses            []string     `json:"verses"`
	Tags              []string     `json:"tags"`
	CreatedAt         *time.Time   `json:"createdAt,omitempty"`
	AverageRating     float64      `json:"averageRating"`
	RatingCount       int          `json:"ratingCount"`
	Moderated         bool         `json:"moderated"`
	Category          string       `json:"category,omitempty"`
	FlaggedCategories []string     `json:"flaggedCategories,omitempty"`
	MatchedFrom       *MatchedFrom `json:"matchedFrom,omitempty"`
	Outcome           Outcome      `json:"-"`
}

// SubmissionFromSituation builds the response for a stored situation.
func SubmissionFromSituation(s Situation, outcome Outcome) Submission {
	id := s.Situation_ID
	created := s.Datetime_Create
	return Submission{
		ID:            &id,
		Situation:     s.Situation_Text,
		Response:      s.Response_Text,
		Verses:        nonNil(s.Verses),
		Tags:          nonNil(s.Tags),
		CreatedAt:     &created,
		AverageRating: s.Average_Rating,
		RatingCount:   s.Rating_Count,
		Outcome:       outcome,
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// SituationCandidate is the projection the duplicate matcher scans.
type SituationCandidate struct {
	Situation_ID   int    `json:"id"`
	Situation_Text string `json:"situation"`
}
