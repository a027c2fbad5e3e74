package models

import "time"

// SavedSituation is a situation in a user's collection.
type SavedSituation struct {
	Situation
	Saved_At time.Time `json:"savedAt"`
}

type SavedGuidanceRequest struct {
	Situation_ID int `json:"situationId"`
}
