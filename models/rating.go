package models

import "time"

const MaxRatingCommentLength = 500

type Rating struct {
	Rating_ID       int       `json:"id" goqu:"skipinsert"`
	Situation_ID    int       `json:"situationId"`
	Stars           int       `json:"stars"`
	Rating_Comment  *string   `json:"comment"`
	Datetime_Create time.Time `json:"createdAt" goqu:"skipinsert"`
}

type RatingCreate struct {
	Situation_ID int     `json:"situationId"`
	Stars        int     `json:"stars"`
	Comment      *string `json:"comment"`
}
