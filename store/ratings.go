package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/WWJD/models"
)

// CreateRating appends a rating. A missing situation surfaces as
// apperrors.ErrNotFound through the foreign key.
func (s *Store) CreateRating(ctx context.Context, rating models.RatingCreate) (models.Rating, error) {
	var created models.Rating
	_, err := s.db.Insert("situation_rating").
		Rows(goqu.Record{
			"situation_id":   rating.Situation_ID,
			"stars":          rating.Stars,
			"rating_comment": nullable(rating.Comment),
		}).
		Returning("rating_id", "situation_id", "stars", "rating_comment", "datetime_create").
		Executor().
		ScanStructContext(ctx, &created)
	if err != nil {
		return models.Rating{}, wrap("create rating", err)
	}
	return created, nil
}

func (s *Store) ListRatings(ctx context.Context, situationID int) ([]models.Rating, error) {
	ratings := []models.Rating{}
	err := s.db.From("situation_rating").
		Select("rating_id", "situation_id", "stars", "rating_comment", "datetime_create").
		Where(goqu.C("situation_id").Eq(situationID)).
		Order(goqu.C("datetime_create").Desc(), goqu.C("rating_id").Desc()).
		ScanStructsContext(ctx, &ratings)
	if err != nil {
		return nil, wrap("list ratings", err)
	}
	return ratings, nil
}
