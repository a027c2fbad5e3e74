package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/WWJD/models"
)

func (s *Store) ListSaved(ctx context.Context, userID int) ([]models.SavedSituation, error) {
	saved := []models.SavedSituation{}
	err := s.situationsSelect(goqu.MAX(goqu.I("sg.datetime_create")).As("saved_at")).
		Join(
			goqu.T("saved_guidance").As("sg"),
			goqu.On(goqu.I("sg.situation_id").Eq(goqu.I("s.situation_id"))),
		).
		Where(goqu.I("sg.user_profile_id").Eq(userID)).
		Order(goqu.I("saved_at").Desc()).
		ScanStructsContext(ctx, &saved)
	if err != nil {
		return nil, wrap("list saved", err)
	}
	return saved, nil
}

func (s *Store) IsSaved(ctx context.Context, userID, situationID int) (bool, error) {
	count, err := s.db.From("saved_guidance").
		Where(goqu.Ex{"user_profile_id": userID, "situation_id": situationID}).
		CountContext(ctx)
	if err != nil {
		return false, wrap("check saved", err)
	}
	return count > 0, nil
}

// Save is idempotent; saving twice leaves one row.
func (s *Store) Save(ctx context.Context, userID, situationID int) error {
	_, err := s.db.Insert("saved_guidance").
		Rows(goqu.Record{"user_profile_id": userID, "situation_id": situationID}).
		OnConflict(goqu.DoNothing()).
		Executor().
		ExecContext(ctx)
	return wrap("save situation", err)
}

func (s *Store) Unsave(ctx context.Context, userID, situationID int) error {
	_, err := s.db.Delete("saved_guidance").
		Where(goqu.Ex{"user_profile_id": userID, "situation_id": situationID}).
		Executor().
		ExecContext(ctx)
	return wrap("unsave situation", err)
}

// RatingSubscribers returns the users who saved situationID and want rating
// notifications.
func (s *Store) RatingSubscribers(ctx context.Context, situationID int) ([]int, error) {
	ids := []int{}
	err := s.db.From(goqu.T("saved_guidance").As("sg")).
		Join(
			goqu.T("user_profile").As("u"),
			goqu.On(goqu.I("u.user_profile_id").Eq(goqu.I("sg.user_profile_id"))),
		).
		Select(goqu.I("u.user_profile_id")).
		Where(
			goqu.I("sg.situation_id").Eq(situationID),
			goqu.I("u.notify_ratings").IsTrue(),
		).
		ScanValsContext(ctx, &ids)
	if err != nil {
		return nil, wrap("rating subscribers", err)
	}
	return ids, nil
}
