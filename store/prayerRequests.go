package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/models"
)

// PrayerWall lists active prayer requests, newest first.
func (s *Store) PrayerWall(ctx context.Context, limit int) ([]models.PrayerWallEntry, error) {
	entries := []models.PrayerWallEntry{}
	err := s.db.From(goqu.T("prayer_request").As("pr")).
		LeftJoin(
			goqu.T("situation").As("s"),
			goqu.On(goqu.I("s.situation_id").Eq(goqu.I("pr.situation_id"))),
		).
		Select(
			goqu.I("pr.prayer_request_id"),
			goqu.I("pr.request_text"),
			goqu.I("pr.prayer_count"),
			goqu.I("pr.datetime_create"),
			goqu.I("pr.situation_id"),
			goqu.I("s.situation_text"),
		).
		Where(goqu.I("pr.is_active").IsTrue()).
		Order(goqu.I("pr.datetime_create").Desc(), goqu.I("pr.prayer_request_id").Desc()).
		Limit(uint(limit)).
		ScanStructsContext(ctx, &entries)
	if err != nil {
		return nil, wrap("prayer wall", err)
	}
	return entries, nil
}

func (s *Store) CreatePrayerRequest(ctx context.Context, userID int, request models.PrayerRequestCreate) (models.PrayerRequest, error) {
	var created models.PrayerRequest
	_, err := s.db.Insert("prayer_request").
		Rows(goqu.Record{
			"user_profile_id": userID,
			"situation_id":    nullable(request.Situation_ID),
			"request_text":    request.Request,
		}).
		Returning("prayer_request_id", "user_profile_id", "situation_id", "request_text", "prayer_count", "is_active", "datetime_create").
		Executor().
		ScanStructContext(ctx, &created)
	if err != nil {
		return models.PrayerRequest{}, wrap("create prayer request", err)
	}
	return created, nil
}

// Pray increments prayer_count on an active request in one statement.
func (s *Store) Pray(ctx context.Context, prayerRequestID int) (models.PrayedResult, error) {
	var result models.PrayedResult
	found, err := s.db.Update("prayer_request").
		Set(goqu.Record{"prayer_count": goqu.L("prayer_count + 1")}).
		Where(
			goqu.C("prayer_request_id").Eq(prayerRequestID),
			goqu.C("is_active").IsTrue(),
		).
		Returning("prayer_count", "user_profile_id", "request_text").
		Executor().
		ScanStructContext(ctx, &result)
	if err != nil {
		return models.PrayedResult{}, wrap("pray", err)
	}
	if !found {
		return models.PrayedResult{}, apperrors.ErrNotFound
	}
	return result, nil
}

// ClosePrayerRequest deactivates a request owned by userID.
func (s *Store) ClosePrayerRequest(ctx context.Context, prayerRequestID, userID int) error {
	var ownerID int
	found, err := s.db.From("prayer_request").
		Select("user_profile_id").
		Where(goqu.C("prayer_request_id").Eq(prayerRequestID)).
		ScanValContext(ctx, &ownerID)
	if err != nil {
		return wrap("get prayer request", err)
	}
	if !found {
		return apperrors.ErrNotFound
	}
	if ownerID != userID {
		return apperrors.ErrForbidden
	}

	_, err = s.db.Update("prayer_request").
		Set(goqu.Record{"is_active": false}).
		Where(goqu.C("prayer_request_id").Eq(prayerRequestID)).
		Executor().
		ExecContext(ctx)
	return wrap("close prayer request", err)
}
