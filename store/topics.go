package store

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/WWJD/models"
)

func (s *Store) ListTopics(ctx context.Context, userID int) ([]string, error) {
	topics := []string{}
	err := s.db.From("followed_topic").
		Select("topic").
		Where(goqu.C("user_profile_id").Eq(userID)).
		Order(goqu.C("datetime_create").Desc(), goqu.C("topic").Asc()).
		ScanValsContext(ctx, &topics)
	if err != nil {
		return nil, wrap("list topics", err)
	}
	return topics, nil
}

// Follow stores topic as given; callers normalize it first.
func (s *Store) Follow(ctx context.Context, userID int, topic string) error {
	_, err := s.db.Insert("followed_topic").
		Rows(goqu.Record{"user_profile_id": userID, "topic": topic}).
		OnConflict(goqu.DoNothing()).
		Executor().
		ExecContext(ctx)
	return wrap("follow topic", err)
}

func (s *Store) Unfollow(ctx context.Context, userID int, topic string) error {
	_, err := s.db.Delete("followed_topic").
		Where(goqu.Ex{"user_profile_id": userID, "topic": topic}).
		Executor().
		ExecContext(ctx)
	return wrap("unfollow topic", err)
}

func followedTopicsOverlap(userID int) exp.Expression {
	return goqu.L("s.tags && ARRAY(SELECT topic FROM followed_topic WHERE user_profile_id = ?)::text[]", userID)
}

// TopicFeed pages through situations tagged with any topic the user follows.
func (s *Store) TopicFeed(ctx context.Context, userID int, params models.ListParams) (models.Page[models.Situation], error) {
	return s.pageSituations(ctx, params, followedTopicsOverlap(userID))
}

// DigestSituations returns up to limit situations created since the given
// time that match the user's followed topics.
func (s *Store) DigestSituations(ctx context.Context, userID int, since time.Time, limit int) ([]models.Situation, error) {
	situations := []models.Situation{}
	err := s.situationsSelect().
		Where(
			followedTopicsOverlap(userID),
			goqu.I("s.datetime_create").Gte(since),
		).
		Order(sortOrder(models.SortRecent)...).
		Limit(uint(limit)).
		ScanStructsContext(ctx, &situations)
	if err != nil {
		return nil, wrap("digest situations", err)
	}
	return situations, nil
}
