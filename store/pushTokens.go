package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/WWJD/models"
)

// UpsertPushToken registers token for userID. A token moves to the latest
// user that registers it.
func (s *Store) UpsertPushToken(ctx context.Context, userID int, request models.PushTokenRequest) error {
	_, err := s.db.Insert("user_push_tokens").
		Rows(goqu.Record{
			"user_profile_id": userID,
			"push_token":      request.PushToken,
			"platform":        request.Platform,
		}).
		OnConflict(goqu.DoUpdate("push_token", goqu.Record{
			"user_profile_id": goqu.L("EXCLUDED.user_profile_id"),
			"platform":        goqu.L("EXCLUDED.platform"),
			"updated_at":      goqu.L("NOW()"),
		})).
		Executor().
		ExecContext(ctx)
	return wrap("upsert push token", err)
}

// PushTokens returns every registered token of the given users.
func (s *Store) PushTokens(ctx context.Context, userIDs ...int) ([]string, error) {
	tokens := []string{}
	if len(userIDs) == 0 {
		return tokens, nil
	}
	err := s.db.From("user_push_tokens").
		Select("push_token").
		Where(goqu.C("user_profile_id").In(userIDs)).
		ScanValsContext(ctx, &tokens)
	if err != nil {
		return nil, wrap("list push tokens", err)
	}
	return tokens, nil
}

func (s *Store) DeletePushTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	_, err := s.db.Delete("user_push_tokens").
		Where(goqu.C("push_token").In(tokens)).
		Executor().
		ExecContext(ctx)
	return wrap("delete push tokens", err)
}
