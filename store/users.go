package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/models"
)

var userColumns = []interface{}{
	"user_profile_id",
	"email",
	"display_name",
	"image_url",
	"email_digest",
	"digest_frequency",
	"notify_ratings",
	"notify_prayers",
	"datetime_last_login",
	"datetime_create",
}

// UpsertUser creates the user on first sign-in and refreshes name, image and
// last login on every later one.
func (s *Store) UpsertUser(ctx context.Context, signIn models.UserProfileSignIn) (models.UserProfile, error) {
	var user models.UserProfile
	_, err := s.db.Insert("user_profile").
		Rows(goqu.Record{
			"email":               signIn.Email,
			"display_name":        nullable(signIn.Name),
			"image_url":           nullable(signIn.Image),
			"datetime_last_login": goqu.L("NOW()"),
		}).
		OnConflict(goqu.DoUpdate("email", goqu.Record{
			"display_name":        goqu.L("COALESCE(EXCLUDED.display_name, user_profile.display_name)"),
			"image_url":           goqu.L("COALESCE(EXCLUDED.image_url, user_profile.image_url)"),
			"datetime_last_login": goqu.L("NOW()"),
		})).
		Returning(userColumns...).
		Executor().
		ScanStructContext(ctx, &user)
	if err != nil {
		return models.UserProfile{}, wrap("upsert user", err)
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID int) (models.UserProfile, error) {
	var user models.UserProfile
	found, err := s.db.From("user_profile").
		Select(userColumns...).
		Where(goqu.C("user_profile_id").Eq(userID)).
		ScanStructContext(ctx, &user)
	if err != nil {
		return models.UserProfile{}, wrap("get user", err)
	}
	if !found {
		return models.UserProfile{}, apperrors.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetSettings(ctx context.Context, userID int) (models.UserSettings, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return models.UserSettings{}, err
	}
	return user.Settings(), nil
}

// UpdateSettings applies each non-nil field of update and keeps the stored
// value for the rest.
func (s *Store) UpdateSettings(ctx context.Context, userID int, update models.SettingsUpdate) (models.UserSettings, error) {
	var user models.UserProfile
	found, err := s.db.Update("user_profile").
		Set(goqu.Record{
			"email_digest":     goqu.COALESCE(nullable(update.Email_Digest), goqu.C("email_digest")),
			"digest_frequency": goqu.COALESCE(nullable(update.Digest_Frequency), goqu.C("digest_frequency")),
			"notify_ratings":   goqu.COALESCE(nullable(update.Notify_Ratings), goqu.C("notify_ratings")),
			"notify_prayers":   goqu.COALESCE(nullable(update.Notify_Prayers), goqu.C("notify_prayers")),
		}).
		Where(goqu.C("user_profile_id").Eq(userID)).
		Returning(userColumns...).
		Executor().
		ScanStructContext(ctx, &user)
	if err != nil {
		return models.UserSettings{}, wrap("update settings", err)
	}
	if !found {
		return models.UserSettings{}, apperrors.ErrNotFound
	}
	return user.Settings(), nil
}

// DigestRecipients lists users subscribed to the digest at frequency.
func (s *Store) DigestRecipients(ctx context.Context, frequency string) ([]models.UserProfile, error) {
	users := []models.UserProfile{}
	err := s.db.From("user_profile").
		Select(userColumns...).
		Where(
			goqu.C("email_digest").IsTrue(),
			goqu.C("digest_frequency").Eq(frequency),
		).
		Order(goqu.C("user_profile_id").Asc()).
		ScanStructsContext(ctx, &users)
	if err != nil {
		return nil, wrap("digest recipients", err)
	}
	return users, nil
}
