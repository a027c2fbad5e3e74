package controllers

import (
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/WWJD/models"
)

// MockUser creates a sample user profile for testing
func MockUser() models.UserProfile {
	name := "Test User"
	return models.UserProfile{
		User_Profile_ID:  1,
		Email:            "test@example.com",
		Display_Name:     &name,
		Digest_Frequency: models.DigestWeekly,
		Notify_Ratings:   true,
		Notify_Prayers:   true,
		Datetime_Create:  time.Now(),
	}
}

// MockOtherUser is a second user that owns nothing MockUser owns
func MockOtherUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID:  2,
		Email:            "other@example.com",
		Digest_Frequency: models.DigestWeekly,
		Datetime_Create:  time.Now(),
	}
}

var situationColumns = []string{
	"situation_id", "situation_text", "response_text", "verses", "tags",
	"datetime_create", "average_rating", "rating_count",
}

var userColumns = []string{
	"user_profile_id", "email", "display_name", "image_url", "email_digest",
	"digest_frequency", "notify_ratings", "notify_prayers", "datetime_last_login", "datetime_create",
}

// MockSituationRows returns situation rows with their rating aggregates
func MockSituationRows(ids ...int) *sqlmock.Rows {
	rows := sqlmock.NewRows(situationColumns)
	for _, id := range ids {
		rows.AddRow(id, "I am anxious about my new job", "Do not worry about tomorrow.",
			"{Matthew 6:34}", "{anxiety,work}", time.Now(), 4.0, 3)
	}
	return rows
}

func MockUserRow(user models.UserProfile, settings models.UserSettings) *sqlmock.Rows {
	var name interface{}
	if user.Display_Name != nil {
		name = *user.Display_Name
	}
	return sqlmock.NewRows(userColumns).AddRow(
		user.User_Profile_ID, user.Email, name, nil, settings.Email_Digest,
		settings.Digest_Frequency, settings.Notify_Ratings, settings.Notify_Prayers, nil, user.Datetime_Create,
	)
}
