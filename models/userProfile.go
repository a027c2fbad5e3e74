package models

import "time"

const (
	DigestDaily   = "daily"
	DigestWeekly  = "weekly"
	DigestMonthly = "monthly"
)

// ValidDigestFrequency reports whether f is one of the supported digest
// frequencies.
func ValidDigestFrequency(f string) bool {
	switch f {
	case DigestDaily, DigestWeekly, DigestMonthly:
		return true
	}
	return false
}

// DigestWindow is how far back a digest of frequency f looks.
func DigestWindow(f string) time.Duration {
	switch f {
	case DigestDaily:
		return 24 * time.Hour
	case DigestMonthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

type UserProfile struct {
	User_Profile_ID     int        `json:"userProfileId" goqu:"skipinsert"`
	Email               string     `json:"email"`
	Display_Name        *string    `json:"name"`
	Image_URL           *string    `json:"image"`
	Email_Digest        bool       `json:"emailDigest" goqu:"skipinsert"`
	Digest_Frequency    string     `json:"digestFrequency" goqu:"skipinsert"`
	Notify_Ratings      bool       `json:"notifyRatings" goqu:"skipinsert"`
	Notify_Prayers      bool       `json:"notifyPrayers" goqu:"skipinsert"`
	Datetime_Last_Login *time.Time `json:"lastLogin"`
	Datetime_Create     time.Time  `json:"datetimeCreate" goqu:"skipinsert"`
}

// UserProfileSignIn carries the identity asserted by the sign-in provider.
type UserProfileSignIn struct {
	Email string
	Name  *string
	Image *string
}

type UserSettings struct {
	Email_Digest     bool   `json:"email_digest"`
	Digest_Frequency string `json:"digest_frequency"`
	Notify_Ratings   bool   `json:"notify_ratings"`
	Notify_Prayers   bool   `json:"notify_prayers"`
}

// SettingsUpdate holds independently optional settings. A nil field keeps
// the stored value.
type SettingsUpdate struct {
	Email_Digest     *bool   `json:"email_digest"`
	Digest_Frequency *string `json:"digest_frequency"`
	Notify_Ratings   *bool   `json:"notify_ratings"`
	Notify_Prayers   *bool   `json:"notify_prayers"`
}

func (u UserProfile) Settings() UserSettings {
	return UserSettings{
		Email_Digest:     u.Email_Digest,
		Digest_Frequency: u.Digest_Frequency,
		Notify_Ratings:   u.Notify_Ratings,
		Notify_Prayers:   u.Notify_Prayers,
	}
}
