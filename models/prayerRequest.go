package models

import "time"

const (
	MaxPrayerRequestLength = 500
	DefaultPrayerWallLimit = 20
	MaxPrayerWallLimit     = 100
)

type PrayerRequest struct {
	Prayer_Request_ID int       `json:"id" goqu:"skipinsert"`
	User_Profile_ID   int       `json:"userProfileId"`
	Situation_ID      *int      `json:"situationId"`
	Request_Text      string    `json:"request"`
	Prayer_Count      int       `json:"prayerCount" goqu:"skipinsert"`
	Is_Active         bool      `json:"isActive" goqu:"skipinsert"`
	Datetime_Create   time.Time `json:"createdAt" goqu:"skipinsert"`
}

type PrayerRequestCreate struct {
	Request      string `json:"request"`
	Situation_ID *int   `json:"situationId"`
}

// PrayerWallEntry is a row of the community prayer wall. The owner is not
// exposed.
type PrayerWallEntry struct {
	Prayer_Request_ID int       `json:"id"`
	Request_Text      string    `json:"request"`
	Prayer_Count      int       `json:"prayerCount"`
	Datetime_Create   time.Time `json:"createdAt"`
	Situation_ID      *int      `json:"situationId"`
	Situation_Text    *string   `json:"situation"`
}

// PrayedResult is returned by the atomic prayer_count increment.
type PrayedResult struct {
	Prayer_Count    int    `json:"prayerCount"`
	User_Profile_ID int    `json:"-"`
	Request_Text    string `json:"-"`
}
