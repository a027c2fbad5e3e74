package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/models"
	"github.com/WWJD/services"
)

func TestGoogleSignIn(t *testing.T) {
	name := "Test User"
	tests := []struct {
		name           string
		body           string
		signIn         models.UserProfileSignIn
		verifyErr      error
		mockDB         bool
		expectedStatus int
	}{
		{
			name:           "successful sign-in",
			body:           `{"idToken":"google-token"}`,
			signIn:         models.UserProfileSignIn{Email: "test@example.com", Name: &name},
			mockDB:         true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "rejected token",
			body:           `{"idToken":"bad"}`,
			verifyErr:      apperrors.ErrAuthRequired,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "sign-in not configured",
			body:           `{"idToken":"google-token"}`,
			verifyErr:      services.ErrGoogleSignInDisabled,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "missing token",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestController(t)
			env.verifier.signIn = tt.signIn
			env.verifier.err = tt.verifyErr
			if tt.mockDB {
				env.mock.ExpectQuery(`INSERT INTO "user_profile" .*ON CONFLICT \(email\) DO UPDATE`).
					WillReturnRows(MockUserRow(MockUser(), MockUser().Settings()))
			}

			c, w := SetupTestContext(http.MethodPost, "/auth/google", tt.body)
			env.ctl.GoogleSignIn(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var response struct {
					Token string             `json:"token"`
					User  models.UserProfile `json:"user"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.NotEmpty(t, response.Token)
				assert.Equal(t, "test@example.com", response.User.Email)
			}
			assert.NoError(t, env.mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserProfile(t *testing.T) {
	env := setupTestController(t)

	c, w := SetupTestContext(http.MethodGet, "/users/me", "")
	env.ctl.GetUserProfile(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = SetupTestContext(http.MethodGet, "/users/me", "")
	SetAuthenticatedUser(c, MockUser())
	env.ctl.GetUserProfile(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"test@example.com"`)
}

func TestStorePushToken(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockDB         bool
		expectedStatus int
	}{
		{name: "store token", body: `{"pushToken":"fcm-token","platform":"web"}`, mockDB: true, expectedStatus: http.StatusOK},
		{name: "unknown platform", body: `{"pushToken":"fcm-token","platform":"desktop"}`, expectedStatus: http.StatusBadRequest},
		{name: "missing token", body: `{"platform":"ios"}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestController(t)
			if tt.mockDB {
				env.mock.ExpectExec(`INSERT INTO "user_push_tokens" .*ON CONFLICT \(push_token\) DO UPDATE`).
					WillReturnResult(sqlmock.NewResult(1, 1))
			}

			c, w := SetupTestContext(http.MethodPost, "/user/push-token", tt.body)
			SetAuthenticatedUser(c, MockUser())
			env.ctl.StorePushToken(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.mockDB {
				assert.Equal(t, []string{"fcm-token"}, env.notifier.tokens)
			}
			assert.NoError(t, env.mock.ExpectationsWereMet())
		})
	}
}

func TestGetSettings(t *testing.T) {
	env := setupTestController(t)
	settings := models.UserSettings{Email_Digest: true, Digest_Frequency: "daily", Notify_Ratings: true}
	env.mock.ExpectQuery(`FROM "user_profile" WHERE \("user_profile_id" = 1\)`).
		WillReturnRows(MockUserRow(MockUser(), settings))

	c, w := SetupTestContext(http.MethodGet, "/user/settings", "")
	SetAuthenticatedUser(c, MockUser())
	env.ctl.GetSettings(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Settings models.UserSettings `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, settings, response.Settings)
}

func TestUpdateSettings(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockDB         func(mock sqlmock.Sqlmock)
		expectedStatus int
	}{
		{
			name: "partial update",
			body: `{"notify_prayers":false}`,
			mockDB: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE "user_profile" SET .*"notify_prayers"=COALESCE\(FALSE, "notify_prayers"\)`).
					WillReturnRows(MockUserRow(MockUser(), models.UserSettings{Digest_Frequency: "weekly"}))
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid frequency",
			body:           `{"digest_frequency":"hourly"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "database error",
			body: `{"email_digest":true}`,
			mockDB: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE "user_profile"`).WillReturnError(errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestController(t)
			if tt.mockDB != nil {
				tt.mockDB(env.mock)
			}

			c, w := SetupTestContext(http.MethodPut, "/user/settings", tt.body)
			SetAuthenticatedUser(c, MockUser())
			env.ctl.UpdateSettings(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NoError(t, env.mock.ExpectationsWereMet())
		})
	}
}
