package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"

	"github.com/WWJD/store"
)

const testSecret = "test-secret-key"

// Helper function to generate a valid JWT token
func generateValidToken(userID int, expiresIn time.Duration) string {
	tokenString, _ := NewSessionToken(testSecret, userID, expiresIn)
	return tokenString
}

// Helper function to generate a token with invalid signature
func generateInvalidSignatureToken(userID int) string {
	tokenString, _ := NewSessionToken("wrong-secret-key", userID, 24*time.Hour)
	return tokenString
}

func generateTokenWithoutID() string {
	claims := jwt.MapClaims{"exp": float64(time.Now().Add(time.Hour).Unix())}
	tokenString, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	return tokenString
}

func setupTestStore(t *testing.T) (*store.Store, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	return store.New(goqu.New("postgres", db)), mock, func() { db.Close() }
}

// Setup test Gin context
func setupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/test", nil)
	return c, w
}

var userRowColumns = []string{
	"user_profile_id", "email", "display_name", "image_url", "email_digest",
	"digest_frequency", "notify_ratings", "notify_prayers", "datetime_last_login", "datetime_create",
}

func TestCheckAuth(t *testing.T) {
	tests := []struct {
		name              string
		authHeader        string
		mockUserLookup    bool
		userExists        bool
		expectedStatus    int
		expectAbort       bool
		expectCurrentUser bool
	}{
		{
			name:           "missing authorization header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "invalid token format",
			authHeader:     "Token abc",
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + generateValidToken(1, -1*time.Hour),
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "invalid signature",
			authHeader:     "Bearer " + generateInvalidSignatureToken(1),
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "token without user id",
			authHeader:     "Bearer " + generateTokenWithoutID(),
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "user no longer exists",
			authHeader:     "Bearer " + generateValidToken(1, time.Hour),
			mockUserLookup: true,
			userExists:     false,
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:              "valid token",
			authHeader:        "Bearer " + generateValidToken(1, time.Hour),
			mockUserLookup:    true,
			userExists:        true,
			expectedStatus:    http.StatusOK,
			expectCurrentUser: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock, cleanup := setupTestStore(t)
			defer cleanup()

			if tt.mockUserLookup {
				rows := sqlmock.NewRows(userRowColumns)
				if tt.userExists {
					rows.AddRow(1, "test@example.com", "Test User", nil, false, "weekly", true, true, time.Now(), time.Now())
				}
				mock.ExpectQuery(`SELECT .* FROM "user_profile" WHERE \("user_profile_id" = 1\)`).WillReturnRows(rows)
			}

			c, w := setupTestContext()
			if tt.authHeader != "" {
				c.Request.Header.Set("Authorization", tt.authHeader)
			}

			CheckAuth(testSecret, s)(c)

			if tt.expectAbort {
				assert.True(t, c.IsAborted(), "Expected request to be aborted")
				assert.Equal(t, tt.expectedStatus, w.Code)
			} else {
				assert.False(t, c.IsAborted(), "Expected request not to be aborted")
			}

			user, exists := CurrentUser(c)
			assert.Equal(t, tt.expectCurrentUser, exists)
			if tt.expectCurrentUser {
				assert.Equal(t, 1, user.User_Profile_ID)
				assert.Equal(t, "test@example.com", user.Email)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCheckAuthDatabaseError(t *testing.T) {
	s, mock, cleanup := setupTestStore(t)
	defer cleanup()
	mock.ExpectQuery("SELECT").WillReturnError(sqlmock.ErrCancelled)

	c, w := setupTestContext()
	c.Request.Header.Set("Authorization", "Bearer "+generateValidToken(1, time.Hour))
	CheckAuth(testSecret, s)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
