package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/WWJD/logger"
	"github.com/WWJD/middlewares"
)

func TestSetupRouter(t *testing.T) {
	env := setupTestController(t)
	router := SetupRouter(env.ctl, RouterConfig{
		CORSOrigins: []string{"http://localhost:3000"},
		Limiter:     middlewares.NewMemoryLimiter(rate.Every(time.Hour), 1),
		Log:         logger.Nop(),
	})

	serve := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Ping", func(t *testing.T) {
		w := serve(http.MethodGet, "/ping", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middlewares.RequestIDHeader))
	})

	t.Run("User routes need a session", func(t *testing.T) {
		for _, path := range []string{"/users/me", "/user/saved", "/user/topics", "/user/settings"} {
			assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, path, "").Code, path)
		}
		assert.Equal(t, http.StatusUnauthorized, serve(http.MethodPost, "/prayer-requests", "").Code)
		assert.Equal(t, http.StatusUnauthorized, serve(http.MethodDelete, "/prayer-requests/1", "").Code)
	})

	t.Run("Session user", func(t *testing.T) {
		token, err := middlewares.NewSessionToken(testSecret, 1, time.Hour)
		assert.NoError(t, err)
		env.mock.ExpectQuery(`FROM "user_profile" WHERE \("user_profile_id" = 1\)`).
			WillReturnRows(MockUserRow(MockUser(), MockUser().Settings()))

		w := serve(http.MethodGet, "/users/me", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("Submissions are rate limited", func(t *testing.T) {
		first := serve(http.MethodPost, "/situations", "")
		second := serve(http.MethodPost, "/situations", "")
		assert.Equal(t, http.StatusBadRequest, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})
}
