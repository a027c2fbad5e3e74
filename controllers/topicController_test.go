package controllers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestGetTopics(t *testing.T) {
	env := setupTestController(t)
	env.mock.ExpectQuery(`SELECT "topic" FROM "followed_topic" WHERE \("user_profile_id" = 1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"topic"}).AddRow("grief").AddRow("anxiety"))

	c, w := SetupTestContext(http.MethodGet, "/user/topics", "")
	SetAuthenticatedUser(c, MockUser())
	env.ctl.GetTopics(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"topics":["grief","anxiety"]}`, w.Body.String())
}

func TestFollowTopic(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockDB         bool
		expectedStatus int
		expectedTopic  string
	}{
		{name: "normalized topic", body: `{"topic":"  Anxiety "}`, mockDB: true, expectedStatus: http.StatusOK, expectedTopic: "anxiety"},
		{name: "blank topic", body: `{"topic":"   "}`, expectedStatus: http.StatusBadRequest},
		{name: "topic too long", body: `{"topic":"` + strings.Repeat("a", 51) + `"}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestController(t)
			if tt.mockDB {
				env.mock.ExpectExec(`INSERT INTO "followed_topic" \("topic", "user_profile_id"\) VALUES \('` + tt.expectedTopic + `', 1\) ON CONFLICT DO NOTHING`).
					WillReturnResult(sqlmock.NewResult(0, 1))
			}

			c, w := SetupTestContext(http.MethodPost, "/user/topics", tt.body)
			SetAuthenticatedUser(c, MockUser())
			env.ctl.FollowTopic(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.mockDB {
				assert.JSONEq(t, `{"following":true}`, w.Body.String())
				assert.Equal(t, []string{tt.expectedTopic}, env.notifier.followed)
			} else {
				assert.Empty(t, env.notifier.followed)
			}
			assert.NoError(t, env.mock.ExpectationsWereMet())
		})
	}
}

func TestUnfollowTopic(t *testing.T) {
	env := setupTestController(t)
	env.mock.ExpectExec(`DELETE FROM "followed_topic"`).WillReturnResult(sqlmock.NewResult(0, 1))

	c, w := SetupTestContext(http.MethodDelete, "/user/topics", `{"topic":"Grief"}`)
	SetAuthenticatedUser(c, MockUser())
	env.ctl.UnfollowTopic(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"following":false}`, w.Body.String())
	assert.Equal(t, []string{"grief"}, env.notifier.unfollowed)
}

func TestGetTopicFeed(t *testing.T) {
	env := setupTestController(t)
	env.mock.ExpectQuery(`SELECT COUNT.*s.tags && ARRAY\(SELECT topic FROM followed_topic WHERE user_profile_id = 1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	env.mock.ExpectQuery(`s.tags && ARRAY`).WillReturnRows(MockSituationRows(5))

	c, w := SetupTestContext(http.MethodGet, "/user/topics/feed?page=1", "")
	SetAuthenticatedUser(c, MockUser())
	env.ctl.GetTopicFeed(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalPages":1`)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
