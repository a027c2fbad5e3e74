package controllers

import (
	"bytes"
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"

	"github.com/WWJD/logger"
	"github.com/WWJD/middlewares"
	"github.com/WWJD/models"
	"github.com/WWJD/services"
	"github.com/WWJD/store"
)

const testSecret = "test-secret-key"

type fakeSubmitter struct {
	submission models.Submission
	err        error
	calls      []string
}

func (f *fakeSubmitter) Submit(ctx context.Context, text string) (models.Submission, error) {
	f.calls = append(f.calls, text)
	return f.submission, f.err
}

type fakeModerator struct {
	result services.ModerationResult
	err    error
}

func (f *fakeModerator) Moderate(ctx context.Context, text string) (services.ModerationResult, error) {
	return f.result, f.err
}

type fakeVerifier struct {
	signIn models.UserProfileSignIn
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (models.UserProfileSignIn, error) {
	return f.signIn, f.err
}

type fakeNotifier struct {
	mu         sync.Mutex
	ratings    []models.Rating
	prayed     []int
	followed   []string
	unfollowed []string
	tokens     []string
}

func (f *fakeNotifier) RatingCreated(rating models.Rating) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings = append(f.ratings, rating)
}

func (f *fakeNotifier) Prayed(prayerRequestID int, result models.PrayedResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prayed = append(f.prayed, prayerRequestID)
}

func (f *fakeNotifier) TopicFollowed(userID int, topic string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followed = append(f.followed, topic)
}

func (f *fakeNotifier) TopicUnfollowed(userID int, topic string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unfollowed = append(f.unfollowed, topic)
}

func (f *fakeNotifier) PushTokenRegistered(userID int, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

type testEnv struct {
	ctl       *Controller
	mock      sqlmock.Sqlmock
	submitter *fakeSubmitter
	moderator *fakeModerator
	verifier  *fakeVerifier
	notifier  *fakeNotifier
}

// setupTestController wires a Controller to a mock database and fake
// services.
func setupTestController(t *testing.T) *testEnv {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		mock:      mock,
		submitter: &fakeSubmitter{},
		moderator: &fakeModerator{result: services.ModerationResult{Allowed: true}},
		verifier:  &fakeVerifier{},
		notifier:  &fakeNotifier{},
	}
	env.ctl = New(Deps{
		Store:       store.New(goqu.New("postgres", db)),
		Submissions: env.submitter,
		Moderator:   env.moderator,
		Verifier:    env.verifier,
		Notifier:    env.notifier,
		Secret:      testSecret,
		Log:         logger.Nop(),
	})
	return env
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

// SetAuthenticatedUser does what the CheckAuth middleware does
func SetAuthenticatedUser(c *gin.Context, user models.UserProfile) {
	middlewares.SetCurrentUser(c, user)
}
