package services

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/models"
)

var ErrGoogleSignInDisabled = errors.New("google sign-in is not configured")

type payloadValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleTokenVerifier checks Google ID tokens issued for the web client.
type GoogleTokenVerifier struct {
	clientID string
	validate payloadValidator
}

func NewGoogleTokenVerifier(clientID string) *GoogleTokenVerifier {
	return &GoogleTokenVerifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify validates the token and returns the profile to sign in with.
// Tokens without a verified email are rejected.
func (v *GoogleTokenVerifier) Verify(ctx context.Context, token string) (models.UserProfileSignIn, error) {
	if v.clientID == "" {
		return models.UserProfileSignIn{}, ErrGoogleSignInDisabled
	}
	if strings.TrimSpace(token) == "" {
		return models.UserProfileSignIn{}, apperrors.Invalid("idToken", "idToken is required")
	}

	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return models.UserProfileSignIn{}, apperrors.ErrAuthRequired
	}

	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return models.UserProfileSignIn{}, apperrors.ErrAuthRequired
	}

	signIn := models.UserProfileSignIn{Email: strings.ToLower(email)}
	if name, ok := payload.Claims["name"].(string); ok && name != "" {
		signIn.Name = &name
	}
	if picture, ok := payload.Claims["picture"].(string); ok && picture != "" {
		signIn.Image = &picture
	}
	return signIn, nil
}
