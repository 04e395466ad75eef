package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// userinfoEndpoint returns the signed-in user's profile for the granted
// scopes.
const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the subset of the identity provider's userinfo the service
// needs to provision an account.
type Profile struct {
	Subject       string
	Email         string
	EmailVerified bool
	DisplayName   string
	AvatarURL     string
}

// IdentityProvider abstracts the OAuth2 dance so the service (and its
// tests) never talk to Google directly.
type IdentityProvider interface {
	// AuthURL builds the provider's consent URL carrying the signed state.
	AuthURL(state string) string

	// Exchange trades the callback authorization code for the user's
	// profile.
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// GoogleProvider implements [IdentityProvider] against Google's OAuth2
// endpoints.
type GoogleProvider struct {
	oauth *oauth2.Config
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (provider *GoogleProvider) AuthURL(state string) string {
	return provider.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (provider *GoogleProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := provider.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: code exchange failed: %w", err)
	}

	response, err := provider.oauth.Client(ctx, token).Get(userinfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("auth: userinfo request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: userinfo request returned status %d", response.StatusCode)
	}

	var payload struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("auth: failed to decode userinfo: %w", err)
	}

	return &Profile{
		Subject:       payload.ID,
		Email:         payload.Email,
		EmailVerified: payload.VerifiedEmail,
		DisplayName:   payload.Name,
		AvatarURL:     payload.Picture,
	}, nil
}
