package auth_test

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/dberr"
	"github.com/openshelf/openshelf/internal/platform/sec"
	"github.com/openshelf/openshelf/internal/users/auth"
)

// fakeUsers is an in-memory auth.Repository keyed by Google subject.
type fakeUsers struct {
	byGoogleID map[string]*auth.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byGoogleID: make(map[string]*auth.User)}
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	for _, u := range f.byGoogleID {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeUsers) Upsert(_ context.Context, u *auth.User) error {
	if existing, ok := f.byGoogleID[u.GoogleID]; ok {
		existing.Email = u.Email
		existing.DisplayName = u.DisplayName
		existing.AvatarURL = u.AvatarURL
		u.ID = existing.ID
		u.Role = existing.Role
		u.CreatedAt = existing.CreatedAt
		return nil
	}
	u.CreatedAt = time.Now()
	clone := *u
	f.byGoogleID[u.GoogleID] = &clone
	return nil
}

func (f *fakeUsers) SetRole(_ context.Context, id string, role sec.UserRole) error {
	for _, u := range f.byGoogleID {
		if u.ID == id {
			u.Role = role
			return nil
		}
	}
	return dberr.ErrNotFound
}

// fakeSessions is an in-memory auth.SessionRepository.
type fakeSessions struct {
	sessions map[string]*sec.SessionClaims
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]*sec.SessionClaims)}
}

func (f *fakeSessions) Save(_ context.Context, token string, claims *sec.SessionClaims, _ time.Duration) error {
	f.sessions[sec.HashToken(token)] = claims
	return nil
}

func (f *fakeSessions) Find(_ context.Context, token string) (*sec.SessionClaims, error) {
	claims, ok := f.sessions[sec.HashToken(token)]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return claims, nil
}

func (f *fakeSessions) Revoke(_ context.Context, token string) error {
	delete(f.sessions, sec.HashToken(token))
	return nil
}

// fakeProvider is a canned auth.IdentityProvider.
type fakeProvider struct {
	profile *auth.Profile
}

func (f *fakeProvider) AuthURL(state string) string {
	return "https://accounts.example.com/consent?state=" + state
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*auth.Profile, error) {
	if code != "good-code" {
		return nil, assert.AnError
	}
	return f.profile, nil
}

type fixture struct {
	service  *auth.Service
	users    *fakeUsers
	sessions *fakeSessions
	signer   *sec.StateSigner
}

func newFixture(profile *auth.Profile, adminEmails []string) *fixture {
	users := newFakeUsers()
	sessions := newFakeSessions()
	signer := sec.NewStateSigner("test-secret-at-least-32-bytes-long", "openshelf.app", 10*time.Minute)

	service := auth.NewService(users, sessions, &fakeProvider{profile: profile},
		signer, adminEmails, slog.New(slog.DiscardHandler))

	return &fixture{service: service, users: users, sessions: sessions, signer: signer}
}

func verifiedProfile() *auth.Profile {
	return &auth.Profile{
		Subject:       "google-subject-1",
		Email:         "reader@example.com",
		EmailVerified: true,
		DisplayName:   "Avid Reader",
		AvatarURL:     "https://lh3.example.com/photo.jpg",
	}
}

/*
TestService_HandleCallback covers the full sign-in: state verification,
account provisioning, and session issuance.
*/
func TestService_HandleCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions_member_and_issues_session", func(t *testing.T) {
		f := newFixture(verifiedProfile(), nil)

		state, err := f.signer.Sign("/books")
		require.NoError(t, err)

		session, err := f.service.HandleCallback(ctx, state, "good-code")
		require.NoError(t, err)

		assert.NotEmpty(t, session.Token)
		assert.Equal(t, "/books", session.RedirectTo)
		assert.Equal(t, "reader@example.com", session.User.Email)
		assert.Equal(t, sec.RoleMember, session.User.Role)
		assert.Len(t, session.User.ID, 24)

		// The issued token resolves to the account's claims.
		request := httptest.NewRequest("GET", "/", nil)
		claims, err := f.service.VerifySession(request, session.Token)
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, claims.UserID)
		assert.Equal(t, string(sec.RoleMember), claims.Role)
	})

	t.Run("allow_listed_email_becomes_admin", func(t *testing.T) {
		f := newFixture(verifiedProfile(), []string{"reader@example.com"})

		state, err := f.signer.Sign("")
		require.NoError(t, err)

		session, err := f.service.HandleCallback(ctx, state, "good-code")
		require.NoError(t, err)
		assert.Equal(t, sec.RoleAdmin, session.User.Role)
	})

	t.Run("existing_member_promoted_on_next_sign_in", func(t *testing.T) {
		profile := verifiedProfile()

		// First sign-in before the allow-list entry existed.
		first := newFixture(profile, nil)
		state, err := first.signer.Sign("")
		require.NoError(t, err)
		session, err := first.service.HandleCallback(ctx, state, "good-code")
		require.NoError(t, err)
		require.Equal(t, sec.RoleMember, session.User.Role)

		// Same store, now with the email allow-listed.
		promoted := auth.NewService(first.users, first.sessions, &fakeProvider{profile: profile},
			first.signer, []string{"reader@example.com"}, slog.New(slog.DiscardHandler))

		state, err = first.signer.Sign("")
		require.NoError(t, err)
		session, err = promoted.HandleCallback(ctx, state, "good-code")
		require.NoError(t, err)
		assert.Equal(t, sec.RoleAdmin, session.User.Role)
	})

	t.Run("repeat_sign_in_reuses_account", func(t *testing.T) {
		f := newFixture(verifiedProfile(), nil)

		state, err := f.signer.Sign("")
		require.NoError(t, err)
		firstSession, err := f.service.HandleCallback(ctx, state, "good-code")
		require.NoError(t, err)

		state, err = f.signer.Sign("")
		require.NoError(t, err)
		secondSession, err := f.service.HandleCallback(ctx, state, "good-code")
		require.NoError(t, err)

		assert.Equal(t, firstSession.User.ID, secondSession.User.ID)
		assert.NotEqual(t, firstSession.Token, secondSession.Token)
	})

	t.Run("forged_state_rejected", func(t *testing.T) {
		f := newFixture(verifiedProfile(), nil)

		_, err := f.service.HandleCallback(ctx, "not-a-signed-state", "good-code")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
	})

	t.Run("failed_exchange_rejected", func(t *testing.T) {
		f := newFixture(verifiedProfile(), nil)

		state, err := f.signer.Sign("")
		require.NoError(t, err)

		_, err = f.service.HandleCallback(ctx, state, "bad-code")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
	})

	t.Run("unverified_email_rejected", func(t *testing.T) {
		profile := verifiedProfile()
		profile.EmailVerified = false
		f := newFixture(profile, nil)

		state, err := f.signer.Sign("")
		require.NoError(t, err)

		_, err = f.service.HandleCallback(ctx, state, "good-code")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
	})
}

/*
TestService_Logout verifies revocation and its idempotence.
*/
func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(verifiedProfile(), nil)

	state, err := f.signer.Sign("")
	require.NoError(t, err)
	session, err := f.service.HandleCallback(ctx, state, "good-code")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, session.Token))

	request := httptest.NewRequest("GET", "/", nil)
	_, err = f.service.VerifySession(request, session.Token)
	require.Error(t, err)

	// Revoking again, or with no token, is not an error.
	assert.NoError(t, f.service.Logout(ctx, session.Token))
	assert.NoError(t, f.service.Logout(ctx, ""))
}

/*
TestService_Profile verifies the claims-to-account lookup and its dangling
case.
*/
func TestService_Profile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(verifiedProfile(), nil)

	state, err := f.signer.Sign("")
	require.NoError(t, err)
	session, err := f.service.HandleCallback(ctx, state, "good-code")
	require.NoError(t, err)

	user, err := f.service.Profile(ctx, &sec.SessionClaims{UserID: session.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "Avid Reader", user.DisplayName)

	_, err = f.service.Profile(ctx, &sec.SessionClaims{UserID: "507f1f77bcf86cd799439011"})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
}
