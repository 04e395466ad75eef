package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/constants"
	"github.com/openshelf/openshelf/internal/platform/dberr"
	"github.com/openshelf/openshelf/internal/platform/sec"
	"github.com/openshelf/openshelf/pkg/entityid"
)

// Session is the outcome of a completed sign-in: the opaque token for the
// cookie, the account, and the post-login redirect target carried through
// the OAuth state.
type Session struct {
	Token      string
	User       *User
	RedirectTo string
}

// Service runs the sign-in flow end to end: state signing, the code
// exchange, account provisioning, and session issuance.
type Service struct {
	users       Repository
	sessions    SessionRepository
	provider    IdentityProvider
	state       *sec.StateSigner
	adminEmails map[string]bool
	logger      *slog.Logger
}

// NewService wires the auth service. adminEmails is the allow-list of
// addresses granted the admin role at sign-in.
func NewService(users Repository, sessions SessionRepository, provider IdentityProvider, state *sec.StateSigner, adminEmails []string, logger *slog.Logger) *Service {
	allow := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		allow[email] = true
	}

	return &Service{
		users:       users,
		sessions:    sessions,
		provider:    provider,
		state:       state,
		adminEmails: allow,
		logger:      logger,
	}
}

// LoginURL returns the identity provider's consent URL with a signed state
// embedding the post-login redirect target.
func (service *Service) LoginURL(redirectTo string) (string, error) {
	state, err := service.state.Sign(redirectTo)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return service.provider.AuthURL(state), nil
}

// HandleCallback completes the sign-in: it verifies the returned state,
// exchanges the code for a profile, provisions (or refreshes) the account,
// and issues a session.
func (service *Service) HandleCallback(ctx context.Context, state, code string) (*Session, error) {
	redirectTo, err := service.state.Verify(state)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired sign-in state")
	}

	profile, err := service.provider.Exchange(ctx, code)
	if err != nil {
		service.logger.Warn("auth_exchange_failed", slog.String("error", err.Error()))
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}
	if !profile.EmailVerified {
		return nil, apperr.Unauthorized("Email address is not verified with the identity provider")
	}

	user, err := service.provision(ctx, profile)
	if err != nil {
		return nil, err
	}

	token, err := sec.NewSessionToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	claims := &sec.SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}
	if err := service.sessions.Save(ctx, token, claims, constants.SessionTTL); err != nil {
		return nil, apperr.Internal(err)
	}

	service.logger.Info("user_signed_in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return &Session{Token: token, User: user, RedirectTo: redirectTo}, nil
}

// Logout revokes the session behind the token. Unknown tokens succeed
// silently; logout is idempotent.
func (service *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return service.sessions.Revoke(ctx, token)
}

// Profile returns the account behind an authenticated session.
func (service *Service) Profile(ctx context.Context, claims *sec.SessionClaims) (*User, error) {
	user, err := service.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// VerifySession implements [middleware.SessionVerifier]: it resolves a
// cookie token into claims, or an error for unknown and expired sessions.
func (service *Service) VerifySession(r *http.Request, token string) (*sec.SessionClaims, error) {
	return service.sessions.Find(r.Context(), token)
}

// provision creates the account on first sign-in and refreshes its profile
// afterwards. Allow-listed addresses are (re-)granted the admin role, so
// adding an email to the list takes effect on the user's next sign-in.
func (service *Service) provision(ctx context.Context, profile *Profile) (*User, error) {
	role := sec.RoleMember
	if service.adminEmails[normalizeEmail(profile.Email)] {
		role = sec.RoleAdmin
	}

	user := &User{
		ID:          entityid.New(),
		GoogleID:    profile.Subject,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
		Role:        role,
	}
	if err := service.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	if role == sec.RoleAdmin && user.Role != sec.RoleAdmin {
		if err := service.users.SetRole(ctx, user.ID, sec.RoleAdmin); err != nil {
			return nil, err
		}
		user.Role = sec.RoleAdmin

		service.logger.Info("user_promoted_to_admin", slog.String("user_id", user.ID))
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
