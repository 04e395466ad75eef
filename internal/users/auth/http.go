package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/constants"
	"github.com/openshelf/openshelf/internal/platform/middleware"
	requestutil "github.com/openshelf/openshelf/internal/platform/request"
	"github.com/openshelf/openshelf/internal/platform/respond"
)

type Handler struct {
	service *Service

	// secureCookies marks the session cookie Secure; off only in local
	// development where the API serves plain HTTP.
	secureCookies bool
}

func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{service: service, secureCookies: secureCookies}
}

// Routes returns a [chi.Router] configured with the auth endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/google", handler.login)
	router.Get("/google/callback", handler.callback)
	router.Get("/status", handler.status)

	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)

		authed.Get("/logout", handler.logout)
		authed.Get("/profile", handler.profile)
	})

	return router
}

// GET /auth/google
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	redirectTo := request.URL.Query().Get("redirect_to")

	url, err := handler.service.LoginURL(redirectTo)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.Redirect(writer, request, url, http.StatusFound)
}

// GET /auth/google/callback
func (handler *Handler) callback(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	// The provider reports user denial and provider-side failures through
	// the error parameter instead of a code.
	if providerError := query.Get("error"); providerError != "" {
		respond.Error(writer, request, apperr.Unauthorized("Sign-in was cancelled or denied"))
		return
	}

	state, code := query.Get("state"), query.Get("code")
	if state == "" || code == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing sign-in parameters"))
		return
	}

	session, err := handler.service.HandleCallback(request.Context(), state, code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, session.Token)

	if session.RedirectTo != "" {
		http.Redirect(writer, request, session.RedirectTo, http.StatusFound)
		return
	}

	respond.OK(writer, "Signed in successfully", session.User)
}

// GET /auth/logout
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil {
		if err := handler.service.Logout(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	handler.clearSessionCookie(writer)
	respond.OK(writer, "Signed out successfully", nil)
}

// GET /auth/profile
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Profile(request.Context(), claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Profile retrieved successfully", user)
}

// GET /auth/status
func (handler *Handler) status(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)
	if claims == nil {
		respond.OK(writer, "Session status", &Status{Authenticated: false})
		return
	}

	user, err := handler.service.Profile(request.Context(), claims)
	if err != nil {
		// A dangling session reads as signed out, not as an error.
		respond.OK(writer, "Session status", &Status{Authenticated: false})
		return
	}

	respond.OK(writer, "Session status", &Status{Authenticated: true, User: user})
}

func (handler *Handler) setSessionCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(constants.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
