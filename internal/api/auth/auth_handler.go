package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Rayyy-dev/User-Management/config"
	"github.com/Rayyy-dev/User-Management/internal/api"
	"github.com/Rayyy-dev/User-Management/internal/api/user"
	"github.com/Rayyy-dev/User-Management/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService  AuthService
	userService  user.UserService
	logger       *slog.Logger
	cookieName   string
	secureCookie bool
	sessionTTL   time.Duration
}

func NewHandlerImpl(authService AuthService, userService user.UserService, cfg config.SessionConfig, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService:  authService,
		userService:  userService,
		logger:       logger,
		cookieName:   cfg.CookieName,
		secureCookie: cfg.SecureCookie,
		sessionTTL:   cfg.TTL,
	}
}

func (h *HandlerImpl) sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// Login authenticates by username or email plus password. On success it
// sets the session cookie and returns an access token for API clients.
// Failures are always a generic 401 so callers cannot probe which
// accounts exist.
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Credential == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Credential and password are required")
		return
	}

	token, accessToken, err := h.authService.Login(ctx, req.Credential, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, h.sessionCookie(token.String(), int(h.sessionTTL/time.Second)))
	api.WriteJSONResponse(w, r, http.StatusOK, types.LoginResponse{
		AccessToken: accessToken,
		Message:     "Logged in successfully",
	})
}

// Logout ends the current session and clears the cookie. Logging out
// without a session still succeeds.
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Logout"))

	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if token, err := uuid.Parse(cookie.Value); err == nil {
			if err := h.authService.Logout(ctx, token); err != nil {
				l.ErrorContext(ctx, "Failed to destroy session", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusInternalServerError, "Logout failed")
				return
			}
		}
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Logged out successfully",
	})
}

// GetProfile returns the authenticated user's record.
func (h *HandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetProfile"))

	session, ok := GetSessionFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	u, err := h.userService.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to load profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, u)
}

// UpdateProfile applies partial updates to the authenticated user.
func (h *HandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateProfile"))

	session, ok := GetSessionFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var params types.UpdateProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.UpdateProfile(ctx, session.UserID, params); err != nil {
		switch {
		case types.IsValidation(err):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrUnauthenticated):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Current password incorrect")
		case errors.Is(err, types.ErrConflictUsername):
			api.ErrorResponse(w, r, http.StatusConflict, "Username already exists")
		case errors.Is(err, types.ErrConflictEmail):
			api.ErrorResponse(w, r, http.StatusConflict, "Email already exists")
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		default:
			l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Profile updated successfully",
	})
}
