package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"videotube/internal/httputil"
	"videotube/internal/model"
	"videotube/internal/transport/http/middleware"
)

// SessionService is the part of the service layer the auth endpoints use.
type SessionService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Logout(ctx context.Context, userID int64) error
	ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error
}

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	auth    SessionService
	stager  *Stager
	cookies CookieConfig
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(auth SessionService, stager *Stager, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		stager:  stager,
		cookies: cookies,
	}
}

// Register handles multipart sign-up with a required avatar and an optional
// cover image.
// POST /users/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, registerLimit); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	avatarPath, err := h.stager.Stage(r, "avatar")
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	defer removeStaged(r, avatarPath)

	coverPath, err := h.stager.Stage(r, "coverImage")
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	defer removeStaged(r, coverPath)

	req := model.RegisterRequest{
		FullName:       r.FormValue("fullName"),
		Email:          r.FormValue("email"),
		Username:       r.FormValue("username"),
		Password:       r.FormValue("password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	}

	user, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

// Login handles user login
// POST /users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	h.cookies.setTokens(w, resp.AccessToken, resp.RefreshToken)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Refresh rotates the refresh token taken from the cookie or, failing that,
// from the JSON body.
// POST /users/refresh-token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(model.RefreshTokenCookie); err == nil {
		token = cookie.Value
	}

	if token == "" {
		var req model.RefreshRequest
		if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			httputil.WriteBadRequest(w, "Invalid request body")
			return
		}
		token = req.RefreshToken
	}

	pair, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	h.cookies.setTokens(w, pair.AccessToken, pair.RefreshToken)
	httputil.WriteJSON(w, http.StatusOK, pair)
}

// Logout drops the stored refresh token and clears both cookies.
// POST /users/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteAppError(w, r, model.ErrUnauthorized)
		return
	}

	if err := h.auth.Logout(r.Context(), userID); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	h.cookies.clearTokens(w)
	httputil.WriteJSON(w, http.StatusOK, struct{}{})
}

// ChangePassword replies with an empty object, like Logout.
// POST /users/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteAppError(w, r, model.ErrUnauthorized)
		return
	}

	var req model.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.auth.ChangePassword(r.Context(), userID, &req); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, struct{}{})
}

// decodeJSON reads a small JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB is plenty for JSON
	return json.NewDecoder(r.Body).Decode(dst)
}
