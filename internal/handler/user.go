package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"videotube/internal/httputil"
	"videotube/internal/model"
	"videotube/internal/transport/http/middleware"
)

// AccountService is the part of the service layer the user endpoints use.
type AccountService interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdateAccountDetails(ctx context.Context, id int64, req *model.UpdateAccountRequest) (*model.User, error)
	UpdateAvatar(ctx context.Context, id int64, localPath string) (*model.User, error)
	UpdateCoverImage(ctx context.Context, id int64, localPath string) (*model.User, error)
	GetChannelProfile(ctx context.Context, username string, viewerID *int64) (*model.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, id int64) (*model.WatchHistoryResponse, error)
}

type UserHandler struct {
	users  AccountService
	stager *Stager
}

func NewUserHandler(users AccountService, stager *Stager) *UserHandler {
	return &UserHandler{
		users:  users,
		stager: stager,
	}
}

// CurrentUser returns the authenticated user
// GET /users/current-user
func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteAppError(w, r, model.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// UpdateAccount
// PATCH /users/update-account
func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteAppError(w, r, model.ErrUnauthorized)
		return
	}

	var req model.UpdateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.users.UpdateAccountDetails(r.Context(), userID, &req)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// UpdateAvatar
// PATCH /users/avatar
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.users.UpdateAvatar)
}

// UpdateCoverImage
// PATCH /users/cover-image
func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.users.UpdateCoverImage)
}

func (h *UserHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	apply func(ctx context.Context, id int64, localPath string) (*model.User, error),
) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteAppError(w, r, model.ErrUnauthorized)
		return
	}

	if err := parseMultipart(w, r, singleImageLimit); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	path, err := h.stager.Stage(r, field)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	defer removeStaged(r, path)

	user, err := apply(r.Context(), userID, path)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// ChannelProfile returns a channel with subscription counts. The caller
// may be anonymous.
// GET /users/c/{username}
func (h *UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	profile, err := h.users.GetChannelProfile(r.Context(), chi.URLParam(r, "username"), viewerID)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// WatchHistory
// GET /users/history
func (h *UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteAppError(w, r, model.ErrUnauthorized)
		return
	}

	history, err := h.users.GetWatchHistory(r.Context(), userID)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, history)
}
