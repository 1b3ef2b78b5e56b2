package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"videotube/internal/httputil"
	"videotube/internal/model"
	"videotube/internal/transport/http/middleware"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, subscriberID int64, channelUsername string) (*model.SubscriptionStatus, error)
	Unsubscribe(ctx context.Context, subscriberID int64, channelUsername string) (*model.SubscriptionStatus, error)
}

type SubscriptionHandler struct {
	subscriptions SubscriptionService
}

func NewSubscriptionHandler(subscriptions SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// Subscribe handles POST /subscriptions/c/{username}
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.subscriptions.Subscribe)
}

// Unsubscribe handles DELETE /subscriptions/c/{username}
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.subscriptions.Unsubscribe)
}

func (h *SubscriptionHandler) handle(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, subscriberID int64, channelUsername string) (*model.SubscriptionStatus, error),
) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteAppError(w, r, model.ErrUnauthorized)
		return
	}

	status, err := action(r.Context(), userID, chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, status)
}
