package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"videotube/internal/httputil"
	"videotube/internal/model"
	"videotube/internal/transport/http/middleware"
)

// =============================================================================
// STUB SERVICES
// =============================================================================

type stubSessionService struct {
	registerFn       func(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	loginFn          func(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	refreshFn        func(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	logoutFn         func(ctx context.Context, userID int64) error
	changePasswordFn func(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error
}

func (s *stubSessionService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	return s.registerFn(ctx, req)
}

func (s *stubSessionService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	return s.loginFn(ctx, req)
}

func (s *stubSessionService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubSessionService) Logout(ctx context.Context, userID int64) error {
	return s.logoutFn(ctx, userID)
}

func (s *stubSessionService) ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error {
	return s.changePasswordFn(ctx, userID, req)
}

type stubAccountService struct {
	getByIDFn        func(ctx context.Context, id int64) (*model.User, error)
	updateAccountFn  func(ctx context.Context, id int64, req *model.UpdateAccountRequest) (*model.User, error)
	updateAvatarFn   func(ctx context.Context, id int64, localPath string) (*model.User, error)
	updateCoverFn    func(ctx context.Context, id int64, localPath string) (*model.User, error)
	channelProfileFn func(ctx context.Context, username string, viewerID *int64) (*model.ChannelProfile, error)
	watchHistoryFn   func(ctx context.Context, id int64) (*model.WatchHistoryResponse, error)
}

func (s *stubAccountService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubAccountService) UpdateAccountDetails(ctx context.Context, id int64, req *model.UpdateAccountRequest) (*model.User, error) {
	return s.updateAccountFn(ctx, id, req)
}

func (s *stubAccountService) UpdateAvatar(ctx context.Context, id int64, localPath string) (*model.User, error) {
	return s.updateAvatarFn(ctx, id, localPath)
}

func (s *stubAccountService) UpdateCoverImage(ctx context.Context, id int64, localPath string) (*model.User, error) {
	return s.updateCoverFn(ctx, id, localPath)
}

func (s *stubAccountService) GetChannelProfile(ctx context.Context, username string, viewerID *int64) (*model.ChannelProfile, error) {
	return s.channelProfileFn(ctx, username, viewerID)
}

func (s *stubAccountService) GetWatchHistory(ctx context.Context, id int64) (*model.WatchHistoryResponse, error) {
	return s.watchHistoryFn(ctx, id)
}

type stubSubscriptionService struct {
	subscribeFn   func(ctx context.Context, subscriberID int64, channel string) (*model.SubscriptionStatus, error)
	unsubscribeFn func(ctx context.Context, subscriberID int64, channel string) (*model.SubscriptionStatus, error)
}

func (s *stubSubscriptionService) Subscribe(ctx context.Context, subscriberID int64, channel string) (*model.SubscriptionStatus, error) {
	return s.subscribeFn(ctx, subscriberID, channel)
}

func (s *stubSubscriptionService) Unsubscribe(ctx context.Context, subscriberID int64, channel string) (*model.SubscriptionStatus, error) {
	return s.unsubscribeFn(ctx, subscriberID, channel)
}

// =============================================================================
// HELPERS
// =============================================================================

var testCookies = CookieConfig{
	Secure:     true,
	SameSite:   http.SameSiteNoneMode,
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 240 * time.Hour,
}

// asUser stands in for the auth middleware.
func asUser(id int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, id)))
		})
	}
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) httputil.ErrorDetail {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func cookieByName(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func serve(r chi.Router, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
