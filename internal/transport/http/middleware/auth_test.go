package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"videotube/internal/model"
)

type stubVerifier map[string]int64

func (s stubVerifier) VerifyAccess(token string) (int64, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("invalid token")
}

func runAuth(mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, *int64, bool) {
	var (
		seenID int64
		found  bool
		called bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seenID, found = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)
	if found {
		return rr, &seenID, called
	}
	return rr, nil, called
}

func TestAuthMiddleware(t *testing.T) {
	verifier := stubVerifier{"good": 7, "other": 9}

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantUserID int64
	}{
		{"bearer header", "Bearer good", "", http.StatusNoContent, 7},
		{"lowercase scheme", "bearer good", "", http.StatusNoContent, 7},
		{"cookie fallback", "", "good", http.StatusNoContent, 7},
		{"header wins over cookie", "Bearer other", "good", http.StatusNoContent, 9},
		{"non bearer header falls back to cookie", "Basic Zm9vOmJhcg==", "good", http.StatusNoContent, 7},
		{"missing token", "", "", http.StatusUnauthorized, 0},
		{"invalid token", "Bearer bad", "", http.StatusUnauthorized, 0},
		{"invalid cookie", "", "bad", http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: model.AccessTokenCookie, Value: tt.cookie})
			}

			rr, userID, called := runAuth(AuthMiddleware(verifier), req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusNoContent {
				assert.False(t, called, "next must not run")
				assert.Contains(t, rr.Body.String(), `"error"`)
				return
			}
			if assert.NotNil(t, userID) {
				assert.Equal(t, tt.wantUserID, *userID)
			}
		})
	}
}

func TestAuthMiddleware_ErrorCodes(t *testing.T) {
	verifier := stubVerifier{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr, _, _ := runAuth(AuthMiddleware(verifier), req)
	assert.Contains(t, rr.Body.String(), model.CodeTokenMissing)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rr, _, _ = runAuth(AuthMiddleware(verifier), req)
	assert.Contains(t, rr.Body.String(), model.CodeTokenInvalid)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	verifier := stubVerifier{"good": 7}

	tests := []struct {
		name       string
		header     string
		wantUserID *int64
	}{
		{"anonymous", "", nil},
		{"invalid token is ignored", "Bearer bad", nil},
		{"valid token", "Bearer good", func() *int64 { v := int64(7); return &v }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/c/alice", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rr, userID, called := runAuth(OptionalAuthMiddleware(verifier), req)

			assert.True(t, called)
			assert.Equal(t, http.StatusNoContent, rr.Code)
			assert.Equal(t, tt.wantUserID, userID)
		})
	}
}
