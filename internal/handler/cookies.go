package handler

import (
	"net/http"
	"time"

	"videotube/internal/model"
)

// CookieConfig controls the attributes of the token cookies.
type CookieConfig struct {
	Secure     bool
	SameSite   http.SameSite
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c CookieConfig) setTokens(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, c.cookie(model.AccessTokenCookie, accessToken, int(c.AccessTTL.Seconds())))
	http.SetCookie(w, c.cookie(model.RefreshTokenCookie, refreshToken, int(c.RefreshTTL.Seconds())))
}

func (c CookieConfig) clearTokens(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(model.AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(model.RefreshTokenCookie, "", -1))
}

func (c CookieConfig) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}
