package handler

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/giftportfolio/portfolio/pkg/config"
	"github.com/giftportfolio/portfolio/pkg/logging"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

// AccessTokenCookie carries the hosted backend's session token.
const AccessTokenCookie = "sb-access-token"

type Middleware struct {
	jwtSecret []byte
	content   ports.ContentService
}

func NewMiddleware(cfg *config.Config, content ports.ContentService) *Middleware {
	return &Middleware{
		jwtSecret: []byte(cfg.JWTSecret),
		content:   content,
	}
}

// AdminMiddleware lets through signed-in callers for whom is_admin() holds.
func (m *Middleware) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := accessToken(r)
		if tokenString == "" || len(m.jwtSecret) == 0 {
			deny(w, r, http.StatusUnauthorized, "/login")
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return m.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			deny(w, r, http.StatusUnauthorized, "/login")
			return
		}

		ctx := ports.WithPrincipal(r.Context(), ports.Principal{
			Subject:     claims.Subject,
			AccessToken: tokenString,
		})
		isAdmin, err := m.content.IsAdmin(ctx)
		if err != nil {
			logging.Error().Err(err).Str("subject", claims.Subject).Msg("admin check failed")
			deny(w, r, http.StatusForbidden, "/")
			return
		}
		if !isAdmin {
			deny(w, r, http.StatusForbidden, "/")
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func deny(w http.ResponseWriter, r *http.Request, status int, redirect string) {
	if isAPIRequest(r) {
		writeError(w, status, http.StatusText(status))
		return
	}
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
