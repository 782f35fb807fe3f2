package handler

import (
	"net/http"
	"time"
)

// cookieMaxAge keeps client state effectively forever.
const cookieMaxAge = 10 * 365 * 24 * time.Hour

// CookieStore is browser-persisted client state: each key is a long-lived
// cookie. Values set during a request are visible to later reads in that
// same request, before the browser has echoed them back.
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	secure  bool
	written map[string]string
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *CookieStore {
	return &CookieStore{w: w, r: r, secure: secure, written: make(map[string]string)}
}

func (s *CookieStore) Get(key string) (string, bool, error) {
	if v, ok := s.written[key]; ok {
		return v, true, nil
	}
	c, err := s.r.Cookie(key)
	if err == http.ErrNoCookie {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return c.Value, c.Value != "", nil
}

func (s *CookieStore) Set(key, value string) error {
	if err := (&http.Cookie{Name: key, Value: value}).Valid(); err != nil {
		return err
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.written[key] = value
	return nil
}

// has reports whether the browser sent key with this request.
func (s *CookieStore) has(key string) bool {
	c, err := s.r.Cookie(key)
	return err == nil && c.Value != ""
}

// requestBrowsing reads the browsing context from the request headers.
type requestBrowsing struct {
	r *http.Request
}

func (b requestBrowsing) Referrer() string {
	return b.r.Referer()
}
