package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/qaforum/apiserver/config"
	"github.com/qaforum/apiserver/types"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	sessionCookieName = "qaforum_session"
)

type contextKey string

const contextViewerKey contextKey = "viewer"

// sessionClaims is the JWT payload of a session token.
type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies signed session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewSessions constructs Sessions from the auth configuration.
func NewSessions(cfg config.AuthConfig) *Sessions {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Sessions{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		secure: cfg.SecureCookie,
		now:    time.Now,
	}
}

// Issue signs a session token for user.
func (s *Sessions) Issue(user types.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse verifies tokenString and returns the viewer it identifies.
func (s *Sessions) Parse(tokenString string) (types.Viewer, error) {
	claims := sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return types.Anonymous, err
	}
	if !token.Valid {
		return types.Anonymous, errors.New("invalid token")
	}
	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return types.Anonymous, errors.New("invalid subject")
	}
	return types.Viewer{UserID: userID, Username: claims.Username}, nil
}

// SetCookie stores token in the session cookie.
func (s *Sessions) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware attaches the request's viewer to its context. Requests without
// a valid token continue as anonymous.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := types.Anonymous
		if tokenString, err := sessionToken(r); err == nil {
			if parsed, err := s.Parse(tokenString); err == nil {
				viewer = parsed
			}
		}
		ctx := context.WithValue(r.Context(), contextViewerKey, viewer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ViewerFromContext returns the viewer attached by Sessions.Middleware.
func ViewerFromContext(ctx context.Context) types.Viewer {
	if viewer, ok := ctx.Value(contextViewerKey).(types.Viewer); ok {
		return viewer
	}
	return types.Anonymous
}

// sessionToken prefers an Authorization header over the session cookie.
func sessionToken(r *http.Request) (string, error) {
	if token, err := bearerToken(r); err == nil {
		return token, nil
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cookie.Value) == "" {
		return "", errors.New("empty session cookie")
	}
	return cookie.Value, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
