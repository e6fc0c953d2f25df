package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSession derives the user id from a JWT access token issued by
// the auth provider. The token is not signature-verified here: the
// client has no signing secret, and the remote store re-checks the
// token on every call. Expiry is honored so a stale session reads as
// signed-out rather than producing doomed requests.
type TokenSession struct {
	token   string
	subject string
	expiry  time.Time
}

// NewTokenSession parses token and returns a session source. An
// unparseable token or one without a subject claim yields a session
// with no user.
func NewTokenSession(token string) *TokenSession {
	s := &TokenSession{token: token}
	if token == "" {
		return s
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return &TokenSession{}
	}
	s.subject = claims.Subject
	if claims.ExpiresAt != nil {
		s.expiry = claims.ExpiresAt.Time
	}
	return s
}

func (s *TokenSession) UserID() (string, bool) {
	if s.subject == "" {
		return "", false
	}
	if !s.expiry.IsZero() && time.Now().After(s.expiry) {
		return "", false
	}
	return s.subject, true
}

func (s *TokenSession) AccessToken() string {
	if _, ok := s.UserID(); !ok {
		return ""
	}
	return s.token
}
