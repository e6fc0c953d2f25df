// Package auth exposes the authenticated session to the SDK. The
// engine treats "no user id" as a disabled state for every remote
// mutation path.
package auth

// SessionSource reports the active user session, if any.
type SessionSource interface {
	// UserID returns the authenticated user id and whether a session
	// is currently available.
	UserID() (string, bool)

	// AccessToken returns the bearer token for remote calls, or ""
	// when no session is available.
	AccessToken() string
}

// StaticSession is a fixed session, useful for tests and server-side
// callers that already resolved the user.
type StaticSession struct {
	User  string
	Token string
}

func (s StaticSession) UserID() (string, bool) { return s.User, s.User != "" }
func (s StaticSession) AccessToken() string    { return s.Token }

// NoSession is a SessionSource with no authenticated user.
var NoSession SessionSource = StaticSession{}
