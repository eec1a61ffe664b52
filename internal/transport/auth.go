package transport

import (
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {
	// No authentication applied
}

// BasicAuth implements HTTP Basic authentication, used by both the registry
// and the facility registry feeds.
type BasicAuth struct {
	User     string
	Password string
}

// Apply implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Apply(req *http.Request) {
	if a.User == "" && a.Password == "" {
		return
	}
	req.SetBasicAuth(a.User, a.Password)
}

// BearerAuth implements Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) {
	if a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// NewBasicAuth returns BasicAuth, or NoAuth when no credentials are set.
func NewBasicAuth(user, password string) Authenticator {
	if user == "" && password == "" {
		return &NoAuth{}
	}
	return &BasicAuth{User: user, Password: password}
}
