package transport

import (
	"net/http"
	"os"
	"strings"
)

// Authenticator applies credentials to outgoing requests.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth applies nothing.
type NoAuth struct{}

// Apply implements Authenticator.
func (NoAuth) Apply(*http.Request) {}

// BearerAuth sends a bearer token.
type BearerAuth struct {
	Token string
}

// Apply implements Authenticator.
func (a BearerAuth) Apply(req *http.Request) {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
}

// HeaderAuth sends a token in a custom header.
type HeaderAuth struct {
	Header string
	Token  string
}

// Apply implements Authenticator.
func (a HeaderAuth) Apply(req *http.Request) {
	if a.Header != "" && a.Token != "" {
		req.Header.Set(a.Header, a.Token)
	}
}

// FromEnv builds an authenticator from a token held in the environment
// variable tokenEnv. With header empty the token is sent as a bearer token.
// It returns NoAuth when the variable is unset or empty.
func FromEnv(tokenEnv, header string) Authenticator {
	if tokenEnv == "" {
		return NoAuth{}
	}
	token := strings.TrimSpace(os.Getenv(tokenEnv))
	if token == "" {
		return NoAuth{}
	}
	if header == "" || strings.EqualFold(header, "Authorization") {
		return BearerAuth{Token: token}
	}
	return HeaderAuth{Header: header, Token: token}
}
