package kinto

import (
	"encoding/base64"
	"net/http"
	"strings"
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

// HeaderAuth sends a prebuilt Authorization header value verbatim.
type HeaderAuth struct {
	Value string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", a.Value)
}

// NewAuthenticator builds an authenticator from a raw credential. A
// credential already carrying a Bearer prefix passes through verbatim;
// anything else is base64-encoded and sent as basic auth.
func NewAuthenticator(credential string) Authenticator {
	if credential == "" {
		return &NoAuth{}
	}
	if strings.HasPrefix(credential, "Bearer ") {
		return &HeaderAuth{Value: credential}
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(credential))
	return &HeaderAuth{Value: "Basic " + encoded}
}
