package kinto

import (
	"net/http"
	"testing"
)

func TestNewAuthenticatorBearerPassthrough(t *testing.T) {
	auth := NewAuthenticator("Bearer abc.def.ghi")

	req, _ := http.NewRequest(http.MethodGet, "https://settings.example.net", nil)
	auth.Apply(req)

	if got := req.Header.Get("Authorization"); got != "Bearer abc.def.ghi" {
		t.Errorf("Authorization = %q, want verbatim bearer credential", got)
	}
}

func TestNewAuthenticatorEncodesBasic(t *testing.T) {
	auth := NewAuthenticator("admin:s3cr3t")

	req, _ := http.NewRequest(http.MethodGet, "https://settings.example.net", nil)
	auth.Apply(req)

	// base64("admin:s3cr3t")
	want := "Basic YWRtaW46czNjcjN0"
	if got := req.Header.Get("Authorization"); got != want {
		t.Errorf("Authorization = %q, want %q", got, want)
	}
}

func TestNewAuthenticatorEmptyCredential(t *testing.T) {
	auth := NewAuthenticator("")

	if _, ok := auth.(*NoAuth); !ok {
		t.Fatalf("expected *NoAuth, got %T", auth)
	}

	req, _ := http.NewRequest(http.MethodGet, "https://settings.example.net", nil)
	auth.Apply(req)
	if req.Header.Get("Authorization") != "" {
		t.Error("NoAuth must not set an Authorization header")
	}
}
