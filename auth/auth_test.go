package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPClientSetsBearerToken(t *testing.T) {
	var issued atomic.Int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		issued.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer api.Close()

	cfg := Conf{ClientID: "id", ClientSecret: "secret", AuthURL: tokenSrv.URL}
	if !cfg.Enabled() {
		t.Fatal("expected credentials to be enabled")
	}
	client := cfg.HTTPClient(context.Background(), &http.Client{Timeout: 2 * time.Second})
	if client.Timeout != 2*time.Second {
		t.Fatalf("timeout not kept: %v", client.Timeout)
	}
	for i := 0; i < 2; i++ {
		resp, err := client.Get(api.URL)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status %d", i, resp.StatusCode)
		}
	}
	if n := issued.Load(); n != 1 {
		t.Fatalf("expected the token to be reused, issued %d", n)
	}
}

func TestHTTPClientTokenFailure(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer tokenSrv.Close()

	client := Conf{ClientID: "id", AuthURL: tokenSrv.URL}.HTTPClient(context.Background(), nil)
	if _, err := client.Get("http://127.0.0.1:1/unused"); err == nil {
		t.Fatal("expected token error")
	}
	if (Conf{}).Enabled() {
		t.Fatal("empty conf must be disabled")
	}
}

func TestHTTPClientSendsCredentials(t *testing.T) {
	var gotID, gotScope, gotGrant string
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotID, _, _ = r.BasicAuth()
		if gotID == "" {
			gotID = r.PostForm.Get("client_id")
		}
		gotScope = r.PostForm.Get("scope")
		gotGrant = r.PostForm.Get("grant_type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gw","token_type":"bearer","expires_in":60}`))
	}))
	defer tokenSrv.Close()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	cfg := Conf{ClientID: "router", ClientSecret: "s3cret", AuthURL: tokenSrv.URL, Scopes: []string{"route", "nearest"}}
	resp, err := cfg.HTTPClient(context.Background(), nil).Get(api.URL)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if gotGrant != "client_credentials" {
		t.Fatalf("grant type %q", gotGrant)
	}
	if gotID != "router" {
		t.Fatalf("client id %q", gotID)
	}
	if gotScope != "route nearest" {
		t.Fatalf("scopes %q", gotScope)
	}
}
