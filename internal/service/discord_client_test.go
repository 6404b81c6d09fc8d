package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

type fakeHTTPClient struct {
	handler func(*http.Request) (*http.Response, error)
}

func (f fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if f.handler == nil {
		return nil, errors.New("no handler configured")
	}
	return f.handler(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestDiscordAuthCodeURL(t *testing.T) {
	client := NewDiscordClient("cid", "secret", "https://dropss.example.com/api/discord/callback", "")

	raw, err := client.AuthCodeURL("state-123")
	if err != nil {
		t.Fatalf("auth code url failed: %v", err)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url: %v", err)
	}
	if parsed.Host != "discord.com" || parsed.Path != "/api/oauth2/authorize" {
		t.Fatalf("unexpected authorize url %s", raw)
	}
	q := parsed.Query()
	if q.Get("client_id") != "cid" || q.Get("state") != "state-123" || q.Get("response_type") != "code" {
		t.Fatalf("unexpected query %v", q)
	}
	if q.Get("scope") != "identify activities.read" {
		t.Fatalf("unexpected scope %q", q.Get("scope"))
	}
	if q.Get("redirect_uri") != "https://dropss.example.com/api/discord/callback" {
		t.Fatalf("unexpected redirect %q", q.Get("redirect_uri"))
	}

	if _, err := NewDiscordClient("", "", "", "").AuthCodeURL("x"); !errors.Is(err, ErrDiscordNotConfigured) {
		t.Fatalf("expected ErrDiscordNotConfigured, got %v", err)
	}
}

func TestDiscordExchangeSendsSingleTokenRequest(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost || r.URL.Path != "/api/oauth2/token" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("code") != "the-code" || r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		if r.PostForm.Get("client_id") != "cid" || r.PostForm.Get("client_secret") != "secret" {
			t.Errorf("expected credentials in params, got %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":604800}`)
	}))
	defer server.Close()

	client := NewDiscordClient("cid", "secret", "http://localhost/cb", server.URL+"/api")
	tokens, err := client.Exchange(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if tokens.AccessToken != "at" || tokens.RefreshToken != "rt" {
		t.Fatalf("unexpected tokens %+v", tokens)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one token request, got %d", calls)
	}
}

func TestDiscordExchangeFailure(t *testing.T) {
	client := NewDiscordClient("cid", "secret", "http://localhost/cb", "https://discord.test/api")
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":"invalid_grant"}`), nil
	}})

	if _, err := client.Exchange(context.Background(), "bad"); !errors.Is(err, ErrDiscordAPI) {
		t.Fatalf("expected ErrDiscordAPI, got %v", err)
	}
}

func TestDiscordFetchUser(t *testing.T) {
	client := NewDiscordClient("cid", "secret", "", "https://discord.test/api/")
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodGet || r.URL.String() != "https://discord.test/api/users/@me" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		return jsonResponse(http.StatusOK, `{"id":"42","username":"nelly","discriminator":"1337","avatar":"8342729096ea3675442027381ff50dfe"}`), nil
	}})

	user, err := client.FetchUser(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("fetch user failed: %v", err)
	}
	if user.ID != "42" || user.Username != "nelly" || user.Avatar == nil {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestDiscordFetchUserErrors(t *testing.T) {
	client := NewDiscordClient("cid", "secret", "", "https://discord.test/api")
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"message":"401: Unauthorized"}`), nil
	}})

	if _, err := client.FetchUser(context.Background(), "expired"); !errors.Is(err, ErrDiscordAPI) {
		t.Fatalf("expected ErrDiscordAPI, got %v", err)
	}
	if _, err := client.FetchUser(context.Background(), " "); !errors.Is(err, ErrDiscordAPI) {
		t.Fatalf("expected ErrDiscordAPI for empty token, got %v", err)
	}
}
