package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	defaultDiscordAPIBaseURL = "https://discord.com/api"
	discordCDNBaseURL        = "https://cdn.discordapp.com"
)

// DiscordScopes are requested on every authorize redirect.
var DiscordScopes = []string{"identify", "activities.read"}

var (
	// ErrDiscordNotConfigured 在缺少 client id/secret 时返回
	ErrDiscordNotConfigured = errors.New("discord client not configured")
	// ErrDiscordAPI 在 Discord 接口返回非 2xx 时返回
	ErrDiscordAPI = errors.New("discord api error")
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// doerTransport lets oauth2 send its token request through an httpDoer.
type doerTransport struct {
	doer httpDoer
}

func (t doerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.doer.Do(req)
}

// DiscordUser is the subset of GET /users/@me the site uses.
type DiscordUser struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
	GlobalName    *string `json:"global_name"`
}

// DiscordTokens is the result of the authorization code exchange.
type DiscordTokens struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// DiscordClient talks to the Discord OAuth2 and REST endpoints. It performs
// exactly one HTTP call per method and never retries.
type DiscordClient struct {
	clientID     string
	clientSecret string
	redirectURL  string
	apiBaseURL   string
	http         httpDoer
}

// NewDiscordClient 构造 DiscordClient，apiBaseURL 为空时使用官方地址
func NewDiscordClient(clientID, clientSecret, redirectURL, apiBaseURL string) *DiscordClient {
	c := &DiscordClient{
		clientID:     strings.TrimSpace(clientID),
		clientSecret: strings.TrimSpace(clientSecret),
		redirectURL:  strings.TrimSpace(redirectURL),
		http:         &http.Client{Timeout: 15 * time.Second},
	}
	c.SetAPIBaseURL(apiBaseURL)
	return c
}

// SetHTTPClient 替换底层 HTTP 客户端，nil 恢复默认
func (c *DiscordClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
		return
	}
	c.http = client
}

// SetAPIBaseURL 替换 API 根地址，主要用于测试
func (c *DiscordClient) SetAPIBaseURL(base string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = defaultDiscordAPIBaseURL
	}
	c.apiBaseURL = base
}

// Configured reports whether the OAuth application credentials are set.
func (c *DiscordClient) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

func (c *DiscordClient) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RedirectURL:  c.redirectURL,
		Scopes:       DiscordScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.apiBaseURL + "/oauth2/authorize",
			TokenURL:  c.apiBaseURL + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthCodeURL returns the authorize URL the browser is redirected to.
func (c *DiscordClient) AuthCodeURL(state string) (string, error) {
	if !c.Configured() {
		return "", ErrDiscordNotConfigured
	}
	return c.oauthConfig().AuthCodeURL(state), nil
}

// Exchange trades the authorization code for tokens.
func (c *DiscordClient) Exchange(ctx context.Context, code string) (*DiscordTokens, error) {
	if !c.Configured() {
		return nil, ErrDiscordNotConfigured
	}

	client, ok := c.http.(*http.Client)
	if !ok {
		client = &http.Client{Transport: doerTransport{doer: c.http}}
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	token, err := c.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", ErrDiscordAPI, err)
	}
	return &DiscordTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}, nil
}

// FetchUser loads the identity behind accessToken.
func (c *DiscordClient) FetchUser(ctx context.Context, accessToken string) (*DiscordUser, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrDiscordAPI)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("create discord request: %w", err)
	}
	(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dropss/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request discord user: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read discord response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrDiscordAPI, msg)
	}

	var user DiscordUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode discord user: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: response without user id", ErrDiscordAPI)
	}
	return &user, nil
}
