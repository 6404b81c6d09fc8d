package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DefaultPresenceInterval is how often the presence stream refreshes.
const DefaultPresenceInterval = 30 * time.Second

// ErrPresenceUnavailable 在主页未连接 Discord 时返回
var ErrPresenceUnavailable = errors.New("presence unavailable")

// Presence is the payload of the presence endpoint and stream events.
type Presence struct {
	User PresenceUser `json:"user"`
}

// PresenceUser mirrors the Discord identity plus a synthetic status.
// Activities are always empty: activity data needs the gateway, not REST.
type PresenceUser struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Discriminator string     `json:"discriminator"`
	Avatar        string     `json:"avatar"`
	Status        string     `json:"status"`
	Activities    []Activity `json:"activities"`
}

// Activity is kept for payload shape only.
type Activity struct {
	Name string `json:"name"`
	Type int    `json:"type"`
}

// BuildPresence converts a Discord user into the presence payload.
func BuildPresence(user DiscordUser) Presence {
	return Presence{User: PresenceUser{
		ID:            user.ID,
		Username:      user.Username,
		Discriminator: user.Discriminator,
		Avatar:        DiscordAvatarURL(user),
		Status:        "online",
		Activities:    []Activity{},
	}}
}

// DiscordAvatarURL returns the CDN avatar, or the default embed avatar
// selected by discriminator mod 5.
func DiscordAvatarURL(user DiscordUser) string {
	if user.Avatar != nil && *user.Avatar != "" {
		return fmt.Sprintf("%s/avatars/%s/%s.png", discordCDNBaseURL, user.ID, *user.Avatar)
	}
	disc, err := strconv.Atoi(user.Discriminator)
	if err != nil || disc < 0 {
		disc = 0
	}
	return fmt.Sprintf("%s/embed/avatars/%d.png", discordCDNBaseURL, disc%5)
}

// FetchPresence fetches the user behind accessToken and builds its presence.
func (c *DiscordClient) FetchPresence(ctx context.Context, accessToken string) (*Presence, error) {
	user, err := c.FetchUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	presence := BuildPresence(*user)
	return &presence, nil
}

// PresenceFetcher loads one presence snapshot.
type PresenceFetcher func(ctx context.Context) (*Presence, error)

// PollPresence calls fetch once immediately and then every interval, handing
// each result to emit. It returns when ctx is done or emit returns false.
func PollPresence(ctx context.Context, interval time.Duration, fetch PresenceFetcher, emit func(*Presence, error) bool) {
	if interval <= 0 {
		interval = DefaultPresenceInterval
	}

	if ctx.Err() != nil {
		return
	}
	if !emit(fetch(ctx)) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !emit(fetch(ctx)) {
				return
			}
		}
	}
}

// PresenceService resolves public usernames to their Discord presence
// without exposing the stored access token.
type PresenceService struct {
	profiles *ProfileService
	client   *DiscordClient
	interval time.Duration
}

// NewPresenceService 构造 PresenceService
func NewPresenceService(profiles *ProfileService, client *DiscordClient, interval time.Duration) *PresenceService {
	if interval <= 0 {
		interval = DefaultPresenceInterval
	}
	return &PresenceService{profiles: profiles, client: client, interval: interval}
}

// Interval returns the refresh period of the stream.
func (s *PresenceService) Interval() time.Duration {
	return s.interval
}

// FetcherFor returns a fetcher bound to the profile's stored token.
func (s *PresenceService) FetcherFor(username string) (PresenceFetcher, error) {
	profile, err := s.profiles.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if !profile.DiscordConnected() || profile.DiscordAccessToken == nil {
		return nil, ErrPresenceUnavailable
	}

	token := *profile.DiscordAccessToken
	return func(ctx context.Context) (*Presence, error) {
		return s.client.FetchPresence(ctx, token)
	}, nil
}

// Stream polls the presence of username until ctx is done or emit
// returns false.
func (s *PresenceService) Stream(ctx context.Context, username string, emit func(*Presence, error) bool) error {
	fetch, err := s.FetcherFor(username)
	if err != nil {
		return err
	}
	PollPresence(ctx, s.interval, fetch, emit)
	return nil
}
