package service

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGetByUsernameIsCaseInsensitive(t *testing.T) {
	gdb := setupServiceTestDB(t)
	created := createTestAccount(t, gdb, "alice@example.com", "Alice")

	if created.Username != "alice" {
		t.Fatalf("expected username stored lowercase, got %q", created.Username)
	}

	svc := NewProfileService(gdb)
	for _, name := range []string{"alice", "ALICE", " Alice "} {
		profile, err := svc.GetByUsername(name)
		if err != nil {
			t.Fatalf("lookup %q failed: %v", name, err)
		}
		if profile.ID != created.ID {
			t.Fatalf("lookup %q returned wrong profile", name)
		}
	}

	if _, err := svc.GetByUsername("bob"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestUpdateProfileStoresBlanksAsNull(t *testing.T) {
	gdb := setupServiceTestDB(t)
	created := createTestAccount(t, gdb, "nulls@example.com", "nulls")
	svc := NewProfileService(gdb)

	updated, err := svc.UpdateProfile(created.ID, ProfileInput{
		DisplayName: "  Null Tester ",
		Bio:         "**hello**",
		AvatarURL:   "https://cdn.example.com/a.png",
		Location:    "",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.DisplayName == nil || *updated.DisplayName != "Null Tester" {
		t.Fatalf("expected trimmed display name, got %v", updated.DisplayName)
	}
	if updated.Location != nil {
		t.Fatalf("expected blank location stored as NULL, got %q", *updated.Location)
	}
	if updated.Name() != "Null Tester" {
		t.Fatalf("expected Name() to prefer display name, got %q", updated.Name())
	}

	cleared, err := svc.UpdateProfile(created.ID, ProfileInput{})
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if cleared.DisplayName != nil || cleared.Bio != nil || cleared.AvatarURL != nil {
		t.Fatal("expected all fields cleared")
	}
	if cleared.Name() != "nulls" {
		t.Fatalf("expected Name() to fall back to username, got %q", cleared.Name())
	}
}

func TestUpdateProfileValidatesInput(t *testing.T) {
	gdb := setupServiceTestDB(t)
	created := createTestAccount(t, gdb, "invalid@example.com", "invalid")
	svc := NewProfileService(gdb)

	cases := []ProfileInput{
		{AvatarURL: "not a url"},
		{AvatarURL: "javascript:alert(1)"},
		{DisplayName: strings.Repeat("a", maxDisplayNameLength+1)},
		{Bio: strings.Repeat("b", maxBioLength+1)},
		{Location: strings.Repeat("c", maxLocationLength+1)},
	}
	for i, input := range cases {
		if _, err := svc.UpdateProfile(created.ID, input); !errors.Is(err, ErrProfileInvalidInput) {
			t.Fatalf("case %d: expected ErrProfileInvalidInput, got %v", i, err)
		}
	}

	if _, err := svc.UpdateProfile("missing", ProfileInput{}); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestConnectAndDisconnectDiscord(t *testing.T) {
	gdb := setupServiceTestDB(t)
	created := createTestAccount(t, gdb, "discord@example.com", "discorder")
	svc := NewProfileService(gdb)

	connectedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := svc.ConnectDiscord(created.ID, DiscordConnection{
		UserID:       "80351110224678912",
		AccessToken:  "access",
		RefreshToken: "refresh",
		ConnectedAt:  connectedAt,
	}); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	profile, err := svc.GetByID(created.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !profile.DiscordConnected() {
		t.Fatal("expected profile to report discord connected")
	}
	if *profile.DiscordRefreshToken != "refresh" || !profile.DiscordConnectedAt.Equal(connectedAt) {
		t.Fatalf("unexpected discord fields: %+v", profile)
	}

	if err := svc.DisconnectDiscord(created.ID); err != nil {
		t.Fatalf("disconnect failed: %v", err)
	}
	profile, _ = svc.GetByID(created.ID)
	if profile.DiscordConnected() || profile.DiscordAccessToken != nil || profile.DiscordConnectedAt != nil {
		t.Fatal("expected discord fields cleared")
	}

	if err := svc.ConnectDiscord(created.ID, DiscordConnection{UserID: "1"}); !errors.Is(err, ErrProfileInvalidInput) {
		t.Fatalf("expected ErrProfileInvalidInput without token, got %v", err)
	}
	if err := svc.DisconnectDiscord("missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
