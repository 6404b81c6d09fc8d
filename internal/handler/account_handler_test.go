package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dropss/internal/db"
)

func registerAccountRoutes(env *handlerTestEnv) {
	env.router.GET("/auth/login", env.api.ShowLoginPage)
	env.router.POST("/auth/login", env.api.Login)
	env.router.POST("/auth/sign-up", env.api.SignUp)
	env.router.GET("/auth/logout", env.api.Logout)
	env.router.GET("/dashboard", AuthRequired(), env.api.ShowDashboard)
}

func TestSignUpCreatesProfileAndStartsSession(t *testing.T) {
	env := setupHandlerTest(t, Options{})
	registerAccountRoutes(env)
	client := env.client(t)

	recorder := client.do(formRequest("/auth/sign-up", url.Values{
		"email":           {"Alice@Example.com"},
		"username":        {"Alice"},
		"password":        {"secret123"},
		"repeat_password": {"secret123"},
	}))
	if recorder.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != "/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %q", location)
	}

	var profile db.Profile
	if err := env.db.First(&profile, "username = ?", "alice").Error; err != nil {
		t.Fatalf("expected lowercase profile to exist: %v", err)
	}

	recorder = client.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected dashboard to render for new session, got %d", recorder.Code)
	}
	name, data := env.html.lastRender(t)
	if name != "dashboard.html" {
		t.Fatalf("expected dashboard.html, got %s", name)
	}
	if data["viewCount"] != int64(0) {
		t.Fatalf("expected zero views, got %v", data["viewCount"])
	}
}

func TestSignUpRejectsInvalidForms(t *testing.T) {
	env := setupHandlerTest(t, Options{})
	registerAccountRoutes(env)
	env.createAccount(t, "taken@example.com", "taken")

	cases := []struct {
		name     string
		values   url.Values
		status   int
		expected string
	}{
		{
			name:     "reserved username",
			values:   url.Values{"email": {"a@example.com"}, "username": {"dashboard"}, "password": {"secret123"}, "repeat_password": {"secret123"}},
			status:   http.StatusBadRequest,
			expected: "This username is reserved",
		},
		{
			name:     "password mismatch",
			values:   url.Values{"email": {"b@example.com"}, "username": {"bobby"}, "password": {"secret123"}, "repeat_password": {"secret124"}},
			status:   http.StatusBadRequest,
			expected: "Passwords do not match",
		},
		{
			name:     "short password",
			values:   url.Values{"email": {"c@example.com"}, "username": {"carol"}, "password": {"abc"}, "repeat_password": {"abc"}},
			status:   http.StatusBadRequest,
			expected: "Password must be at least 6 characters",
		},
		{
			name:     "taken username",
			values:   url.Values{"email": {"d@example.com"}, "username": {"TAKEN"}, "password": {"secret123"}, "repeat_password": {"secret123"}},
			status:   http.StatusConflict,
			expected: "This username is already taken",
		},
		{
			name:     "taken email",
			values:   url.Values{"email": {"taken@example.com"}, "username": {"someone"}, "password": {"secret123"}, "repeat_password": {"secret123"}},
			status:   http.StatusConflict,
			expected: "An account with this email already exists",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := env.client(t).do(formRequest("/auth/sign-up", tc.values))
			if recorder.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, recorder.Code)
			}
			name, data := env.html.lastRender(t)
			if name != "sign_up.html" {
				t.Fatalf("expected sign_up.html, got %s", name)
			}
			if data["error"] != tc.expected {
				t.Fatalf("expected error %q, got %v", tc.expected, data["error"])
			}
		})
	}

	var count int64
	env.db.Model(&db.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected only the seeded account, found %d", count)
	}
}

func TestLoginAndLogout(t *testing.T) {
	env := setupHandlerTest(t, Options{})
	registerAccountRoutes(env)
	env.createAccount(t, "alice@example.com", "alice")
	client := env.client(t)

	recorder := client.do(formRequest("/auth/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong-pass"}}))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", recorder.Code)
	}

	recorder = client.do(formRequest("/auth/login", url.Values{"email": {"ALICE@example.com"}, "password": {"secret123"}}))
	if recorder.Code != http.StatusFound || recorder.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %d %q", recorder.Code, recorder.Header().Get("Location"))
	}

	recorder = client.do(httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	if recorder.Code != http.StatusFound {
		t.Fatalf("expected signed-in login page to redirect, got %d", recorder.Code)
	}

	client.do(httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	delete(client.cookies, "dropss_session")

	recorder = client.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if recorder.Code != http.StatusFound || recorder.Header().Get("Location") != "/auth/login" {
		t.Fatalf("expected dashboard to require login, got %d %q", recorder.Code, recorder.Header().Get("Location"))
	}
}
