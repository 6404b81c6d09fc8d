package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dropss/internal/db"
	"github.com/dropss/internal/service"
	"github.com/dropss/internal/storage"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUploadBaseURL = "http://localhost:8080/uploads"

type stubHTMLRender struct {
	mu   sync.Mutex
	last *stubHTMLInstance
}

type stubHTMLInstance struct {
	name string
	data interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	instance := &stubHTMLInstance{name: name, data: data}
	r.mu.Lock()
	r.last = instance
	r.mu.Unlock()
	return instance
}

func (r *stubHTMLRender) lastRender(t *testing.T) (string, gin.H) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		t.Fatal("expected a template to be rendered")
	}
	data, _ := r.last.data.(gin.H)
	return r.last.name, data
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

type handlerTestEnv struct {
	db     *gorm.DB
	api    *API
	store  *storage.LocalStore
	html   *stubHTMLRender
	router *gin.Engine
}

// setupHandlerTest builds an API over an isolated in-memory database and a
// temp upload directory. Routes are registered by each test.
func setupHandlerTest(t *testing.T, opts Options) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "-", " ", "-").Replace(t.Name())
	dsn := fmt.Sprintf("file:handler-%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := db.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store, err := storage.NewLocalStore(t.TempDir(), testUploadBaseURL)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if opts.Store == nil {
		opts.Store = store
	}
	if opts.MaxUploadBytes == 0 {
		opts.MaxUploadBytes = 1 << 20
	}

	api := NewAPI(gdb, opts)
	api.accounts.WithHashCost(bcrypt.MinCost)

	html := &stubHTMLRender{}
	router := gin.New()
	router.HTMLRender = html
	router.Use(sessions.Sessions("dropss_session", cookie.NewStore([]byte("test-secret"))))
	router.GET("/test/session/:id", func(c *gin.Context) {
		if err := startSession(c, c.Param("id")); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})

	return &handlerTestEnv{db: gdb, api: api, store: store, html: html, router: router}
}

func (e *handlerTestEnv) createAccount(t *testing.T, email, username string) string {
	t.Helper()
	user, _, err := e.api.accounts.SignUp(service.SignUpInput{
		Email:          email,
		Username:       username,
		Password:       "secret123",
		RepeatPassword: "secret123",
	})
	if err != nil {
		t.Fatalf("failed to create account %s: %v", username, err)
	}
	return user.ID
}

// testClient replays session cookies across requests.
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (e *handlerTestEnv) client(t *testing.T) *testClient {
	return &testClient{t: t, handler: e.router, cookies: map[string]*http.Cookie{}}
}

func (e *handlerTestEnv) signedInClient(t *testing.T, userID string) *testClient {
	t.Helper()
	client := e.client(t)
	recorder := client.do(httptest.NewRequest(http.MethodGet, "/test/session/"+userID, nil))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("failed to start session, status %d", recorder.Code)
	}
	return client
}

func (c *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	recorder := httptest.NewRecorder()
	c.handler.ServeHTTP(recorder, req)
	for _, ck := range recorder.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return recorder
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
