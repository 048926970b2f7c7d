package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/apperror"
	appctx "snackexport/internal/core/context"
	"snackexport/internal/infrastructure/storage/postgres"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeValidator struct {
	users map[string]*appctx.UserContext
}

func (v fakeValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if u, ok := v.users[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.Use(mw...)
	return r
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAuth(t *testing.T) {
	validator := fakeValidator{users: map[string]*appctx.UserContext{
		"good": {UserID: "u-1", Roles: []string{"sales"}},
	}}
	r := newEngine(Auth(validator), UserContext())
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": appctx.GetUserID(c.Request.Context()), "gin": c.GetString("user_id")})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"no token", "Bearer", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"scheme is case-insensitive", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := do(r, http.MethodGet, "/me", "", headers)
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "u-1", body["user"])
				assert.Equal(t, "u-1", body["gin"])
			} else {
				assert.Equal(t, apperror.CodeUnauthorized, body["code"])
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *appctx.UserContext
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"admin flag", &appctx.UserContext{UserID: "a", IsAdmin: true}, http.StatusOK},
		{"admin role", &appctx.UserContext{UserID: "b", Roles: []string{appctx.RoleAdmin}}, http.StatusOK},
		{"other role", &appctx.UserContext{UserID: "c", Roles: []string{"warehouse"}}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setUser := func(c *gin.Context) {
				if tt.user != nil {
					c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), tt.user))
				}
				c.Next()
			}
			r := newEngine(setUser, RequireRole(appctx.RoleAdmin))
			r.POST("/status", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := do(r, http.MethodPost, "/status", "", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"validation", apperror.NewValidation("bad input"), http.StatusBadRequest, apperror.CodeValidation, "bad input"},
		{"business rule", apperror.NewBusinessRule(apperror.CodeInsufficientStock, "short"), http.StatusUnprocessableEntity, apperror.CodeInsufficientStock, "short"},
		{"wrapped not found", errors.Join(errors.New("ctx"), apperror.NewNotFound("sales_order", "x")), http.StatusNotFound, apperror.CodeNotFound, ""},
		{"internal hides cause", apperror.NewInternal(errors.New("pg: secret")), http.StatusInternalServerError, apperror.CodeInternal, "Internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperror.CodeInternal, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine()
			r.GET("/x", func(c *gin.Context) {
				_ = c.Error(tt.err)
				c.Abort()
			})

			w := do(r, http.MethodGet, "/x", "", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.wantCode, body["code"])
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, body["message"])
			}
			assert.NotContains(t, w.Body.String(), "secret")
		})
	}
}

func TestRecovery(t *testing.T) {
	r := newEngine()
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := do(r, http.MethodGet, "/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), "kaboom")
}

type fakeIdempotencyStore struct {
	hashes    map[string]string
	responses map[string]*postgres.IdempotencyReplay
	completed int
	failed    int
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{
		hashes:    map[string]string{},
		responses: map[string]*postgres.IdempotencyReplay{},
	}
}

func (s *fakeIdempotencyStore) AcquireKey(_ context.Context, key, _, _, requestHash string) (*postgres.IdempotencyReplay, error) {
	if h, ok := s.hashes[key]; ok {
		if h != requestHash {
			return nil, apperror.NewIdempotencyMismatch(key)
		}
		if r, ok := s.responses[key]; ok {
			return r, nil
		}
		return nil, apperror.NewIdempotencyConflict(key)
	}
	s.hashes[key] = requestHash
	return nil, nil
}

func (s *fakeIdempotencyStore) CompleteKey(_ context.Context, key string, status int, contentType string, response any) error {
	s.completed++
	b, _ := json.Marshal(response)
	s.responses[key] = &postgres.IdempotencyReplay{StatusCode: status, ContentType: contentType, Body: b}
	return nil
}

func (s *fakeIdempotencyStore) FailKey(_ context.Context, key string, status int, contentType string, response any) error {
	s.failed++
	delete(s.hashes, key)
	return nil
}

func TestIdempotency(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	r := newEngine(Idempotency(store))
	r.POST("/orders", func(c *gin.Context) {
		calls++
		resp := gin.H{"n": calls}
		CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
		c.JSON(http.StatusCreated, resp)
	})
	r.POST("/fail", func(c *gin.Context) {
		_ = c.Error(apperror.NewValidation("nope"))
		c.Abort()
	})
	r.GET("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	key := map[string]string{HeaderIdempotencyKey: "k-1"}

	first := do(r, http.MethodPost, "/orders", `{"a":1}`, key)
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("Idempotent-Replay"))

	replay := do(r, http.MethodPost, "/orders", `{"a":1}`, key)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replay"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, 1, calls)

	mismatch := do(r, http.MethodPost, "/orders", `{"a":2}`, key)
	assert.Equal(t, http.StatusConflict, mismatch.Code)

	without := do(r, http.MethodPost, "/orders", `{"a":1}`, nil)
	assert.Equal(t, http.StatusCreated, without.Code)
	assert.Equal(t, 2, calls)

	failed := do(r, http.MethodPost, "/fail", `{}`, map[string]string{HeaderIdempotencyKey: "k-2"})
	assert.Equal(t, http.StatusBadRequest, failed.Code)
	assert.Equal(t, 1, store.failed)

	get := do(r, http.MethodGet, "/orders", "", key)
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, 1, store.completed)
}

func TestRateLimit(t *testing.T) {
	_, err := RateLimit("lots")
	require.Error(t, err)

	limit, err := RateLimit("2-M")
	require.NoError(t, err)
	r := newEngine(limit)
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", nil).Code)

	w := do(r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decode(t, w)
	assert.Equal(t, apperror.CodeRateLimited, body["code"])
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    string
		origin     string
		wantOrigin string
	}{
		{"allow all", "", "https://any.example", "*"},
		{"listed origin", "https://ops.example, https://admin.example", "https://admin.example", "https://admin.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.allowed))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := do(r, http.MethodGet, "/x", "", map[string]string{"Origin": tt.origin})
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	r := gin.New()
	r.Use(CORS("https://ops.example"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := do(r, http.MethodGet, "/x", "", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
