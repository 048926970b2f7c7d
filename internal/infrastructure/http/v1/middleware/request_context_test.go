package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "snackexport/internal/core/context"
	"snackexport/internal/core/security"
	"snackexport/pkg/logger"
)

func TestTrace(t *testing.T) {
	tests := []struct {
		name      string
		headers   map[string]string
		wantTrace string
		wantReq   string
	}{
		{name: "generated", headers: nil},
		{
			name:      "propagated",
			headers:   map[string]string{HeaderTraceID: "trace-1", HeaderRequestID: "req-1"},
			wantTrace: "trace-1",
			wantReq:   "req-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenTrace, seenReq string
			r := newEngine(Trace())
			r.GET("/x", func(c *gin.Context) {
				seenTrace = appctx.GetTraceID(c.Request.Context())
				seenReq = appctx.GetRequestID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			w := do(r, http.MethodGet, "/x", "", tt.headers)
			require.Equal(t, http.StatusOK, w.Code)
			require.NotEmpty(t, seenTrace)
			require.NotEmpty(t, seenReq)
			assert.Equal(t, seenTrace, w.Header().Get(HeaderTraceID))
			assert.Equal(t, seenReq, w.Header().Get(HeaderRequestID))
			if tt.wantTrace != "" {
				assert.Equal(t, tt.wantTrace, seenTrace)
				assert.Equal(t, tt.wantReq, seenReq)
			}
		})
	}
}

func TestUserContext(t *testing.T) {
	validator := fakeValidator{users: map[string]*appctx.UserContext{
		"tok": {UserID: "u-9"},
	}}

	var actor string
	r := newEngine()
	r.GET("/open", UserContext(), func(c *gin.Context) {
		actor = security.GetUserID(c.Request.Context())
		c.Status(http.StatusOK)
	})
	r.GET("/closed", Auth(validator), UserContext(), func(c *gin.Context) {
		actor = security.GetUserID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := do(r, http.MethodGet, "/open", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, actor)

	w = do(r, http.MethodGet, "/closed", "", map[string]string{"Authorization": "Bearer tok"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-9", actor)
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel zapcore.Level
	}{
		{name: "ok", status: http.StatusOK, wantLevel: zapcore.InfoLevel},
		{name: "client error", status: http.StatusNotFound, wantLevel: zapcore.WarnLevel},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			r := gin.New()
			r.Use(Trace(), Logger(logger.NewFromZap(zap.New(core))))
			r.GET("/items/:id", func(c *gin.Context) { c.Status(tt.status) })

			do(r, http.MethodGet, "/items/7?limit=5", "", nil)

			entries := logs.FilterMessage("http request").All()
			require.Len(t, entries, 1)
			e := entries[0]
			assert.Equal(t, tt.wantLevel, e.Level)
			fields := e.ContextMap()
			assert.Equal(t, "/items/7", fields["path"])
			assert.Equal(t, "/items/:id", fields["route"])
			assert.Equal(t, "limit=5", fields["query"])
			assert.EqualValues(t, tt.status, fields["status"])
		})
	}
}
