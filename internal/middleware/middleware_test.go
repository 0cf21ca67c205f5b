package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(logger), AuthMiddleware("secret"))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": GetEmail(c), "name": GetName(c)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	token, err := auth.GenerateToken("ann@acme.io", "Ann", "secret", time.Hour)
	require.NoError(t, err)
	r := newRouter(zap.NewNop())

	tests := []struct {
		name   string
		setup  func(*http.Request)
		target string
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, "/me", http.StatusOK},
		{"query token", func(*http.Request) {}, "/me?token=" + token, http.StatusOK},
		{"missing", func(*http.Request) {}, "/me", http.StatusUnauthorized},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, "/me", http.StatusUnauthorized},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, "/me", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"email":"ann@acme.io","name":"Ann"}`, w.Body.String())
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	token, err := auth.GenerateToken("ann@acme.io", "", "secret", time.Hour)
	require.NoError(t, err)
	r := newRouter(zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/me", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "ann@acme.io", entries[0].ContextMap()["user"])
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}
