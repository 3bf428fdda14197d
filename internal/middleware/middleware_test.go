package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthService() *service.AuthService {
	cfg := &config.Config{JWTSecret: "mw-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	return service.NewAuthService(cfg, nil, nil, nil, nil, nil, zerolog.Nop())
}

func TestRequireUserJWT(t *testing.T) {
	auth := newAuthService()
	r := gin.New()
	r.GET("/me", RequireUserJWT(auth), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Email)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.GenerateToken(&model.User{ID: uuid.New(), Email: "mw@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mw@example.com", w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	auth := newAuthService()
	r := gin.New()
	r.GET("/admin", RequireUserJWT(auth), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, tc := range []struct {
		admin bool
		want  int
	}{{false, http.StatusForbidden}, {true, http.StatusNoContent}} {
		token, err := auth.GenerateToken(&model.User{ID: uuid.New(), IsAdmin: tc.admin})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code)
	}
}

func TestRequireWSAuth(t *testing.T) {
	auth := newAuthService()
	r := gin.New()
	r.GET("/ws", RequireWSAuth(auth), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _ := auth.GenerateToken(&model.User{ID: uuid.New()})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestBrotli(t *testing.T) {
	r := gin.New()
	r.Use(BrotliWithConfig(BrotliConfig{MinLength: 16}))
	r.GET("/big", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("a", 40))
		c.String(http.StatusOK, "tail")
	})
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "tiny") })

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	body, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 40)+"tail", string(body))

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "tiny", w.Body.String())
}

func newRevocationAuth(t *testing.T) (*service.AuthService, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	cfg := &config.Config{JWTSecret: "mw-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	return service.NewAuthService(cfg, rdb, nil, nil, nil, nil, zerolog.Nop()), mock
}

func TestWSAuth_RejectsLoggedOutToken(t *testing.T) {
	auth, mock := newRevocationAuth(t)
	r := gin.New()
	r.GET("/ws", RequireWSAuth(auth), CheckTokenRevoked(auth), func(c *gin.Context) { c.Status(http.StatusOK) })

	token, err := auth.GenerateToken(&model.User{ID: uuid.New()})
	require.NoError(t, err)
	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	key := config.CacheKey.RevokedTokenKey(claims.ID)

	mock.ExpectExists(key).SetVal(0)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	mock.ExpectExists(key).SetVal(1)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(response.ErrTokenRevoked))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionalUserJWT_IgnoresLoggedOutToken(t *testing.T) {
	auth, mock := newRevocationAuth(t)
	r := gin.New()
	r.GET("/programs", OptionalUserJWT(auth), func(c *gin.Context) {
		if GetClaims(c) == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, "user")
	})

	token, err := auth.GenerateToken(&model.User{ID: uuid.New()})
	require.NoError(t, err)
	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	mock.ExpectExists(config.CacheKey.RevokedTokenKey(claims.ID)).SetVal(1)

	req := httptest.NewRequest(http.MethodGet, "/programs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "anonymous", w.Body.String())
}
