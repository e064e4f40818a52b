package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/uniportal/pkg/errors"
	"github.com/noah-isme/uniportal/pkg/requestid"
)

func newBackend(t *testing.T, register func(r *gin.Engine)) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T, server *httptest.Server, token string) *Client {
	t.Helper()
	client, err := New(Options{
		BaseURL:     server.URL + "/api",
		AccessToken: token,
		PublicPaths: []string{"/user/login"},
		ReissuePath: "/user/access-token",
	})
	require.NoError(t, err)
	return client
}

func TestClientAttachesBearerOnProtectedPaths(t *testing.T) {
	var protectedAuth, publicAuth, reqID string
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/schedule", func(c *gin.Context) {
			protectedAuth = c.GetHeader("Authorization")
			reqID = c.GetHeader(requestid.HeaderKey)
			c.JSON(http.StatusOK, gin.H{"data": []gin.H{{"scheduleId": 1}}})
		})
		r.POST("/api/user/login", func(c *gin.Context) {
			publicAuth = c.GetHeader("Authorization")
			c.JSON(http.StatusOK, gin.H{"accessToken": "t"})
		})
	})
	client := newClient(t, server, "abc")

	ctx := requestid.WithValue(context.Background(), "req-1")
	payload, err := client.Get(ctx, "/schedule", url.Values{"month": {"2025-03"}})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", protectedAuth)
	assert.Equal(t, "req-1", reqID)

	obj, ok := payload.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, obj["data"], 1)

	_, err = client.Post(context.Background(), "/user/login", map[string]string{"loginId": "a"})
	require.NoError(t, err)
	assert.Empty(t, publicAuth)
}

func TestClientMapsStatusErrors(t *testing.T) {
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/schedule/for", func(c *gin.Context) {
			c.String(http.StatusNotFound, "no schedule")
		})
		r.GET("/api/boom", func(c *gin.Context) {
			c.String(http.StatusInternalServerError, "boom")
		})
	})
	client := newClient(t, server, "abc")

	_, err := client.Get(context.Background(), "/schedule/for", nil)
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))

	_, err = client.Get(context.Background(), "/boom", nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "boom", appErr.Message)
}

func TestClientReissuesTokenOnUnauthorized(t *testing.T) {
	var reissues int32
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/application/my", func(c *gin.Context) {
			if c.GetHeader("Authorization") != "Bearer fresh" {
				c.Status(http.StatusUnauthorized)
				return
			}
			c.JSON(http.StatusOK, []gin.H{})
		})
		r.GET("/api/user/access-token", func(c *gin.Context) {
			atomic.AddInt32(&reissues, 1)
			c.JSON(http.StatusOK, gin.H{"result": gin.H{"accessToken": "fresh"}})
		})
	})
	client := newClient(t, server, "stale")
	var refreshed string
	client.OnTokenRefresh(func(token string) { refreshed = token })

	_, err := client.Get(context.Background(), "/application/my", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&reissues))
	assert.Equal(t, "fresh", client.Token())
	assert.Equal(t, "fresh", refreshed)
}

func TestClientConcurrentUnauthorizedSharesOneReissue(t *testing.T) {
	const callers = 5
	var (
		reissues int32
		arrived  sync.WaitGroup
	)
	arrived.Add(callers)
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/notice", func(c *gin.Context) {
			if c.GetHeader("Authorization") == "Bearer fresh" {
				c.JSON(http.StatusOK, gin.H{})
				return
			}
			arrived.Done()
			arrived.Wait()
			c.Status(http.StatusUnauthorized)
		})
		r.GET("/api/user/access-token", func(c *gin.Context) {
			atomic.AddInt32(&reissues, 1)
			time.Sleep(150 * time.Millisecond)
			c.JSON(http.StatusOK, gin.H{"accessToken": "fresh"})
		})
	})
	client := newClient(t, server, "stale")

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Get(context.Background(), "/notice", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&reissues))
}

func TestClientForcesSignOutWhenReissueFails(t *testing.T) {
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/notice", func(c *gin.Context) {
			c.Status(http.StatusUnauthorized)
		})
		r.GET("/api/user/access-token", func(c *gin.Context) {
			c.Status(http.StatusUnauthorized)
		})
	})
	client := newClient(t, server, "stale")
	var expired int32
	client.OnAuthExpired(func(context.Context) { atomic.AddInt32(&expired, 1) })

	_, err := client.Get(context.Background(), "/notice", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrAuthExpired))
	assert.Equal(t, int32(1), atomic.LoadInt32(&expired))
	assert.Empty(t, client.Token())
}

func TestClientPublicUnauthorizedIsPlainError(t *testing.T) {
	server := newBackend(t, func(r *gin.Engine) {
		r.POST("/api/user/login", func(c *gin.Context) {
			c.String(http.StatusUnauthorized, "bad credentials")
		})
	})
	client := newClient(t, server, "")
	var expired int32
	client.OnAuthExpired(func(context.Context) { atomic.AddInt32(&expired, 1) })

	_, err := client.Post(context.Background(), "/user/login", map[string]string{})
	require.Error(t, err)
	assert.True(t, appErrors.IsUnauthorized(err))
	assert.False(t, errors.Is(err, appErrors.ErrAuthExpired))
	assert.Zero(t, atomic.LoadInt32(&expired))
}

func TestClientTimeoutIsTransportError(t *testing.T) {
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/slow", func(c *gin.Context) {
			time.Sleep(200 * time.Millisecond)
			c.Status(http.StatusOK)
		})
	})
	client, err := New(Options{BaseURL: server.URL + "/api", Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/slow", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTransport.Code, appErrors.FromError(err).Code)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "42",
		"role": "student",
		"exp":  exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	claims, ok := InspectToken(token)
	require.True(t, ok)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "student", claims.Role)
	assert.True(t, claims.ExpiresAt.Equal(exp))

	assert.False(t, TokenExpired(token, time.Now()))
	assert.True(t, TokenExpired(token, exp.Add(time.Second)))
	assert.False(t, TokenExpired("opaque-token", time.Now()))

	_, ok = InspectToken("")
	assert.False(t, ok)
}
