package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest("POST", "/api/posts/1/likes", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1235"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1236"))

	// a different client has its own bucket
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1234"))
	assert.Equal(t, 2, limiter.Len())
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(600000, 1)

	limiter.GetLimiter("a").Allow()
	limiter.GetLimiter("b")
	assert.Equal(t, 2, limiter.Len())

	// "a" refills within a fraction of a millisecond at this rate
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 2, limiter.Cleanup())
	assert.Equal(t, 0, limiter.Len())
}

func TestRateLimiterStartCleanup(t *testing.T) {
	limiter := NewRateLimiter(60, 5)
	limiter.GetLimiter("idle")

	stop := limiter.StartCleanup(time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool { return limiter.Len() == 0 }, time.Second, 5*time.Millisecond)
	stop()
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", ClientIP(req, nil))

	t.Run("header ignored from untrusted peer", func(t *testing.T) {
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		assert.Equal(t, "192.0.2.7", ClientIP(req, nil))
	})

	t.Run("header honored from trusted proxy", func(t *testing.T) {
		trusted, err := ParseTrustedProxies([]string{"192.0.2.7", "10.0.0.0/8"})
		require.NoError(t, err)

		req.Header.Set("X-Forwarded-For", "198.51.100.4, 203.0.113.9, 10.0.0.1")
		assert.Equal(t, "203.0.113.9", ClientIP(req, trusted), "rightmost untrusted hop wins")

		req.Header.Set("X-Forwarded-For", "10.0.0.3")
		assert.Equal(t, "192.0.2.7", ClientIP(req, trusted), "only proxies in the chain")

		req.Header.Set("X-Forwarded-For", "not-an-ip")
		assert.Equal(t, "192.0.2.7", ClientIP(req, trusted))
	})

	t.Run("remote addr without port", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "no-port"
		assert.Equal(t, "no-port", ClientIP(req, nil))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	nets, err := ParseTrustedProxies([]string{"127.0.0.1", " 10.0.0.0/8 ", "::1", ""})
	require.NoError(t, err)
	require.Len(t, nets, 3)
	assert.True(t, nets[0].Contains(net.ParseIP("127.0.0.1")))
	assert.False(t, nets[0].Contains(net.ParseIP("127.0.0.2")))
	assert.True(t, nets[1].Contains(net.ParseIP("10.20.30.40")))
	assert.True(t, nets[2].Contains(net.ParseIP("::1")))

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}

func TestRateLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(remote, forwarded string) int {
		req := httptest.NewRequest("POST", "/api/posts/1/likes", nil)
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("192.0.2.50:1000", "1.1.1.1"))
	for i := 2; i < 20; i++ {
		assert.Equal(t, http.StatusTooManyRequests, call("192.0.2.50:1000", fmt.Sprintf("1.1.1.%d", i)))
	}
	assert.Equal(t, 1, limiter.Len())

	t.Run("trusted proxy forwards distinct clients", func(t *testing.T) {
		trusted, err := ParseTrustedProxies([]string{"10.0.0.1"})
		require.NoError(t, err)
		limiter.TrustProxies(trusted)

		assert.Equal(t, http.StatusOK, call("10.0.0.1:1000", "203.0.113.1"))
		assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1001", "203.0.113.1"))
		assert.Equal(t, http.StatusOK, call("10.0.0.1:1002", "203.0.113.2"))
		assert.Equal(t, 3, limiter.Len())
	})
}
