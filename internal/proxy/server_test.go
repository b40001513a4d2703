package proxy

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func startProxy(t *testing.T) *Server {
	t.Helper()
	s, err := New("127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	go s.Serve()
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func proxyURL(s *Server, target string) string {
	return "http://127.0.0.1:" + strconv.Itoa(int(s.Port())) + "/?url=" + url.QueryEscape(target)
}

func TestPortIsAssigned(t *testing.T) {
	s := startProxy(t)
	assert.NotZero(t, s.Port())
}

func TestForward(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("X-Upstream", r.Header.Get("Range"))
		w.Write([]byte("image-bytes"))
	}))
	defer upstream.Close()

	s := startProxy(t)

	req, err := http.NewRequest(http.MethodGet, proxyURL(s, upstream.URL+"/a.png"), nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image-bytes", string(body))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, `"v1"`, resp.Header.Get("ETag"))
	assert.Empty(t, resp.Header.Get("X-Upstream"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestForwardKeepsUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	s := startProxy(t)

	resp, err := http.Get(proxyURL(s, upstream.URL+"/missing"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestForwardRejectsBadTargets(t *testing.T) {
	s := startProxy(t)

	for _, target := range []string{"", "file:///etc/passwd", "not a url"} {
		resp, err := http.Get(proxyURL(s, target))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "target %q", target)
	}
}

func TestForwardUnreachableUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	target := upstream.URL
	upstream.Close()

	s := startProxy(t)

	resp, err := http.Get(proxyURL(s, target))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
