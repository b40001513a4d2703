// Package proxy runs the loopback HTTP forwarder the web UI uses to load
// resources that do not send CORS headers.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/renflow/renflow-desktop/internal/logging"
	"github.com/renflow/renflow-desktop/internal/middleware"
)

// Request headers passed through to the target
var forwardedRequestHeaders = []string{"Accept", "Accept-Language", "Range", "User-Agent", "If-None-Match", "If-Modified-Since"}

// Response headers passed back to the UI
var forwardedResponseHeaders = []string{"Cache-Control", "Content-Range", "Accept-Ranges", "ETag", "Last-Modified", "Content-Disposition"}

// Server forwards GET /?url=<target> to target
type Server struct {
	listener net.Listener
	srv      *http.Server
	client   *http.Client
	log      *slog.Logger
}

// New binds addr; use port 0 to let the OS choose. Call Serve to start.
func New(addr string, logger *slog.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := &Server{
		listener: listener,
		client:   &http.Client{},
		log:      logging.Component(logger, "proxy"),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(nil))
	r.Use(middleware.Logging(s.log))
	r.GET("/", s.forward)

	s.srv = &http.Server{Handler: r}
	return s, nil
}

// Port returns the port the proxy listens on
func (s *Server) Port() uint16 {
	return uint16(s.listener.Addr().(*net.TCPAddr).Port)
}

// Serve accepts connections until Shutdown
func (s *Server) Serve() error {
	s.log.Info("proxy listening", "addr", s.listener.Addr().String())
	if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the proxy
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) forward(c *gin.Context) {
	target := c.Query("url")
	parsed, err := url.Parse(target)
	if target == "" || err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute http(s) URL"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, h := range forwardedRequestHeaders {
		if v := c.GetHeader(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("proxy request failed", "url", target, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	defer resp.Body.Close()

	extra := make(map[string]string)
	for _, h := range forwardedResponseHeaders {
		if v := resp.Header.Get(h); v != "" {
			extra[h] = v
		}
	}

	c.DataFromReader(resp.StatusCode, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, extra)
}
