package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/renflow/renflow-desktop/internal/config"
	"github.com/renflow/renflow-desktop/internal/logging"
	"github.com/renflow/renflow-desktop/internal/middleware"
)

// Server is the HTTP side of the bridge
type Server struct {
	deps     Deps
	hub      *Hub
	origins  []string
	engine   *gin.Engine
	upgrader websocket.Upgrader
	srv      *http.Server
	log      *slog.Logger
}

// NewServer builds the router. Call Listen and Serve to accept connections.
func NewServer(cfg config.BridgeConfig, deps Deps, hub *Hub, logger *slog.Logger) *Server {
	s := &Server{
		deps:    deps,
		hub:     hub,
		origins: cfg.CORSOrigins,
		log:     logging.Component(logger, "bridge"),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Logging(s.log))
	s.setupRoutes(r)

	s.engine = r
	s.srv = &http.Server{Handler: r}
	return s
}

// setupRoutes configures all the HTTP routes
func (s *Server) setupRoutes(r *gin.Engine) {
	r.GET("/health", s.healthCheck)

	api := r.Group("/api")
	{
		api.GET("/status", s.apiStatus)
		api.GET("/events", s.handleWebSocket)

		sys := api.Group("/sys")
		{
			sys.POST("/front_loaded", s.frontLoaded)
			sys.POST("/get_platform", s.getPlatform)
			sys.POST("/get_release", s.getRelease)
			sys.POST("/run_proxy", s.runProxy)
			sys.POST("/send_notice", s.sendNotice)
			sys.POST("/close_notice", s.closeNotice)
			sys.POST("/close_all_notice", s.closeNotice)
			sys.POST("/clear_notice", s.clearNotice)
			sys.POST("/open_in_browser", s.openInBrowser)
			sys.POST("/run_command", s.runCommand)
			sys.POST("/get_final_redirect_url", s.getFinalRedirectURL)
			sys.POST("/get_html", s.getHTML)
			sys.POST("/get_api", s.getAPI)
			sys.POST("/download", s.download)
			sys.POST("/set_store_value", s.setStoreValue)
			sys.POST("/get_store_value", s.getStoreValue)
		}

		api.POST("/win/:op", s.windowOp)
	}
}

// Handler returns the router, for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe binds addr and serves until Shutdown
func (s *Server) ListenAndServe(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.log.Info("bridge listening", "addr", listener.Addr().String())

	if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleWebSocket upgrades the connection and attaches it to the hub
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(s.hub, conn)
	if !s.hub.RegisterClient(client) {
		conn.Close()
		return
	}
	client.StartPumps()
}

// checkOrigin accepts same-machine tools without an Origin and the configured UI origins
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.origins) == 0 {
		return true
	}
	return slices.Contains(s.origins, origin)
}
