package bridge

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/renflow/renflow-desktop/internal/model"
	"github.com/renflow/renflow-desktop/internal/platform"
	"github.com/renflow/renflow-desktop/internal/store"
	"github.com/renflow/renflow-desktop/internal/ui"
)

// Result returned by the notice commands
const resultSuccess = "success"

// stringArgs is the body of commands taking a single string
type stringArgs struct {
	Data *string `json:"data" binding:"required"`
}

// mapArgs is the body of send_notice
type mapArgs struct {
	Data map[string]any `json:"data" binding:"required"`
}

// storeArgs is the body of the store commands
type storeArgs struct {
	Key   string  `json:"key" binding:"required"`
	Value *string `json:"value"`
}

func respond(c *gin.Context, result any) {
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindString reads {"data": "..."}; on failure the response is already written
func bindString(c *gin.Context) (string, bool) {
	var args stringArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return "", false
	}
	return *args.Data, true
}

// healthCheck returns the health status of the service
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "renflow",
		"version":   s.deps.Runtime.Version,
		"timestamp": time.Now().Unix(),
	})
}

// apiStatus reports what the backend is doing
func (s *Server) apiStatus(c *gin.Context) {
	active := 0
	if s.deps.Downloads != nil {
		active = s.deps.Downloads.ActiveCount()
	}
	c.JSON(http.StatusOK, gin.H{
		"version":          s.deps.Runtime.Version,
		"proxy_port":       s.deps.Runtime.ProxyPort,
		"active_downloads": active,
		"event_clients":    s.hub.ClientCount(),
	})
}

// frontLoaded is called once the UI has loaded; it asks for notification permission
func (s *Server) frontLoaded(c *gin.Context) {
	s.deps.Notifications.RequestPermission(c.Request.Context())
	respond(c, "")
}

func (s *Server) getPlatform(c *gin.Context) {
	respond(c, platform.Platform())
}

func (s *Server) getRelease(c *gin.Context) {
	respond(c, platform.Release(c.Request.Context()))
}

func (s *Server) runProxy(c *gin.Context) {
	respond(c, s.deps.Runtime.ProxyPort)
}

func (s *Server) sendNotice(c *gin.Context) {
	var args mapArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	req, err := model.ParseNotificationRequest(args.Data)
	if err != nil {
		s.log.Error("rejected notification request", "error", err)
		respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.deps.Notifications.Send(c.Request.Context(), req); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respond(c, nil)
}

// closeNotice closes the notifications belonging to a tag
func (s *Server) closeNotice(c *gin.Context) {
	tag, ok := bindString(c)
	if !ok {
		return
	}

	if err := s.deps.Reaper.CloseByTag(c.Request.Context(), tag); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respond(c, resultSuccess)
}

// clearNotice closes every notification; failures are reported as the result text
func (s *Server) clearNotice(c *gin.Context) {
	if err := s.deps.Reaper.CloseAll(c.Request.Context()); err != nil {
		s.log.Error("failed to clear notifications", "error", err)
		respond(c, err.Error())
		return
	}
	respond(c, resultSuccess)
}

func (s *Server) openInBrowser(c *gin.Context) {
	target, ok := bindString(c)
	if !ok {
		return
	}

	if err := platform.OpenInBrowser(target); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respond(c, nil)
}

func (s *Server) runCommand(c *gin.Context) {
	name, ok := bindString(c)
	if !ok {
		return
	}
	respond(c, platform.RunCommand(c.Request.Context(), name))
}

func (s *Server) getFinalRedirectURL(c *gin.Context) {
	url, ok := bindString(c)
	if !ok {
		return
	}

	final, err := s.deps.Web.FinalRedirectURL(c.Request.Context(), url)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respond(c, final)
}

func (s *Server) getHTML(c *gin.Context) {
	url, ok := bindString(c)
	if !ok {
		return
	}

	html, err := s.deps.Web.GetHTML(c.Request.Context(), url)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respond(c, html)
}

func (s *Server) getAPI(c *gin.Context) {
	url, ok := bindString(c)
	if !ok {
		return
	}

	value, err := s.deps.Web.GetAPI(c.Request.Context(), url)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respond(c, value)
}

// download blocks until the transfer finishes; progress goes out over the event socket
func (s *Server) download(c *gin.Context) {
	var req model.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.SourceURL == "" {
		respondError(c, http.StatusBadRequest, errors.New("downloadPath is required"))
		return
	}

	// A dropped or timed-out UI request does not stop the transfer.
	ctx := context.WithoutCancel(c.Request.Context())
	if _, err := s.deps.Downloads.Download(ctx, req); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respond(c, nil)
}

func (s *Server) setStoreValue(c *gin.Context) {
	var args storeArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if args.Value == nil {
		respondError(c, http.StatusBadRequest, errors.New("value is required"))
		return
	}

	if err := store.SetAndPersist(s.deps.Store, args.Key, *args.Value); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respond(c, nil)
}

// getStoreValue answers null for a missing key
func (s *Server) getStoreValue(c *gin.Context) {
	var args storeArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	value, ok, err := s.deps.Store.Get(args.Key)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		respond(c, nil)
		return
	}
	respond(c, value)
}

func (s *Server) windowOp(c *gin.Context) {
	result, err := s.deps.Window.Apply(c.Param("op"))
	if errors.Is(err, ui.ErrUnsupportedWindowOp) {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respond(c, result)
}
