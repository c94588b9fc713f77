// Package admin exposes the memory store over HTTP for inspection and
// maintenance: listing and editing entries, tuning settings, customizing
// the guide, and probing the matcher. A websocket endpoint streams
// injection diagnostics for live debugging.
package admin

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Chris4081/memauto-go-sdk/core"
	"github.com/Chris4081/memauto-go-sdk/guide"
	"github.com/Chris4081/memauto-go-sdk/hooks"
	"github.com/Chris4081/memauto-go-sdk/pipeline"
	"github.com/Chris4081/memauto-go-sdk/store"
)

// Handler serves the admin API over a store, pipeline, and hook set.
type Handler struct {
	store    *store.Store
	pipeline *pipeline.Pipeline
	hooks    *hooks.Hooks
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler creates the admin API handler.
func NewHandler(st *store.Store, pl *pipeline.Pipeline, hk *hooks.Hooks, opts ...Option) *Handler {
	h := &Handler{
		store:    st,
		pipeline: pl,
		hooks:    hk,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the admin routes on an echo group.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/memories", h.listMemories)
	g.POST("/memories", h.addMemory)
	g.PUT("/memories/:id", h.updateMemory)
	g.DELETE("/memories/:id", h.deleteMemory)
	g.DELETE("/memories", h.deleteAll)
	g.POST("/backup", h.backup)
	g.GET("/settings", h.getSettings)
	g.PUT("/settings", h.putSettings)
	g.GET("/guide", h.getGuide)
	g.PUT("/guide", h.putGuide)
	g.DELETE("/guide/:lang", h.resetGuide)
	g.POST("/match", h.testMatch)
	g.GET("/diagnostics", h.diagnostics)
	g.GET("/diagnostics/stream", h.diagnosticsStream)
}

// Serve runs a blocking echo server with the admin API mounted under
// /api/v1.
func (h *Handler) Serve(addr string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	h.Register(e.Group("/api/v1"))
	h.log.Info("admin API listening", "addr", addr)
	return e.Start(addr)
}

type memoryItem struct {
	Index     int       `json:"index"`
	Memory    string    `json:"memory"`
	Keywords  string    `json:"keywords"`
	Always    bool      `json:"always"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) listMemories(c echo.Context) error {
	entries := h.store.Entries()
	items := make([]memoryItem, len(entries))
	for i, e := range entries {
		items[i] = memoryItem{
			Index:     i,
			Memory:    e.Memory,
			Keywords:  e.Keywords,
			Always:    e.Always,
			CreatedAt: e.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"count": len(items), "memories": items})
}

type memoryRequest struct {
	Memory   string `json:"memory"`
	Keywords string `json:"keywords"`
	Always   bool   `json:"always"`
}

func (h *Handler) addMemory(c echo.Context) error {
	var req memoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	accepted, msg := h.pipeline.Submit(req.Memory, req.Keywords, req.Always)
	status := http.StatusCreated
	if !accepted {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, map[string]any{"accepted": accepted, "result": msg})
}

func (h *Handler) updateMemory(c echo.Context) error {
	idx, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid index")
	}
	var req memoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	entry := core.Entry{Memory: req.Memory, Keywords: req.Keywords, Always: req.Always}
	if err := h.store.Update(idx, entry); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"updated": idx})
}

func (h *Handler) deleteMemory(c echo.Context) error {
	idx, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid index")
	}
	if err := h.store.Delete(idx); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": idx})
}

// deleteAll wipes every entry. A timestamped backup is written first.
func (h *Handler) deleteAll(c echo.Context) error {
	backup, err := h.store.DeleteAll()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.log.Info("all memories deleted", "backup", backup)
	return c.JSON(http.StatusOK, map[string]any{"deleted": true, "backup": backup})
}

func (h *Handler) backup(c echo.Context) error {
	path, err := h.store.Backup()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"backup": path})
}

func (h *Handler) getSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Settings())
}

func (h *Handler) putSettings(c echo.Context) error {
	incoming := h.store.Settings()
	if err := c.Bind(&incoming); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if incoming.MaxContextChars < 0 || incoming.MaxShowMemories < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "counts must be non-negative")
	}
	if incoming.GuideMode != "always" && incoming.GuideMode != "trigger" {
		return echo.NewHTTPError(http.StatusBadRequest, "guide_mode must be \"always\" or \"trigger\"")
	}
	if err := h.store.UpdateSettings(func(s *store.Settings) { *s = incoming }); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.store.Settings())
}

type guideResponse struct {
	Lang   string `json:"lang"`
	Text   string `json:"text"`
	Custom bool   `json:"custom"`
}

func (h *Handler) getGuide(c echo.Context) error {
	settings := h.store.Settings()
	lang := strings.ToLower(strings.TrimSpace(c.QueryParam("lang")))
	if lang == "" {
		lang = settings.GuideLang
	}
	text := guide.Resolve(lang, settings.GuideCustom)
	custom := settings.GuideCustom[lang] != ""
	return c.JSON(http.StatusOK, guideResponse{Lang: lang, Text: text, Custom: custom})
}

type guidePutRequest struct {
	Lang string `json:"lang"`
	Text string `json:"text"`
}

func (h *Handler) putGuide(c echo.Context) error {
	var req guidePutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Lang = strings.ToLower(strings.TrimSpace(req.Lang))
	if req.Lang == "" || req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "lang and text are required")
	}
	err := h.store.UpdateSettings(func(s *store.Settings) {
		if s.GuideCustom == nil {
			s.GuideCustom = map[string]string{}
		}
		s.GuideCustom[req.Lang] = req.Text
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"lang": req.Lang})
}

// resetGuide drops the custom override so the built-in text applies again.
func (h *Handler) resetGuide(c echo.Context) error {
	lang := strings.ToLower(strings.TrimSpace(c.Param("lang")))
	err := h.store.UpdateSettings(func(s *store.Settings) {
		delete(s.GuideCustom, lang)
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"lang": lang, "custom": false})
}

type matchRequest struct {
	Text string `json:"text"`
}

func (h *Handler) testMatch(c echo.Context) error {
	var req matchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	hits := h.hooks.TestMatch(req.Text)
	return c.JSON(http.StatusOK, map[string]any{"count": len(hits), "hits": hits})
}

type diagnosticsResponse struct {
	Stored      int               `json:"stored"`
	StorePath   string            `json:"store_path"`
	LastInjects hooks.Diagnostics `json:"last_injection"`
}

func (h *Handler) snapshot() diagnosticsResponse {
	return diagnosticsResponse{
		Stored:      h.store.Len(),
		StorePath:   h.store.Path(),
		LastInjects: h.hooks.Diagnostics(),
	}
}

func (h *Handler) diagnostics(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snapshot())
}

// diagnosticsStream pushes a diagnostics snapshot over a websocket every
// two seconds until the client disconnects.
func (h *Handler) diagnosticsStream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return nil
		case <-ticker.C:
			if err := conn.WriteJSON(h.snapshot()); err != nil {
				h.log.Debug("diagnostics stream closed", "err", err)
				return nil
			}
		}
	}
}
