package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"svw.info/pyramid/internal/domain"
	"svw.info/pyramid/internal/generator"
	"svw.info/pyramid/internal/infrastructure/storage"
	"svw.info/pyramid/internal/logic"
	"svw.info/pyramid/internal/solver"
	"svw.info/pyramid/internal/usecase"
	"svw.info/pyramid/internal/validator"
)

// Defaults fill in request fields the client leaves out.
type Defaults struct {
	Parity   bool
	AutoNext bool
}

type Handler struct {
	UC       *usecase.Service
	Defaults Defaults
	Limiter  *rate.Limiter
}

func New(uc *usecase.Service, d Defaults, l *rate.Limiter) *Handler {
	return &Handler{UC: uc, Defaults: d, Limiter: l}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/generate", RateLimit(h.Limiter), h.handleGenerate)
	api.POST("/validate", h.handleValidate)

	s := api.Group("/sessions")
	s.POST("", RateLimit(h.Limiter), h.handleStartSession)
	s.GET("/:id", h.handleGetSession)
	s.DELETE("/:id", h.handleEndSession)
	s.POST("/:id/toggle", h.handleToggle)
	s.POST("/:id/next", RateLimit(h.Limiter), h.handleNext)
	s.PUT("/:id/settings", h.handleSettings)
	s.POST("/:id/hint", h.handleHint)
	s.POST("/:id/solve", h.handleSolve)
}

// statusFor maps core and adapter errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrLevelsOutOfRange),
		errors.Is(err, generator.ErrInvalidLevels),
		errors.Is(err, logic.ErrIndexOutOfRange),
		errors.Is(err, validator.ErrMalformed),
		errors.Is(err, solver.ErrTooWide):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, solver.ErrUnsolvable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generator.ErrGenerationFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusServiceUnavailable {
		msg = "could not build a puzzle, please retry: " + msg
	}
	c.JSON(status, gin.H{"error": msg})
}

// bindOptional decodes a JSON body; an empty body is allowed.
func bindOptional(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// ---- Generate ----

type generateReq struct {
	Levels int   `json:"levels,omitempty"`
	Parity *bool `json:"parity,omitempty"`
	Target *bool `json:"target,omitempty"`
	Seed   int64 `json:"seed,omitempty"`
}

func (r generateReq) settings(d Defaults) domain.Settings {
	parity := d.Parity
	if r.Parity != nil {
		parity = *r.Parity
	}
	return domain.Settings{Levels: r.Levels, Parity: parity, Target: r.Target}
}

type generateResp struct {
	State      *domain.GameState `json:"state"`
	Seed       int64             `json:"seed,omitempty"`
	Attempts   int               `json:"attempts"`
	DurationMs int64             `json:"durationMs"`
}

func (h *Handler) handleGenerate(c *gin.Context) {
	var req generateReq
	if !bindOptional(c, &req) {
		return
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	st, stats, err := h.UC.NewGame(c.Request.Context(), seed, req.settings(h.Defaults))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, generateResp{
		State:      st,
		Seed:       seed,
		Attempts:   stats.Attempts,
		DurationMs: stats.Duration.Milliseconds(),
	})
}

// ---- Validate ----

type validateResp struct {
	OK        bool          `json:"ok"`
	Conflicts []domain.Cell `json:"conflicts,omitempty"`
}

func (h *Handler) handleValidate(c *gin.Context) {
	var p domain.Pyramid
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	ok, conflicts, err := h.UC.Validate(c.Request.Context(), &p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, validateResp{OK: ok, Conflicts: conflicts})
}

// ---- Sessions ----

type startReq struct {
	generateReq
	AutoNext *bool `json:"autoNext,omitempty"`
}

func (r startReq) autoNext(d Defaults) bool {
	if r.AutoNext != nil {
		return *r.AutoNext
	}
	return d.AutoNext
}

type sessionResp struct {
	Session   *domain.Session `json:"session"`
	Won       bool            `json:"won,omitempty"`
	ElapsedMs int64           `json:"elapsedMs"`
}

func respondSession(c *gin.Context, status int, s *domain.Session, won bool) {
	c.JSON(status, sessionResp{
		Session:   s,
		Won:       won,
		ElapsedMs: s.Elapsed(time.Now()).Milliseconds(),
	})
}

func (h *Handler) handleStartSession(c *gin.Context) {
	var req startReq
	if !bindOptional(c, &req) {
		return
	}
	s, err := h.UC.StartSession(c.Request.Context(), req.settings(h.Defaults), req.autoNext(h.Defaults), req.Seed)
	if err != nil {
		fail(c, err)
		return
	}
	respondSession(c, http.StatusCreated, s, false)
}

func (h *Handler) handleGetSession(c *gin.Context) {
	s, err := h.UC.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondSession(c, http.StatusOK, s, false)
}

type toggleReq struct {
	Index *int `json:"index"`
}

func (h *Handler) handleToggle(c *gin.Context) {
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON or missing index"})
		return
	}
	s, won, err := h.UC.ToggleSession(c.Request.Context(), c.Param("id"), *req.Index)
	if err != nil {
		fail(c, err)
		return
	}
	respondSession(c, http.StatusOK, s, won)
}

func (h *Handler) handleNext(c *gin.Context) {
	s, err := h.UC.NextPuzzle(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondSession(c, http.StatusOK, s, false)
}

func (h *Handler) handleEndSession(c *gin.Context) {
	if err := h.UC.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// settingsReq fields left out keep the session's current values.
type settingsReq struct {
	Levels   int   `json:"levels,omitempty"`
	Parity   *bool `json:"parity,omitempty"`
	Target   *bool `json:"target,omitempty"`
	AutoNext *bool `json:"autoNext,omitempty"`
}

func (h *Handler) handleSettings(c *gin.Context) {
	var req settingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	s, err := h.UC.UpdateSettings(c.Request.Context(), c.Param("id"), usecase.SettingsUpdate{
		Levels:   req.Levels,
		Parity:   req.Parity,
		Target:   req.Target,
		AutoNext: req.AutoNext,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondSession(c, http.StatusOK, s, false)
}

type hintResp struct {
	Found bool        `json:"found"`
	Hint  domain.Hint `json:"hint,omitempty"`
}

func (h *Handler) handleHint(c *gin.Context) {
	hh, ok, err := h.UC.SessionHint(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, hintResp{Found: ok, Hint: hh})
}

type solveResp struct {
	Solution   domain.Solution `json:"solution"`
	Nodes      int             `json:"nodes"`
	DurationMs int64           `json:"durationMs"`
}

func (h *Handler) handleSolve(c *gin.Context) {
	sol, st, err := h.UC.SessionSolution(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, solveResp{Solution: sol, Nodes: st.Nodes, DurationMs: st.Duration.Milliseconds()})
}
