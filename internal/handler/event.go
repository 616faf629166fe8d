package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/service"
	"github.com/sanpolsito/ultimate-frisbee-stats/pkg/response"
)

// EventHandler covers everything that feeds the stat ledger: goals, simple
// events, the stage/confirm flow, pools, the pool timer and undo.
type EventHandler struct {
	svc service.MatchService
}

func NewEventHandler(svc service.MatchService) *EventHandler { return &EventHandler{svc: svc} }

func (h *EventHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/matches/:match_id")
	{
		g.POST("/goals", h.registerGoal)
		g.POST("/points", h.registerTeamPoint)
		g.POST("/events", h.registerEvent)
		g.GET("/events", h.listEvents)
		g.DELETE("/events/:event_id", h.undoEvent)

		g.POST("/events/stage", h.stageEvent)
		g.GET("/events/pending", h.pendingEvent)
		g.POST("/events/confirm", h.confirmEvent)
		g.POST("/events/cancel", h.cancelEvent)

		g.POST("/pools", h.registerPool)
		g.POST("/pool-timer/start", h.startPoolTimer)
		g.POST("/pool-timer/stop", h.stopPoolTimer)
		g.POST("/pool-timer/reset", h.resetPoolTimer)
	}
}

type goalRequest struct {
	Team         string `json:"team"`
	ScorerID     string `json:"scorer_id"`
	ScorerName   string `json:"scorer_name"`
	AssisterID   string `json:"assister_id"`
	AssisterName string `json:"assister_name"`
}

func (h *EventHandler) registerGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	m, err := h.svc.RegisterGoal(c.Request.Context(), matchID(c), service.GoalInput{
		Team:         req.Team,
		ScorerID:     req.ScorerID,
		ScorerName:   req.ScorerName,
		AssisterID:   req.AssisterID,
		AssisterName: req.AssisterName,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, m)
}

type teamPointRequest struct {
	Team string `json:"team"`
}

func (h *EventHandler) registerTeamPoint(c *gin.Context) {
	var req teamPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	m, err := h.svc.RegisterTeamPoint(c.Request.Context(), matchID(c), req.Team)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, m)
}

type eventRequest struct {
	Team       string `json:"team"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Type       string `json:"type"`
	SubType    string `json:"sub_type"`
}

func (r eventRequest) toInput() service.EventInput {
	return service.EventInput{
		Team:       r.Team,
		PlayerID:   r.PlayerID,
		PlayerName: r.PlayerName,
		Type:       r.Type,
		SubType:    r.SubType,
	}
}

func (h *EventHandler) registerEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	m, err := h.svc.RegisterEvent(c.Request.Context(), matchID(c), req.toInput())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, m)
}

func (h *EventHandler) listEvents(c *gin.Context) {
	events, err := h.svc.ListEvents(c.Request.Context(), matchID(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, events)
}

func (h *EventHandler) undoEvent(c *gin.Context) {
	m, err := h.svc.UndoEvent(c.Request.Context(), matchID(c), c.Param("event_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

func (h *EventHandler) stageEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	if err := h.svc.StageEvent(c.Request.Context(), matchID(c), req.toInput()); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) pendingEvent(c *gin.Context) {
	p, err := h.svc.PendingEvent(c.Request.Context(), matchID(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if p == nil {
		c.Status(http.StatusNoContent)
		return
	}
	response.WriteData(c, http.StatusOK, p)
}

func (h *EventHandler) confirmEvent(c *gin.Context) {
	m, err := h.svc.ConfirmEvent(c.Request.Context(), matchID(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, m)
}

func (h *EventHandler) cancelEvent(c *gin.Context) {
	if err := h.svc.CancelEvent(c.Request.Context(), matchID(c)); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type poolRequest struct {
	Team       string  `json:"team"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Duration   float64 `json:"duration"`
	Result     string  `json:"result"`
}

func (h *EventHandler) registerPool(c *gin.Context) {
	var req poolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	m, err := h.svc.RegisterPool(c.Request.Context(), matchID(c), service.PoolInput{
		Team:       req.Team,
		PlayerID:   req.PlayerID,
		PlayerName: req.PlayerName,
		Duration:   req.Duration,
		Result:     req.Result,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, m)
}

func (h *EventHandler) startPoolTimer(c *gin.Context) {
	if err := h.svc.StartPoolTimer(c.Request.Context(), matchID(c)); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) stopPoolTimer(c *gin.Context) {
	seconds, err := h.svc.StopPoolTimer(c.Request.Context(), matchID(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"duration": seconds})
}

func (h *EventHandler) resetPoolTimer(c *gin.Context) {
	if err := h.svc.ResetPoolTimer(c.Request.Context(), matchID(c)); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
