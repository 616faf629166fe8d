package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/service"
	"github.com/sanpolsito/ultimate-frisbee-stats/pkg/response"
)

// MatchHandler covers match lifecycle: creation, lookup, clock and state
// transitions. Event registration lives in EventHandler.
type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/matches")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/:match_id", h.getByID)

		g.POST("/:match_id/clock/pause", h.pauseClock)
		g.POST("/:match_id/clock/resume", h.resumeClock)
		g.POST("/:match_id/halftime/start", h.startHalftime)
		g.POST("/:match_id/halftime/end", h.endHalftime)
		g.POST("/:match_id/finish", h.finish)
		g.PUT("/:match_id/gender", h.setGender)
	}
}

type createMatchRequest struct {
	TeamA       string             `json:"team_a"`
	TeamB       string             `json:"team_b"`
	Profile     string             `json:"profile"`
	IsMixedGame bool               `json:"is_mixed_game"`
	Config      *model.MatchConfig `json:"config"`
}

func (h *MatchHandler) create(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	in := service.CreateMatchInput{
		TeamA:       req.TeamA,
		TeamB:       req.TeamB,
		Profile:     req.Profile,
		IsMixedGame: req.IsMixedGame,
	}
	if req.Config != nil {
		in.Config = *req.Config
	}
	m, err := h.svc.CreateMatch(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, m)
}

func (h *MatchHandler) getByID(c *gin.Context) {
	m, err := h.svc.GetMatch(c.Request.Context(), matchID(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

func (h *MatchHandler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page := repository.Page{Limit: limit, Offset: offset}
	res, err := h.svc.ListMatches(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *MatchHandler) pauseClock(c *gin.Context) {
	h.stateOp(c, h.svc.PauseClock)
}

func (h *MatchHandler) resumeClock(c *gin.Context) {
	h.stateOp(c, h.svc.ResumeClock)
}

func (h *MatchHandler) startHalftime(c *gin.Context) {
	h.stateOp(c, h.svc.StartHalftime)
}

func (h *MatchHandler) endHalftime(c *gin.Context) {
	h.stateOp(c, h.svc.EndHalftime)
}

func (h *MatchHandler) finish(c *gin.Context) {
	h.stateOp(c, h.svc.FinishMatch)
}

type setGenderRequest struct {
	Gender string `json:"gender"`
}

func (h *MatchHandler) setGender(c *gin.Context) {
	var req setGenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	m, err := h.svc.SetPointGender(c.Request.Context(), matchID(c), req.Gender)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

func (h *MatchHandler) stateOp(c *gin.Context, op func(ctx context.Context, id int64) (model.Match, error)) {
	m, err := op(c.Request.Context(), matchID(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, m)
}

// matchID parses the wildcard; 0 falls through to service-side validation.
func matchID(c *gin.Context) int64 {
	id, _ := strconv.ParseInt(c.Param("match_id"), 10, 64)
	return id
}
