package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/repository"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/service"
	"github.com/sanpolsito/ultimate-frisbee-stats/pkg/response"
)

type TeamHandler struct {
	svc service.TeamService
}

func NewTeamHandler(svc service.TeamService) *TeamHandler { return &TeamHandler{svc: svc} }

func (h *TeamHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/teams")
	{
		g.POST("", h.create)
		// Use a stable wildcard name (team_id) so nested routes can reuse it without Gin conflicts.
		g.GET("/:team_id", h.getByID)
		g.GET("", h.list)
	}
}

type createTeamRequest struct {
	Name     string                    `json:"name"`
	City     string                    `json:"city"`
	Coach    string                    `json:"coach"`
	Founded  int                       `json:"founded"`
	Category string                    `json:"category"`
	Players  []createTeamPlayerRequest `json:"players"`
}

type createTeamPlayerRequest struct {
	Name     string `json:"name"`
	Number   int    `json:"number"`
	Position string `json:"position"`
}

func (h *TeamHandler) create(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput) // internal parsing details stay internal
		return
	}
	in := service.CreateTeamInput{
		Name:     req.Name,
		City:     req.City,
		Coach:    req.Coach,
		Founded:  req.Founded,
		Category: req.Category,
	}
	for _, p := range req.Players {
		in.Players = append(in.Players, service.CreateTeamPlayerInput{
			Name:     p.Name,
			Number:   p.Number,
			Position: p.Position,
		})
	}
	team, err := h.svc.CreateTeam(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, team)
}

func (h *TeamHandler) getByID(c *gin.Context) {
	idStr := c.Param("team_id")
	id, _ := strconv.ParseInt(idStr, 10, 64)
	team, err := h.svc.GetTeam(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, team)
}

func (h *TeamHandler) list(c *gin.Context) {
	// A name filter returns the single matching roster team.
	if name := c.Query("name"); name != "" {
		team, err := h.svc.GetTeamByName(c.Request.Context(), name)
		if err != nil {
			response.WriteError(c, err)
			return
		}
		response.WriteData(c, http.StatusOK, team)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page := repository.Page{Limit: limit, Offset: offset}
	res, err := h.svc.ListTeams(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}
