package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/service"
	"github.com/sanpolsito/ultimate-frisbee-stats/internal/ws"
)

// Register mounts all public routes on the given engine.
// Accepts service layer dependencies for API endpoints.
func Register(r *gin.Engine, repo Pinger, teamSvc service.TeamService, matchSvc service.MatchService, hub *ws.Hub) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix) // Versioning added via single source of truth
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewTeamHandler(teamSvc).Register(api)
		mh := NewMatchHandler(matchSvc)
		mh.Register(api)
		NewEventHandler(matchSvc).Register(api)
		if hub != nil {
			NewWSHandler(hub).Register(api)
		}
	}
}
