package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marbles/internal/level"
	"github.com/playmatatu/marbles/internal/physics"
)

const (
	defaultPreviewSteps = 60
	maxPreviewSteps     = 500
)

// regionView tags a region with its shape so clients can draw it.
type regionView struct {
	Kind   string         `json:"kind"`
	Region physics.Region `json:"region"`
}

func regionKind(r physics.Region) string {
	switch r.(type) {
	case physics.Circle:
		return "circle"
	case physics.Triangle:
		return "triangle"
	case physics.CrossBand:
		return "cross"
	case physics.Hole:
		return "hole"
	default:
		return "unknown"
	}
}

// ListLevels returns the level catalogue.
// GET /api/v1/levels
func ListLevels(c *gin.Context) {
	defs := level.All()
	out := make([]gin.H, 0, len(defs))
	for _, d := range defs {
		regions := make([]regionView, 0, len(d.Regions))
		for _, r := range d.Regions {
			regions = append(regions, regionView{Kind: regionKind(r), Region: r})
		}
		out = append(out, gin.H{
			"number":        d.Number,
			"name":          d.Name,
			"physics":       d.Physics,
			"shooter":       d.Shooter,
			"targets":       d.Targets,
			"marble_radius": d.MarbleRadius,
			"holes":         d.Holes,
			"regions":       regions,
			"target_region": d.TargetRegion,
			"rules":         d.Rules,
		})
	}
	c.JSON(http.StatusOK, gin.H{"levels": out})
}

// PreviewPath returns the aim-assist path of a lone marble on a level.
// POST /api/v1/preview
func PreviewPath(c *gin.Context) {
	var req struct {
		Level     int           `json:"level" binding:"required"`
		Start     *physics.Vec2 `json:"start"`
		Direction physics.Vec2  `json:"direction"`
		Power     float64       `json:"power"`
		Steps     int           `json:"steps"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "level required"})
		return
	}

	def, err := level.Lookup(req.Level)
	if err != nil {
		respondError(c, err)
		return
	}
	shot, err := physics.NewShot(req.Power, req.Direction)
	if err != nil {
		respondError(c, err)
		return
	}

	start := def.Shooter
	if req.Start != nil {
		start = *req.Start
	}
	steps := req.Steps
	if steps <= 0 {
		steps = defaultPreviewSteps
	}
	steps = min(steps, maxPreviewSteps)

	points := physics.PredictPath(physics.PathParams{
		Start:       start,
		Direction:   shot.Direction,
		Power:       shot.Power,
		Friction:    def.Physics.Friction,
		LaunchScale: def.Physics.LaunchScale,
		Steps:       steps,
	})
	c.JSON(http.StatusOK, gin.H{"points": points})
}
