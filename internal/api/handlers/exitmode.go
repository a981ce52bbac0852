package handlers

import (
	"net/http"

	"lbo-analyzer/internal/api/models"
	"lbo-analyzer/internal/model"

	"github.com/gin-gonic/gin"
)

// ListExitModes handles GET /api/v1/exit-modes
func ListExitModes(c *gin.Context) {
	modes := make([]models.ExitModeInfo, 0, len(model.ExitModes))
	for _, m := range model.ExitModes {
		modes = append(modes, exitModeInfo(m))
	}
	c.JSON(http.StatusOK, gin.H{"exit_modes": modes})
}

func exitModeInfo(m model.ExitMode) models.ExitModeInfo {
	info := models.ExitModeInfo{Name: string(m), Label: m.Label()}
	switch m {
	case model.ExitFixed:
		info.Description = "Exit at a constant multiple of final-year EBITDA."
		info.Parameters = []models.ParameterInfo{
			{
				Name:        "fixed_exit_multiple",
				Type:        "float",
				Description: "Exit EV / EBITDA (defaults to the entry multiple)",
				Default:     model.DefaultExitMultiple,
			},
		}
	case model.ExitMeanReversion:
		info.Description = "Exit multiple reverts fully to the industry multiple by exit."
		info.Parameters = []models.ParameterInfo{
			{
				Name:        "industry_multiple",
				Type:        "float",
				Description: "Industry EV / EBITDA the multiple reverts to (defaults to the entry multiple)",
			},
		}
	case model.ExitGrowthAdjusted:
		info.Description = "Entry multiple adjusted by projected revenue CAGR versus a 5% baseline, floored at 5.0x."
		info.Parameters = []models.ParameterInfo{
			{
				Name:        "growth_multiple_factor",
				Type:        "float",
				Description: "Turns of multiple per percentage point of CAGR above 5%",
				Default:     model.DefaultGrowthMultipleFactor,
			},
		}
	}
	return info
}
