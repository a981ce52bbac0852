package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"lbo-analyzer/internal/api/models"
	"lbo-analyzer/internal/data"

	"github.com/gin-gonic/gin"
)

// PresetHandler handles deal preset requests
type PresetHandler struct {
	presetDir string
	logger    *slog.Logger
}

// NewPresetHandler creates a new preset handler reading presets/*.yaml from dir
func NewPresetHandler(dir string, logger *slog.Logger) *PresetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	dir = data.DefaultPresetDir(dir)
	logger.Info("using preset directory", slog.String("dir", dir))
	return &PresetHandler{presetDir: dir, logger: logger}
}

// Dir returns the resolved preset directory.
func (h *PresetHandler) Dir() string { return h.presetDir }

// ListPresets handles GET /api/v1/presets
func (h *PresetHandler) ListPresets(c *gin.Context) {
	presets, err := data.ListPresets(h.presetDir, h.logger)
	if err != nil {
		respondError(c, http.StatusInternalServerError, models.CodeInternal, err)
		return
	}
	out := make([]models.PresetInfo, 0, len(presets))
	for _, p := range presets {
		out = append(out, presetInfo(p))
	}
	c.JSON(http.StatusOK, gin.H{"presets": out})
}

// GetPreset handles GET /api/v1/presets/:id and returns the full deal
func (h *PresetHandler) GetPreset(c *gin.Context) {
	p, err := data.LoadPreset(h.presetDir, c.Param("id"))
	if err != nil {
		if errors.Is(err, data.ErrPresetNotFound) {
			respondError(c, http.StatusNotFound, models.CodeNotFound, err)
			return
		}
		respondError(c, http.StatusBadRequest, models.CodeInvalidDeal, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preset": presetInfo(p), "deal": p.Deal})
}

func presetInfo(p data.Preset) models.PresetInfo {
	mode := p.Deal.Exit.Mode
	if mode == "" {
		mode = "fixed"
	}
	return models.PresetInfo{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		EntryEBITDA: p.Deal.Capital.EntryEBITDA,
		Multiple:    p.Deal.Capital.EntryMultiple,
		Leverage:    p.Deal.Capital.DebtToEBITDA,
		ExitMode:    mode,
	}
}
