package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"lbo-analyzer/internal/analysis"
	"lbo-analyzer/internal/api/models"
	"lbo-analyzer/internal/cache"
	"lbo-analyzer/internal/config"
	"lbo-analyzer/internal/data"
	"lbo-analyzer/internal/format"
	"lbo-analyzer/internal/lbo"
	"lbo-analyzer/internal/model"

	"github.com/gin-gonic/gin"
)

// LBOHandler handles engine runs, comparisons, sensitivity grids and scoring
type LBOHandler struct {
	memo      *cache.Memo
	presetDir string
	workers   int
	logger    *slog.Logger
}

// NewLBOHandler creates a new LBO handler. workers bounds grid concurrency (0 = GOMAXPROCS).
func NewLBOHandler(memo *cache.Memo, presetDir string, workers int, logger *slog.Logger) *LBOHandler {
	if memo == nil {
		memo = cache.NewMemo(nil, nil, 0, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LBOHandler{memo: memo, presetDir: presetDir, workers: workers, logger: logger}
}

// RunLBO handles POST /api/v1/lbo
func (h *LBOHandler) RunLBO(c *gin.Context) {
	var req models.LBORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
		return
	}

	in, ok := h.inputs(c, req.DealSource)
	if !ok {
		return
	}
	res, hit, err := h.memo.Run(c.Request.Context(), in)
	if err != nil {
		h.engineError(c, err)
		return
	}
	h.logger.Info("lbo run",
		slog.String("id", in.Key()),
		slog.Bool("cached", hit),
		slog.String("exit_mode", string(in.Exit.Mode)),
	)
	c.JSON(http.StatusOK, buildLBOResponse(in.Key(), res, hit, req.Options.IncludeTables))
}

// GetLBO handles GET /api/v1/lbo/:id
func (h *LBOHandler) GetLBO(c *gin.Context) {
	id := c.Param("id")
	res, ok := h.memo.Lookup(c.Request.Context(), id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    models.CodeNotFound,
				Message: "result not found or expired; re-run POST /api/v1/lbo",
				Details: map[string]interface{}{"id": id},
			},
		})
		return
	}
	c.JSON(http.StatusOK, buildLBOResponse(id, res, true, true))
}

// CompareLBO handles POST /api/v1/lbo/compare.
// A failing variation is reported with its error; the others still run.
func (h *LBOHandler) CompareLBO(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
		return
	}
	base, err := h.resolveDeal(req.Base)
	if err != nil {
		h.dealError(c, err)
		return
	}

	ctx := c.Request.Context()
	comparison := make([]models.ComparisonResult, 0, len(req.Variations))
	results := make(map[string]*lbo.Result, len(req.Variations))
	for _, variation := range req.Variations {
		row := models.ComparisonResult{Name: variation.Name}
		merged := config.MergeDeal(base, variation.Deal)
		in, err := merged.ToInputs()
		if err != nil {
			row.Error = err.Error()
			comparison = append(comparison, row)
			continue
		}
		res, _, err := h.memo.Run(ctx, in)
		if err != nil {
			if ctx.Err() != nil {
				h.engineError(c, err)
				return
			}
			row.Error = err.Error()
			comparison = append(comparison, row)
			continue
		}
		summary := res.Summary()
		row.ID = in.Key()
		row.Summary = &summary
		results[variation.Name] = res
		comparison = append(comparison, row)
	}

	ranks := make(map[string]int, len(results))
	for _, r := range analysis.RankByIRR(results) {
		ranks[r.Name] = r.Rank
	}
	for i := range comparison {
		comparison[i].Rank = ranks[comparison[i].Name]
	}
	c.JSON(http.StatusOK, models.CompareResponse{Comparison: comparison})
}

// RunSensitivity handles POST /api/v1/sensitivity
func (h *LBOHandler) RunSensitivity(c *gin.Context) {
	var req models.SensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
		return
	}
	in, ok := h.inputs(c, req.DealSource)
	if !ok {
		return
	}
	grid, ok := h.grid(c, in, req)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.SensitivityResponse{
		Grid:    grid,
		IRR:     grid.Pivot(lbo.MetricIRR),
		MOIC:    grid.Pivot(lbo.MetricMOIC),
		Summary: grid.Summary(),
	})
}

// ScoreDeal handles POST /api/v1/score
func (h *LBOHandler) ScoreDeal(c *gin.Context) {
	var req models.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
		return
	}
	in, ok := h.inputs(c, req.DealSource)
	if !ok {
		return
	}
	res, _, err := h.memo.Run(c.Request.Context(), in)
	if err != nil {
		h.engineError(c, err)
		return
	}
	grid, ok := h.grid(c, in, req.SensitivityRequest)
	if !ok {
		return
	}

	scoring := analysis.ScoringInputsFromResult(res, grid, req.EBITDAGrowthVolatility)
	card := analysis.Score(scoring)
	h.logger.Info("deal scored",
		slog.String("id", in.Key()),
		slog.Int("score", card.TotalScore),
		slog.String("risk_level", string(card.RiskLevel)),
	)
	c.JSON(http.StatusOK, models.ScoreResponse{
		ID:           in.Key(),
		Summary:      res.Summary(),
		Inputs:       scoring,
		Score:        card,
		Contribution: analysis.ContributionFromResult(res),
		Grid:         grid.Summary(),
	})
}

// Helper methods

func (h *LBOHandler) grid(c *gin.Context, in model.Inputs, req models.SensitivityRequest) (*lbo.Grid, bool) {
	growth := req.GrowthRates
	if len(growth) == 0 {
		growth = lbo.DefaultGrowthRates
	}
	multiples := req.ExitMultiples
	if len(multiples) == 0 {
		multiples = lbo.DefaultExitMultiples(in.Capital.EntryMultiple)
	}
	grid, err := h.memo.Engine().BuildGrid(c.Request.Context(), in, growth, multiples, lbo.GridOptions{Workers: h.workers})
	if err != nil {
		if errors.Is(err, lbo.ErrEmptyAxis) {
			respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
			return nil, false
		}
		h.engineError(c, err)
		return nil, false
	}
	return grid, true
}

// inputs resolves and validates the request deal, writing the error response on failure.
func (h *LBOHandler) inputs(c *gin.Context, src models.DealSource) (model.Inputs, bool) {
	deal, err := h.resolveDeal(src)
	if err != nil {
		h.dealError(c, err)
		return model.Inputs{}, false
	}
	in, err := deal.ToInputs()
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidDeal, err)
		return model.Inputs{}, false
	}
	return in, true
}

// resolveDeal loads the preset (if any) and overlays the request deal onto it.
func (h *LBOHandler) resolveDeal(src models.DealSource) (config.DealConfig, error) {
	if src.PresetID == "" {
		return src.Deal, nil
	}
	p, err := data.LoadPreset(h.presetDir, src.PresetID)
	if err != nil {
		return config.DealConfig{}, err
	}
	return config.MergeDeal(p.Deal, src.Deal), nil
}

func (h *LBOHandler) dealError(c *gin.Context, err error) {
	if errors.Is(err, data.ErrPresetNotFound) {
		respondError(c, http.StatusNotFound, models.CodeNotFound, err)
		return
	}
	h.logger.Error("preset load failed", slog.Any("error", err))
	respondError(c, http.StatusBadRequest, models.CodeInvalidDeal, err)
}

func (h *LBOHandler) engineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lbo.ErrInvalidInputs):
		respondError(c, http.StatusBadRequest, models.CodeInvalidDeal, err)
	case errors.Is(err, lbo.ErrUndefinedCAGR):
		respondError(c, http.StatusUnprocessableEntity, models.CodeEngineError, err)
	default:
		h.logger.Error("engine run failed", slog.Any("error", err))
		respondError(c, http.StatusInternalServerError, models.CodeEngineError, err)
	}
}

func buildLBOResponse(id string, res *lbo.Result, cached, includeTables bool) models.LBOResponse {
	k := res.KPIs()
	resp := models.LBOResponse{
		ID:              id,
		Status:          "ok",
		Cached:          cached,
		Summary:         res.Summary(),
		KPIs:            k,
		RiskFlags:       res.RiskFlags,
		ExitMethodology: res.ExitMethodology,
		Display: models.DisplayKPIs{
			IRR:                 format.PercentPtr(k.IRR),
			MOIC:                format.MultiplePtr(k.MOIC),
			ExitEquityValue:     format.Currency(k.ExitEquityValue),
			EntryEV:             format.Currency(k.EntryEV),
			MaxDebtToEBITDA:     format.Multiple(k.MaxDebtToEBITDA),
			MinInterestCoverage: format.Multiple(k.MinInterestCoverage),
			DebtPaydown:         format.Percent(k.DebtPaydownPct),
			EBITDACAGR:          format.PercentPtr(k.EBITDACAGR),
		},
	}
	if includeTables {
		resp.Result = res
	}
	return resp
}

func respondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}
