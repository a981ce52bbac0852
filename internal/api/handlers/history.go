package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"lbo-analyzer/internal/analysis"
	"lbo-analyzer/internal/api/models"
	"lbo-analyzer/internal/data"

	"github.com/gin-gonic/gin"
)

// MaxHistoryBytes caps uploaded CSV size.
const MaxHistoryBytes = 1 << 20

// HistoryHandler analyzes uploaded historical financials
type HistoryHandler struct {
	logger *slog.Logger
}

func NewHistoryHandler(logger *slog.Logger) *HistoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryHandler{logger: logger}
}

// AnalyzeHistory handles POST /api/v1/history?mode=base|conservative|optimistic.
// The body is either raw CSV or a multipart form with a "file" field.
func (h *HistoryHandler) AnalyzeHistory(c *gin.Context) {
	mode, err := analysis.ParseMode(c.Query("mode"))
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
		return
	}

	body, closeBody, err := csvBody(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err)
		return
	}
	defer closeBody()

	hist, warnings, err := data.LoadHistoricalCSV(io.LimitReader(body, MaxHistoryBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    models.CodeInvalidCSV,
				Message: err.Error(),
				Details: map[string]interface{}{"warnings": warnings},
			},
		})
		return
	}
	summary, err := analysis.AnalyzeHistory(hist)
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidCSV, err)
		return
	}
	latest, _ := hist.Latest()
	h.logger.Info("history analyzed",
		slog.Int("years", summary.YearsOfData),
		slog.Int("warnings", len(warnings)),
		slog.String("mode", mode),
	)
	c.JSON(http.StatusOK, models.HistoryResponse{
		Rows:       hist.Rows,
		Columns:    hist.Columns,
		Warnings:   warnings,
		Latest:     latest,
		Summary:    summary,
		Calibrated: analysis.CalibrateGrowth(summary, latest, mode),
	})
}

func csvBody(c *gin.Context) (io.Reader, func(), error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, nil, errors.New("request body must contain CSV data")
	}
	return c.Request.Body, func() {}, nil
}
