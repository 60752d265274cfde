// internal/api/v2/analyses.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bahria/bahria-go/internal/analysis"
	"github.com/bahria/bahria-go/internal/engine"
	"github.com/bahria/bahria-go/internal/errors"
)

// AnalysisRequest is the JSON body accepted by the analysis endpoints.
type AnalysisRequest struct {
	SpeciesCode    string   `json:"species_code"`
	AvgSizeCm      float64  `json:"avg_size_cm"`
	AvgWeightG     float64  `json:"avg_weight_g"`
	Count          int      `json:"count"`
	Zone           string   `json:"zone"`
	Date           string   `json:"date,omitempty"` // YYYY-MM-DD, today when empty
	Notes          string   `json:"notes,omitempty"`
	UpwellingIndex *float64 `json:"upwelling_index,omitempty"`
	SST            *float64 `json:"sst,omitempty"` // replaces the ocean provider when set
}

// toRequest converts the body into an analysis request.
func (r *AnalysisRequest) toRequest() (analysis.Request, error) {
	sample := engine.Sample{
		SpeciesCode: r.SpeciesCode,
		AvgSizeCm:   r.AvgSizeCm,
		AvgWeightG:  r.AvgWeightG,
		Count:       r.Count,
		Zone:        r.Zone,
		Notes:       r.Notes,
	}

	if date := strings.TrimSpace(r.Date); date != "" {
		parsed, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return analysis.Request{}, errors.New(err).
				Component("api-analysis").
				Category(errors.CategoryValidation).
				Context("fields", map[string]string{"date": "must be a YYYY-MM-DD date"}).
				Build()
		}
		sample.Date = parsed
	}

	return analysis.Request{
		Sample:    sample,
		Upwelling: r.UpwellingIndex,
		SST:       r.SST,
	}, nil
}

// initAnalysisRoutes registers the analysis endpoints
func (c *Controller) initAnalysisRoutes() {
	c.Group.POST("/analyses", c.CreateAnalysis)
	c.Group.POST("/analyses/preview", c.PreviewAnalysis)
}

// CreateAnalysis runs the full pipeline, including the SST lookup and the
// recommendation generator, and returns the report.
func (c *Controller) CreateAnalysis(ctx echo.Context) error {
	req, err := c.bindRequest(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid analysis request", http.StatusBadRequest)
	}

	report, err := c.Analysis.Analyze(ctx.Request().Context(), req)
	if err != nil {
		return c.handleServiceError(ctx, err, "Analysis failed")
	}

	return ctx.JSON(http.StatusCreated, report)
}

// PreviewAnalysis evaluates a sample against an explicit SST without network access.
func (c *Controller) PreviewAnalysis(ctx echo.Context) error {
	req, err := c.bindRequest(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid analysis request", http.StatusBadRequest)
	}

	report, err := c.Analysis.Preview(req)
	if err != nil {
		return c.handleServiceError(ctx, err, "Preview failed")
	}

	return ctx.JSON(http.StatusOK, report)
}

func (c *Controller) bindRequest(ctx echo.Context) (analysis.Request, error) {
	var body AnalysisRequest
	if err := ctx.Bind(&body); err != nil {
		return analysis.Request{}, errors.New(err).
			Component("api-analysis").
			Category(errors.CategoryValidation).
			Build()
	}
	return body.toRequest()
}
