// internal/api/v2/species.go
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/species"
)

// SpeciesListResponse is returned by GET /species.
type SpeciesListResponse struct {
	Species []species.Profile `json:"species"`
	Count   int               `json:"count"`
}

// SpeciesDetail is a species profile together with its economic reference.
type SpeciesDetail struct {
	species.Profile
	Economics species.Economics `json:"economics"`
}

// initSpeciesRoutes registers all species-related API endpoints
func (c *Controller) initSpeciesRoutes() {
	c.Group.GET("/species", c.ListSpecies)
	c.Group.GET("/species/:code", c.GetSpecies)
}

// ListSpecies returns the whole reference catalog in catalog order.
func (c *Controller) ListSpecies(ctx echo.Context) error {
	profiles := c.Species.List()
	return ctx.JSON(http.StatusOK, SpeciesListResponse{
		Species: profiles,
		Count:   len(profiles),
	})
}

// GetSpecies returns one species by code. Codes are case-insensitive.
func (c *Controller) GetSpecies(ctx echo.Context) error {
	code := strings.TrimSpace(ctx.Param("code"))
	if code == "" {
		return c.HandleError(ctx, errors.Newf("species code is required").
			Category(errors.CategoryValidation).
			Component("api-species").
			Build(), "Missing species code", http.StatusBadRequest)
	}

	profile, ok := c.Species.Get(code)
	if !ok {
		return c.handleServiceError(ctx, species.NotFound(code), "Unknown species")
	}

	return ctx.JSON(http.StatusOK, SpeciesDetail{
		Profile:   profile,
		Economics: c.Species.Economics(profile.Code),
	})
}
