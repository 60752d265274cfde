// internal/api/v2/ocean.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bahria/bahria-go/internal/errors"
)

// initOceanRoutes registers the ocean data endpoints
func (c *Controller) initOceanRoutes() {
	c.Group.GET("/ocean/sst", c.GetSST)
}

// GetSST returns the current sea surface temperature snapshot. The provider
// never fails; a non-live snapshot carries the cached or fallback value.
func (c *Controller) GetSST(ctx echo.Context) error {
	if c.Ocean == nil {
		return c.handleServiceError(ctx, errors.Newf("no ocean provider configured").
			Category(errors.CategoryConfiguration).
			Component("api-ocean").
			Build(), "Ocean data unavailable")
	}

	return ctx.JSON(http.StatusOK, c.Ocean.FetchCurrentSST(ctx.Request().Context()))
}
