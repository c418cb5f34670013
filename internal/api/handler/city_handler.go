package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adboard/ad-directory/internal/core/ports"
)

// CityHandler handles the city surface of the catalog.
type CityHandler struct {
	catalog ports.CatalogService
}

func NewCityHandler(catalog ports.CatalogService) *CityHandler {
	return &CityHandler{catalog: catalog}
}

type createCityRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// affectedResponse reports how many rows a delete or link mutation touched.
type affectedResponse struct {
	Affected int64 `json:"affected"`
}

// Create handles POST /api/cities (admin or above).
//
// @Summary      Add a new city
// @Tags         cities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCityRequest  true  "City name"
// @Success      201   {object}  domain.City
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/cities [post]
func (h *CityHandler) Create(c echo.Context) error {
	var req createCityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	city, err := h.catalog.CreateCity(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, city)
}

// Delete handles DELETE /api/cities/:id (superadmin only). A city still
// referenced by offers is rejected with the exact linked count.
//
// @Summary      Delete a city
// @Tags         cities
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "City id"
// @Success      200  {object}  affectedResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/cities/{id} [delete]
func (h *CityHandler) Delete(c echo.Context) error {
	affected, err := h.catalog.DeleteCity(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, affectedResponse{Affected: affected})
}

// List handles GET /api/cities.
//
// @Summary      List all cities
// @Tags         cities
// @Produce      json
// @Success      200  {array}  domain.City
// @Router       /api/cities [get]
func (h *CityHandler) List(c echo.Context) error {
	cities, err := h.catalog.ListCities(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cities)
}

// Search handles GET /api/cities/search?q=<substring>. An empty match is a
// 404, not an empty success.
//
// @Summary      Search cities by name substring
// @Tags         cities
// @Produce      json
// @Param        q    query     string  true  "Name substring (case-insensitive)"
// @Success      200  {array}   domain.City
// @Failure      404  {object}  errorResponse
// @Router       /api/cities/search [get]
func (h *CityHandler) Search(c echo.Context) error {
	cities, err := h.catalog.SearchCities(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cities)
}
