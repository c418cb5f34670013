package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adboard/ad-directory/internal/core/ports"
)

// CategoryHandler handles the category surface of the catalog.
type CategoryHandler struct {
	catalog ports.CatalogService
}

func NewCategoryHandler(catalog ports.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

type createCategoryRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	ImageURL string `json:"image_url" validate:"required,url,max=200"`
}

// Create handles POST /api/categories (admin or above).
//
// @Summary      Add a new category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCategoryRequest  true  "Category details"
// @Success      201   {object}  domain.Category
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.catalog.CreateCategory(c.Request().Context(), req.Name, req.ImageURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

// Delete handles DELETE /api/categories/:id (superadmin only).
//
// @Summary      Delete a category
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Category id"
// @Success      200  {object}  affectedResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	affected, err := h.catalog.DeleteCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, affectedResponse{Affected: affected})
}

// List handles GET /api/categories.
//
// @Summary      List all categories
// @Tags         categories
// @Produce      json
// @Success      200  {array}  domain.Category
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

// Search handles GET /api/categories/search?q=<substring>.
//
// @Summary      Search categories by name substring
// @Tags         categories
// @Produce      json
// @Param        q    query     string  true  "Name substring (case-insensitive)"
// @Success      200  {array}   domain.Category
// @Failure      404  {object}  errorResponse
// @Router       /api/categories/search [get]
func (h *CategoryHandler) Search(c echo.Context) error {
	categories, err := h.catalog.SearchCategories(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}
