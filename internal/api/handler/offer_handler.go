package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adboard/ad-directory/internal/api/metrics"
	"github.com/adboard/ad-directory/internal/core/ports"
)

// HeaderAccessToken carries the token minted for a freshly provisioned
// anonymous identity back to the client.
const HeaderAccessToken = "x-access-token"

// OfferHandler handles the offer surface of the catalog plus the public
// directory listing.
type OfferHandler struct {
	catalog   ports.CatalogService
	directory ports.DirectoryService
}

func NewOfferHandler(catalog ports.CatalogService, directory ports.DirectoryService) *OfferHandler {
	return &OfferHandler{catalog: catalog, directory: directory}
}

type createOfferRequest struct {
	Title              string   `json:"title" validate:"required,max=200"`
	Description        string   `json:"description"`
	BackgroundImageURL string   `json:"background_image_url" validate:"required,url,max=200"`
	CompanyLogoURL     string   `json:"company_logo_url" validate:"required,url,max=200"`
	CompanyName        string   `json:"company_name" validate:"required,max=100"`
	CityIDs            []string `json:"city_ids" validate:"required,min=1"`
	CategoryIDs        []string `json:"category_ids"`
}

type listOffersQuery struct {
	Offset     int    `query:"offset" validate:"gte=0"`
	CityID     string `query:"city_id"`
	CategoryID string `query:"category_id"`
}

// Create handles POST /api/offers (admin or above).
//
// @Summary      Add a new offer
// @Tags         offers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOfferRequest  true  "Offer details"
// @Success      201   {object}  domain.Offer
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/offers [post]
func (h *OfferHandler) Create(c echo.Context) error {
	var req createOfferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	offer, err := h.catalog.CreateOffer(c.Request().Context(), ports.CreateOfferInput{
		Title:              req.Title,
		Description:        req.Description,
		BackgroundImageURL: req.BackgroundImageURL,
		CompanyLogoURL:     req.CompanyLogoURL,
		CompanyName:        req.CompanyName,
		CityIDs:            req.CityIDs,
		CategoryIDs:        req.CategoryIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, offer)
}

// Delete handles DELETE /api/offers/:id (superadmin only). The offer's join
// rows are cascaded with it.
//
// @Summary      Delete an offer
// @Tags         offers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Offer id"
// @Success      200  {object}  affectedResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/offers/{id} [delete]
func (h *OfferHandler) Delete(c echo.Context) error {
	affected, err := h.catalog.DeleteOffer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, affectedResponse{Affected: affected})
}

// List handles GET /api/offers, the public directory read.
//
// No credential is required: a caller without one gets an anonymous identity
// provisioned on the fly and receives its token in the x-access-token header,
// exactly once.
//
// @Summary      List offers, filtered and paginated
// @Tags         offers
// @Produce      json
// @Param        offset       query     int     false  "Pagination offset (page size is fixed at 5)"
// @Param        city_id      query     string  false  "Filter by city"
// @Param        category_id  query     string  false  "Filter by category"
// @Success      200  {array}   domain.Offer
// @Failure      401  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/offers [get]
func (h *OfferHandler) List(c echo.Context) error {
	var q listOffersQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	offers, issuedToken, err := h.directory.ListOffers(c.Request().Context(), ports.ListOffersInput{
		BearerHeader: c.Request().Header.Get(echo.HeaderAuthorization),
		CityID:       q.CityID,
		CategoryID:   q.CategoryID,
		Offset:       q.Offset,
	})
	if err != nil {
		return err
	}

	if issuedToken != "" {
		c.Response().Header().Set(HeaderAccessToken, issuedToken)
		metrics.IdentitiesProvisionedTotal.Inc()
	}
	metrics.OffersListedTotal.WithLabelValues(filterShape(q.CityID, q.CategoryID)).Inc()

	return c.JSON(http.StatusOK, offers)
}

func filterShape(cityID, categoryID string) string {
	switch {
	case cityID != "" && categoryID != "":
		return "both"
	case cityID != "":
		return "city"
	case categoryID != "":
		return "category"
	default:
		return "none"
	}
}

// Search handles GET /api/offers/search?q=<substring> (match on title).
//
// @Summary      Search offers by title substring
// @Tags         offers
// @Produce      json
// @Param        q    query     string  true  "Title substring (case-insensitive)"
// @Success      200  {array}   domain.Offer
// @Failure      404  {object}  errorResponse
// @Router       /api/offers/search [get]
func (h *OfferHandler) Search(c echo.Context) error {
	offers, err := h.catalog.SearchOffers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, offers)
}

// LinkCity handles POST /api/offers/:id/cities/:cityID (admin or above).
// Linking an already-linked pair affects zero rows and reports 404.
//
// @Summary      Link an offer to a city
// @Tags         offers
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Offer id"
// @Param        cityID  path      string  true  "City id"
// @Success      200  {object}  affectedResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/offers/{id}/cities/{cityID} [post]
func (h *OfferHandler) LinkCity(c echo.Context) error {
	affected, err := h.catalog.LinkOfferCity(c.Request().Context(), c.Param("id"), c.Param("cityID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, affectedResponse{Affected: affected})
}

// UnlinkCity handles DELETE /api/offers/:id/cities/:cityID (superadmin only).
//
// @Summary      Unlink an offer from a city
// @Tags         offers
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Offer id"
// @Param        cityID  path      string  true  "City id"
// @Success      200  {object}  affectedResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/offers/{id}/cities/{cityID} [delete]
func (h *OfferHandler) UnlinkCity(c echo.Context) error {
	affected, err := h.catalog.UnlinkOfferCity(c.Request().Context(), c.Param("id"), c.Param("cityID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, affectedResponse{Affected: affected})
}
