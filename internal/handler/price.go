package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-slot-reservation/internal/model"
	"github.com/iliyamo/court-slot-reservation/internal/service"
)

// PriceHandler exposes merchant price template management.
type PriceHandler struct {
	Prices *service.PriceService
}

// NewPriceHandler constructs a PriceHandler.
func NewPriceHandler(prices *service.PriceService) *PriceHandler {
	if prices == nil {
		panic("nil service passed to NewPriceHandler")
	}
	return &PriceHandler{Prices: prices}
}

// pricePeriodBody is the wire shape of one template period.
type pricePeriodBody struct {
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	WeekdayPriceCents int64  `json:"weekday_price_cents"`
	WeekendPriceCents int64  `json:"weekend_price_cents"`
	HolidayPriceCents int64  `json:"holiday_price_cents"`
}

func (b pricePeriodBody) toModel() model.PriceTemplatePeriod {
	return model.PriceTemplatePeriod{
		StartTime:         b.StartTime,
		EndTime:           b.EndTime,
		WeekdayPriceCents: b.WeekdayPriceCents,
		WeekendPriceCents: b.WeekendPriceCents,
		HolidayPriceCents: b.HolidayPriceCents,
		IsEnabled:         true,
	}
}

func periodsToModel(in []pricePeriodBody) []model.PriceTemplatePeriod {
	out := make([]model.PriceTemplatePeriod, 0, len(in))
	for _, p := range in {
		out = append(out, p.toModel())
	}
	return out
}

func periodJSON(p *model.PriceTemplatePeriod) echo.Map {
	return echo.Map{
		"id":                  p.ID,
		"start_time":          p.StartTime,
		"end_time":            p.EndTime,
		"weekday_price_cents": p.WeekdayPriceCents,
		"weekend_price_cents": p.WeekendPriceCents,
		"holiday_price_cents": p.HolidayPriceCents,
	}
}

func templateJSON(t *model.PriceTemplate) echo.Map {
	return echo.Map{
		"id":         t.ID,
		"name":       t.Name,
		"is_default": t.IsDefault,
		"is_enabled": t.IsEnabled,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
}

// CreateTemplate handles POST /v1/price-templates.
func (h *PriceHandler) CreateTemplate(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name      string            `json:"name"`
		IsDefault bool              `json:"is_default"`
		Periods   []pricePeriodBody `json:"periods"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tpl, err := h.Prices.Create(c.Request().Context(), merchantID, body.Name, body.IsDefault, periodsToModel(body.Periods))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, templateJSON(tpl))
}

// UpdateTemplate handles PUT /v1/price-templates/:id.  Periods are replaced
// wholesale.
func (h *PriceHandler) UpdateTemplate(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	var body struct {
		Name      string            `json:"name"`
		IsEnabled *bool             `json:"is_enabled"`
		Periods   []pricePeriodBody `json:"periods"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	enabled := true
	if body.IsEnabled != nil {
		enabled = *body.IsEnabled
	}
	if err := h.Prices.Update(c.Request().Context(), merchantID, id, body.Name, enabled, periodsToModel(body.Periods)); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetTemplate handles GET /v1/price-templates/:id.
func (h *PriceHandler) GetTemplate(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	tpl, periods, err := h.Prices.Get(c.Request().Context(), merchantID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	out := templateJSON(tpl)
	items := make([]echo.Map, 0, len(periods))
	for _, p := range periods {
		items = append(items, periodJSON(p))
	}
	out["periods"] = items
	return c.JSON(http.StatusOK, out)
}

// ListTemplates handles GET /v1/price-templates.
func (h *PriceHandler) ListTemplates(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tpls, err := h.Prices.List(c.Request().Context(), merchantID)
	if err != nil {
		return respondServiceError(c, err)
	}
	items := make([]echo.Map, 0, len(tpls))
	for _, t := range tpls {
		items = append(items, templateJSON(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// SetDefaultTemplate handles POST /v1/price-templates/:id/default.
func (h *PriceHandler) SetDefaultTemplate(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	if err := h.Prices.SetDefault(c.Request().Context(), merchantID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteTemplate handles DELETE /v1/price-templates/:id.  Templates still
// bound to a venue cannot be removed.
func (h *PriceHandler) DeleteTemplate(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	if err := h.Prices.Delete(c.Request().Context(), merchantID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BindVenueTemplate handles POST /v1/venues/:id/price-template.  A
// template_id of 0 clears the binding back to the merchant default.
func (h *PriceHandler) BindVenueTemplate(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var body struct {
		TemplateID int64 `json:"template_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Prices.Bind(c.Request().Context(), merchantID, venueID, body.TemplateID); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
