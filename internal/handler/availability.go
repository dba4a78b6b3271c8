package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-slot-reservation/internal/model"
	"github.com/iliyamo/court-slot-reservation/internal/service"
)

// AvailabilityHandler exposes availability reads and batch generation.
type AvailabilityHandler struct {
	Availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	if availability == nil {
		panic("nil service passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Availability: availability}
}

// queryDate parses the required date query parameter.
func queryDate(c echo.Context) (time.Time, bool) {
	d, err := time.Parse(model.DateLayout, c.QueryParam("date"))
	return d, err == nil
}

// GetCourtAvailability handles GET /v1/courts/:id/availability?date=.  It
// returns the in-window bands of the court with availability, price and a
// remark for unavailable ones. Bands outside business hours are omitted; a
// closed date yields an empty list.
func (h *AvailabilityHandler) GetCourtAvailability(c echo.Context) error {
	courtID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
	}
	date, ok := queryDate(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required as YYYY-MM-DD"})
	}
	slots, err := h.Availability.QueryAvailability(c.Request().Context(), courtID, date)
	if err != nil {
		return respondServiceError(c, err)
	}
	if slots == nil {
		slots = []service.SlotAvailability{}
	}
	return c.JSON(http.StatusOK, echo.Map{"court_id": courtID, "date": c.QueryParam("date"), "slots": slots})
}

// GetVenueAvailability handles GET /v1/venues/:id/availability.  Optional
// start_time/end_time query parameters post-filter the bands.
func (h *AvailabilityHandler) GetVenueAvailability(c echo.Context) error {
	venueID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	date, ok := queryDate(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required as YYYY-MM-DD"})
	}
	startTime := c.QueryParam("start_time")
	endTime := c.QueryParam("end_time")
	for _, t := range []string{startTime, endTime} {
		if t == "" {
			continue
		}
		if _, valid := model.MinuteOfDay(t); !valid {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "time filters must be HH:MM"})
		}
	}
	courts, err := h.Availability.QueryVenueAvailability(c.Request().Context(), venueID, date, startTime, endTime)
	if err != nil {
		return respondServiceError(c, err)
	}
	if courts == nil {
		courts = []service.CourtAvailability{}
	}
	return c.JSON(http.StatusOK, echo.Map{"venue_id": venueID, "date": c.QueryParam("date"), "courts": courts})
}

// GenerateSlots handles POST /v1/courts/:id/slots/generate.  The body names
// one date and the overwrite flag; the response carries the generation
// status and how many records were written.
func (h *AvailabilityHandler) GenerateSlots(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	courtID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
	}
	var body struct {
		Date      string `json:"date"`
		Overwrite bool   `json:"overwrite"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, err := time.Parse(model.DateLayout, body.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required as YYYY-MM-DD"})
	}
	res, err := h.Availability.GenerateForDate(c.Request().Context(), courtID, date, body.Overwrite, merchantID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GenerateSlotsRange handles POST /v1/courts/:id/slots/generate-range and
// backfills a date span, returning the per-day breakdown.
func (h *AvailabilityHandler) GenerateSlotsRange(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	courtID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
	}
	var body struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Overwrite bool   `json:"overwrite"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, err := time.Parse(model.DateLayout, body.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date is required as YYYY-MM-DD"})
	}
	end, err := time.Parse(model.DateLayout, body.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date is required as YYYY-MM-DD"})
	}
	res, err := h.Availability.GenerateForDateRange(c.Request().Context(), courtID, start, end, body.Overwrite, merchantID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
