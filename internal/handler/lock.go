package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-slot-reservation/internal/model"
	"github.com/iliyamo/court-slot-reservation/internal/repository"
	"github.com/iliyamo/court-slot-reservation/internal/service"
)

// LockHandler exposes merchant lock management.
type LockHandler struct {
	Locks *service.LockService
}

// NewLockHandler constructs a LockHandler.
func NewLockHandler(locks *service.LockService) *LockHandler {
	if locks == nil {
		panic("nil service passed to NewLockHandler")
	}
	return &LockHandler{Locks: locks}
}

// LockSlot handles POST /v1/slots/lock.  It converts one available
// band-date into a merchant hold and returns the created record id.
func (h *LockHandler) LockSlot(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		TemplateID  int64  `json:"template_id"`
		BookingDate string `json:"booking_date"`
		Reason      string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TemplateID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "template_id is required"})
	}
	date, err := time.Parse(model.DateLayout, body.BookingDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_date is required as YYYY-MM-DD"})
	}
	recordID, err := h.Locks.Lock(c.Request().Context(), body.TemplateID, date, body.Reason, merchantID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"record_id": recordID})
}

// LockSlotBatch handles POST /v1/slots/lock-batch.  The response is always a
// per-item breakdown; partial failure is not an HTTP error.
func (h *LockHandler) LockSlotBatch(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Requests []service.LockRequest `json:"requests"`
		Reason   string                `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Locks.LockBatch(c.Request().Context(), body.Requests, body.Reason, merchantID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// UnlockSlot handles POST /v1/slots/unlock.
func (h *LockHandler) UnlockSlot(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		RecordID int64 `json:"record_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RecordID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "record_id is required"})
	}
	if err := h.Locks.Unlock(c.Request().Context(), body.RecordID, merchantID); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnlockSlotBatch handles POST /v1/slots/unlock-batch.
func (h *LockHandler) UnlockSlotBatch(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		RecordIDs []int64 `json:"record_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Locks.UnlockBatch(c.Request().Context(), body.RecordIDs, merchantID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListLockedSlots handles GET /v1/slots/locked.  Exactly one of court_id or
// venue_id must be given together with a start_date/end_date range; the
// optional locked_type narrows to merchant locks or customer bookings.
func (h *LockHandler) ListLockedSlots(c echo.Context) error {
	merchantID, err := getMerchantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var f repository.LockedSlotFilter
	if raw := c.QueryParam("court_id"); raw != "" {
		id, ok := parsePositive(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court_id"})
		}
		f.CourtID = &id
	}
	if raw := c.QueryParam("venue_id"); raw != "" {
		id, ok := parsePositive(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue_id"})
		}
		f.VenueID = &id
	}
	f.StartDate = c.QueryParam("start_date")
	f.EndDate = c.QueryParam("end_date")
	if raw := c.QueryParam("locked_type"); raw != "" {
		f.LockedType = &raw
	}
	slots, err := h.Locks.LockedSlots(c.Request().Context(), merchantID, f)
	if err != nil {
		return respondServiceError(c, err)
	}
	if slots == nil {
		slots = []*model.LockedSlot{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots})
}
