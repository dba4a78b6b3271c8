package handler // handler defines the HTTP handlers of the availability API

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-slot-reservation/internal/repository"
	"github.com/iliyamo/court-slot-reservation/internal/service"
)

// getMerchantID extracts the merchant_id the JWT middleware stored in the
// context and converts it to int64. Authorization happens upstream; this is
// only the resolved identity the services re-validate ownership against.
func getMerchantID(c echo.Context) (int64, error) {
	v := c.Get("merchant_id")
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid merchant_id in context")
}

// respondServiceError maps service and repository errors onto HTTP
// responses: validation 400, ownership 403 with a deliberately generic body,
// missing entities 404 verbatim, state conflicts 409, everything else 500.
func respondServiceError(c echo.Context, err error) error {
	var vErr *service.ValidationError
	var booked *service.SlotBookedError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": vErr.Message})
	case errors.As(err, &booked):
		body := echo.Map{"error": err.Error()}
		if booked.OrderID != 0 {
			body["order_id"] = booked.OrderID
		}
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, service.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrVenueNotFound),
		errors.Is(err, repository.ErrCourtNotFound),
		errors.Is(err, repository.ErrTemplateNotFound),
		errors.Is(err, repository.ErrRecordNotFound),
		errors.Is(err, repository.ErrPriceTemplateNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyLocked),
		errors.Is(err, service.ErrNotMerchantLocked),
		errors.Is(err, service.ErrStateConflict),
		errors.Is(err, service.ErrTemplateDeleted),
		errors.Is(err, service.ErrPriceTemplateInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses a positive int64 path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parsePositive parses a positive int64 from a raw query value.
func parsePositive(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
