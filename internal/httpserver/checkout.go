package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bookcart/internal/logging"
	"github.com/Skotchmaster/bookcart/internal/service"
)

var ErrNoCheckout = errors.New("httpserver: checkout service is required")

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func NewCheckoutHTTP(svc *service.CheckoutService) (*CheckoutHTTP, error) {
	if svc == nil {
		return nil, ErrNoCheckout
	}
	return &CheckoutHTTP{Svc: svc}, nil
}

func (h *CheckoutHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place.order")

	var form service.Form
	if err := c.Bind(&form); err != nil {
		l.Warn("place_order_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	receipt, err := h.Svc.PlaceOrder(ctx, form)
	if err != nil {
		status, msg := checkoutStatus(err)
		logFailure(l, "place_order_error", status, err)
		return c.JSON(status, msg)
	}

	return c.JSON(http.StatusCreated, receipt)
}

func (h *CheckoutHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "list.orders")

	orders, err := h.Svc.ListOrders(ctx)
	if err != nil {
		status, msg := checkoutStatus(err)
		logFailure(l, "list_orders_error", status, err)
		return c.JSON(status, msg)
	}
	return c.JSON(http.StatusOK, orders)
}

// logFailure keeps Error for server faults; client mistakes are Warn.
func logFailure(l *slog.Logger, msg string, status int, err error) {
	if status >= http.StatusInternalServerError {
		l.Error(msg, "status", status, "error", err)
		return
	}
	l.Warn(msg, "status", status, "error", err)
}

func checkoutStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusConflict, "cart is empty"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "books not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
