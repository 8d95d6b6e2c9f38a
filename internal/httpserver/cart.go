package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bookcart/internal/cart"
	"github.com/Skotchmaster/bookcart/internal/logging"
	"github.com/Skotchmaster/bookcart/internal/pricing"
	"github.com/Skotchmaster/bookcart/internal/transport"
)

var ErrNoCart = errors.New("httpserver: cart store is required")

type CartHTTP struct {
	Cart    *cart.Store
	Pricing pricing.Policy
}

func NewCartHTTP(store *cart.Store, policy pricing.Policy) (*CartHTTP, error) {
	if store == nil {
		return nil, ErrNoCart
	}
	return &CartHTTP{Cart: store, Pricing: policy}, nil
}

func (h *CartHTTP) view() transport.CartResponse {
	return transport.NewCartResponse(h.Cart.Snapshot(), h.Pricing)
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.view())
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add.item")

	var req cart.Candidate
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	if err := h.Cart.AddItem(ctx, req); err != nil {
		if errors.Is(err, cart.ErrValidation) {
			l.Warn("add_item_error", "status", 400, "error", err)
			return c.JSON(http.StatusBadRequest, err.Error())
		}
		l.Error("add_item_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	l.Info("item added to cart", "item_id", req.ID)
	return c.JSON(http.StatusCreated, h.view())
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update.quantity")

	id := c.Param("id")
	var req transport.UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_quantity_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, "quantity required")
	}

	h.Cart.UpdateQuantity(ctx, id, *req.Quantity)
	return c.JSON(http.StatusOK, h.view())
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	h.Cart.RemoveItem(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, h.view())
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	h.Cart.Clear(ctx)
	logging.FromContext(ctx).With("handler", "clear.cart").Info("cart successfully cleared")
	return c.JSON(http.StatusOK, "cart successfully cleared")
}
