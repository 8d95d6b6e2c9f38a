package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	sessionmw "github.com/Skotchmaster/bookcart/internal/middleware/session"
)

type Deps struct {
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	cart := e.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("", d.CartHandler.Clear)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PATCH("/items/:id", d.CartHandler.UpdateQuantity)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)

	if d.CheckoutHandler != nil {
		e.POST("/checkout", d.CheckoutHandler.PlaceOrder, sessionmw.CarryToken)
		e.GET("/orders", d.CheckoutHandler.ListOrders, sessionmw.CarryToken)
	}
}
