package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/storefront/internal/service"
	"github.com/Skotchmaster/storefront/services/storefront/internal/transport"
)

type BasketHTTP struct {
	Svc *service.BasketService
}

func (h *BasketHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "basket.add_item")

	uid, err := userID(c, l, "add_item")
	if err != nil {
		return err
	}

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, detail{Detail: "invalid body"})
	}

	basket, err := h.Svc.AddItem(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		return fail(c, l, "add_item", err)
	}

	l.Info("add_item_success", "basket_id", basket.ID, "product_id", req.ProductID)
	return c.JSON(http.StatusCreated, service.BasketView(basket))
}

func (h *BasketHTTP) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "basket.list_items")

	uid, err := userID(c, l, "list_items")
	if err != nil {
		return err
	}

	basket, err := h.Svc.Items(ctx, uid)
	if err != nil {
		return fail(c, l, "list_items", err)
	}
	return c.JSON(http.StatusOK, service.BasketView(basket))
}

func (h *BasketHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "basket.remove_item")

	uid, err := userID(c, l, "remove_item")
	if err != nil {
		return err
	}

	itemID, ok := pathID(c, "id")
	if !ok {
		l.Warn("remove_item_error", "status", 404, "reason", "bad id", "id", c.Param("id"))
		return c.JSON(http.StatusNotFound, detail{Detail: service.ErrItemNotFound.Error()})
	}

	basket, err := h.Svc.RemoveItem(ctx, uid, itemID)
	if err != nil {
		return fail(c, l, "remove_item", err)
	}

	l.Info("remove_item_success", "item_id", itemID)
	return c.JSON(http.StatusOK, service.BasketView(basket))
}
