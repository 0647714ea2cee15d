package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
	"github.com/Skotchmaster/storefront/services/storefront/internal/service"
	"github.com/Skotchmaster/storefront/services/storefront/internal/transport"
)

type OrderHTTP struct {
	Svc      *service.OrderService
	Payments *service.PaymentService
	Location *time.Location
}

func (h *OrderHTTP) loc() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	uid, err := userID(c, l, "checkout")
	if err != nil {
		return err
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, detail{Detail: "invalid body"})
	}

	order, err := h.Svc.Checkout(ctx, uid, req.BasketID)
	if err != nil {
		return fail(c, l, "checkout", err)
	}

	l.Info("checkout_success", "order_id", order.ID, "total", order.TotalPrice.StringFixed(2))
	return c.JSON(http.StatusCreated, transport.CheckoutResponse{
		OrderID:    order.ID,
		TotalPrice: order.TotalPrice.StringFixed(2),
		Status:     string(order.Status),
	})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	uid, err := userID(c, l, "list_orders")
	if err != nil {
		return err
	}

	orders, err := h.Svc.List(ctx, uid)
	if err != nil {
		return fail(c, l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, service.OrderSummaries(orders, h.loc()))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	uid, err := userID(c, l, "get_order")
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, l, "get_order", service.ErrOrderNotFound)
	}

	d, err := h.Svc.Detail(ctx, uid, id)
	if err != nil {
		return fail(c, l, "get_order", err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *OrderHTTP) Receipt(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.receipt")

	uid, err := userID(c, l, "receipt")
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, l, "receipt", service.ErrOrderNotFound)
	}

	r, err := h.Svc.Receipt(ctx, uid, id)
	if err != nil {
		return fail(c, l, "receipt", err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *OrderHTTP) Pay(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.pay")

	uid, err := userID(c, l, "pay_order")
	if err != nil {
		return err
	}
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, l, "pay_order", service.ErrOrderNotFound)
	}

	var req transport.PayRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("pay_order_error", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, detail{Detail: "invalid body"})
	}

	res, err := h.Payments.Pay(ctx, uid, id, req)
	if err != nil {
		return fail(c, l, "pay_order", err)
	}

	l.Info("pay_order_success", "order_id", id, "method", res.PaymentMethod, "status", res.Status)
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, l, "update_status", service.ErrOrderNotFound)
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, detail{Detail: "invalid body"})
	}

	o, err := h.Svc.AdvanceStatus(ctx, id, req.Status)
	if err != nil {
		return fail(c, l, "update_status", err)
	}

	l.Info("update_status_success", "order_id", o.ID, "to", o.Status)
	return c.JSON(http.StatusOK, service.OrderSummaries([]models.Order{*o}, h.loc())[0])
}
