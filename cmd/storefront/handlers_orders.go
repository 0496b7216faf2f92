package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/auth"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/notification"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/payment"
)

// @Summary  Pick a single product for immediate checkout
// @Tags     checkout
// @Accept   json
// @Produce  json
// @Param    id    path string             true "Product ID"
// @Param    input body order.BuyNowRequest false "Quantity, default 1"
// @Success  200 {object} order.Preview
// @Failure  404 {object} httpx.HTTPError
// @Router   /cart/buy-now/{id} [post]
func buyNowHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		var req order.BuyNowRequest
		_ = c.ShouldBind(&req)
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		pv, err := orders.BuyNow(c.Request.Context(), p.UserID, c.Param("id"), req.Quantity)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, pv)
	}
}

// @Summary  Checkout preview
// @Tags     checkout
// @Produce  json
// @Param    source query string false "cart or buy_now; a pending buy-now pick wins when empty"
// @Success  200 {object} order.Preview
// @Failure  400 {object} httpx.HTTPError
// @Router   /checkout [get]
func checkoutHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		pv, err := orders.Checkout(c.Request.Context(), p.UserID, c.Query("source"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, pv)
	}
}

// @Summary  Place the order
// @Tags     checkout
// @Accept   json
// @Produce  json
// @Param    input body order.PlaceRequest true "Checkout form"
// @Success  201 {object} order.Order
// @Failure  400 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /place-order [post]
func placeOrderHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		var req order.PlaceRequest
		if err := c.ShouldBind(&req); err != nil {
			httpx.BadRequest(c, "invalid checkout form")
			return
		}
		o, err := orders.Place(c.Request.Context(), p.UserID, req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// @Summary  Your orders, newest first
// @Tags     orders
// @Produce  json
// @Success  200 {array} order.Order
// @Router   /orders [get]
func orderHistoryHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		list, err := orders.History(c.Request.Context(), p.UserID)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if list == nil {
			list = []order.Order{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  One of your orders
// @Tags     orders
// @Produce  json
// @Param    id path string true "Order ID"
// @Success  200 {object} order.Order
// @Failure  404 {object} httpx.HTTPError
// @Router   /orders/{id} [get]
func getOrderHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		o, err := orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if o.UserID != p.UserID && auth.Authorize(p, auth.StaffRoles...) != nil {
			httpx.Fail(c, order.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Cancel your order
// @Tags     orders
// @Produce  json
// @Param    id path string true "Order ID"
// @Success  200 {object} order.Order
// @Failure  404 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /orders/cancel/{id} [post]
func cancelOrderHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		o, err := orders.Cancel(c.Request.Context(), p.UserID, c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Record a UPI payment for an order
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    input body payment.SubmitRequest true "Payment"
// @Success  201 {object} payment.Submission
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /payment/submit [post]
func submitPaymentHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		var req payment.SubmitRequest
		if err := c.ShouldBind(&req); err != nil {
			httpx.BadRequest(c, "invalid payment form")
			return
		}
		sub, err := payments.Submit(c.Request.Context(), p.UserID, req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, sub)
	}
}

// @Summary  Your payment submissions
// @Tags     payments
// @Produce  json
// @Success  200 {array} payment.Submission
// @Router   /payments [get]
func paymentHistoryHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		list, err := payments.History(c.Request.Context(), p.UserID)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if list == nil {
			list = []payment.Submission{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Your notifications and unread count
// @Tags     notifications
// @Produce  json
// @Success  200 {object} notification.Inbox
// @Router   /notifications [get]
func notificationsHandler(notes *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		inbox, err := notes.List(c.Request.Context(), p.UserID)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, inbox)
	}
}

// @Summary  Mark all notifications read
// @Tags     notifications
// @Produce  json
// @Success  200 {object} map[string]bool
// @Router   /notifications/mark-read [post]
func markReadHandler(notes *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		if err := notes.MarkAllRead(c.Request.Context(), p.UserID); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// @Summary  Delete all notifications
// @Tags     notifications
// @Produce  json
// @Success  200 {object} map[string]bool
// @Router   /notifications/clear [post]
func clearNotificationsHandler(notes *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		if err := notes.Clear(c.Request.Context(), p.UserID); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
