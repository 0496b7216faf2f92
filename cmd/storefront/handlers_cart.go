package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/httpx"
)

// @Summary  Current cart with line totals
// @Tags     cart
// @Produce  json
// @Success  200 {object} cart.View
// @Failure  401 {object} httpx.HTTPError
// @Router   /cart [get]
func viewCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		v, err := carts.View(c.Request.Context(), p.UserID)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// @Summary  Number of units in the cart
// @Tags     cart
// @Produce  json
// @Success  200 {object} map[string]int
// @Router   /cart/count [get]
func cartCountHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := httpx.Principal(c)
		if p == nil {
			c.JSON(http.StatusOK, gin.H{"count": 0})
			return
		}
		n, err := carts.Count(c.Request.Context(), p.UserID)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": n})
	}
}

func addAndCount(c *gin.Context, carts *cart.Service, userID, productID string, qty int) {
	ct, err := carts.Add(c.Request.Context(), userID, productID, qty)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	n := 0
	for _, it := range ct.Items {
		n += it.Quantity
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart_count": n})
}

// @Summary  Add a product to the cart
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    input body cart.AddRequest true "Product and quantity"
// @Success  200 {object} map[string]any
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /cart/add [post]
func addToCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		var req cart.AddRequest
		if err := c.ShouldBind(&req); err != nil || req.ProductID == "" {
			httpx.BadRequest(c, "product_id is required")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		addAndCount(c, carts, p.UserID, req.ProductID, req.Quantity)
	}
}

// @Summary  Add one unit of a product
// @Tags     cart
// @Produce  json
// @Param    id path string true "Product ID"
// @Success  200 {object} map[string]any
// @Router   /cart/add/{id} [post]
func addOneHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		addAndCount(c, carts, p.UserID, c.Param("id"), 1)
	}
}

// @Summary  Increase or decrease a line by one
// @Tags     cart
// @Param    id     path string true "Product ID"
// @Param    action path string true "increase or decrease"
// @Success  204
// @Failure  400 {object} httpx.HTTPError
// @Router   /cart/update/{id}/{action} [post]
func updateCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		if err := carts.UpdateQuantity(c.Request.Context(), p.UserID, c.Param("id"), c.Param("action")); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Remove a line
// @Tags     cart
// @Param    id path string true "Product ID"
// @Success  204
// @Router   /cart/remove/{id} [post]
func removeFromCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		if err := carts.Remove(c.Request.Context(), p.UserID, c.Param("id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
