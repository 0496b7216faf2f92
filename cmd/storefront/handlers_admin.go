package main

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/analytics"
	"github.com/MikeMC777/storefront/internal/auth"
	"github.com/MikeMC777/storefront/internal/banner"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/payment"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/report"
	"github.com/MikeMC777/storefront/internal/settings"
	"github.com/MikeMC777/storefront/internal/storage"
)

func staff(c *gin.Context) (*auth.Principal, bool) {
	return httpx.Authorize(c, auth.StaffRoles...)
}

func sendPDF(c *gin.Context, name string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// @Summary  Back office counters
// @Tags     admin
// @Produce  json
// @Success  200 {object} analytics.Dashboard
// @Failure  403 {object} httpx.HTTPError
// @Router   /admin/dashboard [get]
func dashboardHandler(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		d, err := svc.Dashboard(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// @Summary  Sales of one product
// @Tags     admin
// @Produce  json
// @Param    product_id query string true "Product ID"
// @Success  200 {object} analytics.ProductReport
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/analytics [get]
func productAnalyticsHandler(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		id := c.Query("product_id")
		if id == "" {
			httpx.BadRequest(c, "product_id is required")
			return
		}
		rep, err := svc.Product(c.Request.Context(), id)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, rep)
	}
}

// @Summary  Sales of one product as PDF
// @Tags     admin
// @Produce  application/pdf
// @Param    product_id query string true "Product ID"
// @Success  200 {file} file
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/analytics/download [get]
func productAnalyticsPDFHandler(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		rep, err := svc.Product(c.Request.Context(), c.Query("product_id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		sendPDF(c, "product_analytics_"+rep.Product.ID+".pdf", func(b *bytes.Buffer) error {
			return report.ProductAnalytics(b, *rep.Product, rep.Stats)
		})
	}
}

// @Summary  All products
// @Tags     admin
// @Produce  json
// @Param    limit  query int false "Page size" default(100)
// @Param    offset query int false "Offset"    default(0)
// @Success  200 {object} product.ListResponse
// @Router   /admin/products [get]
func adminProductsHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		res, err := products.List(c.Request.Context(), product.Query{
			Q:      c.Query("q"),
			Limit:  queryInt(c, "limit", 100),
			Offset: queryInt(c, "offset", 0),
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Create a product
// @Tags     admin
// @Accept   multipart/form-data
// @Produce  json
// @Param    name        formData string true  "Name"
// @Param    description formData string false "Description"
// @Param    category    formData string false "Category"
// @Param    price       formData string true  "Price"
// @Param    stock       formData int    false "Stock"
// @Param    is_offer    formData bool   false "On offer"
// @Param    offer_price formData string false "Offer price"
// @Param    images      formData file   false "Up to 5 images"
// @Success  201 {object} product.Product
// @Failure  400 {object} httpx.HTTPError
// @Router   /admin/products [post]
func createProductHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		in, err := productForm(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		ups, done, err := formUploads(c, "images")
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		defer done()
		p, err := products.Create(c.Request.Context(), in, ups)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// @Summary  Edit a product
// @Description Removed images are deleted, new images appended. Turning the offer on notifies shoppers.
// @Tags     admin
// @Accept   multipart/form-data
// @Produce  json
// @Param    id             path     string true  "Product ID"
// @Param    name           formData string true  "Name"
// @Param    price          formData string true  "Price"
// @Param    stock          formData int    false "Stock"
// @Param    is_offer       formData bool   false "On offer"
// @Param    offer_price    formData string false "Offer price"
// @Param    removed_images formData []string false "Image paths to drop"
// @Param    images         formData file   false "New images"
// @Success  200 {object} product.Product
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/products/edit/{id} [post]
func updateProductHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		in, err := productForm(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		ups, done, err := formUploads(c, "images")
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		defer done()
		p, err := products.Edit(c.Request.Context(), c.Param("id"), in, ups)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary  Delete a product
// @Tags     admin
// @Param    id path string true "Product ID"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/products/delete/{id} [post]
func deleteProductHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		if err := products.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Payment review queues
// @Tags     admin
// @Produce  json
// @Success  200 {object} payment.Queues
// @Router   /admin/payments [get]
func paymentQueuesHandler(payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		q, err := payments.Queues(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

type reviewPaymentRequest struct {
	OrderID string `json:"order_id" form:"order_id"`
	Action  string `json:"action"   form:"action"   example:"verify"`
}

// @Summary  Verify or reject a UPI payment
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    input body reviewPaymentRequest true "verify or reject"
// @Success  200 {object} order.Order
// @Failure  400 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /admin/payments/verify [post]
func reviewPaymentHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		var req reviewPaymentRequest
		if err := c.ShouldBind(&req); err != nil || req.OrderID == "" {
			httpx.BadRequest(c, "order_id and action are required")
			return
		}
		var (
			o   *order.Order
			err error
		)
		switch req.Action {
		case "verify":
			o, err = orders.VerifyPayment(c.Request.Context(), req.OrderID)
		case "reject":
			o, err = orders.RejectPayment(c.Request.Context(), req.OrderID)
		default:
			httpx.BadRequest(c, "action must be verify or reject")
			return
		}
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Orders for the back office
// @Description Orders cancelled more than 24 hours ago are hidden.
// @Tags     admin
// @Produce  json
// @Success  200 {array} order.Order
// @Router   /admin/orders [get]
func adminOrdersHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		list, err := orders.AdminList(c.Request.Context(), time.Now())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

type statusUpdateRequest struct {
	OrderID string `json:"order_id" form:"order_id"`
	order.StatusRequest
}

func bindStatus(c *gin.Context) (statusUpdateRequest, bool) {
	var req statusUpdateRequest
	if err := c.ShouldBind(&req); err != nil || req.OrderID == "" || req.Status == "" {
		httpx.BadRequest(c, "order_id and status are required")
		return req, false
	}
	return req, true
}

// @Summary  Move an order along its status table
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    input body statusUpdateRequest true "Target status"
// @Success  200 {object} order.Order
// @Failure  400 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /admin/orders/update-status [post]
func updateOrderStatusHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		req, ok := bindStatus(c)
		if !ok {
			return
		}
		o, err := orders.Advance(c.Request.Context(), req.OrderID, req.Status)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Force any known status (admin only)
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    input body statusUpdateRequest true "Target status"
// @Success  200 {object} order.Order
// @Failure  400 {object} httpx.HTTPError
// @Failure  403 {object} httpx.HTTPError
// @Router   /admin/orders/override-status [post]
func overrideOrderStatusHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c, auth.RoleAdmin)
		if !ok {
			return
		}
		req, ok := bindStatus(c)
		if !ok {
			return
		}
		o, err := orders.Override(c.Request.Context(), req.OrderID, req.Status, p.Email)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

type adminOrderResponse struct {
	*order.Order
	Next []string `json:"next_statuses"`
}

// @Summary  One order with the statuses it may move to
// @Tags     admin
// @Produce  json
// @Param    id path string true "Order ID"
// @Success  200 {object} adminOrderResponse
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/orders/view/{id} [get]
func adminOrderHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		o, err := orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		next := order.Next(o.Status)
		if next == nil {
			next = []string{}
		}
		c.JSON(http.StatusOK, adminOrderResponse{Order: o, Next: next})
	}
}

// @Summary  Printable invoice
// @Tags     admin
// @Produce  application/pdf
// @Param    id path string true "Order ID"
// @Success  200 {file} file
// @Failure  404 {object} httpx.HTTPError
// @Router   /admin/orders/print/{id} [get]
func printOrderHandler(orders *order.Service, upi *settings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		o, err := orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		shop := ""
		if u, err := upi.UPI(c.Request.Context()); err == nil {
			shop = u.ShopName
		}
		sendPDF(c, "order_"+o.ID+".pdf", func(b *bytes.Buffer) error {
			return report.Invoice(b, *o, shop)
		})
	}
}

// @Summary  Home page banners
// @Tags     admin
// @Produce  json
// @Success  200 {array} banner.Banner
// @Router   /admin/banners [get]
func listBannersHandler(banners *banner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		list, err := banners.List(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Add a banner
// @Tags     admin
// @Accept   multipart/form-data
// @Produce  json
// @Param    title formData string false "Title"
// @Param    link  formData string false "Link"
// @Param    image formData file   true  "Image"
// @Success  201 {object} banner.Banner
// @Failure  400 {object} httpx.HTTPError
// @Router   /admin/banners [post]
func createBannerHandler(banners *banner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		ups, done, err := formUploads(c, "image")
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		defer done()
		var img *storage.Upload
		if len(ups) > 0 {
			img = &ups[0]
		}
		b, err := banners.Create(c.Request.Context(), c.PostForm("title"), c.PostForm("link"), img)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, b)
	}
}

// @Summary  Remove a banner
// @Tags     admin
// @Param    id path string true "Banner ID"
// @Success  204
// @Router   /admin/banners/delete/{id} [post]
func deleteBannerHandler(banners *banner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		if err := banners.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  UPI payee settings
// @Tags     admin
// @Produce  json
// @Success  200 {object} settings.UPI
// @Router   /admin/upi-settings [get]
func getUPIHandler(upi *settings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		u, err := upi.UPI(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// @Summary  Save UPI payee settings
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    input body settings.UPI true "Payee"
// @Success  200 {object} settings.UPI
// @Failure  400 {object} httpx.HTTPError
// @Router   /admin/upi-settings [post]
func saveUPIHandler(upi *settings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := staff(c); !ok {
			return
		}
		var in settings.UPI
		if err := c.ShouldBind(&in); err != nil {
			httpx.BadRequest(c, "invalid settings")
			return
		}
		u, err := upi.SaveUPI(c.Request.Context(), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}
