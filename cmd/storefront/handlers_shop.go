package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/banner"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/review"
)

type homeResponse struct {
	*product.Home
	Banners []banner.Banner `json:"banners"`
}

// @Summary  Shop home page
// @Tags     shop
// @Produce  json
// @Param    page     query int    false "Page, 8 products each" default(1)
// @Param    category query string false "Category filter"
// @Success  200 {object} homeResponse
// @Router   / [get]
func homeHandler(products *product.Service, banners *banner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		home, err := products.Home(c.Request.Context(), queryInt(c, "page", 1), c.Query("category"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		bs, err := banners.List(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, homeResponse{Home: home, Banners: bs})
	}
}

// @Summary  List products (pagination only)
// @Tags     products
// @Produce  json
// @Param    limit  query int false "Page size" default(20)
// @Param    offset query int false "Offset"    default(0)
// @Success  200 {object} product.ListResponse
// @Router   /products [get]
func listOnlyHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := product.Query{Limit: queryInt(c, "limit", 20), Offset: queryInt(c, "offset", 0)}
		res, err := products.List(c.Request.Context(), q)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Search products by name or description
// @Tags     products
// @Produce  json
// @Param    q      query string true  "Search text, at least 2 characters"
// @Param    limit  query int    false "Page size" default(20)
// @Param    offset query int    false "Offset"    default(0)
// @Success  200 {object} product.ListResponse
// @Failure  400 {object} httpx.HTTPError
// @Router   /products/search [get]
func searchHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := strings.TrimSpace(c.Query("q"))
		if len([]rune(term)) < 2 {
			httpx.BadRequest(c, "q must have at least 2 characters")
			return
		}
		q := product.Query{Q: term, Limit: queryInt(c, "limit", 20), Offset: queryInt(c, "offset", 0)}
		res, err := products.List(c.Request.Context(), q)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Categories with a cover image
// @Tags     shop
// @Produce  json
// @Success  200 {array} product.Category
// @Router   /categories [get]
func categoriesHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := products.Categories(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, cats)
	}
}

// @Summary  Products of one category
// @Tags     shop
// @Produce  json
// @Param    name path string true "Category slug"
// @Success  200 {object} product.CategoryPage
// @Router   /category/{name} [get]
func categoryHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := products.CategoryPage(c.Request.Context(), c.Param("name"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

type detailResponse struct {
	*product.Detail
	Reviews []review.Review `json:"reviews"`
}

// @Summary  Product page with related products and reviews
// @Tags     shop
// @Produce  json
// @Param    id path string true "Product ID"
// @Success  200 {object} detailResponse
// @Failure  404 {object} httpx.HTTPError
// @Router   /product/{id} [get]
func productDetailHandler(products *product.Service, reviews *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := products.Detail(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		rs, err := reviews.List(c.Request.Context(), d.Product.ID)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, detailResponse{Detail: d, Reviews: rs})
	}
}

// @Summary  Review a product
// @Tags     reviews
// @Accept   multipart/form-data
// @Produce  json
// @Param    id      path     string true  "Product ID"
// @Param    rating  formData int    true  "1 to 5"
// @Param    comment formData string false "Comment"
// @Param    images  formData file   false "Photos"
// @Success  201 {object} review.Review
// @Failure  400 {object} httpx.HTTPError
// @Failure  401 {object} httpx.HTTPError
// @Router   /product/{id}/review [post]
func addReviewHandler(reviews *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		var in review.Input
		if err := c.ShouldBind(&in); err != nil {
			httpx.BadRequest(c, "invalid review")
			return
		}
		ups, done, err := formUploads(c, "images")
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		defer done()
		rv, err := reviews.Add(c.Request.Context(), p.UserID, p.Name, c.Param("id"), in, ups)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, rv)
	}
}

// @Summary  Edit your review
// @Tags     reviews
// @Accept   multipart/form-data
// @Produce  json
// @Param    id      path     string true  "Review ID"
// @Param    rating  formData int    true  "1 to 5"
// @Param    comment formData string false "Comment"
// @Param    images  formData file   false "Replacement photos"
// @Success  200 {object} review.Review
// @Failure  403 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /review/{id}/edit [post]
func editReviewHandler(reviews *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		var in review.Input
		if err := c.ShouldBind(&in); err != nil {
			httpx.BadRequest(c, "invalid review")
			return
		}
		ups, done, err := formUploads(c, "images")
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		defer done()
		rv, err := reviews.Edit(c.Request.Context(), p.UserID, c.Param("id"), in, ups)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, rv)
	}
}

// @Summary  Delete your review
// @Tags     reviews
// @Param    id path string true "Review ID"
// @Success  204
// @Failure  403 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /review/{id}/delete [post]
func deleteReviewHandler(reviews *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.Authorize(c)
		if !ok {
			return
		}
		if _, err := reviews.Delete(c.Request.Context(), p.UserID, c.Param("id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
