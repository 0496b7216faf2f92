package main

import (
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/storage"
)

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formUploads opens the files posted under field. The returned func closes
// them and must be called once the service is done reading.
func formUploads(c *gin.Context, field string) ([]storage.Upload, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		return nil, noop, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, apperr.Invalid("invalid multipart form")
	}
	var (
		ups    []storage.Upload
		opened []multipart.File
	)
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, fh := range form.File[field] {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		ups = append(ups, storage.Upload{Name: fh.Filename, Content: f})
	}
	return ups, closeAll, nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// productForm reads a product from a JSON body or from form fields.
func productForm(c *gin.Context) (product.ProductInput, error) {
	var in product.ProductInput
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, apperr.Invalid("invalid json")
		}
		return in, nil
	}

	in.Name = c.PostForm("name")
	in.Description = c.PostForm("description")
	in.Category = c.PostForm("category")
	in.IsOffer = truthy(c.PostForm("is_offer"))
	in.RemovedImages = c.PostFormArray("removed_images")

	price, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("price")))
	if err != nil {
		return in, apperr.Invalid("invalid price")
	}
	in.Price = price

	if s := strings.TrimSpace(c.PostForm("stock")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return in, apperr.Invalid("invalid stock")
		}
		in.Stock = n
	}
	if s := strings.TrimSpace(c.PostForm("offer_price")); s != "" {
		op, err := decimal.NewFromString(s)
		if err != nil {
			return in, apperr.Invalid("invalid offer price")
		}
		in.OfferPrice = &op
	}
	return in, nil
}

func queryInt(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
