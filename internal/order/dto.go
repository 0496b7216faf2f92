package order

import "github.com/shopspring/decimal"

// PlaceRequest is the checkout form.
// swagger:model PlaceRequest
type PlaceRequest struct {
	Source        string `json:"source"         form:"source"         example:"cart"`
	PaymentMethod string `json:"payment_method" form:"payment_method" example:"upi"`
	Address       string `json:"address"        form:"address"        example:"12 MG Road, Kochi"`
	UPIRef        string `json:"upi_ref"        form:"upi_ref"        example:"412345678901"`
}

// BuyNowRequest selects a single product for immediate checkout.
// swagger:model BuyNowRequest
type BuyNowRequest struct {
	Quantity int `json:"qty" form:"qty" example:"1"`
}

// StatusRequest carries the target status of an admin update.
// swagger:model StatusRequest
type StatusRequest struct {
	Status string `json:"status" form:"status" example:"Shipped"`
}

// Preview is what the checkout page shows before the order is placed.
// swagger:model Preview
type Preview struct {
	Source   string          `json:"source"`
	Items    []Item          `json:"items"`
	Total    decimal.Decimal `json:"total"`
	UPIID    string          `json:"upi_id,omitempty"`
	ShopName string          `json:"shop_name,omitempty"`
}
