package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MethodUPI = "upi"
	MethodCOD = "cod"

	PaymentPending  = "PENDING"
	PaymentVerified = "VERIFIED"
	PaymentRejected = "REJECTED"

	SourceCart   = "cart"
	SourceBuyNow = "buy_now"
)

type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Items         []Item          `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"payment_method"`
	UPIRef        string          `json:"upi_ref,omitempty"`
	PaymentStatus string          `json:"payment_status,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
}

// PaymentOpen reports whether a UPI payment still waits for review.
func (o Order) PaymentOpen() bool {
	return o.PaymentMethod == MethodUPI && (o.PaymentStatus == "" || o.PaymentStatus == PaymentPending)
}

// Item is the frozen copy of a line at purchase time.
type Item struct {
	ProductID     string           `json:"product_id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Quantity      int              `json:"qty"`
	ItemTotal     decimal.Decimal  `json:"item_total"`
	IsOffer       bool             `json:"is_offer"`
}

// Line is a requested product and quantity, before pricing.
type Line struct {
	ProductID string
	Quantity  int
}
