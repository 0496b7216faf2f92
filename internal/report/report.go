// Package report renders order invoices and product analytics as PDF.
package report

import (
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/analytics"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/product"
)

const (
	pageW   = 210.0
	margin  = 15.0
	content = pageW - 2*margin
)

func newDoc(title string) (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func money(d decimal.Decimal) string { return "Rs. " + d.StringFixed(2) }

// Invoice writes the printable invoice of o.
func Invoice(w io.Writer, o order.Order, shopName string) error {
	pdf, tr := newDoc("Order " + o.ID)

	pdf.SetFont("Helvetica", "B", 16)
	if shopName != "" {
		pdf.CellFormat(content, 8, tr(shopName), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(content, 10, "ORDER INVOICE", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(content, 6, "Order: "+o.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(content, 6, "Date: "+o.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(content, 6, tr("Status: "+o.Status), "", 1, "L", false, 0, "")
	pay := "Payment: " + o.PaymentMethod
	if o.UPIRef != "" {
		pay += " (ref " + o.UPIRef + ")"
	}
	pdf.CellFormat(content, 6, tr(pay), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(110, 8, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(content-135, 8, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range o.Items {
		pdf.CellFormat(110, 7, tr(it.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, strconv.Itoa(it.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(content-135, 7, money(it.ItemTotal), "", 1, "R", false, 0, "")
	}

	y := pdf.GetY() + 2
	pdf.Line(margin, y, pageW-margin, y)
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(content, 8, "Total Amount: "+money(o.TotalAmount), "", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(content, 7, "Delivery Address", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(content, 5, tr(o.Address), "", "L", false)

	return pdf.Output(w)
}

// ProductAnalytics writes the sales summary of one product.
func ProductAnalytics(w io.Writer, p product.Product, st analytics.ProductStats) error {
	pdf, tr := newDoc("Analytics " + p.Name)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(content, 12, "Product Analytics Report", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	rows := [][2]string{
		{"Product Name", p.Name},
		{"Total Units Sold", strconv.Itoa(st.SoldQty)},
		{"Delivered Orders", strconv.Itoa(st.Delivered)},
		{"Cancelled Orders", strconv.Itoa(st.Cancelled)},
	}
	for _, r := range rows {
		pdf.CellFormat(60, 8, r[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(content-60, 8, tr(r[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(content, 6, "Generated by Admin Analytics", "", 1, "L", false, 0, "")

	return pdf.Output(w)
}
