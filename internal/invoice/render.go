package invoice

import (
	"bytes"
	"fmt"
	"html/template"
)

// Renderer produces a shareable document for a finalized invoice.
type Renderer interface {
	Render(inv Invoice) ([]byte, string, error)
}

// HTMLRenderer renders a printable receipt page.
type HTMLRenderer struct {
	ShopName string
	tmpl     *template.Template
}

const receiptTemplate = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.Invoice.ID}}</title>
<style>
body { font-family: monospace; max-width: 400px; margin: 1em auto; }
table { width: 100%; border-collapse: collapse; }
td, th { text-align: left; padding: 2px 4px; }
td.num, th.num { text-align: right; }
.totals td { border-top: 1px solid #000; }
</style>
</head>
<body>
<h2>{{.ShopName}}</h2>
<p>Invoice: {{.Invoice.ID}}<br>
Date: {{.Invoice.CreatedAt.Format "02 Jan 2006 15:04"}}
{{- if .Invoice.CustomerName}}<br>Customer: {{.Invoice.CustomerName}}{{end}}
{{- if .Invoice.CustomerPhone}}<br>Phone: {{.Invoice.CustomerPhone}}{{end}}</p>
<table>
<tr><th>Item</th><th class="num">Qty</th><th class="num">Rate</th><th class="num">Amount</th></tr>
{{- range .Invoice.Lines}}
<tr><td>{{.Name}}</td><td class="num">{{.Qty}}</td><td class="num">{{.UnitPrice.StringFixed 2}}</td><td class="num">{{.LineTotal.StringFixed 2}}</td></tr>
{{- end}}
<tr class="totals"><td colspan="3">Subtotal</td><td class="num">{{.Invoice.Totals.Subtotal.StringFixed 2}}</td></tr>
{{- if not .Invoice.Totals.Discount.IsZero}}
<tr><td colspan="3">Discount ({{.Invoice.DiscountPercent.StringFixed 2}}%)</td><td class="num">-{{.Invoice.Totals.Discount.StringFixed 2}}</td></tr>
{{- end}}
{{- if not .Invoice.Totals.Tax.IsZero}}
<tr><td colspan="3">GST</td><td class="num">{{.Invoice.Totals.Tax.StringFixed 2}}</td></tr>
{{- end}}
<tr class="totals"><td colspan="3"><b>Total ({{.Invoice.Currency}})</b></td><td class="num"><b>{{.Invoice.Totals.Total.StringFixed 2}}</b></td></tr>
</table>
<p>Thank you, visit again!</p>
</body>
</html>
`

// NewHTMLRenderer constructs an HTMLRenderer.
func NewHTMLRenderer(shopName string) (*HTMLRenderer, error) {
	if shopName == "" {
		shopName = "KGF Store"
	}
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}
	return &HTMLRenderer{ShopName: shopName, tmpl: tmpl}, nil
}

// Render implements Renderer. The second return value is the content type.
func (r *HTMLRenderer) Render(inv Invoice) ([]byte, string, error) {
	var buf bytes.Buffer
	data := struct {
		ShopName string
		Invoice  Invoice
	}{ShopName: r.ShopName, Invoice: inv}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, "", fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), "text/html; charset=utf-8", nil
}
