package email

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one line of an order as shown in an email.
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     decimal.Decimal
}

func (i OrderItem) DisplayName() string {
	if i.Name == "" {
		return i.ProductID
	}
	return i.Name
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderConfirmation struct {
	OrderNumber string
	Currency    string
	Items       []OrderItem
	Subtotal    decimal.Decimal
	Shipping    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

type ShippingNotice struct {
	OrderNumber       string
	TrackingNumber    string
	EstimatedDelivery *time.Time
}

var funcs = template.FuncMap{
	"money": FormatAmount,
	"date": func(t *time.Time) string {
		return t.Format("Mon, 2 Jan 2006")
	},
}

var confirmationTemplate = template.Must(template.New("confirmation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #1f7a4d; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your order</h1>
	</div>
	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">We have received your order and will let you know when it ships.</p>
		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">{{.OrderNumber}}</p>
		</div>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left;">Item</th>
					<th style="padding: 12px; text-align: center;">Qty</th>
					<th style="padding: 12px; text-align: right;">Price</th>
					<th style="padding: 12px; text-align: right;">Total</th>
				</tr>
			</thead>
			<tbody>
			{{- range .Items}}
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee;">{{.DisplayName}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{money .Price}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{money .LineTotal}}</td>
				</tr>
			{{- end}}
			</tbody>
		</table>
		<table style="width: 100%; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<tr><td>Subtotal</td><td style="text-align: right;">{{.Currency}} {{money .Subtotal}}</td></tr>
			<tr><td>Shipping</td><td style="text-align: right;">{{.Currency}} {{money .Shipping}}</td></tr>
			<tr><td>Tax</td><td style="text-align: right;">{{.Currency}} {{money .Tax}}</td></tr>
			<tr><td><strong>Total</strong></td><td style="text-align: right; font-size: 20px; font-weight: bold;">{{.Currency}} {{money .Total}}</td></tr>
		</table>
		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
		<p style="font-size: 12px; color: #999; margin-bottom: 0;">This is an automated message. Contact support if you have any questions.</p>
	</div>
</body>
</html>`))

var shippingTemplate = template.Must(template.New("shipping").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Your order {{.OrderNumber}} is on its way</h1>
	{{- if .TrackingNumber}}
	<p>Tracking number: <strong style="font-family: monospace;">{{.TrackingNumber}}</strong></p>
	{{- end}}
	{{- if .EstimatedDelivery}}
	<p>Estimated delivery: {{date .EstimatedDelivery}}</p>
	{{- end}}
	<p style="font-size: 12px; color: #999;">This is an automated message. Contact support if you have any questions.</p>
</body>
</html>`))

func BuildOrderConfirmationBody(c OrderConfirmation) (string, error) {
	return render(confirmationTemplate, c)
}

func BuildShippingNoticeBody(n ShippingNotice) (string, error) {
	return render(shippingTemplate, n)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatAmount renders a money value with two decimals and comma
// separated thousands, e.g. 1234567.5 -> "1,234,567.50".
func FormatAmount(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var result strings.Builder
	if d.IsNegative() {
		result.WriteString("-")
	}
	remainder := len(whole) % 3
	if remainder > 0 {
		result.WriteString(whole[:remainder])
	}
	for i := remainder; i < len(whole); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(whole[i : i+3])
	}
	result.WriteString(".")
	result.WriteString(frac)
	return result.String()
}
