package mailer

import (
	"bytes"
	"html/template"
	"time"

	"github.com/barewire/storefront-orders/internal/orders"
)

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<body>
  <h2>Order Confirmation</h2>
  <p>Hi {{.CustomerName}},</p>
  <p>Thanks for your order <strong>{{.Order.ID}}</strong>.</p>
  <table border="1" cellpadding="6" cellspacing="0">
    <tr><th>Item</th><th>Qty</th><th>Price</th></tr>
    {{range .Order.Items}}
    <tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Price}}</td></tr>
    {{end}}
  </table>
  <p>Grand total: <strong>{{.Order.GrandTotal}}</strong></p>
  <p>&copy; {{.Year}} {{.CompanyName}}</p>
</body>
</html>`))

type invoiceData struct {
	CustomerName string
	Order        orders.Order
	Year         int
	CompanyName  string
}

// RenderInvoice produces the HTML confirmation body for an order.
func RenderInvoice(customerName string, o orders.Order, companyName string) (string, error) {
	if customerName == "" {
		customerName = "customer"
	}
	var buf bytes.Buffer
	err := invoiceTmpl.Execute(&buf, invoiceData{
		CustomerName: customerName,
		Order:        o,
		Year:         time.Now().Year(),
		CompanyName:  companyName,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
