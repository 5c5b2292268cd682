package email

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/revxrent/storefront/internal/jobs"
)

var confirmationHTML = template.Must(template.New("orderConfirmation").Parse(`<h2>Thanks for your order, {{.CustomerName}}!</h2>
<p>Your order <strong>{{.Order.OrderNumber}}</strong> has been received and is being processed.</p>
<table>
{{range .Lines}}<tr><td>{{.Name}}{{if .Rental}} ({{.Rental}}){{end}}</td><td>x{{.Quantity}}</td><td>{{.LineTotal}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Order.Subtotal}}<br>
Tax: {{.Order.Tax}}<br>
Shipping: {{.Order.ShippingFee}}<br>
<strong>Total: {{.Order.Total}}</strong></p>
{{if .HasRentals}}<p>Your order includes rental items. Please review the return terms for each rental before pickup.</p>{{end}}`))

var updateHTML = template.Must(template.New("orderUpdate").Parse(`<h2>Your order {{.Order.OrderNumber}} has been updated</h2>
<p>Hi {{.CustomerName}},</p>
<ul>
{{range .Changes}}<li>{{.Summary}}</li>
{{end}}</ul>
<h3>Updated order summary</h3>
<p>Subtotal: {{.Order.Subtotal}}<br>
Tax: {{.Order.Tax}}<br>
Shipping: {{.Order.ShippingFee}}<br>
<strong>Total: {{.Order.Total}}</strong><br>
Status: {{.Order.Status}}</p>`))

func renderConfirmation(p jobs.OrderConfirmationPayload) (Email, error) {
	var html strings.Builder
	if err := confirmationHTML.Execute(&html, p); err != nil {
		return Email{}, fmt.Errorf("failed to render confirmation template: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Thanks for your order, %s!\n\nOrder %s has been received.\n\n", p.CustomerName, p.Order.OrderNumber)
	for _, line := range p.Lines {
		if line.Rental != "" {
			fmt.Fprintf(&text, "- %s (%s) x%d: %s\n", line.Name, line.Rental, line.Quantity, line.LineTotal)
		} else {
			fmt.Fprintf(&text, "- %s x%d: %s\n", line.Name, line.Quantity, line.LineTotal)
		}
	}
	fmt.Fprintf(&text, "\nSubtotal: %s\nTax: %s\nShipping: %s\nTotal: %s\n", p.Order.Subtotal, p.Order.Tax, p.Order.ShippingFee, p.Order.Total)

	return Email{
		To:      p.To,
		ToName:  p.CustomerName,
		Subject: fmt.Sprintf("Order confirmation - %s", p.Order.OrderNumber),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func renderUpdate(p jobs.OrderUpdatePayload) (Email, error) {
	var html strings.Builder
	if err := updateHTML.Execute(&html, p); err != nil {
		return Email{}, fmt.Errorf("failed to render update template: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nYour order %s has been updated:\n\n", p.CustomerName, p.Order.OrderNumber)
	for _, change := range p.Changes {
		fmt.Fprintf(&text, "- %s\n", change.Summary)
	}
	fmt.Fprintf(&text, "\nUpdated summary:\nSubtotal: %s\nTax: %s\nShipping: %s\nTotal: %s\nStatus: %s\n",
		p.Order.Subtotal, p.Order.Tax, p.Order.ShippingFee, p.Order.Total, p.Order.Status)

	return Email{
		To:      p.To,
		ToName:  p.CustomerName,
		Subject: fmt.Sprintf("Order update - %s", p.Order.OrderNumber),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
