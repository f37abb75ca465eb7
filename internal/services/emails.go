package service

import (
	"fmt"
	"html"
	"strings"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/shopspring/decimal"
)

func purchaseEmail(to string, result *models.CheckoutResult) *models.EmailNotificationRequest {

	var text, rows strings.Builder

	fmt.Fprintf(&text, "Thank you for your purchase.\n\nOrder reference: %s\n\n", result.CartID)

	for _, item := range result.SuccessItems {
		subtotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))

		fmt.Fprintf(&text, "- %s x%d @ %s = %s\n", item.Product.Name, item.Quantity, item.Price.StringFixed(2), subtotal.StringFixed(2))
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(item.Product.Name), item.Quantity, item.Price.StringFixed(2), subtotal.StringFixed(2))
	}

	total := result.Total().StringFixed(2)
	fmt.Fprintf(&text, "\nTotal: %s\n", total)

	if len(result.FailedItems) > 0 {
		fmt.Fprintf(&text, "\n%d item(s) could not be purchased and are still in your cart.\n", len(result.FailedItems))
	}

	return &models.EmailNotificationRequest{
		To:      to,
		Subject: "Your purchase confirmation",
		Content: text.String(),
		HTMLContent: "<h2>Thank you for your purchase</h2>" +
			"<table><tr><th>Product</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>" +
			rows.String() + "</table><p><strong>Total: " + total + "</strong></p>",
	}
}

func resetPasswordEmail(to, resetURL string) *models.EmailNotificationRequest {
	return &models.EmailNotificationRequest{
		To:      to,
		Subject: "Password reset request",
		Content: "You requested a password reset. Open the link below within one hour to choose a new password:\n\n" +
			resetURL + "\n\nIf you did not request this, ignore this email.",
		HTMLContent: "<p>You requested a password reset.</p>" +
			`<p><a href="` + html.EscapeString(resetURL) + `">Reset your password</a></p>` +
			"<p>The link expires in one hour. If you did not request this, ignore this email.</p>",
	}
}
