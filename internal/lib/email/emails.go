package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/shopspring/decimal"
)

// WelcomeData feeds templates/welcome.html.
type WelcomeData struct {
	SiteName  string
	ShopURL   string
	FirstName string
}

type OrderItemData struct {
	Name      string
	Quantity  int
	LineTotal string
}

// OrderData feeds the order confirmation and order status templates.
type OrderData struct {
	SiteName      string
	ShopURL       string
	OrderURL      string
	Number        string
	CustomerName  string
	StatusLabel   string
	Note          string
	Items         []OrderItemData
	DeliveryFee   string
	Total         string
	RecipientName string
	DeliveryDate  string
	TimeSlot      string
}

func (c *Client) SendWelcomeEmail(ctx context.Context, to, firstName string) error {
	if firstName == "" {
		firstName = "there"
	}
	data := WelcomeData{SiteName: c.siteName, ShopURL: c.shopURL, FirstName: firstName}
	return c.SendEmail(ctx, to, "Welcome to "+c.siteName+"!", TemplateWelcome, data)
}

func (c *Client) SendOrderConfirmationEmail(ctx context.Context, order *model.Order) error {
	data := c.orderData(order, "")
	subject := fmt.Sprintf("Order %s confirmed", order.Number)
	return c.SendEmail(ctx, order.ContactEmail, subject, TemplateOrderConfirmation, data)
}

// SendOrderStatusEmail notifies about the order's current status. note is
// the timeline note of the change, if any.
func (c *Client) SendOrderStatusEmail(ctx context.Context, order *model.Order, note string) error {
	data := c.orderData(order, note)
	subject := fmt.Sprintf("Order %s: %s", order.Number, order.Status.Label())
	return c.SendEmail(ctx, order.ContactEmail, subject, TemplateOrderStatus, data)
}

func (c *Client) orderData(order *model.Order, note string) OrderData {
	return newOrderData(c.siteName, c.shopURL, order, note)
}

func newOrderData(siteName, shopURL string, order *model.Order, note string) OrderData {
	items := make([]OrderItemData, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemData{
			Name:      item.Name,
			Quantity:  item.Quantity,
			LineTotal: money(item.LineTotal, order.Currency),
		})
	}

	name := order.ContactName
	if first, _, ok := strings.Cut(name, " "); ok {
		name = first
	}

	return OrderData{
		SiteName:      siteName,
		ShopURL:       shopURL,
		OrderURL:      strings.TrimRight(shopURL, "/") + "/orders/" + order.Number,
		Number:        order.Number,
		CustomerName:  name,
		StatusLabel:   order.Status.Label(),
		Note:          note,
		Items:         items,
		DeliveryFee:   money(order.DeliveryFee, order.Currency),
		Total:         money(order.Total, order.Currency),
		RecipientName: order.Delivery.RecipientName,
		DeliveryDate:  order.Delivery.Date,
		TimeSlot:      order.Delivery.TimeSlot,
	}
}

func money(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + currency
}
