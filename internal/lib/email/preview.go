package email

import (
	"fmt"
	"time"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PreviewData returns sample data for a template, used by the
// preview-email command and the template tests.
func PreviewData(name Template) (any, error) {
	const site, shop = "Storefront", "https://flowers.example.com"

	order := &model.Order{
		ID:           uuid.New(),
		Number:       "FL-3F9A1C07B2",
		ContactEmail: "jane@example.com",
		ContactName:  "Jane Doe",
		Status:       model.OrderStatusOutForDelivery,
		Items: []model.LineItem{
			{Name: "Red Rose Bouquet", Quantity: 1, LineTotal: decimal.RequireFromString("549.90")},
			{Name: "Greeting Card", Quantity: 2, LineTotal: decimal.RequireFromString("40.00")},
		},
		Delivery: model.DeliveryInfo{
			RecipientName: "John Doe",
			Date:          time.Now().AddDate(0, 0, 1).Format(model.DeliveryDateLayout),
			TimeSlot:      "morning",
		},
		DeliveryFee: decimal.RequireFromString("49.90"),
		Total:       decimal.RequireFromString("639.80"),
		Currency:    "TRY",
	}

	switch name {
	case TemplateWelcome:
		return WelcomeData{SiteName: site, ShopURL: shop, FirstName: "Jane"}, nil
	case TemplateOrderConfirmation:
		order.Status = model.OrderStatusConfirmed
		return newOrderData(site, shop, order, ""), nil
	case TemplateOrderStatus:
		return newOrderData(site, shop, order, "Our courier is on the way."), nil
	default:
		return nil, fmt.Errorf("unknown email template %q", name)
	}
}
