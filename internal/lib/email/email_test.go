package email

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func newTestClient(s sender) *Client {
	logger := zerolog.Nop()
	return &Client{
		emails:   s,
		from:     "Petal & Stem <orders@example.com>",
		siteName: "Petal & Stem",
		shopURL:  "https://shop.example.com/",
		logger:   &logger,
	}
}

func TestRender_AllTemplates(t *testing.T) {
	for _, name := range Templates() {
		data, err := PreviewData(name)
		require.NoError(t, err)

		html, err := Render(name, data)
		require.NoError(t, err, name)
		assert.Contains(t, html, "<!DOCTYPE html>", name)
		assert.Contains(t, html, "Storefront", name)
	}

	_, err := PreviewData("missing")
	assert.Error(t, err)
}

func TestSendOrderConfirmationEmail(t *testing.T) {
	s := &fakeSender{}
	c := newTestClient(s)

	order := &model.Order{
		Number:       "FL-0000000001",
		ContactEmail: "jane@example.com",
		ContactName:  "Jane Doe",
		Status:       model.OrderStatusConfirmed,
		Items: []model.LineItem{
			{Name: "Peony Box", Quantity: 2, LineTotal: decimal.RequireFromString("900")},
		},
		Delivery:    model.DeliveryInfo{RecipientName: "Ann", Date: "2026-10-20"},
		DeliveryFee: decimal.Zero,
		Total:       decimal.RequireFromString("900"),
		Currency:    "TRY",
	}

	require.NoError(t, c.SendOrderConfirmationEmail(context.Background(), order))
	require.Len(t, s.sent, 1)

	msg := s.sent[0]
	assert.Equal(t, []string{"jane@example.com"}, msg.To)
	assert.Equal(t, "Order FL-0000000001 confirmed", msg.Subject)
	assert.Contains(t, msg.Html, "Hi Jane,")
	assert.Contains(t, msg.Html, "900.00 TRY")
	assert.Contains(t, msg.Html, "https://shop.example.com/orders/FL-0000000001")
	assert.Contains(t, msg.Html, "Petal &amp; Stem")
}

func TestSendOrderStatusEmail(t *testing.T) {
	s := &fakeSender{}
	c := newTestClient(s)

	order := &model.Order{Number: "FL-1", ContactEmail: "a@b.co", ContactName: "Al", Status: model.OrderStatusCancelled}
	require.NoError(t, c.SendOrderStatusEmail(context.Background(), order, "order expired before payment"))

	require.Len(t, s.sent, 1)
	assert.Equal(t, "Order FL-1: Cancelled", s.sent[0].Subject)
	assert.Contains(t, s.sent[0].Html, "order expired before payment")
}

func TestSendEmail_ProviderError(t *testing.T) {
	c := newTestClient(&fakeSender{err: errors.New("rate limited")})

	err := c.SendWelcomeEmail(context.Background(), "a@b.co", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send welcome email")
	assert.Contains(t, err.Error(), "rate limited")
}
