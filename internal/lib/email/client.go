// Package email sends transactional emails through Resend. Bodies are
// rendered from HTML templates embedded in the binary.
package email

import (
	"bytes"
	"context"
	"fmt"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// sender is the part of the Resend API the client uses.
type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Client struct {
	emails   sender
	from     string
	siteName string
	shopURL  string
	logger   *zerolog.Logger
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return &Client{
		emails:   resend.NewClient(cfg.Integration.ResendAPIKey).Emails,
		from:     fmt.Sprintf("%s <%s>", cfg.Storefront.SiteName, cfg.Integration.EmailFrom),
		siteName: cfg.Storefront.SiteName,
		shopURL:  cfg.Storefront.PublicURL,
		logger:   logger,
	}
}

// Render executes a template with data and returns the HTML body.
func Render(name Template, data any) (string, error) {
	tmpl, err := load(name)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout.html", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return body.String(), nil
}

// SendEmail renders templateName with data and sends it to a single recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data any) error {
	html, err := Render(templateName, data)
	if err != nil {
		return err
	}

	res, err := c.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to send %s email", templateName)
	}

	c.logger.Debug().
		Str("template", string(templateName)).
		Str("email_id", res.Id).
		Msg("email sent")
	return nil
}
