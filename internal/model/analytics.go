package model

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

// Analytics range limits.
const (
	DefaultDashboardRange = 30 * 24 * time.Hour
	MaxDashboardRange     = 366 * 24 * time.Hour
	DashboardTopN         = 10
)

const (
	CollectTypePageView = "pageview"
	CollectTypeEvent    = "event"
)

// VisitorSession is one browsing session of an anonymous visitor.
type VisitorSession struct {
	ID          string    `json:"id"`
	VisitorID   string    `json:"visitor_id"`
	StartedAt   time.Time `json:"started_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	LandingPath string    `json:"landing_path"`
	Referrer    string    `json:"referrer,omitempty"`
	UTMSource   string    `json:"utm_source,omitempty"`
	UTMMedium   string    `json:"utm_medium,omitempty"`
	UTMCampaign string    `json:"utm_campaign,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	PageViews   int       `json:"page_views"`
}

type PageView struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	VisitorID string    `json:"visitor_id"`
	Path      string    `json:"path"`
	Title     string    `json:"title,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Event struct {
	ID         int64           `json:"id"`
	SessionID  string          `json:"session_id"`
	VisitorID  string          `json:"visitor_id"`
	Name       string          `json:"name"`
	Path       string          `json:"path,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CollectRequest is the public tracking beacon.
type CollectRequest struct {
	Type        string          `json:"type" validate:"required,oneof=pageview event"`
	VisitorID   string          `json:"visitor_id" validate:"required,max=64"`
	SessionID   string          `json:"session_id" validate:"required,max=64"`
	Path        string          `json:"path" validate:"required,startswith=/,max=512"`
	Title       string          `json:"title" validate:"max=300"`
	Referrer    string          `json:"referrer" validate:"max=1024"`
	Name        string          `json:"name" validate:"max=64"`
	Properties  json.RawMessage `json:"properties"`
	UTMSource   string          `json:"utm_source" validate:"max=100"`
	UTMMedium   string          `json:"utm_medium" validate:"max=100"`
	UTMCampaign string          `json:"utm_campaign" validate:"max=100"`
}

// Validate requires an event name for events and caps the properties blob.
func (r *CollectRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}

	var custom validation.CustomValidationErrors
	if r.Type == CollectTypeEvent && r.Name == "" {
		custom = append(custom, validation.CustomValidationError{Field: "name", Message: "is required for events"})
	}
	if len(r.Properties) > 4096 {
		custom = append(custom, validation.CustomValidationError{Field: "properties", Message: "must be at most 4096 bytes"})
	}
	if len(r.Properties) > 0 && !json.Valid(r.Properties) {
		custom = append(custom, validation.CustomValidationError{Field: "properties", Message: "must be valid JSON"})
	}
	if len(custom) > 0 {
		return custom
	}
	return nil
}

// CollectMeta is request context the handler adds to a beacon.
type CollectMeta struct {
	UserAgent string
	At        time.Time
}

type DashboardRequest struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

func (r *DashboardRequest) Validate() error {
	return validate.Struct(r)
}

// Range resolves the requested window to [from, to) in UTC. to is
// exclusive and includes the whole last day.
func (r *DashboardRequest) Range(now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	if r.To != "" {
		t, err := time.Parse(DeliveryDateLayout, r.To)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t.AddDate(0, 0, 1)
	}

	from := to.Add(-DefaultDashboardRange)
	if r.From != "" {
		f, err := time.Parse(DeliveryDateLayout, r.From)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = f
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, validation.CustomValidationErrors{{Field: "from", Message: "must be before to"}}
	}
	if to.Sub(from) > MaxDashboardRange {
		return time.Time{}, time.Time{}, validation.CustomValidationErrors{{Field: "from", Message: "range must be at most 366 days"}}
	}
	return from, to, nil
}

// RangeFilter is a resolved dashboard window.
type RangeFilter struct {
	From time.Time
	To   time.Time
}

// TrafficStats are the visitor side of the dashboard.
type TrafficStats struct {
	Sessions       int `json:"sessions"`
	UniqueVisitors int `json:"unique_visitors"`
	PageViews      int `json:"page_views"`
}

// SalesStats are the order side of the dashboard.
type SalesStats struct {
	PaidOrders int             `json:"paid_orders"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type TopEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type DailyPoint struct {
	Date      string          `json:"date"`
	Sessions  int             `json:"sessions"`
	PageViews int             `json:"page_views"`
	Orders    int             `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type Dashboard struct {
	From              string          `json:"from"`
	To                string          `json:"to"`
	Sessions          int             `json:"sessions"`
	UniqueVisitors    int             `json:"unique_visitors"`
	PageViews         int             `json:"page_views"`
	PagesPerSession   float64         `json:"pages_per_session"`
	PaidOrders        int             `json:"paid_orders"`
	Revenue           decimal.Decimal `json:"revenue"`
	ConversionRate    float64         `json:"conversion_rate"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	Currency          string          `json:"currency"`
	TopPages          []TopEntry      `json:"top_pages"`
	TopEvents         []TopEntry      `json:"top_events"`
	TopReferrers      []TopEntry      `json:"top_referrers"`
	Daily             []DailyPoint    `json:"daily"`
}
