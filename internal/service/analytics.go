package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type AnalyticsService struct {
	analytics AnalyticsStore
	currency  string
	now       func() time.Time
}

func NewAnalyticsService(analytics AnalyticsStore, currency string) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, currency: currency, now: time.Now}
}

// Collect stores one tracking beacon and keeps its session up to date.
func (s *AnalyticsService) Collect(ctx context.Context, req *model.CollectRequest, meta model.CollectMeta) error {
	at := meta.At
	if at.IsZero() {
		at = s.now()
	}

	session := &model.VisitorSession{
		ID:          req.SessionID,
		VisitorID:   req.VisitorID,
		StartedAt:   at,
		LastSeenAt:  at,
		LandingPath: req.Path,
		Referrer:    externalReferrer(req.Referrer),
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UserAgent:   truncateRunes(meta.UserAgent, 512),
	}

	var (
		pv *model.PageView
		ev *model.Event
	)
	switch req.Type {
	case model.CollectTypePageView:
		pv = &model.PageView{
			SessionID: req.SessionID,
			VisitorID: req.VisitorID,
			Path:      req.Path,
			Title:     req.Title,
			Referrer:  req.Referrer,
			CreatedAt: at,
		}
	case model.CollectTypeEvent:
		ev = &model.Event{
			SessionID:  req.SessionID,
			VisitorID:  req.VisitorID,
			Name:       req.Name,
			Path:       req.Path,
			Properties: req.Properties,
			CreatedAt:  at,
		}
	}

	return s.analytics.Record(ctx, session, pv, ev)
}

// Dashboard aggregates traffic and sales over the requested window. The
// independent queries run concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, req *model.DashboardRequest) (*model.Dashboard, error) {
	from, to, err := req.Range(s.now())
	if err != nil {
		return nil, err
	}
	rf := model.RangeFilter{From: from, To: to}

	var (
		traffic                      model.TrafficStats
		sales                        model.SalesStats
		topPages, topEvents, topRefs []model.TopEntry
		daily                        []model.DailyPoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { traffic, err = s.analytics.Traffic(gctx, rf); return })
	g.Go(func() (err error) { sales, err = s.analytics.Sales(gctx, rf); return })
	g.Go(func() (err error) { topPages, err = s.analytics.TopPages(gctx, rf, model.DashboardTopN); return })
	g.Go(func() (err error) { topEvents, err = s.analytics.TopEvents(gctx, rf, model.DashboardTopN); return })
	g.Go(func() (err error) { topRefs, err = s.analytics.TopReferrers(gctx, rf, model.DashboardTopN); return })
	g.Go(func() (err error) { daily, err = s.analytics.Daily(gctx, rf); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &model.Dashboard{
		From:           from.Format(model.DeliveryDateLayout),
		To:             to.AddDate(0, 0, -1).Format(model.DeliveryDateLayout),
		Sessions:       traffic.Sessions,
		UniqueVisitors: traffic.UniqueVisitors,
		PageViews:      traffic.PageViews,
		PaidOrders:     sales.PaidOrders,
		Revenue:        sales.Revenue,
		Currency:       s.currency,
		TopPages:       nonNilEntries(topPages),
		TopEvents:      nonNilEntries(topEvents),
		TopReferrers:   nonNilEntries(topRefs),
		Daily:          daily,
	}
	if d.Daily == nil {
		d.Daily = []model.DailyPoint{}
	}
	if traffic.Sessions > 0 {
		d.PagesPerSession = round2(float64(traffic.PageViews) / float64(traffic.Sessions))
		d.ConversionRate = round2(float64(sales.PaidOrders) / float64(traffic.Sessions) * 100)
	}
	if sales.PaidOrders > 0 {
		d.AverageOrderValue = sales.Revenue.Div(decimal.NewFromInt(int64(sales.PaidOrders))).Round(2)
	}
	return d, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonNilEntries(e []model.TopEntry) []model.TopEntry {
	if e == nil {
		return []model.TopEntry{}
	}
	return e
}

// externalReferrer keeps only the host of a referrer URL so the top
// referrers list groups by site.
func externalReferrer(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if _, rest, ok := strings.Cut(ref, "://"); ok {
		ref = rest
	}
	host, _, _ := strings.Cut(ref, "/")
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
