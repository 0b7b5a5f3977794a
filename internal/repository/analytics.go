package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// Record upserts the session and stores the page view or event atomically.
// pv and ev are optional; a page view increments the session counter.
func (r *AnalyticsRepository) Record(ctx context.Context, s *model.VisitorSession, pv *model.PageView, ev *model.Event) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		increment := 0
		if pv != nil {
			increment = 1
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO visitor_sessions (id, visitor_id, started_at, last_seen_at, landing_path, referrer,
				utm_source, utm_medium, utm_campaign, user_agent, page_views)
			VALUES ($1, $2, $3, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE
			SET last_seen_at = GREATEST(visitor_sessions.last_seen_at, EXCLUDED.last_seen_at),
			    page_views = visitor_sessions.page_views + EXCLUDED.page_views`,
			s.ID, s.VisitorID, s.StartedAt, s.LandingPath, s.Referrer,
			s.UTMSource, s.UTMMedium, s.UTMCampaign, s.UserAgent, increment,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert visitor session: %w", err)
		}

		if pv != nil {
			_, err = tx.Exec(ctx, `
				INSERT INTO page_views (session_id, visitor_id, path, title, referrer, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				pv.SessionID, pv.VisitorID, pv.Path, pv.Title, pv.Referrer, pv.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert page view: %w", err)
			}
		}

		if ev != nil {
			var props any
			if len(ev.Properties) > 0 {
				props = string(ev.Properties)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO events (session_id, visitor_id, name, path, properties, created_at)
				VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
				ev.SessionID, ev.VisitorID, ev.Name, ev.Path, props, ev.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert event: %w", err)
			}
		}
		return nil
	})
}

func (r *AnalyticsRepository) Traffic(ctx context.Context, rf model.RangeFilter) (model.TrafficStats, error) {
	var t model.TrafficStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM visitor_sessions WHERE started_at >= $1 AND started_at < $2),
			(SELECT count(DISTINCT visitor_id) FROM visitor_sessions WHERE started_at >= $1 AND started_at < $2),
			(SELECT count(*) FROM page_views WHERE created_at >= $1 AND created_at < $2)`,
		rf.From, rf.To,
	).Scan(&t.Sessions, &t.UniqueVisitors, &t.PageViews)
	if err != nil {
		return t, fmt.Errorf("failed to load traffic stats: %w", err)
	}
	return t, nil
}

func (r *AnalyticsRepository) Sales(ctx context.Context, rf model.RangeFilter) (model.SalesStats, error) {
	var s model.SalesStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*), coalesce(sum(total), 0)
		FROM orders
		WHERE payment ->> 'status' = 'paid' AND created_at >= $1 AND created_at < $2`,
		rf.From, rf.To,
	).Scan(&s.PaidOrders, &s.Revenue)
	if err != nil {
		return s, fmt.Errorf("failed to load sales stats: %w", err)
	}
	return s, nil
}

func (r *AnalyticsRepository) top(ctx context.Context, query string, rf model.RangeFilter, n int) ([]model.TopEntry, error) {
	rows, err := r.pool.Query(ctx, query, rf.From, rf.To, n)
	if err != nil {
		return nil, err
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TopEntry, error) {
		var e model.TopEntry
		err := row.Scan(&e.Key, &e.Count)
		return e, err
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.TopEntry{}
	}
	return entries, nil
}

func (r *AnalyticsRepository) TopPages(ctx context.Context, rf model.RangeFilter, n int) ([]model.TopEntry, error) {
	return r.top(ctx, `
		SELECT path, count(*) AS n FROM page_views
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY path ORDER BY n DESC, path LIMIT $3`, rf, n)
}

func (r *AnalyticsRepository) TopEvents(ctx context.Context, rf model.RangeFilter, n int) ([]model.TopEntry, error) {
	return r.top(ctx, `
		SELECT name, count(*) AS n FROM events
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY name ORDER BY n DESC, name LIMIT $3`, rf, n)
}

func (r *AnalyticsRepository) TopReferrers(ctx context.Context, rf model.RangeFilter, n int) ([]model.TopEntry, error) {
	return r.top(ctx, `
		SELECT referrer, count(*) AS n FROM visitor_sessions
		WHERE started_at >= $1 AND started_at < $2 AND referrer <> ''
		GROUP BY referrer ORDER BY n DESC, referrer LIMIT $3`, rf, n)
}

// Daily returns one point per UTC day in the range, zero-filled.
func (r *AnalyticsRepository) Daily(ctx context.Context, rf model.RangeFilter) ([]model.DailyPoint, error) {
	rows, err := r.pool.Query(ctx, `
		WITH days AS (
			SELECT d::date AS day
			FROM generate_series($1::timestamptz AT TIME ZONE 'UTC',
			                     $2::timestamptz AT TIME ZONE 'UTC' - interval '1 day',
			                     interval '1 day') AS d
		), s AS (
			SELECT (started_at AT TIME ZONE 'UTC')::date AS day, count(*) AS n
			FROM visitor_sessions WHERE started_at >= $1 AND started_at < $2 GROUP BY 1
		), pv AS (
			SELECT (created_at AT TIME ZONE 'UTC')::date AS day, count(*) AS n
			FROM page_views WHERE created_at >= $1 AND created_at < $2 GROUP BY 1
		), o AS (
			SELECT (created_at AT TIME ZONE 'UTC')::date AS day, count(*) AS n, sum(total) AS revenue
			FROM orders
			WHERE payment ->> 'status' = 'paid' AND created_at >= $1 AND created_at < $2
			GROUP BY 1
		)
		SELECT to_char(days.day, 'YYYY-MM-DD'),
		       coalesce(s.n, 0), coalesce(pv.n, 0), coalesce(o.n, 0), coalesce(o.revenue, 0)
		FROM days
		LEFT JOIN s USING (day)
		LEFT JOIN pv USING (day)
		LEFT JOIN o USING (day)
		ORDER BY days.day`, rf.From, rf.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily series: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.DailyPoint, error) {
		var p model.DailyPoint
		err := row.Scan(&p.Date, &p.Sessions, &p.PageViews, &p.Orders, &p.Revenue)
		return p, err
	})
}
