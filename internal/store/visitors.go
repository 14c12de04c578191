package store

import (
	"context"
	"database/sql"
	"time"
)

// timeLayout is how timestamps are written so SQLite date functions and
// lexical comparisons both work.
const timeLayout = "2006-01-02 15:04:05"

// Visitor is one recorded page view. The IP is stored hashed only.
type Visitor struct {
	ID        int       `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// PathCount is a path and its number of views.
type PathCount struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// VisitorStats summarises the visitors table.
type VisitorStats struct {
	TotalVisitors    int64       `json:"total_visitors"`
	UniqueVisitors   int64       `json:"unique_visitors"`
	VisitorsToday    int64       `json:"visitors_today"`
	VisitorsThisWeek int64       `json:"visitors_this_week"`
	TopPaths         []PathCount `json:"top_paths"`
	RecentVisitors   []Visitor   `json:"recent_visitors"`
}

// Visitors records and reports page views.
type Visitors struct {
	db  *sql.DB
	now func() time.Time
}

// NewVisitors returns a Visitors repository over db.
func NewVisitors(db *sql.DB) *Visitors {
	return &Visitors{db: db, now: time.Now}
}

// Record stores a page view.
func (v *Visitors) Record(ctx context.Context, hashedIP, userAgent, path string) error {
	_, err := v.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, hashedIP, userAgent, path, v.now().UTC().Format(timeLayout))
	return err
}

// Recent returns the latest page views, newest first.
func (v *Visitors) Recent(ctx context.Context, limit int) ([]Visitor, error) {
	rows, err := v.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visitors []Visitor
	for rows.Next() {
		var visitor Visitor
		if err := rows.Scan(&visitor.ID, &visitor.HashedIP, &visitor.UserAgent, &visitor.Path, &visitor.Timestamp); err != nil {
			continue
		}
		visitors = append(visitors, visitor)
	}
	return visitors, rows.Err()
}

// Stats computes the dashboard summary.
func (v *Visitors) Stats(ctx context.Context) (*VisitorStats, error) {
	stats := &VisitorStats{}
	now := v.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Format(timeLayout)
	week := now.Add(-7 * 24 * time.Hour).Format(timeLayout)

	counts := []struct {
		query string
		args  []any
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM visitors", nil, &stats.TotalVisitors},
		{"SELECT COUNT(DISTINCT hashed_ip) FROM visitors", nil, &stats.UniqueVisitors},
		{"SELECT COUNT(*) FROM visitors WHERE timestamp >= ?", []any{today}, &stats.VisitorsToday},
		{"SELECT COUNT(*) FROM visitors WHERE timestamp >= ?", []any{week}, &stats.VisitorsThisWeek},
	}
	for _, c := range counts {
		if err := v.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, err
		}
	}

	rows, err := v.db.QueryContext(ctx, `
		SELECT COALESCE(path, ''), COUNT(*) AS views
		FROM visitors
		GROUP BY path
		ORDER BY views DESC, path ASC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Views); err != nil {
			continue
		}
		stats.TopPaths = append(stats.TopPaths, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.RecentVisitors, err = v.Recent(ctx, 50)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Cleanup deletes page views older than maxAge and returns how many went.
func (v *Visitors) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := v.now().UTC().Add(-maxAge).Format(timeLayout)
	result, err := v.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
