package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownToken is returned for a token with no transfers on record.
var ErrUnknownToken = errors.New("unknown token")

// Limits applied to caller supplied windows. Values below one select the
// default, values above the maximum are capped.
const (
	DefaultTransferLimit = 50
	MaxTransferLimit     = 200

	DefaultDays = 30
	MaxDays     = 365

	DefaultHours = 24
	MaxHours     = 24 * 14

	DefaultFlowLimit = 25
	MaxFlowLimit     = 100
)

func clamp(n, def, max int) int {
	switch {
	case n < 1:
		return def
	case n > max:
		return max
	}
	return n
}

// RecentTransfers returns the newest transfers first.
func (s *Store) RecentTransfers(ctx context.Context, limit int) ([]Transfer, error) {
	limit = clamp(limit, DefaultTransferLimit, MaxTransferLimit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, block_time, from_address, to_address, token, amount, tx_hash
		FROM transfers
		ORDER BY block_time DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent transfers: %w", err)
	}
	defer rows.Close()

	transfers := make([]Transfer, 0, limit)
	for rows.Next() {
		var (
			t         Transfer
			blockTime int64
		)
		if err := rows.Scan(&t.ID, &blockTime, &t.From, &t.To, &t.Token, &t.Amount, &t.TxHash); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		t.BlockTime = time.Unix(blockTime, 0).UTC()
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return transfers, nil
}

// DailyVolume groups the last days UTC days, oldest first. Days without
// transfers are absent.
func (s *Store) DailyVolume(ctx context.Context, days int) ([]SeriesPoint, error) {
	return s.series(ctx, dailyBuckets, s.daysSince(days), "")
}

const (
	dailyBuckets  = "%Y-%m-%dT00:00:00Z"
	hourlyBuckets = "%Y-%m-%dT%H:00:00Z"
)

func (s *Store) daysSince(days int) time.Time {
	days = clamp(days, DefaultDays, MaxDays)
	today := s.now().UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -(days - 1))
}

// HourlyVolume groups the last hours UTC hours, oldest first.
func (s *Store) HourlyVolume(ctx context.Context, hours int) ([]SeriesPoint, error) {
	hours = clamp(hours, DefaultHours, MaxHours)
	since := s.now().UTC().Truncate(time.Hour).Add(-time.Duration(hours-1) * time.Hour)
	return s.series(ctx, hourlyBuckets, since, "")
}

// series buckets transfers since the given time. An empty token means all
// tokens.
func (s *Store) series(ctx context.Context, bucketFormat string, since time.Time, token string) ([]SeriesPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime(?, block_time, 'unixepoch') AS bucket,
		       COUNT(*),
		       COALESCE(SUM(amount), 0)
		FROM transfers
		WHERE block_time >= ? AND (? = '' OR token = ?)
		GROUP BY bucket
		ORDER BY bucket`, bucketFormat, since.Unix(), token, token)
	if err != nil {
		return nil, fmt.Errorf("query volume series: %w", err)
	}
	defer rows.Close()

	points := []SeriesPoint{}
	for rows.Next() {
		var p SeriesPoint
		if err := rows.Scan(&p.Bucket, &p.Count, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan series point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}
	return points, nil
}

// TokenSummary returns per token totals, largest volume first.
func (s *Store) TokenSummary(ctx context.Context) ([]TokenStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, COUNT(*), COALESCE(SUM(amount), 0) AS volume
		FROM transfers
		GROUP BY token
		ORDER BY volume DESC, token`)
	if err != nil {
		return nil, fmt.Errorf("query token summary: %w", err)
	}
	defer rows.Close()

	stats := []TokenStat{}
	for rows.Next() {
		var ts TokenStat
		if err := rows.Scan(&ts.Token, &ts.Count, &ts.Volume); err != nil {
			return nil, fmt.Errorf("scan token stat: %w", err)
		}
		stats = append(stats, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token summary: %w", err)
	}
	return stats, nil
}

// TokenActivity returns the all time totals of one token together with its
// daily series over the last days UTC days.
func (s *Store) TokenActivity(ctx context.Context, token string, days int) (TokenActivity, error) {
	a := TokenActivity{TokenStat: TokenStat{Token: token}}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM transfers
		WHERE token = ?`, token).Scan(&a.Count, &a.Volume)
	if err != nil {
		return TokenActivity{}, fmt.Errorf("query token %q: %w", token, err)
	}
	if a.Count == 0 {
		return TokenActivity{}, fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}

	a.Daily, err = s.series(ctx, dailyBuckets, s.daysSince(days), token)
	if err != nil {
		return TokenActivity{}, err
	}
	return a, nil
}

// Flows returns the Sankey graph of the limit largest sender to receiver
// pairs.
func (s *Store) Flows(ctx context.Context, limit int) (SankeyGraph, error) {
	limit = clamp(limit, DefaultFlowLimit, MaxFlowLimit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT from_address, to_address, SUM(amount) AS volume
		FROM transfers
		WHERE from_address <> to_address
		GROUP BY from_address, to_address
		ORDER BY volume DESC, from_address, to_address
		LIMIT ?`, limit)
	if err != nil {
		return SankeyGraph{}, fmt.Errorf("query flows: %w", err)
	}
	defer rows.Close()

	var flows []Flow
	for rows.Next() {
		var f Flow
		if err := rows.Scan(&f.From, &f.To, &f.Volume); err != nil {
			return SankeyGraph{}, fmt.Errorf("scan flow: %w", err)
		}
		flows = append(flows, f)
	}
	if err := rows.Err(); err != nil {
		return SankeyGraph{}, fmt.Errorf("iterate flows: %w", err)
	}
	return BuildSankey(flows), nil
}
