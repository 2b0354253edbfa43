package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	pkgch "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/clickhouse"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
)

// CHBarStore implements BarRepository backed by ClickHouse.
type CHBarStore struct {
	db       *sql.DB
	database string
	interval domrepo.Interval
	l        *applogger.Logger
}

var _ domrepo.BarRepository = (*CHBarStore)(nil)

func NewCHBarStore(ch *pkgch.Client, database string, interval domrepo.Interval) *CHBarStore {
	return &CHBarStore{db: ch.DB(), database: database, interval: domrepo.NormalizeInterval(string(interval)), l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

// FetchBars reads the newest count bars. FINAL collapses rows that share a
// (symbol, ts) key so each timestamp appears once.
func (s *CHBarStore) FetchBars(ctx context.Context, symbol string, count int, order domrepo.BarOrder) ([]models.Bar, error) {
	start := time.Now()
	table, err := tableForInterval(s.database, s.interval)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	const qtpl = `
        SELECT symbol, ts, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY ts DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, table), symbol, count)
	if err != nil {
		s.l.Error("clickhouse fetch_bars query error",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.Int("limit", count),
			applogger.Error(err),
		)
		return nil, models.AdapterError("fetch bars", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, count)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Symbol, &b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.l.Error("clickhouse fetch_bars scan error", applogger.String("table", table), applogger.String("symbol", symbol), applogger.Error(err))
			return nil, models.AdapterError("scan bar", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		s.l.Error("clickhouse fetch_bars rows error", applogger.String("table", table), applogger.String("symbol", symbol), applogger.Error(err))
		return nil, models.AdapterError("rows", err)
	}

	if order == domrepo.OldestFirst {
		reverseBars(out)
	}
	s.l.Debug("clickhouse fetch_bars ok",
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.String("order", string(order)),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func reverseBars(bars []models.Bar) {
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
}

func tableForInterval(database string, iv domrepo.Interval) (string, error) {
	switch iv {
	case domrepo.Interval1h, domrepo.Interval4h, domrepo.Interval1d:
		return fmt.Sprintf("%s.bars_%s", database, iv), nil
	default:
		return "", fmt.Errorf("unsupported interval: %s", iv)
	}
}

// BarSchema returns the DDL that creates the bar tables the store reads.
func BarSchema(database string) []string {
	stmts := []string{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)}
	for _, iv := range []domrepo.Interval{domrepo.Interval1h, domrepo.Interval4h, domrepo.Interval1d} {
		table, _ := tableForInterval(database, iv)
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    symbol LowCardinality(String),
    ts DateTime64(3, 'UTC'),
    open Float64,
    high Float64,
    low Float64,
    close Float64,
    volume Float64
) ENGINE = ReplacingMergeTree
ORDER BY (symbol, ts)`, table))
	}
	return stmts
}
