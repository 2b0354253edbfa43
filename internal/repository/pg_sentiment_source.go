package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
	pkgpg "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/postgres"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PGSentimentSource reads pre-scored news or social items from one PostgreSQL table.
type PGSentimentSource struct {
	db    *sqlx.DB
	table string
	limit int
	l     *applogger.Logger
}

var _ domrepo.SentimentSource = (*PGSentimentSource)(nil)

// sentimentRow mirrors the item table. Probability columns are NULL for unscored items.
type sentimentRow struct {
	Asset       string          `db:"asset"`
	Title       sql.NullString  `db:"title"`
	Source      sql.NullString  `db:"source"`
	URL         sql.NullString  `db:"url"`
	Positive    sql.NullFloat64 `db:"positive"`
	Negative    sql.NullFloat64 `db:"negative"`
	Neutral     sql.NullFloat64 `db:"neutral"`
	Score       sql.NullInt64   `db:"score"`
	NumComments sql.NullInt64   `db:"num_comments"`
	Ups         sql.NullInt64   `db:"ups"`
	CreatedAt   sql.NullTime    `db:"created_at"`
}

func NewPGSentimentSource(pg *pkgpg.Client, table string, limit int) (*PGSentimentSource, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if limit <= 0 {
		limit = 100
	}
	return &PGSentimentSource{db: pg.DB(), table: table, limit: limit, l: applogger.Nop()}, nil
}

// SetLogger injects a structured logger.
func (s *PGSentimentSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *PGSentimentSource) query() string {
	return fmt.Sprintf(`
        SELECT asset, title, source, url, positive, negative, neutral, score, num_comments, ups, created_at
        FROM %s
        WHERE upper(asset) = upper($1)
        ORDER BY created_at DESC NULLS LAST
        LIMIT $2`, s.table)
}

func (s *PGSentimentSource) FetchSentimentItems(ctx context.Context, asset string) ([]models.SentimentItem, error) {
	start := time.Now()
	var rows []sentimentRow
	if err := s.db.SelectContext(ctx, &rows, s.query(), asset, s.limit); err != nil {
		s.l.Error("postgres fetch_sentiment error", applogger.String("table", s.table), applogger.String("asset", asset), applogger.Error(err))
		return nil, models.AdapterError("fetch sentiment items", err)
	}
	out := make([]models.SentimentItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toItem())
	}
	s.l.Debug("postgres fetch_sentiment ok",
		applogger.String("table", s.table),
		applogger.String("asset", asset),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (r sentimentRow) toItem() models.SentimentItem {
	it := models.SentimentItem{
		Asset:       strings.ToUpper(strings.TrimSpace(r.Asset)),
		Title:       r.Title.String,
		Source:      r.Source.String,
		URL:         r.URL.String,
		Scored:      r.Positive.Valid || r.Negative.Valid || r.Neutral.Valid,
		Positive:    r.Positive.Float64,
		Negative:    r.Negative.Float64,
		Neutral:     r.Neutral.Float64,
		Score:       int(r.Score.Int64),
		NumComments: int(r.NumComments.Int64),
		Ups:         int(r.Ups.Int64),
	}
	if r.CreatedAt.Valid {
		it.CreatedAt = r.CreatedAt.Time.UTC()
	}
	return it
}

// SentimentSchema returns the DDL for an item table.
func SentimentSchema(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id BIGSERIAL PRIMARY KEY,
    asset TEXT NOT NULL,
    title TEXT,
    source TEXT,
    url TEXT,
    positive DOUBLE PRECISION,
    negative DOUBLE PRECISION,
    neutral DOUBLE PRECISION,
    score INTEGER,
    num_comments INTEGER,
    ups INTEGER,
    created_at TIMESTAMPTZ
)`, table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_asset_created_idx ON %s (asset, created_at DESC)", strings.ReplaceAll(table, ".", "_"), table),
	}
}
