package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/cache"
	pkgpg "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/postgres"

	"github.com/jmoiron/sqlx"
)

func TestTableForInterval(t *testing.T) {
	got, err := tableForInterval("market", domrepo.Interval1d)
	if err != nil || got != "market.bars_1d" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if _, err := tableForInterval("market", domrepo.Interval("5m")); err == nil {
		t.Fatalf("expected error for unsupported interval")
	}
}

func TestBarSchema(t *testing.T) {
	stmts := BarSchema("market")
	if len(stmts) != 4 {
		t.Fatalf("expected database plus three tables, got %d", len(stmts))
	}
	if !strings.Contains(stmts[3], "market.bars_1d") || !strings.Contains(stmts[3], "ReplacingMergeTree") {
		t.Fatalf("unexpected ddl: %s", stmts[3])
	}
}

func TestReverseBars(t *testing.T) {
	bars := []models.Bar{{Close: 3}, {Close: 2}, {Close: 1}}
	reverseBars(bars)
	if bars[0].Close != 1 || bars[2].Close != 3 {
		t.Fatalf("got %+v", bars)
	}
}

func TestSentimentRowToItem(t *testing.T) {
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	scored := sentimentRow{
		Asset:     " btc ",
		Title:     sql.NullString{String: "ETF inflows", Valid: true},
		Positive:  sql.NullFloat64{Float64: 0.7, Valid: true},
		Negative:  sql.NullFloat64{Float64: 0.1, Valid: true},
		Neutral:   sql.NullFloat64{Float64: 0.2, Valid: true},
		Ups:       sql.NullInt64{Int64: 12, Valid: true},
		CreatedAt: sql.NullTime{Time: created, Valid: true},
	}
	it := scored.toItem()
	if it.Asset != "BTC" || !it.Scored || it.Positive != 0.7 || it.Ups != 12 || !it.CreatedAt.Equal(created) {
		t.Fatalf("unexpected item: %+v", it)
	}

	unscored := sentimentRow{Asset: "ETH"}.toItem()
	if unscored.Scored || !unscored.CreatedAt.IsZero() {
		t.Fatalf("expected unscored item without timestamp, got %+v", unscored)
	}
}

func TestNewPGSentimentSourceRejectsBadTable(t *testing.T) {
	if _, err := NewPGSentimentSource(nil, "news; DROP TABLE x", 10); err == nil {
		t.Fatalf("expected invalid table name error")
	}
}

func TestPGSentimentSourceQuery(t *testing.T) {
	src, err := NewPGSentimentSource(pkgpg.NewFromDB(sqlx.NewDb(nil, "postgres")), "social_items", 0)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if src.limit != 100 {
		t.Fatalf("expected default limit 100, got %d", src.limit)
	}
	if q := src.query(); !strings.Contains(q, "FROM social_items") || !strings.Contains(q, "LIMIT $2") {
		t.Fatalf("unexpected query: %s", q)
	}
}

func TestHTTPSentimentSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news" || r.URL.Query().Get("asset") != "BTC" || r.URL.Query().Get("limit") != "5" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"asset":"btc","title":"up","positive":0.8,"negative":0.1,"neutral":0.1,"created_at":"2024-04-01T00:00:00Z"},
			{"asset":"btc","title":"raw","created_at":"1711929600"},
			{"asset":"btc","title":"undated","created_at":"yesterday"}
		]}`))
	}))
	defer srv.Close()

	src := NewHTTPSentimentSource(srv.URL+"/", "/news", 5, time.Second, 1)
	items, err := src.FetchSentimentItems(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if !items[0].Scored || items[0].Positive != 0.8 || items[0].Asset != "BTC" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Scored || items[1].CreatedAt.Unix() != 1711929600 {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
	if !items[2].CreatedAt.IsZero() {
		t.Fatalf("expected zero time for unparsable created_at, got %v", items[2].CreatedAt)
	}
}

func TestHTTPSentimentSourceRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	src := NewHTTPSentimentSource(srv.URL, "/social", 10, time.Second, 3)
	items, err := src.FetchSentimentItems(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 0 || calls != 3 {
		t.Fatalf("items=%d calls=%d", len(items), calls)
	}
}

func TestHTTPSentimentSourceFailureIsAdapterError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPSentimentSource(srv.URL, "/news", 10, time.Second, 3).FetchSentimentItems(context.Background(), "BTC")
	if !errors.Is(err, models.ErrAdapterFailure) {
		t.Fatalf("expected adapter failure, got %v", err)
	}
}

type fakeProducer struct {
	topic  string
	key    []byte
	value  []byte
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.topic, f.key = topic, key
	b, err := json.Marshal(value)
	f.value = b
	return err
}

func (f *fakeProducer) Close() error { f.closed = true; return nil }

func TestKafkaReportPublisher(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaReportPublisher(fp, "portfolio.reports")
	report := &models.PortfolioReport{RunID: "r1", PortfolioID: "p1"}
	if err := pub.Publish(context.Background(), report); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fp.topic != "portfolio.reports" || string(fp.key) != "p1" || !strings.Contains(string(fp.value), `"run_id":"r1"`) {
		t.Fatalf("unexpected message topic=%s key=%s value=%s", fp.topic, fp.key, fp.value)
	}

	fp.err = errors.New("broker down")
	if err := pub.Publish(context.Background(), report); !errors.Is(err, models.ErrAdapterFailure) {
		t.Fatalf("expected adapter failure, got %v", err)
	}
	_ = pub.Close()
	if !fp.closed {
		t.Fatalf("expected producer closed")
	}
}

func TestRedisReportStoreLatest(t *testing.T) {
	store := NewRedisReportStore(cache.NewMemoryCache(), time.Hour)
	ctx := context.Background()

	if _, err := store.Latest(ctx, "p1"); !errors.Is(err, domrepo.ErrReportNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	report := &models.PortfolioReport{
		RunID:             "r1",
		PortfolioID:       "p1",
		AllocationByClass: map[models.AssetClass]float64{models.AssetClassCryptocurrency: 60},
	}
	if err := store.SaveLatest(ctx, report); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Latest(ctx, "p1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.RunID != "r1" || got.AllocationByClass[models.AssetClassCryptocurrency] != 60 {
		t.Fatalf("unexpected report: %+v", got)
	}
}

func TestRedisReportStoreRunLock(t *testing.T) {
	store := NewRedisReportStore(cache.NewMemoryCache(), 0)
	ctx := context.Background()

	ok, err := store.AcquireRun(ctx, "p1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, _ = store.AcquireRun(ctx, "p1", time.Minute)
	if ok {
		t.Fatalf("second acquire should fail while held")
	}
	ok, _ = store.AcquireRun(ctx, "p2", time.Minute)
	if !ok {
		t.Fatalf("other portfolio should not be blocked")
	}
	if err := store.ReleaseRun(ctx, "p1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, _ = store.AcquireRun(ctx, "p1", time.Minute)
	if !ok {
		t.Fatalf("acquire after release should succeed")
	}
}

func TestEmptySentimentSource(t *testing.T) {
	items, err := EmptySentimentSource{}.FetchSentimentItems(context.Background(), "BTC")
	if err != nil || len(items) != 0 {
		t.Fatalf("got %d items err=%v", len(items), err)
	}
}
