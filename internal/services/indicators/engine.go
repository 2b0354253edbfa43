package indicators

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/tracing"
)

// Config holds indicator windows in bars.
type Config struct {
	ShortMA      int
	MidMA        int
	LongMA       int
	RSIPeriod    int
	VolumePeriod int
	VWAPPeriod   int
}

func DefaultConfig() Config {
	return Config{ShortMA: 9, MidMA: 21, LongMA: 50, RSIPeriod: 14, VolumePeriod: 21, VWAPPeriod: 14}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ShortMA <= 0 {
		c.ShortMA = d.ShortMA
	}
	if c.MidMA <= 0 {
		c.MidMA = d.MidMA
	}
	if c.LongMA <= 0 {
		c.LongMA = d.LongMA
	}
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.VolumePeriod <= 0 {
		c.VolumePeriod = d.VolumePeriod
	}
	if c.VWAPPeriod <= 0 {
		c.VWAPPeriod = d.VWAPPeriod
	}
	return c
}

// Engine computes the indicator set and trend label of one asset from its bars.
// It holds no per-asset state, so one Engine serves concurrent portfolio runs.
type Engine struct {
	bars    domrepo.BarRepository
	cfg     Config
	l       *applogger.Logger
	metrics domrepo.Metrics
}

type Option func(*Engine)

func WithLogger(l *applogger.Logger) Option {
	return func(e *Engine) { e.l = l }
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(bars domrepo.BarRepository, cfg Config, opts ...Option) *Engine {
	e := &Engine{bars: bars, cfg: cfg.withDefaults(), l: applogger.Nop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Config() Config { return e.cfg }

// lookback is the number of newest bars needed by the moving averages, volume and VWAP.
func (e *Engine) lookback() int {
	return max(e.cfg.ShortMA, e.cfg.MidMA, e.cfg.LongMA, e.cfg.VolumePeriod, e.cfg.VWAPPeriod)
}

// Analyze fetches bars once per ordering and derives every indicator from them.
// Missing history skips individual indicators; only a failing bar source is returned as an error.
func (e *Engine) Analyze(ctx context.Context, alloc models.Allocation) (models.TechnicalAnalysis, error) {
	symbol := alloc.Asset
	class := alloc.EffectiveClass()
	ctx, span := tracing.StartSpan(ctx, "indicators.Analyze", attribute.String("symbol", symbol), attribute.String("asset_class", string(class)))
	defer span.End()
	start := time.Now()

	newest, oldest, err := e.fetch(ctx, symbol)
	if err != nil {
		tracing.Fail(span, err)
		e.recordError("bar_fetch")
		e.l.Error("bar fetch failed", applogger.String("symbol", symbol), applogger.Error(err))
		return models.TechnicalAnalysis{}, err
	}

	res := models.TechnicalAnalysis{Set: models.IndicatorSet{Symbol: symbol, Class: class}}
	var last float64
	var asOf time.Time
	if len(newest) > 0 {
		last, asOf = newest[0].Close, newest[0].Timestamp
	}

	mas := make(map[int]float64, 3)
	for _, w := range []int{e.cfg.ShortMA, e.cfg.MidMA, e.cfg.LongMA} {
		v, err := MovingAverage(newest, w)
		if err != nil {
			e.skip(&res.Set, symbol, err)
			continue
		}
		mas[w] = v
		res.Set.Indicators = append(res.Set.Indicators, models.Indicator{
			Name:      models.MovingAverageName(w),
			Value:     v,
			AsOf:      asOf,
			Summary:   fmt.Sprintf("%s MA%d is %s on %s.", symbol, w, FormatPrice(v), formatDate(asOf)),
			Diagnosis: DiagnoseMovingAverage(last, v, w),
		})
	}

	if rsi, err := RSI(oldest, e.cfg.RSIPeriod); err != nil {
		e.skip(&res.Set, symbol, err)
	} else {
		rsiAsOf := oldest[len(oldest)-1].Timestamp
		ind := models.Indicator{
			Name:      models.IndicatorRSI,
			Value:     rsi,
			AsOf:      rsiAsOf,
			Summary:   fmt.Sprintf("%s RSI (%d-period) is %s on %s.", symbol, e.cfg.RSIPeriod, formatValue(rsi), formatDate(rsiAsOf)),
			Diagnosis: DiagnoseRSI(rsi, class, symbol),
		}
		if class == models.AssetClassStablecoin && UnusualStablecoinRSI(rsi) {
			ind.Warning = fmt.Sprintf("Unusual RSI %s for stablecoin %s.", formatValue(rsi), symbol)
			e.l.Warn("unusual stablecoin rsi", applogger.String("symbol", symbol), applogger.Float("rsi", rsi))
		}
		res.Set.Indicators = append(res.Set.Indicators, ind)
	}

	if vs, err := VolumeRatio(newest, e.cfg.VolumePeriod); err != nil {
		e.skip(&res.Set, symbol, err)
	} else {
		res.Set.Indicators = append(res.Set.Indicators, models.Indicator{
			Name:      models.IndicatorVolumeRatio,
			Value:     vs.Ratio,
			AsOf:      asOf,
			Summary:   fmt.Sprintf("%s volume is %s vs %d-period avg of %s on %s.", symbol, FormatVolume(vs.Current), e.cfg.VolumePeriod, FormatVolume(vs.Average), formatDate(asOf)),
			Diagnosis: DiagnoseVolume(vs.Ratio),
		})
	}

	if vwap, err := VWAP(newest, e.cfg.VWAPPeriod); err != nil {
		e.skip(&res.Set, symbol, err)
	} else {
		res.Set.Indicators = append(res.Set.Indicators, models.Indicator{
			Name:      models.IndicatorVWAP,
			Value:     vwap,
			AsOf:      asOf,
			Summary:   fmt.Sprintf("%s VWAP (%d-period) is %s vs current price %s on %s.", symbol, e.cfg.VWAPPeriod, FormatPrice(vwap), FormatPrice(last), formatDate(asOf)),
			Diagnosis: DiagnoseVWAP(last, vwap, class),
		})
	}

	if trend, err := e.trend(symbol, class, last, asOf, len(newest), mas); err != nil {
		e.skip(&res.Set, symbol, err)
	} else {
		res.Trend = &trend
		span.SetAttributes(attribute.String("trend", string(trend.Label)))
	}

	e.l.Debug("indicators computed",
		applogger.String("symbol", symbol),
		applogger.Int("computed", len(res.Set.Indicators)),
		applogger.Int("skipped", len(res.Set.Skipped)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	if e.metrics != nil {
		e.metrics.RecordLatency("indicators_analyze", time.Since(start))
	}
	return res, nil
}

func (e *Engine) trend(symbol string, class models.AssetClass, last float64, asOf time.Time, have int, mas map[int]float64) (models.TrendAssessment, error) {
	short, okShort := mas[e.cfg.ShortMA]
	mid, okMid := mas[e.cfg.MidMA]
	long, okLong := mas[e.cfg.LongMA]

	need := 1
	if class != models.AssetClassStablecoin {
		need = max(e.cfg.ShortMA, e.cfg.MidMA)
	}
	if have == 0 || (class != models.AssetClassStablecoin && !(okShort && okMid)) {
		return models.TrendAssessment{}, &models.IndicatorError{Indicator: models.IndicatorTrend, Required: need, Available: have, Err: models.ErrInsufficientData}
	}
	return ClassifyTrend(TrendInput{
		Symbol:      symbol,
		Class:       class,
		LastPrice:   last,
		AsOf:        asOf,
		ShortMA:     short,
		MidMA:       mid,
		LongMA:      long,
		HasLongMA:   okLong,
		ShortWindow: e.cfg.ShortMA,
		MidWindow:   e.cfg.MidMA,
		LongWindow:  e.cfg.LongMA,
	})
}

// fetch reads the newest-first lookback window and the oldest-first RSI window concurrently.
func (e *Engine) fetch(ctx context.Context, symbol string) (newest, oldest []models.Bar, err error) {
	type item struct {
		order domrepo.BarOrder
		bars  []models.Bar
		err   error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		bars, err := e.bars.FetchBars(ctx, symbol, e.lookback(), domrepo.NewestFirst)
		ch <- item{domrepo.NewestFirst, bars, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		bars, err := e.bars.FetchBars(ctx, symbol, 2*e.cfg.RSIPeriod, domrepo.OldestFirst)
		ch <- item{domrepo.OldestFirst, bars, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	var errs []error
	for it := range ch {
		if it.err != nil {
			errs = append(errs, fmt.Errorf("%s-first: %w", it.order, it.err))
			continue
		}
		if it.order == domrepo.NewestFirst {
			newest = it.bars
		} else {
			oldest = it.bars
		}
	}
	if len(errs) > 0 {
		return nil, nil, models.AdapterError("fetch bars "+symbol, errors.Join(errs...))
	}
	return newest, oldest, nil
}

func (e *Engine) skip(set *models.IndicatorSet, symbol string, err error) {
	s := models.SkippedIndicator{Reason: err.Error()}
	var ie *models.IndicatorError
	if errors.As(err, &ie) {
		ie.Symbol = symbol
		s.Name, s.Required, s.Available = ie.Indicator, ie.Required, ie.Available
		s.Reason = ie.Err.Error()
	}
	set.Skipped = append(set.Skipped, s)
	e.l.Warn("indicator skipped",
		applogger.String("symbol", symbol),
		applogger.String("indicator", string(s.Name)),
		applogger.String("reason", s.Reason),
		applogger.Int("required", s.Required),
		applogger.Int("available", s.Available),
	)
	if e.metrics != nil {
		e.metrics.RecordIndicatorSkip(string(s.Name), s.Reason)
	}
}

func (e *Engine) recordError(kind string) {
	if e.metrics != nil {
		e.metrics.RecordError(kind)
	}
}
