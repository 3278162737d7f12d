package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig configures database tracing and metrics.
type DBConfig struct {
	TraceEnabled   bool
	LogFullSQL     bool          // include bound variables in span statements (dev only)
	SlowQuery      time.Duration // default 200ms
	PoolStatsEvery time.Duration // default 15s
	DBSystem       string        // default "postgresql"
}

func (c *DBConfig) applyDefaults() {
	if c.SlowQuery <= 0 {
		c.SlowQuery = 200 * time.Millisecond
	}
	if c.PoolStatsEvery <= 0 {
		c.PoolStatsEvery = 15 * time.Second
	}
	if c.DBSystem == "" {
		c.DBSystem = "postgresql"
	}
}

type queryStartKey struct{}

// gorm's callback processors are unexported, so each operation carries its
// own registration closure. After callbacks run ahead of otelgorm's, which
// ends the span.
type dbOperation struct {
	name     string
	verb     string // empty means detect from the statement
	register func(db *gorm.DB, before, after func(*gorm.DB)) error
}

var dbOperations = []dbOperation{
	{"create", "INSERT", func(db *gorm.DB, before, after func(*gorm.DB)) error {
		p := db.Callback().Create()
		if err := p.Before("gorm:create").Register("storefront:before_create", before); err != nil {
			return err
		}
		return p.After("gorm:create").Before("otel:after:create").Register("storefront:after_create", after)
	}},
	{"query", "SELECT", func(db *gorm.DB, before, after func(*gorm.DB)) error {
		p := db.Callback().Query()
		if err := p.Before("gorm:query").Register("storefront:before_query", before); err != nil {
			return err
		}
		return p.After("gorm:query").Before("otel:after:query").Register("storefront:after_query", after)
	}},
	{"update", "UPDATE", func(db *gorm.DB, before, after func(*gorm.DB)) error {
		p := db.Callback().Update()
		if err := p.Before("gorm:update").Register("storefront:before_update", before); err != nil {
			return err
		}
		return p.After("gorm:update").Before("otel:after:update").Register("storefront:after_update", after)
	}},
	{"delete", "DELETE", func(db *gorm.DB, before, after func(*gorm.DB)) error {
		p := db.Callback().Delete()
		if err := p.Before("gorm:delete").Register("storefront:before_delete", before); err != nil {
			return err
		}
		return p.After("gorm:delete").Before("otel:after:delete").Register("storefront:after_delete", after)
	}},
	{"row", "", func(db *gorm.DB, before, after func(*gorm.DB)) error {
		p := db.Callback().Row()
		if err := p.Before("gorm:row").Register("storefront:before_row", before); err != nil {
			return err
		}
		return p.After("gorm:row").Before("otel:after:row").Register("storefront:after_row", after)
	}},
	{"raw", "", func(db *gorm.DB, before, after func(*gorm.DB)) error {
		p := db.Callback().Raw()
		if err := p.Before("gorm:raw").Register("storefront:before_raw", before); err != nil {
			return err
		}
		return p.After("gorm:raw").Before("otel:after:raw").Register("storefront:after_raw", after)
	}},
}

// DBInstrumentation is a gorm plugin that times every statement, decorates
// the otelgorm span with rows affected and slow query markers, and records
// query and pool metrics when a meter is supplied.
type DBInstrumentation struct {
	cfg    DBConfig
	logger *zap.Logger

	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	poolConns      *Gauge
	poolConnsMax   *Gauge

	sqlDB    *sql.DB
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDBInstrumentation creates the plugin. meter may be nil, in which case
// only span decoration is performed.
func NewDBInstrumentation(cfg DBConfig, meter metric.Meter, logger *zap.Logger) (*DBInstrumentation, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &DBInstrumentation{cfg: cfg, logger: logger, stopCh: make(chan struct{})}
	if meter == nil {
		return d, nil
	}

	var err error
	if d.queryTotal, err = NewCounter(meter, "db_query_total",
		"Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if d.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if d.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total",
		"Queries slower than the configured threshold", "{query}"); err != nil {
		return nil, err
	}
	if d.poolConns, err = NewGauge(meter, "db_pool_connections",
		"Connections in the pool by state", "{connection}"); err != nil {
		return nil, err
	}
	if d.poolConnsMax, err = NewGauge(meter, "db_pool_connections_max",
		"Maximum open connections", "{connection}"); err != nil {
		return nil, err
	}
	return d, nil
}

// Name implements gorm.Plugin.
func (d *DBInstrumentation) Name() string { return "storefront_db_instrumentation" }

// Initialize implements gorm.Plugin. otelgorm is installed first so its
// spans exist by the time the after callbacks run.
func (d *DBInstrumentation) Initialize(db *gorm.DB) error {
	if d.cfg.TraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(d.cfg.DBSystem)}
		if !d.cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	for _, op := range dbOperations {
		verb := op.verb
		if err := op.register(db, d.before, func(tx *gorm.DB) { d.after(tx, verb) }); err != nil {
			return err
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		d.sqlDB = sqlDB
	}

	d.logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", d.cfg.TraceEnabled),
		zap.Bool("metrics", d.queryTotal != nil),
		zap.Duration("slow_query_threshold", d.cfg.SlowQuery),
	)
	return nil
}

func (d *DBInstrumentation) before(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
}

func (d *DBInstrumentation) after(db *gorm.DB, verb string) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if verb == "" {
		verb = detectOperation(db.Statement.SQL.String())
	}
	var elapsed time.Duration
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		elapsed = time.Since(start)
	}
	slow := elapsed > d.cfg.SlowQuery

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(AttrDBTable.String(db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
		if slow {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}

	if d.queryTotal == nil {
		return
	}
	d.queryTotal.Inc(ctx, AttrDBOperation.String(verb))
	d.queryDuration.RecordDuration(ctx, elapsed, AttrDBOperation.String(verb))
	if slow {
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		d.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// StartPoolStatsCollection samples sql.DB pool stats until Stop or ctx ends.
// It is a no-op without a meter or before Initialize.
func (d *DBInstrumentation) StartPoolStatsCollection(ctx context.Context) {
	if d.poolConns == nil || d.sqlDB == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.cfg.PoolStatsEvery)
		defer ticker.Stop()

		d.collectPoolStats(ctx)
		for {
			select {
			case <-ticker.C:
				d.collectPoolStats(ctx)
			case <-d.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (d *DBInstrumentation) collectPoolStats(ctx context.Context) {
	stats := d.sqlDB.Stats()
	d.poolConnsMax.Record(ctx, int64(stats.MaxOpenConnections))
	d.poolConns.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	d.poolConns.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	d.poolConns.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool stats collection. Safe to call more than once.
func (d *DBInstrumentation) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		d.wg.Wait()
	})
}

func detectOperation(stmt string) string {
	stmt = strings.ToUpper(strings.TrimSpace(stmt))
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(stmt, verb) {
			return verb
		}
	}
	return "OTHER"
}
