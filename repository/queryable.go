package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable is satisfied by both *pgxpool.Pool and pgx.Tx
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QueryObserver receives the duration and result of every repository statement
type QueryObserver interface {
	ObserveQuery(ctx context.Context, operation string, duration time.Duration, err error)
}

// observedQueryable reports statements to a QueryObserver, labelled by table
type observedQueryable struct {
	q        queryable
	observer QueryObserver
	table    string
}

func observe(q queryable, observer QueryObserver, table string) queryable {
	if observer == nil {
		return q
	}
	return &observedQueryable{q: q, observer: observer, table: table}
}

func (o *observedQueryable) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	start := time.Now()
	tag, err := o.q.Exec(ctx, sql, args...)
	o.observer.ObserveQuery(ctx, o.table, time.Since(start), err)
	return tag, err
}

func (o *observedQueryable) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	start := time.Now()
	rows, err := o.q.Query(ctx, sql, args...)
	o.observer.ObserveQuery(ctx, o.table, time.Since(start), err)
	return rows, err
}

func (o *observedQueryable) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	start := time.Now()
	return &observedRow{
		row:   o.q.QueryRow(ctx, sql, args...),
		start: start,
		ctx:   ctx,
		o:     o,
	}
}

// observedRow reports on Scan, which is where QueryRow surfaces its error
type observedRow struct {
	row   pgx.Row
	start time.Time
	ctx   context.Context
	o     *observedQueryable
}

func (r *observedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	observed := err
	if err == pgx.ErrNoRows {
		observed = nil
	}
	r.o.observer.ObserveQuery(r.ctx, r.o.table, time.Since(r.start), observed)
	return err
}
