package warehouse

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neobase-ai/internal/tabular"
)

// PostgresDriver runs queries directly against pgxpool rather than through
// gorm, since a warehouse fetch has no models to map onto — it only ever
// needs the raw rows sqlcompiler's SELECT produced.
type PostgresDriver struct {
	pool *pgxpool.Pool

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewPostgresDriver(ctx context.Context, dsn string) (*PostgresDriver, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("warehouse: postgres: %w", err)
	}
	return &PostgresDriver{pool: pool, cancels: map[string]context.CancelFunc{}}, nil
}

func (d *PostgresDriver) Kind() string { return "postgres" }

func (d *PostgresDriver) Execute(ctx context.Context, sql string) (*Future, error) {
	jobID := uuid.NewString()
	future := newFuture(jobID)

	queryCtx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancels[jobID] = cancel
	d.mu.Unlock()

	go func() {
		defer func() {
			d.mu.Lock()
			delete(d.cancels, jobID)
			d.mu.Unlock()
			cancel()
		}()
		result, err := d.run(queryCtx, sql)
		future.resolve(result, err)
	}()
	return future, nil
}

func (d *PostgresDriver) run(ctx context.Context, sqlText string) (*tabular.TabularDataResult, error) {
	rows, err := d.pool.Query(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	groupByNames := groupByColumnNames(cols)

	var trows []tabular.Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row, err := rowFromColumns(cols, vals)
		if err != nil {
			return nil, err
		}
		trows = append(trows, row)
	}
	if err := rows.Err(); err != nil && err != pgx.ErrNoRows {
		return nil, err
	}
	return tabular.New(groupByNames, trows), nil
}

// CancelJob cancels the context backing an in-flight query; pgx itself
// aborts the server-side statement once the client connection context is
// cancelled.
func (d *PostgresDriver) CancelJob(jobID string) error {
	d.mu.Lock()
	cancel, ok := d.cancels[jobID]
	d.mu.Unlock()
	if !ok {
		return nil
	}
	cancel()
	return nil
}

func (d *PostgresDriver) Close() { d.pool.Close() }
