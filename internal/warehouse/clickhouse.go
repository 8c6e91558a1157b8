package warehouse

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"
)

// ClickHouseDriver drops to gorm's *sql.Rows escape hatch (.Raw(sql).Rows())
// rather than gorm's model mapping, since a warehouse fetch has no model —
// only the dynamic x_axis/group_by_N/value columns sqlcompiler produced.
type ClickHouseDriver struct {
	db *gorm.DB

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewClickHouseDriver(dsn string) (*ClickHouseDriver, error) {
	db, err := gorm.Open(clickhouse.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("warehouse: clickhouse: %w", err)
	}
	return &ClickHouseDriver{db: db, cancels: map[string]context.CancelFunc{}}, nil
}

func (d *ClickHouseDriver) Kind() string { return "clickhouse" }

func (d *ClickHouseDriver) Execute(ctx context.Context, sql string) (*Future, error) {
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
		rows, err := d.db.WithContext(queryCtx).Raw(sql).Rows()
		if err != nil {
			future.resolve(nil, err)
			return
		}
		defer rows.Close()
		result, err := scanSQLRows(rows)
		future.resolve(result, err)
	}()
	return future, nil
}

// CancelJob cancels the context backing an in-flight query; ClickHouse's
// native driver aborts the running query once its context is cancelled.
func (d *ClickHouseDriver) CancelJob(jobID string) error {
	d.mu.Lock()
	cancel, ok := d.cancels[jobID]
	d.mu.Unlock()
	if !ok {
		return nil
	}
	cancel()
	return nil
}
