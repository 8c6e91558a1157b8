package warehouse

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLDriver mirrors ClickHouseDriver: gorm purely as a connection/dialect
// wrapper, rows read through the *sql.Rows escape hatch.
type MySQLDriver struct {
	db *gorm.DB

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewMySQLDriver(dsn string) (*MySQLDriver, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("warehouse: mysql: %w", err)
	}
	return &MySQLDriver{db: db, cancels: map[string]context.CancelFunc{}}, nil
}

func (d *MySQLDriver) Kind() string { return "mysql" }

func (d *MySQLDriver) Execute(ctx context.Context, sql string) (*Future, error) {
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

// CancelJob cancels the context backing an in-flight query; the
// go-sql-driver/mysql connection aborts its query once its context is done.
func (d *MySQLDriver) CancelJob(jobID string) error {
	d.mu.Lock()
	cancel, ok := d.cancels[jobID]
	d.mu.Unlock()
	if !ok {
		return nil
	}
	cancel()
	return nil
}
