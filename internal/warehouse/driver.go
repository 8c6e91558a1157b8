// Package warehouse fronts one SQL string per execution across four
// backends (BigQuery, Postgres, ClickHouse, MySQL) behind a single Driver
// interface, adapting the teacher's pkg/dbmanager.DatabaseDriver /
// Manager.RegisterDriver registry pattern (types.go) from its
// connection-pooled chat-copilot use to a query-per-job warehouse fetch.
package warehouse

import (
	"context"
	"fmt"
	"sync"

	"neobase-ai/internal/tabular"
)

// Driver executes one compiled SQL string against a warehouse backend
// (spec.md §6's execute(sql_query) contract) and supports cancelling a job
// it previously started, so internal/executor.CancellableExecutor can
// bracket and cancel warehouse work without knowing which backend is
// behind it.
type Driver interface {
	// Execute starts sql running and returns a Future immediately; the
	// query itself runs on a goroutine so the caller can race it against
	// cancellation.
	Execute(ctx context.Context, sql string) (*Future, error)
	// CancelJob asks the backend to cancel a job by the id Future.JobID
	// returned from Execute.
	CancelJob(jobID string) error
	// Kind names the datasource kind this driver serves: "bigquery",
	// "postgres", "clickhouse", or "mysql".
	Kind() string
}

// Future is a single-result handle to an in-flight warehouse query.
type Future struct {
	JobID string

	done   chan struct{}
	result *tabular.TabularDataResult
	err    error
}

func newFuture(jobID string) *Future {
	return &Future{JobID: jobID, done: make(chan struct{})}
}

func (f *Future) resolve(result *tabular.TabularDataResult, err error) {
	f.result, f.err = result, err
	close(f.done)
}

// Wait blocks until the query finishes or ctx is cancelled first.
func (f *Future) Wait(ctx context.Context) (*tabular.TabularDataResult, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Manager is a registry of one Driver per datasource kind, mirroring the
// teacher's pkg/dbmanager.Manager driver registry.
type Manager struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

func NewManager() *Manager {
	return &Manager{drivers: map[string]Driver{}}
}

// RegisterDriver adds or replaces the driver serving a datasource kind.
func (m *Manager) RegisterDriver(kind string, d Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[kind] = d
}

// Driver looks up the driver registered for kind.
func (m *Manager) Driver(kind string) (Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[kind]
	if !ok {
		return nil, fmt.Errorf("warehouse: no driver registered for kind %q", kind)
	}
	return d, nil
}

// CancelJob implements executor.Canceller over every registered driver. A
// job id is only meaningful to the backend that issued it, and the
// cancellation registry doesn't track which kind a job came from, so this
// broadcasts to every driver rather than stopping at the first one: each
// driver treats an id it doesn't recognize as a no-op (returning nil), so
// there's no reliable "found it" signal to short-circuit on.
func (m *Manager) CancelJob(jobID string) error {
	m.mu.RLock()
	drivers := make([]Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		drivers = append(drivers, d)
	}
	m.mu.RUnlock()

	var lastErr error
	for _, d := range drivers {
		if err := d.CancelJob(jobID); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
