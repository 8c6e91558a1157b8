// Package queryservice wires internal/sqlcompiler, internal/warehouse and
// internal/executor together behind the xaxis.Warehouse interface, so the
// chart pipeline's strategies can submit a WarehouseChartQuery without
// knowing anything about SQL generation, job scheduling or cancellation.
package queryservice

import (
	"context"

	"neobase-ai/internal/catalog"
	"neobase-ai/internal/executor"
	"neobase-ai/internal/sqlcompiler"
	"neobase-ai/internal/tabular"
	"neobase-ai/internal/warehouse"
)

// Service implements xaxis.Warehouse: one SQL statement per metric symbol,
// run concurrently on a bounded pool and bracketed by the cancellable
// executor's request/page-scoped registry.
type Service struct {
	catalog     *catalog.Cache
	warehouses  *warehouse.Manager
	pool        *executor.BoundedExecutor
	cancellable *executor.CancellableExecutor
}

func New(cat *catalog.Cache, wm *warehouse.Manager, pool *executor.BoundedExecutor, cancellable *executor.CancellableExecutor) *Service {
	return &Service{catalog: cat, warehouses: wm, pool: pool, cancellable: cancellable}
}

// SubmitQuery compiles one SQL statement per metric symbol in query,
// resolves the driver for the primary datasource's warehouse kind, and
// gathers every fragment concurrently.
func (s *Service) SubmitQuery(ctx context.Context, query catalog.WarehouseChartQuery) (*tabular.TabularDataResults, error) {
	sqlBySymbol, err := sqlcompiler.Compile(query, s.resolveDatasource(query.AppID))
	if err != nil {
		return nil, err
	}
	driver, err := s.warehouses.Driver(query.Datasource.WarehouseKind)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(sqlBySymbol))
	for symbol := range sqlBySymbol {
		symbols = append(symbols, symbol)
	}

	return executor.Gather(ctx, s.pool, symbols, func(ctx context.Context, symbol string) (*tabular.TabularDataResult, error) {
		return s.runOne(ctx, driver, query, sqlBySymbol[symbol])
	})
}

func (s *Service) runOne(ctx context.Context, driver warehouse.Driver, query catalog.WarehouseChartQuery, sql string) (*tabular.TabularDataResult, error) {
	future, err := driver.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	if err := s.cancellable.OnQueryStart(query.RequestID, query.PageID, future.JobID); err != nil {
		_ = driver.CancelJob(future.JobID)
		return nil, err
	}
	defer s.cancellable.OnQueryEnd(query.RequestID, query.PageID, future.JobID)

	return future.Wait(ctx)
}

func (s *Service) resolveDatasource(appID string) sqlcompiler.DatasourceResolver {
	return func(id string) (catalog.Datasource, bool) {
		return s.catalog.Datasource(appID, id)
	}
}
