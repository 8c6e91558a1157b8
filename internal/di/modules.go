// Package di wires every concrete component the service needs behind
// go.uber.org/dig, adapting the teacher's internal/di/modules.go provider-
// registration style (the same "if err := DiContainer.Provide(...); err !=
// nil { log.Fatalf(...) }" shape) from a chat-copilot's LLM/DB-manager
// dependency graph to this service's catalog/warehouse/executor one.
package di

import (
	"context"
	"log"
	"time"

	"go.uber.org/dig"

	"neobase-ai/internal/apis/handlers"
	"neobase-ai/internal/catalog"
	"neobase-ai/internal/catalogstore"
	"neobase-ai/internal/chartservice"
	"neobase-ai/internal/columnvalues"
	"neobase-ai/internal/config"
	"neobase-ai/internal/eventerrors"
	"neobase-ai/internal/executor"
	"neobase-ai/internal/queryservice"
	"neobase-ai/internal/warehouse"
	"neobase-ai/pkg/logging"
	"neobase-ai/pkg/redis"
)

var DiContainer *dig.Container

// Initialize builds the full dependency graph: config -> logger -> redis ->
// catalog (loader + cache + refresh daemon) -> warehouse manager (drivers
// registered per configured DSN/project) -> executor (bounded pool +
// cancellation registry) -> the query/chart/event-errors/column-values
// services -> HTTP handlers.
func Initialize() {
	DiContainer = dig.New()

	logger := logging.New("neobase-ai", config.Env.JSONLogs)
	provide(func() *logging.Logger { return logger })

	redisClient, err := redis.RedisClient(config.Env.RedisHost, config.Env.RedisPort, config.Env.RedisUsername, config.Env.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
	}

	provide(func() *catalog.Cache {
		cat := catalog.NewCache()

		httpLoader := catalogstore.NewHTTPLoader(config.Env.MetadataIPAddress, config.Env.MetadataPort)
		loader := catalogstore.NewRedisMirroredLoader(httpLoader, redisClient)

		if err := cat.StartDaemon(context.Background(), loader, 30*time.Second, func(err error) {
			logger.Warn("catalog refresh failed", logging.F("error", err))
		}); err != nil {
			log.Fatalf("Failed to start catalog refresh daemon: %v", err)
		}
		return cat
	})

	provide(func() *warehouse.Manager {
		manager := warehouse.NewManager()

		if config.Env.GCPProjectID != "" {
			driver, err := warehouse.NewBigQueryDriver(context.Background(), config.Env.GCPProjectID)
			if err != nil {
				logger.Error("failed to initialize BigQuery driver", logging.F("error", err))
			} else {
				manager.RegisterDriver(catalog.KindBigQuery, driver)
			}
		}
		if config.Env.PostgresDSN != "" {
			driver, err := warehouse.NewPostgresDriver(context.Background(), config.Env.PostgresDSN)
			if err != nil {
				logger.Error("failed to initialize Postgres driver", logging.F("error", err))
			} else {
				manager.RegisterDriver(catalog.KindPostgres, driver)
			}
		}
		if config.Env.ClickhouseDSN != "" {
			driver, err := warehouse.NewClickHouseDriver(config.Env.ClickhouseDSN)
			if err != nil {
				logger.Error("failed to initialize ClickHouse driver", logging.F("error", err))
			} else {
				manager.RegisterDriver(catalog.KindClickHouse, driver)
			}
		}
		if config.Env.MySQLDSN != "" {
			driver, err := warehouse.NewMySQLDriver(config.Env.MySQLDSN)
			if err != nil {
				logger.Error("failed to initialize MySQL driver", logging.F("error", err))
			} else {
				manager.RegisterDriver(catalog.KindMySQL, driver)
			}
		}
		return manager
	})

	provide(func() *executor.BoundedExecutor {
		return executor.NewBoundedExecutor(config.Env.MaxWorkers)
	})
	provide(func(wm *warehouse.Manager) *executor.CancellableExecutor {
		return executor.NewCancellableExecutor(wm)
	})

	provide(func(cat *catalog.Cache, wm *warehouse.Manager, pool *executor.BoundedExecutor, cancellable *executor.CancellableExecutor) *queryservice.Service {
		return queryservice.New(cat, wm, pool, cancellable)
	})
	provide(func(cat *catalog.Cache, qs *queryservice.Service) *chartservice.Service {
		return chartservice.New(cat, qs)
	})
	provide(func(wm *warehouse.Manager) *columnvalues.Service {
		return columnvalues.NewService(wm)
	})
	provide(func(wm *warehouse.Manager) *eventerrors.Service {
		driver, err := wm.Driver(catalog.KindBigQuery)
		if err != nil {
			log.Fatalf("event-errors requires a BigQuery driver: %v", err)
		}
		return eventerrors.NewService(driver)
	})

	provide(func(cs *chartservice.Service) *handlers.ChartHandler { return handlers.NewChartHandler(cs) })
	provide(func(cat *catalog.Cache, cv *columnvalues.Service) *handlers.ColumnValuesHandler {
		return handlers.NewColumnValuesHandler(cat, cv)
	})
	provide(func(ee *eventerrors.Service) *handlers.EventErrorsHandler { return handlers.NewEventErrorsHandler(ee) })
	provide(func(ce *executor.CancellableExecutor) *handlers.CancelHandler { return handlers.NewCancelHandler(ce) })
	provide(func(cat *catalog.Cache) *handlers.CatalogHandler { return handlers.NewCatalogHandler(cat) })
}

func provide(constructor any) {
	if err := DiContainer.Provide(constructor); err != nil {
		log.Fatalf("Failed to provide %T: %v", constructor, err)
	}
}

// GetChartHandler resolves the chart handler from the container.
func GetChartHandler() (*handlers.ChartHandler, error) {
	var h *handlers.ChartHandler
	err := DiContainer.Invoke(func(resolved *handlers.ChartHandler) { h = resolved })
	return h, err
}

// GetColumnValuesHandler resolves the column-values handler from the container.
func GetColumnValuesHandler() (*handlers.ColumnValuesHandler, error) {
	var h *handlers.ColumnValuesHandler
	err := DiContainer.Invoke(func(resolved *handlers.ColumnValuesHandler) { h = resolved })
	return h, err
}

// GetEventErrorsHandler resolves the event-errors handler from the container.
func GetEventErrorsHandler() (*handlers.EventErrorsHandler, error) {
	var h *handlers.EventErrorsHandler
	err := DiContainer.Invoke(func(resolved *handlers.EventErrorsHandler) { h = resolved })
	return h, err
}

// GetCancelHandler resolves the cancel handler from the container.
func GetCancelHandler() (*handlers.CancelHandler, error) {
	var h *handlers.CancelHandler
	err := DiContainer.Invoke(func(resolved *handlers.CancelHandler) { h = resolved })
	return h, err
}

// GetCatalogHandler resolves the catalog handler from the container.
func GetCatalogHandler() (*handlers.CatalogHandler, error) {
	var h *handlers.CatalogHandler
	err := DiContainer.Invoke(func(resolved *handlers.CatalogHandler) { h = resolved })
	return h, err
}
