// Package eventerrors implements the event-errors-submit endpoint
// (original_source/queryengine/api/event_errors), a narrow query that
// bypasses internal/chartpipeline entirely: one fixed COUNT(1)-by-event_name
// query against the monitoring dataset's bad-events view, returning how
// many malformed events of each name arrived for an app in a date range.
package eventerrors

import (
	"context"
	"fmt"

	"neobase-ai/internal/catalog"
	"neobase-ai/internal/sqlast"
	"neobase-ai/internal/warehouse"
)

const (
	monitoringDataset  = "gametuner_monitoring"
	badEventsView      = "v_enrich_bad_events"
	loadTimestampColumn = "load_tstamp"
)

// Query is one event-errors request: an app, an optional event name filter,
// and the date range to count over.
type Query struct {
	AppID        string
	EventName    string // empty means "every event"
	DateInterval catalog.DatetimeInterval
}

// Service answers a Query by running it against BigQuery and reshaping the
// rows into a per-event count map, skipping internal/sqlcompiler and
// internal/chartpipeline since there is no x-axis, group-by or formula
// layer to apply here — just one grouped count.
type Service struct {
	bigquery warehouse.Driver
}

func NewService(bigquery warehouse.Driver) *Service {
	return &Service{bigquery: bigquery}
}

// Execute returns event_name -> error count for the window, or an empty
// map if the interval ends before it starts.
func (s *Service) Execute(ctx context.Context, q Query) (map[string]int64, error) {
	if q.DateInterval.Days() <= 0 {
		return map[string]int64{}, nil
	}

	sqlText, err := buildQuery(q)
	if err != nil {
		return nil, err
	}

	future, err := s.bigquery.Execute(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	result, err := future.Wait(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(result.Rows))
	for _, row := range result.Rows {
		eventName, ok := row.XAxis.(string)
		if !ok || eventName == "" {
			continue
		}
		counts[eventName] = int64(row.Value)
	}
	return counts, nil
}

// buildQuery mirrors the original's query_builder.py: select event_name
// aliased as the x-axis column and COUNT(1) aliased as the value column,
// filtered to the requested app and date range, grouped by event_name, with
// an optional further filter to one event name.
func buildQuery(q Query) (string, error) {
	table := sqlast.NewTable(monitoringDataset, badEventsView)
	eventNameCol := table.Column("event_name", "")
	eventNameSelect := sqlast.NewExpression(eventNameCol.ToReferenceSQL()).AsAlias(catalog.XAxisColumnAlias)

	dateFilter, err := sqlast.FromTimestamp(
		table.Column(loadTimestampColumn, "").ToReferenceSQL(),
		q.DateInterval.DateFrom.Format("2006-01-02"),
		q.DateInterval.DateTo.Format("2006-01-02"),
	)
	if err != nil {
		return "", fmt.Errorf("eventerrors: %w", err)
	}

	appFilter, err := sqlast.BooleanExpressionFromFilter(
		table.Column("app_id", "").ToReferenceSQL(), catalog.OpEQ, []string{q.AppID}, catalog.DataTypeString)
	if err != nil {
		return "", fmt.Errorf("eventerrors: %w", err)
	}

	notNullFilter, err := sqlast.BooleanExpressionFromFilter(
		eventNameCol.ToReferenceSQL(), catalog.OpIsNotNull, nil, catalog.DataTypeBoolean)
	if err != nil {
		return "", fmt.Errorf("eventerrors: %w", err)
	}

	stmt := sqlast.NewSelectStatement().
		From(table).
		SetSelect(eventNameSelect, sqlast.NewExpression("COUNT(1)").AsAlias(catalog.DataColumnAlias)).
		Where(dateFilter).
		AndWhere(appFilter).
		AndWhere(notNullFilter).
		SetGroupBy(eventNameCol)

	if q.EventName != "" {
		eventFilter, err := sqlast.BooleanExpressionFromFilter(
			eventNameCol.ToReferenceSQL(), catalog.OpEQ, []string{q.EventName}, catalog.DataTypeString)
		if err != nil {
			return "", fmt.Errorf("eventerrors: %w", err)
		}
		stmt.AndWhere(eventFilter)
	}

	qb := sqlast.NewQueryBuilder()
	qb.Statement = stmt
	return qb.ToSQL(), nil
}
