package catalog

import "time"

const metadataDateLayout = "2006-01-02"

// Kind names which warehouse backend serves a datasource. The metadata
// service's DatasourceDTO predates multi-warehouse support (spec.md's
// original scope was BigQuery-only), so every datasource defaults to
// "bigquery" unless MaterializedColumnsDTO.MaterializedFrom is one of the
// other three backend names — a documented simplification, not a field the
// metadata document defines explicitly.
const (
	KindBigQuery   = "bigquery"
	KindPostgres   = "postgres"
	KindClickHouse = "clickhouse"
	KindMySQL      = "mysql"
)

// ToDatasource converts the metadata document's DatasourceDTO shape into
// the Datasource the SQL compiler consumes, deriving its physical
// schema/table from the first materialized column (one DatasourceDTO is
// expected to back one physical table) and its column set from every
// materialized column's own descriptor.
func (d DatasourceDTO) ToDatasource() Datasource {
	ds := Datasource{
		ID:            d.ID,
		Columns:       make(map[string]Column, len(d.MaterializedColumns)),
		Cardinality:   CardinalityMany,
		WarehouseKind: d.Kind(),
	}
	if len(d.MaterializedColumns) > 0 {
		first := d.MaterializedColumns[0]
		ds.Schema = first.ExternalDatasetName
		ds.TableName = first.ExternalTableName
	}
	for _, mc := range d.MaterializedColumns {
		ds.Columns[mc.ColumnName] = Column{
			ID:         mc.ColumnName,
			DataType:   NormalizeDataType(mc.DataType),
			CanFilter:  mc.CanFilter,
			CanGroupBy: mc.CanGroupBy,
			Hidden:     mc.Hidden,
		}
	}
	if from, to, ok := parseAvailability(d.HasDataFrom, d.HasDataUpTo); ok {
		ds.DataAvailability = &DatetimeInterval{DateFrom: from, DateTo: to}
	}
	return ds
}

// Kind reports the warehouse backend the datasource's materialized columns
// were sourced from, defaulting to bigquery when unset.
func (d DatasourceDTO) Kind() string {
	for _, mc := range d.MaterializedColumns {
		switch mc.MaterializedFrom {
		case KindPostgres, KindClickHouse, KindMySQL:
			return mc.MaterializedFrom
		}
	}
	return KindBigQuery
}

func parseAvailability(from, to string) (time.Time, time.Time, bool) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, false
	}
	f, err := time.Parse(metadataDateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	t, err := time.Parse(metadataDateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return f.UTC(), t.UTC(), true
}

// Datasource looks up and converts one datasource by id for an app.
func (c *Cache) Datasource(appID, datasourceID string) (Datasource, bool) {
	app, ok := c.App(appID)
	if !ok {
		return Datasource{}, false
	}
	dto, ok := app.Datasources[datasourceID]
	if !ok {
		return Datasource{}, false
	}
	return dto.ToDatasource(), true
}
