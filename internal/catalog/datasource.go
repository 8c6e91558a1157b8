package catalog

// Datasource is the common shape shared by every datasource kind.
type Datasource struct {
	ID          string
	Schema      string
	TableName   string
	Columns     map[string]Column
	Cardinality Cardinality
	TimeGrain   TimeGrain

	// WarehouseKind names which backend (bigquery, postgres, clickhouse,
	// mysql) internal/warehouse.Manager should route this datasource's
	// queries to.
	WarehouseKind string

	// DataAvailability is derived from app configuration; absent means no
	// availability window has been configured yet.
	DataAvailability *DatetimeInterval

	// Event-datasource specifics. LiveLoadSchema/RawDataAvailability are
	// unset for non-event datasources.
	LiveLoadSchema      string
	RawDataAvailability *DatetimeInterval

	// UserHistoryDataSource specifics.
	UserHistory *UserHistoryDefinition
}

// IsEvent reports whether this datasource carries the live-load/raw split
// that the base-table builder (internal/sqlcompiler) unions over.
func (d Datasource) IsEvent() bool {
	return d.LiveLoadSchema != ""
}

// EnrichTableName is the per-user table a cross-datasource join resolves
// against (spec.md §4.4 item 5, "prepare_many_rows_per_user_to_one_row_per_user").
func (d Datasource) EnrichTableName() string {
	if d.UserHistory != nil {
		return d.Schema + "." + d.TableName
	}
	return d.Schema + "." + d.TableName
}

// ClampDateInterval narrows req to the datasource's availability window. It
// returns ok=false if there is no availability configured or req lies wholly
// outside it.
func (d Datasource) ClampDateInterval(req DatetimeInterval) (DatetimeInterval, bool) {
	if d.DataAvailability == nil {
		return DatetimeInterval{}, false
	}
	return req.Clamp(d.DataAvailability.DateFrom, d.DataAvailability.DateTo)
}

// Column looks up a column by id.
func (d Datasource) Column(id string) (Column, bool) {
	c, ok := d.Columns[id]
	return c, ok
}
