package catalog

// Column name and limit constants shared across the compiler, the chart
// pipeline and the executor (original_source/queryengine/core/constants.py).
const (
	UniqueIDColumn         = "unique_id"
	DatePartitionColumn    = "date_"
	CohortDayColumn        = "cohort_day"
	RegistrationDateColumn = "registration_date"
	EventTimestampColumn   = "event_tstamp"
	EventSandboxColumn     = "sandbox_mode"

	XAxisColumnAlias = "x_axis"
	DataColumnAlias  = "value"

	BigQueryMaxDistinctGroupByValues = 500
	BigQueryMaxRows                  = 200000
)
