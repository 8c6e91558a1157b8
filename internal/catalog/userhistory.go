package catalog

import "time"

// ExternalTableColumn is materialized via a CTE against another table, with
// an optional date boundary at which the per-user history table already
// carries the pre-aggregated value (spec.md §4.4 item 7).
type ExternalTableColumn struct {
	Dataset                string
	Table                   string
	TableFilterFormula      string
	TableAggregationFormula string
	UserHistoryFormula      string
	MaterializedFrom        *time.Time
	ColumnDefinition        Column
}

// ResolvedUserHistoryFormula defaults to the bare column reference when unset.
func (c ExternalTableColumn) ResolvedUserHistoryFormula() string {
	if c.UserHistoryFormula != "" {
		return c.UserHistoryFormula
	}
	return "{" + c.ColumnDefinition.ID + "}"
}

// UserHistoryDefinition groups the four ordered, disjoint column namespaces
// of a per-user history table.
type UserHistoryDefinition struct {
	RegistrationColumns map[string]Column
	ExternalTableColumns map[string]ExternalTableColumn
	TotalColumns        map[string]Column
	ComputedColumns      map[string]string // column id -> formula
}

func NewUserHistoryDefinition() *UserHistoryDefinition {
	return &UserHistoryDefinition{
		RegistrationColumns:  map[string]Column{},
		ExternalTableColumns: map[string]ExternalTableColumn{},
		TotalColumns:         map[string]Column{},
		ComputedColumns:      map[string]string{},
	}
}

// Merge takes a right-biased union per namespace and returns a new definition.
func (u *UserHistoryDefinition) Merge(other *UserHistoryDefinition) *UserHistoryDefinition {
	out := NewUserHistoryDefinition()
	for k, v := range u.RegistrationColumns {
		out.RegistrationColumns[k] = v
	}
	for k, v := range u.ExternalTableColumns {
		out.ExternalTableColumns[k] = v
	}
	for k, v := range u.TotalColumns {
		out.TotalColumns[k] = v
	}
	for k, v := range u.ComputedColumns {
		out.ComputedColumns[k] = v
	}
	if other == nil {
		return out
	}
	for k, v := range other.RegistrationColumns {
		out.RegistrationColumns[k] = v
	}
	for k, v := range other.ExternalTableColumns {
		out.ExternalTableColumns[k] = v
	}
	for k, v := range other.TotalColumns {
		out.TotalColumns[k] = v
	}
	for k, v := range other.ComputedColumns {
		out.ComputedColumns[k] = v
	}
	return out
}

// ColumnNamespace tags which of the four namespaces a column name belongs to.
type ColumnNamespace int

const (
	NamespaceUnknown ColumnNamespace = iota
	NamespaceRegistration
	NamespaceExternalTable
	NamespaceTotal
	NamespaceComputed
)

// Lookup reports which namespace name belongs to, if any.
func (u *UserHistoryDefinition) Lookup(name string) ColumnNamespace {
	if _, ok := u.RegistrationColumns[name]; ok {
		return NamespaceRegistration
	}
	if _, ok := u.ExternalTableColumns[name]; ok {
		return NamespaceExternalTable
	}
	if _, ok := u.TotalColumns[name]; ok {
		return NamespaceTotal
	}
	if _, ok := u.ComputedColumns[name]; ok {
		return NamespaceComputed
	}
	return NamespaceUnknown
}

// GetColumns returns the flattened column list across the first three
// namespaces (computed columns have no standalone Column definition).
func (u *UserHistoryDefinition) GetColumns() []Column {
	var out []Column
	for _, c := range u.RegistrationColumns {
		out = append(out, c)
	}
	for _, c := range u.ExternalTableColumns {
		out = append(out, c.ColumnDefinition)
	}
	for _, c := range u.TotalColumns {
		out = append(out, c)
	}
	return out
}
