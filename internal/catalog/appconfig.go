package catalog

// The types below mirror the metadata-service payload shape described in
// original_source/queryengine/core/app/app.go (ported from app.py's
// dataclasses) — the JSON document internal/catalogstore fetches from
// http://{METADATA_IP_ADDRESS}:{METADATA_PORT}/api/v1/apps-detailed.

type Parameter struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

type Schema struct {
	EventName  string      `json:"event_name"`
	Parameters []Parameter `json:"parameters"`
}

type ExternalServices struct {
	AppsFlyer map[string]any `json:"apps_flyer,omitempty"`
}

type MaterializedColumnsDTO struct {
	ColumnName          string `json:"column_name"`
	ExternalTableName   string `json:"external_table_name"`
	ExternalDatasetName string `json:"external_dataset_name"`
	SelectFormula       string `json:"select_formula"`
	DataType            string `json:"data_type"`
	UserHistoryFormula  string `json:"user_history_formula"`
	Totals              bool   `json:"totals"`
	CanFilter           bool   `json:"can_filter"`
	CanGroupBy          bool   `json:"can_group_by"`
	MaterializedFrom    string `json:"materialized_from,omitempty"`
	Hidden              bool   `json:"hidden"`
}

type DatasourceDTO struct {
	ID                  string                   `json:"id"`
	HasDataFrom         string                   `json:"has_data_from"`
	HasDataUpTo         string                   `json:"has_data_up_to"`
	MaterializedColumns []MaterializedColumnsDTO `json:"materialized_columns"`
}

type AppConfig struct {
	AppID                string                   `json:"app_id"`
	GdprEventParameters  map[string][]string      `json:"gdpr_event_parameters"`
	Timezone             string                   `json:"timezone"`
	Datasources          map[string]DatasourceDTO `json:"datasources"`
	EventSchemas         []Schema                 `json:"event_schemas"`
	ExternalServices     ExternalServices         `json:"external_services"`
	EventsDatabase       string                   `json:"events_database"`
	UseContextSchemas    bool                     `json:"use_context_schemas"`
}

type CommonConfigs struct {
	EventSchemas []Schema `json:"event_schemas"`
}

// MetadataAppsConfig is the top-level document returned by the catalog
// service: one shared CommonConfigs plus one AppConfig per app_id.
type MetadataAppsConfig struct {
	CommonConfigs CommonConfigs            `json:"common_configs"`
	AppIDConfigs  map[string]AppConfig     `json:"app_id_configs"`
}

// AllEventNames returns the union of common and per-app event names.
func (a AppConfig) AllEventNames(common CommonConfigs) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range common.EventSchemas {
		if !seen[s.EventName] {
			seen[s.EventName] = true
			out = append(out, s.EventName)
		}
	}
	for _, s := range a.EventSchemas {
		if !seen[s.EventName] {
			seen[s.EventName] = true
			out = append(out, s.EventName)
		}
	}
	return out
}

// EventSchema looks up one event's parameter schema, app-specific schemas
// taking precedence over common ones.
func (a AppConfig) EventSchema(name string, common CommonConfigs) (Schema, bool) {
	for _, s := range a.EventSchemas {
		if s.EventName == name {
			return s, true
		}
	}
	for _, s := range common.EventSchemas {
		if s.EventName == name {
			return s, true
		}
	}
	return Schema{}, false
}

// EventGdprFields returns the GDPR-sensitive parameter names for an event.
func (a AppConfig) EventGdprFields(eventName string) []string {
	return a.GdprEventParameters[eventName]
}
