package porter

// Config holds configuration for the export/import engine.
type Config struct {
	// Enabled toggles the porter feature and its HTTP routes.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// SchemaDir is the directory holding the content-type schema files.
	SchemaDir string `mapstructure:"schema_dir" default:"./schemas"`
	// MediaTimeoutSeconds bounds a single media download during import.
	MediaTimeoutSeconds int `mapstructure:"media_timeout_seconds" default:"30"`
	// PlanCacheSeconds is how long a reconciliation store index stays
	// cached before the next plan rebuilds it.
	PlanCacheSeconds int `mapstructure:"plan_cache_seconds" default:"60"`
}
