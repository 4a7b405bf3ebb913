package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubdb/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// HTTPCacheConfig holds settings for the external HTTP cache.
type HTTPCacheConfig struct {
	HTTPConfig `yaml:",inline"`

	// Dir is the directory holding the cache's SQLite database file.
	Dir string `json:"dir" yaml:"dir"`

	// Freshness is how long a cached body is served without a refetch
	// (default 30 days).
	Freshness time.Duration `json:"freshness" yaml:"freshness"`

	// MaxRetries is the number of retry attempts for a 429 response or a
	// transport-level failure (default 5). It is not passed to
	// httpcache.Cache, whose fetches always use DoWithRetry's default of 5.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SQLMirrorConfig holds settings for the persistent SQL mirror.
type SQLMirrorConfig struct {
	// Path is the mirror database file path.
	Path string `json:"path" yaml:"path"`
}

// OpenArchiveConfig holds settings for the open-archive (HAL) ingestion adapter.
type OpenArchiveConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL overrides the HAL search endpoint (default the production one).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Rows caps the number of records requested per query (default 1000).
	Rows int `json:"rows" yaml:"rows"`
}

// BiomedConfig holds settings for the biomedical (PubMed/E-utilities)
// ingestion adapter.
type BiomedConfig struct {
	HTTPConfig `yaml:",inline"`

	// EsearchBaseURL overrides the esearch endpoint.
	EsearchBaseURL string `json:"esearch_base_url,omitempty" yaml:"esearch_base_url,omitempty"`

	// EfetchBaseURL overrides the efetch endpoint.
	EfetchBaseURL string `json:"efetch_base_url,omitempty" yaml:"efetch_base_url,omitempty"`

	// MaxResultCount is the result-count guard at or above which a query is
	// skipped rather than fetched term-by-term (default 400).
	MaxResultCount int `json:"max_result_count" yaml:"max_result_count"`
}

// PipelineConfig groups all stage configurations for the ingestion pipeline.
type PipelineConfig struct {
	HTTPCache   HTTPCacheConfig   `json:"http_cache" yaml:"http_cache"`
	SQLMirror   SQLMirrorConfig   `json:"sql_mirror" yaml:"sql_mirror"`
	OpenArchive OpenArchiveConfig `json:"openarchive" yaml:"openarchive"`
	Biomed      BiomedConfig      `json:"biomed" yaml:"biomed"`
}

// DefaultPipelineConfig returns a PipelineConfig with the zero-value
// defaults resolved: construction time is where defaults get filled in,
// never the zero-value call site.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		HTTPCache: HTTPCacheConfig{
			HTTPConfig: HTTPConfig{Timeout: 30 * time.Second, UserAgent: "pubdb/0.1"},
			Dir:        "pubdb-cache",
			Freshness:  30 * 24 * time.Hour,
			MaxRetries: 5,
		},
		SQLMirror: SQLMirrorConfig{
			Path: "pubdb-mirror.db",
		},
		OpenArchive: OpenArchiveConfig{
			HTTPConfig: HTTPConfig{Timeout: 30 * time.Second, UserAgent: "pubdb/0.1"},
			Rows:       1000,
		},
		Biomed: BiomedConfig{
			HTTPConfig:     HTTPConfig{Timeout: 30 * time.Second, UserAgent: "pubdb/0.1"},
			MaxResultCount: 400,
		},
	}
}
