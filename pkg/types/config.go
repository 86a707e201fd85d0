package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that call remote services.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// AnalysisConfig holds the tunable constants of the analysis pipeline.
type AnalysisConfig struct {
	// MaxLength is the whole-document limit; longer text keeps the first 60%
	// and the last 40% of MaxLength characters.
	MaxLength int `json:"max_length" yaml:"max_length" mapstructure:"max_length"`

	// SectionSize is the initial size of a classified section.
	SectionSize int `json:"section_size" yaml:"section_size" mapstructure:"section_size"`

	// MaxSections bounds the number of classified sections.
	MaxSections int `json:"max_sections" yaml:"max_sections" mapstructure:"max_sections"`

	// MaxSectionSize caps adaptive enlargement of SectionSize.
	MaxSectionSize int `json:"max_section_size" yaml:"max_section_size" mapstructure:"max_section_size"`

	// ContextSize is the number of characters kept on each side of a finding.
	ContextSize int `json:"context_size" yaml:"context_size" mapstructure:"context_size"`

	// MaxFindings caps the number of risk findings per document.
	MaxFindings int `json:"max_findings" yaml:"max_findings" mapstructure:"max_findings"`

	// MatchThreshold is the minimum keyword relevance score.
	MatchThreshold float64 `json:"match_threshold" yaml:"match_threshold" mapstructure:"match_threshold"`

	// ProblematicConfidence is the confidence a non-compliant section must
	// exceed to be reported as problematic.
	ProblematicConfidence float64 `json:"problematic_confidence" yaml:"problematic_confidence" mapstructure:"problematic_confidence"`

	// PreviewLength bounds the cleaned section preview.
	PreviewLength int `json:"preview_length" yaml:"preview_length" mapstructure:"preview_length"`

	// ClassifierTimeout wraps every classifier call.
	ClassifierTimeout time.Duration `json:"classifier_timeout" yaml:"classifier_timeout" mapstructure:"classifier_timeout"`

	// Concurrency bounds in-flight classifier calls within one analysis.
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
}

// ClassifierBackend selects the classification capability.
type ClassifierBackend string

const (
	ClassifierHeuristic ClassifierBackend = "heuristic"
	ClassifierHTTP      ClassifierBackend = "http"
)

// ClassifierConfig configures the external zero-shot classifier.
type ClassifierConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects heuristic (offline) or http (remote inference endpoint).
	Backend ClassifierBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Endpoint is the zero-shot inference URL for the http backend.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// APIKey is sent as a bearer token when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// MatcherMode selects the source matcher variant.
type MatcherMode string

const (
	MatcherBaseline MatcherMode = "baseline"
	MatcherEnriched MatcherMode = "enriched"
)

// EnrichmentConfig configures classifier fusion and LLM source validation.
type EnrichmentConfig struct {
	// Mode selects the baseline keyword matcher or the enriched matcher.
	Mode MatcherMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// CandidateThreshold is the keyword score a source needs before fusion.
	CandidateThreshold float64 `json:"candidate_threshold" yaml:"candidate_threshold" mapstructure:"candidate_threshold"`

	// FusionThreshold is the minimum combined score after fusion.
	FusionThreshold float64 `json:"fusion_threshold" yaml:"fusion_threshold" mapstructure:"fusion_threshold"`

	// FusionPrefix bounds the text sent to the classifier per fusion call.
	FusionPrefix int `json:"fusion_prefix" yaml:"fusion_prefix" mapstructure:"fusion_prefix"`

	// Validator enables LLM source validation: "" (off) or "gemini".
	Validator string `json:"validator" yaml:"validator" mapstructure:"validator"`

	// Model is the LLM model identifier for the validator.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates the validator.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// FailureThreshold opens the validator circuit after this many consecutive failures.
	FailureThreshold int `json:"failure_threshold" yaml:"failure_threshold" mapstructure:"failure_threshold"`

	// Cooldown is how long an open circuit stays open.
	Cooldown time.Duration `json:"cooldown" yaml:"cooldown" mapstructure:"cooldown"`

	// ValidationTimeout bounds one validator call.
	ValidationTimeout time.Duration `json:"validation_timeout" yaml:"validation_timeout" mapstructure:"validation_timeout"`
}

// StoreBackend selects the persistence sink.
type StoreBackend string

const (
	StoreSQLite   StoreBackend = "sqlite"
	StorePostgres StoreBackend = "postgres"
	StoreLocal    StoreBackend = "local"
)

// StoreConfig configures where analysis results are persisted.
type StoreConfig struct {
	// Backend selects sqlite, postgres or local JSON files.
	Backend StoreBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path" mapstructure:"sqlite_path"`

	// DatabaseURL is the connection string for the postgres backend.
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty" mapstructure:"database_url"`

	// LocalDir receives one JSON file per record; it is also the fallback
	// target when the primary backend is unavailable.
	LocalDir string `json:"local_dir" yaml:"local_dir" mapstructure:"local_dir"`

	// MaxResults is the default page size for history and search.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// UploadBackend selects where uploaded documents are kept.
type UploadBackend string

const (
	UploadLocal UploadBackend = "local"
	UploadS3    UploadBackend = "s3"
)

// UploadConfig configures blob storage for uploaded documents.
type UploadConfig struct {
	Type         UploadBackend `json:"type" yaml:"type" mapstructure:"type"`
	LocalPath    string        `json:"local_path" yaml:"local_path" mapstructure:"local_path"`
	S3Bucket     string        `json:"s3_bucket,omitempty" yaml:"s3_bucket,omitempty" mapstructure:"s3_bucket"`
	S3Region     string        `json:"s3_region,omitempty" yaml:"s3_region,omitempty" mapstructure:"s3_region"`
	AWSAccessKey string        `json:"-" yaml:"-" mapstructure:"aws_access_key"`
	AWSSecretKey string        `json:"-" yaml:"-" mapstructure:"aws_secret_key"`

	// MaxFileSize is the upload limit in bytes (default 10 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size" mapstructure:"max_file_size"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// Workers bounds concurrently running background analyses.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// MaxBatch is the maximum number of files per batch upload.
	MaxBatch int `json:"max_batch" yaml:"max_batch" mapstructure:"max_batch"`

	// MaxBulkDelete is the maximum number of ids per bulk delete.
	MaxBulkDelete int `json:"max_bulk_delete" yaml:"max_bulk_delete" mapstructure:"max_bulk_delete"`
}

// Config groups all stage configurations.
type Config struct {
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier" mapstructure:"classifier"`
	Enrichment EnrichmentConfig `json:"enrichment" yaml:"enrichment" mapstructure:"enrichment"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Upload     UploadConfig     `json:"upload" yaml:"upload" mapstructure:"upload"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`

	// CatalogPath optionally replaces the built-in regulatory catalog.
	CatalogPath string `json:"catalog_path,omitempty" yaml:"catalog_path,omitempty" mapstructure:"catalog_path"`
}

// DefaultAnalysisConfig returns the pipeline constants.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		MaxLength:             4096,
		SectionSize:           500,
		MaxSections:           10,
		MaxSectionSize:        2000,
		ContextSize:           50,
		MaxFindings:           10,
		MatchThreshold:        0.3,
		ProblematicConfidence: 0.7,
		PreviewLength:         100,
		ClassifierTimeout:     30 * time.Second,
		Concurrency:           4,
	}
}

// DefaultConfig returns a configuration that runs fully offline: heuristic
// classifier, baseline matcher, SQLite store, local uploads.
func DefaultConfig() Config {
	return Config{
		Analysis: DefaultAnalysisConfig(),
		Classifier: ClassifierConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "compliance-engine/0.1",
			},
			Backend:    ClassifierHeuristic,
			MaxRetries: 3,
		},
		Enrichment: EnrichmentConfig{
			Mode:               MatcherBaseline,
			CandidateThreshold: 0.2,
			FusionThreshold:    0.3,
			FusionPrefix:       1000,
			Model:              "gemini-1.5-flash",
			FailureThreshold:   3,
			Cooldown:           time.Minute,
			ValidationTimeout:  30 * time.Second,
		},
		Store: StoreConfig{
			Backend:    StoreSQLite,
			SQLitePath: "data/compliance.db",
			LocalDir:   "local_db",
			MaxResults: 20,
		},
		Upload: UploadConfig{
			Type:        UploadLocal,
			LocalPath:   "uploads",
			S3Region:    "us-east-1",
			MaxFileSize: 10 * 1024 * 1024,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			Workers:       4,
			MaxBatch:      10,
			MaxBulkDelete: 50,
		},
	}
}
