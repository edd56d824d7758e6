package types

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Providers ProvidersConfig `yaml:"providers" json:"providers"`
	Pipeline  PipelineConfig  `yaml:"pipeline" json:"pipeline"`
}

// ServerConfig holds HTTP server settings for the optional status/run API.
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"` // seconds
}

// StorageConfig defines storage adapter settings for source documents and
// run snapshots.
type StorageConfig struct {
	Adapter string            `yaml:"adapter" json:"adapter"` // "local" or "s3"
	Local   LocalStorageOpts  `yaml:"local" json:"local"`
	S3      S3StorageOpts     `yaml:"s3" json:"s3"`
	Options map[string]string `yaml:"options" json:"options"`
}

// LocalStorageOpts configures the local filesystem adapter.
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path"`
}

// S3StorageOpts configures the S3-compatible adapter.
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" json:"region"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl" json:"use_ssl"`
}

// ProvidersConfig holds all LM provider configurations. Only one provider
// kind exists in this domain (TTS/OCR are non-goals).
type ProvidersConfig struct {
	LLM     []LLMProviderConfig `yaml:"llm" json:"llm"`
	Default string              `yaml:"default" json:"default"`
}

// LLMProviderConfig configures one LMClient implementation.
type LLMProviderConfig struct {
	Name         string            `yaml:"name" json:"name"`
	Kind         string            `yaml:"kind" json:"kind"` // "openai", "gemini", "stub"
	Enabled      bool              `yaml:"enabled" json:"enabled"`
	Endpoint     string            `yaml:"endpoint" json:"endpoint"`
	APIKey       string            `yaml:"api_key" json:"api_key"`
	Model        string            `yaml:"model" json:"model"`
	RateLimitQPS float64           `yaml:"rate_limit_qps" json:"rate_limit_qps"`
	MaxRetries   int               `yaml:"max_retries" json:"max_retries"`
	Options      map[string]string `yaml:"options" json:"options"`
}

// PipelineConfig holds the tunables named throughout the pipeline spec:
// the stage-1 head sample size, stage 2/4 fan-out limits, the stage-3
// per-line regex timeout, the stage-4 verification window, and the
// confidence threshold.
type PipelineConfig struct {
	HeadSampleLines     int     `yaml:"head_sample_lines" json:"head_sample_lines"`
	BoundaryConcurrency int     `yaml:"boundary_concurrency" json:"boundary_concurrency"`
	VerifyConcurrency   int     `yaml:"verify_concurrency" json:"verify_concurrency"`
	RegexMatchTimeoutMs int     `yaml:"regex_match_timeout_ms" json:"regex_match_timeout_ms"`
	VerificationWindow  int     `yaml:"verification_window" json:"verification_window"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" json:"confidence_threshold"`
	TempDir             string  `yaml:"temp_dir" json:"temp_dir"`
}

// RunMetadata describes one pipeline invocation for ingestion/storage
// purposes. It is purely descriptive; the pipeline's invariants never
// depend on it.
type RunMetadata struct {
	RunID        string `yaml:"run_id" json:"run_id"`
	BookTitle    string `yaml:"book_title" json:"book_title"`
	BookAuthor   string `yaml:"book_author" json:"book_author"`
	SourceFormat string `yaml:"source_format" json:"source_format"`
}
