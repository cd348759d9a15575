package types

import "time"

// HTTPConfig holds shared HTTP settings used by every source.
type HTTPConfig struct {
	// Timeout bounds each individual request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ScholarConfig holds settings for the Google Scholar HTML source.
type ScholarConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// PageDelay is the wait before each page request after the first (default 2s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay" mapstructure:"page_delay"`
}

// SemanticScholarConfig holds settings for the Semantic Scholar API source.
type SemanticScholarConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is an optional key sent as x-api-key for a higher rate limit.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// PageDelay is the wait before each page request after the first.
	// Call spacing is enforced separately by the source's pacer.
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay" mapstructure:"page_delay"`
}

// MinCallInterval returns the minimum spacing between two Semantic Scholar
// calls: 100ms with an API key, 1.1s without.
func (c SemanticScholarConfig) MinCallInterval() time.Duration {
	if c.APIKey != "" {
		return 100 * time.Millisecond
	}
	return 1100 * time.Millisecond
}

// OutputConfig holds settings for the delimited file sink.
type OutputConfig struct {
	// DataDir is the directory generated files are written to (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// Config groups the configuration of every component.
type Config struct {
	Scholar  ScholarConfig         `json:"scholar" yaml:"scholar" mapstructure:"scholar"`
	Semantic SemanticScholarConfig `json:"semantic_scholar" yaml:"semantic_scholar" mapstructure:"semantic_scholar"`
	Output   OutputConfig          `json:"output" yaml:"output" mapstructure:"output"`
	LogLevel string                `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}

// DefaultUserAgent identifies scholar-search to the API source.
const DefaultUserAgent = "scholar-search/0.1"

// DefaultBrowserUserAgent is sent to the HTML source, which rejects
// non-browser agents.
const DefaultBrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Scholar: ScholarConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: DefaultBrowserUserAgent,
			},
			PageDelay: 2 * time.Second,
		},
		Semantic: SemanticScholarConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: DefaultUserAgent,
			},
		},
		Output: OutputConfig{
			DataDir: "data",
		},
		LogLevel: "warn",
	}
}
