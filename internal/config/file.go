package config

// File represents the structure of the scantext.yml configuration file.
// The file is optional; every field has a working default. Flags always
// win over file values, which win over defaults.
type File struct {
	// Language is the default OCR language code (e.g. "fra", "eng+fra").
	Language string `yaml:"language,omitempty"`

	// Zoom is the default render zoom factor for the OCR fallback.
	Zoom float64 `yaml:"zoom,omitempty"`

	// Clean enables text cleanup by default.
	Clean bool `yaml:"clean,omitempty"`

	// Dictionary is an optional word list file merged into the
	// spell-correction dictionary.
	Dictionary string `yaml:"dictionary,omitempty"`

	// History configures run history recording.
	History HistoryConfig `yaml:"history,omitempty"`

	// Server configures the HTTP API started by the serve command.
	Server ServerConfig `yaml:"server,omitempty"`

	// AI configures the OpenAI-compatible correction endpoint.
	AI AIConfig `yaml:"ai,omitempty"`
}

// HistoryConfig holds run history settings from the config file.
type HistoryConfig struct {
	// Dir is the directory holding the history database.
	// Empty means the XDG data directory.
	Dir string `yaml:"dir,omitempty"`

	// Disabled turns off history recording.
	Disabled bool `yaml:"disabled,omitempty"`
}

// ServerConfig holds HTTP API settings from the config file.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":5000", "127.0.0.1:5000").
	Addr string `yaml:"addr,omitempty"`

	// MaxConcurrent caps concurrent OCR jobs.
	MaxConcurrent int `yaml:"maxConcurrent,omitempty"`

	// MaxUploadMB limits multipart upload size in megabytes.
	MaxUploadMB int64 `yaml:"maxUploadMB,omitempty"`
}

// AIConfig holds AI correction settings from the config file.
// The API key itself is never stored in the file; only the name of the
// environment variable that holds it.
type AIConfig struct {
	// BaseURL is the OpenAI-compatible endpoint base.
	BaseURL string `yaml:"baseURL,omitempty"`

	// Model is the chat model used for correction.
	Model string `yaml:"model,omitempty"`

	// KeyEnv names the environment variable holding the API key.
	KeyEnv string `yaml:"keyEnv,omitempty"`
}

// Apply copies the file's non-zero values onto c.
// Callers apply the file before CLI flags so that explicit flags override
// file values, which override compiled-in defaults.
func (f *File) Apply(c *Config) {
	if f.Language != "" {
		c.Language = f.Language
	}
	if f.Zoom != 0 {
		c.Zoom = f.Zoom
	}
	if f.Clean {
		c.Clean = true
	}
	if f.Dictionary != "" {
		c.DictionaryPath = f.Dictionary
	}
	if f.History.Dir != "" {
		c.HistoryDir = f.History.Dir
	}
	if f.History.Disabled {
		c.HistoryDisabled = true
	}
	if f.Server.Addr != "" {
		c.ServerAddr = f.Server.Addr
	}
	if f.Server.MaxConcurrent != 0 {
		c.ServerMaxConcurrent = f.Server.MaxConcurrent
	}
	if f.Server.MaxUploadMB != 0 {
		c.MaxUploadSize = f.Server.MaxUploadMB * 1024 * 1024
	}
	if f.AI.BaseURL != "" {
		c.AIBaseURL = f.AI.BaseURL
	}
	if f.AI.Model != "" {
		c.AIModel = f.AI.Model
	}
	if f.AI.KeyEnv != "" {
		c.AIKeyEnv = f.AI.KeyEnv
	}
}
