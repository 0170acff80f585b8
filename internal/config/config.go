package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Unit fallback policies for source nutrients that carry no unit.
const (
	UnitFallbackAssume = "assume"
	UnitFallbackDrop   = "drop"
)

// Environment variables that override file configuration.
const (
	EnvAPIKey      = "CITRUS_API_KEY"
	EnvAPIBaseURL  = "CITRUS_API_BASE_URL"
	EnvLLMAPIKey   = "CITRUS_LLM_API_KEY"
	EnvLLMEndpoint = "CITRUS_LLM_ENDPOINT"
)

// Config holds application configuration.
type Config struct {
	// APIBaseURL is the food API root; search and EAN paths are appended to it.
	APIBaseURL string `json:"api_base_url,omitempty"`

	// APIKey is sent in the body of every food API request.
	APIKey string `json:"api_key,omitempty"`

	// LLMEndpoint is the full chat-completions URL of the estimator.
	LLMEndpoint string `json:"llm_endpoint,omitempty"`

	// LLMAPIKey is sent as a bearer token to the estimator.
	LLMAPIKey string `json:"llm_api_key,omitempty"`

	LLMModel string `json:"llm_model,omitempty"`

	// LLMTimeoutSeconds bounds a single estimator call.
	LLMTimeoutSeconds int `json:"llm_timeout_seconds,omitempty"`

	// APITimeoutSeconds bounds a single search or EAN call.
	APITimeoutSeconds int `json:"api_timeout_seconds,omitempty"`

	// SearchPageSize is the default number of search results requested.
	SearchPageSize int `json:"search_page_size,omitempty"`

	// UnitFallback decides what happens to a source nutrient with no unit:
	// "assume" treats the value as already canonical, "drop" omits it.
	UnitFallback string `json:"unit_fallback,omitempty"`

	// CacheTTLHours is how long search and EAN responses stay cached.
	CacheTTLHours int `json:"cache_ttl_hours,omitempty"`

	// CacheDisabled turns off the lookup cache entirely.
	CacheDisabled bool `json:"cache_disabled,omitempty"`

	// LogLevel is one of "off", "normal", "verbose".
	LogLevel string `json:"log_level,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool groups to disable entirely.
	// Known types: "food", "log", "goals", "insights".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:        "https://api.getyoa.app/yoaapi/usda",
		LLMEndpoint:       "https://api.groq.com/openai/v1/chat/completions",
		LLMModel:          "meta-llama/llama-4-scout-17b-16e-instruct",
		LLMTimeoutSeconds: 15,
		APITimeoutSeconds: 30,
		SearchPageSize:    20,
		UnitFallback:      UnitFallbackAssume,
		CacheTTLHours:     168,
		LogLevel:          "normal",
	}
}

// Load loads configuration from baseDir/config.json and applies environment overrides.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.citrus.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return ApplyEnv(cfg, os.Getenv), nil
}

// LoadWithRepo loads configuration from both global (~/.citrus) and repo (.citrus) directories.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return ApplyEnv(Merge(Merge(DefaultConfig(), global), repo), os.Getenv), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .citrus/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".citrus", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ApplyEnv overlays credentials and endpoints from the environment.
// getenv is injected so tests don't depend on the process environment.
func ApplyEnv(cfg *Config, getenv func(string) string) *Config {
	if v := strings.TrimSpace(getenv(EnvAPIKey)); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvAPIBaseURL)); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvLLMAPIKey)); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvLLMEndpoint)); v != "" {
		cfg.LLMEndpoint = v
	}
	return cfg
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.UnitFallback {
	case UnitFallbackAssume, UnitFallbackDrop:
	default:
		return errors.New(`unit_fallback must be "assume" or "drop"`)
	}
	switch c.LogLevel {
	case "off", "normal", "verbose":
	default:
		return errors.New(`log_level must be "off", "normal" or "verbose"`)
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		APIBaseURL:        pickString(overlay.APIBaseURL, base.APIBaseURL),
		APIKey:            pickString(overlay.APIKey, base.APIKey),
		LLMEndpoint:       pickString(overlay.LLMEndpoint, base.LLMEndpoint),
		LLMAPIKey:         pickString(overlay.LLMAPIKey, base.LLMAPIKey),
		LLMModel:          pickString(overlay.LLMModel, base.LLMModel),
		UnitFallback:      pickString(overlay.UnitFallback, base.UnitFallback),
		LogLevel:          pickString(overlay.LogLevel, base.LogLevel),
		LLMTimeoutSeconds: pickInt(overlay.LLMTimeoutSeconds, base.LLMTimeoutSeconds),
		APITimeoutSeconds: pickInt(overlay.APITimeoutSeconds, base.APITimeoutSeconds),
		SearchPageSize:    pickInt(overlay.SearchPageSize, base.SearchPageSize),
		CacheTTLHours:     pickInt(overlay.CacheTTLHours, base.CacheTTLHours),
		DBMaxOpenConns:    pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:    pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	// Booleans: overlay wins if true, else base
	result.CacheDisabled = base.CacheDisabled || overlay.CacheDisabled

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
