package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/fixtext"
	APIKeyPathEnvVar  = "FIXTEXT_API_KEY_FILE"
	EnvFileEnvVar     = "FIXTEXT_ENV"

	DefaultProvider = "gemini"
	DefaultModel    = "gemini-2.5-flash-lite"
	DefaultHotkey   = "Ctrl+Alt+U"

	FallbackSendClipboard = "send-clipboard"
	FallbackNone          = "none"
)

type LoadOptions struct {
	APIKeyPathOverride string
	FallbackOverride   string
}

type Config struct {
	APIKey            string
	APIKeyPath        string
	Provider          string
	Model             string
	Providers         []string
	EnableFileLogging bool
	Hotkey            string
	ConfirmKeys       []string
	CaptureTimeout    time.Duration
	CaptureFallback   string
	RequestDeadline   time.Duration
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use FIXTEXT_ENV env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	provider := strings.ToLower(getEnvWithDefault("PROVIDER", DefaultProvider))
	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	cfg := &Config{
		APIKey:            resolveAPIKey(apiKeyPath, provider),
		APIKeyPath:        apiKeyPath,
		Provider:          provider,
		Model:             getEnvWithDefault("MODEL", DefaultModel),
		Providers:         splitList(os.Getenv("PROVIDERS")),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		ConfirmKeys:       splitList(getEnvWithDefault("CONFIRM_KEYS", "enter,numpadenter")),
		CaptureTimeout:    time.Duration(positiveInt("CAPTURE_TIMEOUT_MS", 600)) * time.Millisecond,
		CaptureFallback:   resolveFallbackValue(opts),
		RequestDeadline:   time.Duration(positiveInt("REQUEST_DEADLINE_SEC", 20)) * time.Second,
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath, provider string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	if provider == "openrouter" {
		return os.Getenv("OPENROUTER_API_KEY")
	}
	return os.Getenv("GEMINI_API_KEY")
}

func resolveFallback(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case FallbackNone, "off", "false":
		return FallbackNone
	default:
		return FallbackSendClipboard
	}
}

func resolveFallbackValue(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.FallbackOverride); override != "" {
		return resolveFallback(override)
	}
	return resolveFallback(os.Getenv("CAPTURE_FALLBACK"))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
