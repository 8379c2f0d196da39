package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

const (
	EnvLocal      = "local"
	EnvProduction = "production"

	defaultLocalBaseURL = "http://localhost:8000"
	defaultAlertsPath   = "/ws/alerts"
	sessionFileName     = "session.toml"
	appDirName          = "sales-dashboard"
)

var ErrNoBaseURL = errors.New("analytics base url is not configured")

type Config struct {
	APIEnv          string        `koanf:"api_env"`
	APIBaseURL      string        `koanf:"api_base_url"`
	LocalBaseURL    string        `koanf:"local_base_url"`
	DeployedBaseURL string        `koanf:"deployed_base_url"`
	AlertsPath      string        `koanf:"alerts_path"`
	Timeout         time.Duration `koanf:"timeout"`
	SessionFile     string        `koanf:"session_file"`
	LLMBaseURL      string        `koanf:"llm_base_url"`
	LLMAPIKey       string        `koanf:"llm_api_key"`
	LLMModel        string        `koanf:"llm_model"`
	IoTAPIKey       string        `koanf:"iot_api_key"`
	LogFile         string        `koanf:"log_file"`
	Debug           bool          `koanf:"debug"`
}

func New() (Config, error) {
	cfg := Default()

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used before env and file overrides apply.
func Default() Config {
	return Config{
		APIEnv:       EnvLocal,
		LocalBaseURL: defaultLocalBaseURL,
		AlertsPath:   defaultAlertsPath,
		Timeout:      20 * time.Second,
		SessionFile:  defaultSessionFile(),
		LogFile:      "./sales-dashboard.log",
		Debug:        false,
	}
}

// BaseURL resolves the analytics backend root. An explicit api_base_url wins
// over the environment switch.
func (c Config) BaseURL() (string, error) {
	if explicit := strings.TrimSpace(c.APIBaseURL); explicit != "" {
		return strings.TrimRight(explicit, "/"), nil
	}

	var resolved string
	switch strings.ToLower(strings.TrimSpace(c.APIEnv)) {
	case "", EnvLocal, "development", "dev":
		resolved = strings.TrimSpace(c.LocalBaseURL)
		if resolved == "" {
			resolved = defaultLocalBaseURL
		}
	case EnvProduction, "prod", "deployed":
		resolved = strings.TrimSpace(c.DeployedBaseURL)
	default:
		return "", fmt.Errorf("%w: unknown api_env %q", ErrNoBaseURL, c.APIEnv)
	}

	if resolved == "" {
		return "", fmt.Errorf("%w: api_env %q", ErrNoBaseURL, c.APIEnv)
	}
	return strings.TrimRight(resolved, "/"), nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", "."+appDirName, sessionFileName)
	}
	return filepath.Join(dir, appDirName, sessionFileName)
}
