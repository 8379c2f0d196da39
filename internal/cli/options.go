package cli

import (
	"time"

	"sales_dashboard/internal/config"
)

// Options are the global flags; they start from the loaded config and may
// override it for a single invocation.
type Options struct {
	APIEnv      string
	BaseURL     string
	SessionFile string
	JSON        bool
	Debug       bool
	LogFile     string
	Timeout     time.Duration
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
}

func optionsFromConfig(cfg config.Config) Options {
	return Options{
		APIEnv:      cfg.APIEnv,
		BaseURL:     cfg.APIBaseURL,
		SessionFile: cfg.SessionFile,
		Debug:       cfg.Debug,
		LogFile:     cfg.LogFile,
		Timeout:     cfg.Timeout,
		LLMBaseURL:  cfg.LLMBaseURL,
		LLMAPIKey:   cfg.LLMAPIKey,
		LLMModel:    cfg.LLMModel,
	}
}

// apply folds the options back into cfg and reports whether anything that
// the clients depend on changed.
func (o Options) apply(cfg config.Config) (config.Config, bool) {
	out := cfg
	out.APIEnv = o.APIEnv
	out.APIBaseURL = o.BaseURL
	out.SessionFile = o.SessionFile
	out.Debug = o.Debug
	out.LogFile = o.LogFile
	out.Timeout = o.Timeout
	out.LLMBaseURL = o.LLMBaseURL
	out.LLMAPIKey = o.LLMAPIKey
	out.LLMModel = o.LLMModel

	changed := out.APIEnv != cfg.APIEnv ||
		out.APIBaseURL != cfg.APIBaseURL ||
		out.SessionFile != cfg.SessionFile ||
		out.Timeout != cfg.Timeout ||
		out.LLMBaseURL != cfg.LLMBaseURL ||
		out.LLMAPIKey != cfg.LLMAPIKey ||
		out.LLMModel != cfg.LLMModel
	return out, changed
}
