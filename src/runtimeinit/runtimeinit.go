package runtimeinit

import (
	"context"
	"fmt"
	"log"

	"fixtext/src/config"
	"fixtext/src/llm"
	"fixtext/src/logutil"
	"fixtext/src/notification"
)

type Options struct {
	LoadOptions          config.LoadOptions
	SetupLogging         func(bool)
	PingProvider         bool
	ShowBlockingLLMError bool
}

// Runtime is what every binary needs after startup.
type Runtime struct {
	Config *config.Config
	Client *llm.Client
}

func Bootstrap(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("an API key is required. Checked key file %s and the %s env var", cfg.APIKeyPath, keyEnvVar(cfg.Provider))
	}
	log.Printf("Using provider %s, model %s, key %s", cfg.Provider, cfg.Model, logutil.RedactKey(cfg.APIKey))

	client, err := llm.New(llm.Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		Providers: cfg.Providers,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid LLM configuration: %w", err)
	}

	if opts.PingProvider {
		if err := llm.Ping(ctx, client, cfg.APIKey); err != nil {
			if opts.ShowBlockingLLMError {
				notification.ShowBlockingError("LLM unavailable", fmt.Sprintf("Startup check failed: %v\n\nPlease verify your API key and network connectivity.", err))
			}
			return nil, fmt.Errorf("startup check failed: %w", err)
		}
		log.Printf("LLM ping succeeded")
	}

	return &Runtime{Config: cfg, Client: client}, nil
}

func keyEnvVar(provider string) string {
	if provider == llm.ProviderOpenRouter {
		return "OPENROUTER_API_KEY"
	}
	return "GEMINI_API_KEY"
}
