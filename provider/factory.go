package provider

import (
	"fmt"

	"vaultchat/config"
	"vaultchat/model"
)

// NewFromConfig builds the completion client described by cfg.
//
// modelOverride, when non-empty, replaces the configured model for this
// process only. usage may be nil.
func NewFromConfig(cfg *config.Config, creds CredentialSource, modelOverride string, usage UsageRecorder) (model.Completer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	modelName := cfg.Model
	if modelOverride != "" {
		modelName = modelOverride
	}

	var opts []ClientOption
	if usage != nil {
		opts = append(opts, WithUsageRecorder(usage))
	}

	client, err := NewOpenRouterClient(Config{
		Endpoint: cfg.Endpoint,
		Model:    modelName,
		Referer:  cfg.Referer,
		Title:    cfg.Title,
	}, creds, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}
