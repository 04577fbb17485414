package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: GetDefaultDataDir(),
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		API: APIConfig{
			Endpoint: DefaultEndpoint,
			Model:    DefaultModel,
			Referer:  DefaultReferer,
			Title:    DefaultTitle,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# vaultchat System Configuration
# Location: ~/.config/vaultchat/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the conversation archive and user config are stored
data_directory = "~/.local/share/vaultchat"
`
}

func GenerateUserConfigTemplate() string {
	return `# vaultchat User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io
#
# The API key is NOT stored here. Use "vaultchat key set" or ctrl+k in the
# chat window; the key is kept in your operating system's keychain.

[api]
# OpenAI-compatible chat completion endpoint (without /chat/completions)
endpoint = "https://openrouter.ai/api/v1"

# Model identifier sent with every request
model = "openai/gpt-4o-mini"

# Descriptive headers sent to OpenRouter (HTTP-Referer and X-Title)
referer = "https://github.com/vaultchat/vaultchat"
title = "vaultchat"
`
}
