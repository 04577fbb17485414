package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const KeybindingsFileName = "keybindings.toml"

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"` // Optional overrides for specific actions
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`   // e.g., "ctrl", "alt"
	Secondary string `toml:"secondary"` // e.g., "alt", "ctrl+shift"
}

// actionDef defines the default modifier and key for an action
type actionDef struct {
	modifier string // "primary", "secondary", or "none"
	key      string
}

// Action names accepted in the [actions] section of keybindings.toml.
const (
	ActionSend             = "send"
	ActionNewLine          = "new_line"
	ActionCredentialPrompt = "credential_prompt"
	ActionClearCredential  = "clear_credential"
	ActionClearHistory     = "clear_history"
	ActionCopyReply        = "copy_reply"
	ActionCopyConversation = "copy_conversation"
	ActionDismiss          = "dismiss"
	ActionHelp             = "help"
	ActionQuit             = "quit"
	ActionScrollUp         = "scroll_up"
	ActionScrollDown       = "scroll_down"
	ActionPageUp           = "page_up"
	ActionPageDown         = "page_down"
	ActionScrollToTop      = "scroll_to_top"
	ActionScrollToBottom   = "scroll_to_bottom"
)

var actionRegistry = map[string]actionDef{
	// Composer
	ActionSend:    {"none", "enter"},
	ActionNewLine: {"secondary", "enter"},

	// Credential and history
	ActionCredentialPrompt: {"primary", "k"},
	ActionClearCredential:  {"primary", "x"},
	ActionClearHistory:     {"primary", "l"},

	// Clipboard
	ActionCopyReply:        {"primary", "y"},
	ActionCopyConversation: {"secondary", "y"},

	// Global
	ActionDismiss: {"none", "esc"},
	ActionHelp:    {"secondary", "h"},
	ActionQuit:    {"primary", "c"},

	// Transcript scrolling
	ActionScrollUp:       {"secondary", "up"},
	ActionScrollDown:     {"secondary", "down"},
	ActionPageUp:         {"none", "pgup"},
	ActionPageDown:       {"none", "pgdown"},
	ActionScrollToTop:    {"secondary", "g"},
	ActionScrollToBottom: {"secondary", "G"},
}

// DefaultKeybindings returns default configuration
func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   "ctrl",
			Secondary: "alt",
		},
	}
}

// LoadKeybindings loads keybindings from the data directory, writing the
// commented template on first run.
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	cfg := DefaultKeybindings()
	keybindingsPath := filepath.Join(dataDir, KeybindingsFileName)

	if !FileExists(keybindingsPath) {
		if err := CreateDefaultKeybindings(dataDir); err != nil {
			return nil, fmt.Errorf("failed to create keybindings: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(keybindingsPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse keybindings: %w", err)
	}

	if cfg.Modifiers.Primary == "" {
		cfg.Modifiers.Primary = "ctrl"
	}
	if cfg.Modifiers.Secondary == "" {
		cfg.Modifiers.Secondary = "alt"
	}

	if ok, warning := cfg.Validate(); !ok {
		return nil, fmt.Errorf("invalid keybindings: %s", warning)
	} else if warning != "" {
		Log.WithField("path", keybindingsPath).Warn(warning)
	}

	return cfg, nil
}

// CreateDefaultKeybindings creates default keybindings.toml
func CreateDefaultKeybindings(dataDir string) error {
	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	keybindingsPath := filepath.Join(dataDir, KeybindingsFileName)
	if FileExists(keybindingsPath) {
		return nil
	}

	if err := writeConfigFile(keybindingsPath, GenerateKeybindingsTemplate()); err != nil {
		return fmt.Errorf("failed to write keybindings: %w", err)
	}

	return nil
}

// GenerateKeybindingsTemplate returns the default TOML template
func GenerateKeybindingsTemplate() string {
	return `# vaultchat Keybindings Configuration
# Location: <data_directory>/keybindings.toml
# This file uses TOML format: https://toml.io

# ==============================================================================
# MODIFIER KEYS
# ==============================================================================
# primary drives credential, history and clipboard actions (ctrl+k, ctrl+l, ...)
# secondary drives scrolling, help and newline (alt+up, alt+enter, ...)

[modifiers]
primary = "ctrl"
secondary = "alt"

# ==============================================================================
# PER-ACTION OVERRIDES
# ==============================================================================
# Available actions:
#   send, new_line, credential_prompt, clear_credential, clear_history,
#   copy_reply, copy_conversation, dismiss, help, quit,
#   scroll_up, scroll_down, page_up, page_down, scroll_to_top, scroll_to_bottom

[actions]
# Examples (uncomment to use):
#   credential_prompt = "ctrl+o"
#   clear_history = "ctrl+shift+l"
#   quit = "ctrl+q"
`
}

// Primary returns the primary modifier
func (kb *KeyBindingsConfig) Primary() string {
	if kb.Modifiers.Primary == "" {
		return "ctrl"
	}
	return kb.Modifiers.Primary
}

// Secondary returns the secondary modifier
func (kb *KeyBindingsConfig) Secondary() string {
	if kb.Modifiers.Secondary == "" {
		return "alt"
	}
	return kb.Modifiers.Secondary
}

// PrimaryKey builds a keybinding string with primary modifier
// Example: PrimaryKey("k") returns "ctrl+k"
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.Primary() + "+" + key
}

// SecondaryKey builds a keybinding string with secondary modifier.
// A "shift" modifier on a single lowercase letter becomes the uppercase
// letter, which is what terminals actually report ("alt+shift+g" -> "alt+G").
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	secondary := kb.Secondary()

	if strings.Contains(strings.ToLower(secondary), "shift") && len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		var cleanMods []string
		for _, part := range strings.Split(secondary, "+") {
			if strings.ToLower(part) != "shift" {
				cleanMods = append(cleanMods, part)
			}
		}
		if len(cleanMods) > 0 {
			return strings.Join(cleanMods, "+") + "+" + strings.ToUpper(key)
		}
		return strings.ToUpper(key)
	}

	return secondary + "+" + key
}

// GetActionKey returns the keybinding for a specific action.
// User overrides win over registry defaults; unknown actions yield "".
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if override, ok := kb.Actions[action]; ok && override != "" {
		return override
	}

	def, ok := actionRegistry[action]
	if !ok {
		return ""
	}
	switch def.modifier {
	case "primary":
		return kb.PrimaryKey(def.key)
	case "secondary":
		return kb.SecondaryKey(def.key)
	default:
		return def.key
	}
}

// Matches reports whether a key event string triggers action.
func (kb *KeyBindingsConfig) Matches(keyString, action string) bool {
	return keyString != "" && keyString == kb.GetActionKey(action)
}

// DisplayActionKey returns a display-friendly version of an action's keybinding
// Example: "ctrl+k" -> "Ctrl+K"
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

// capitalizeKeybinding capitalizes a keybinding string for display.
// An uppercase letter after a modifier is shown as Shift+<letter>:
//
//	"ctrl+k" -> "Ctrl+K"
//	"alt+G"  -> "Alt+Shift+G"
func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")
	hasShift := false
	for _, p := range parts {
		if strings.ToLower(p) == "shift" {
			hasShift = true
			break
		}
	}

	var result []string
	for i, part := range parts {
		if part == "" {
			continue
		}
		if len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z' {
			if !hasShift && i > 0 {
				result = append(result, "Shift")
			}
			result = append(result, part)
			continue
		}
		result = append(result, strings.ToUpper(part[:1])+part[1:])
	}

	return strings.Join(result, "+")
}

// Validate checks if the configuration is valid
// Returns (isValid, warningMessage)
func (kb *KeyBindingsConfig) Validate() (bool, string) {
	primary := kb.Primary()
	secondary := kb.Secondary()

	if primary == "shift" || secondary == "shift" {
		return false, "Shift alone conflicts with typing"
	}
	if primary == secondary {
		return false, "Primary and secondary modifiers must differ"
	}

	// ctrl+c always quits, whatever it is mapped to.
	for action := range actionRegistry {
		if action != ActionQuit && kb.GetActionKey(action) == "ctrl+c" {
			return true, fmt.Sprintf("Warning: ctrl+c always quits; %s will not fire", action)
		}
	}

	return true, ""
}
