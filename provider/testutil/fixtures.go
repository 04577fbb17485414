package testutil

import (
	"encoding/json"
	"fmt"

	"vaultchat/storage"
)

// TestAPIKey is shaped like a real key so redaction tests exercise it.
const TestAPIKey = "sk-or-v1-0123456789abcdef0123456789abcdef"

// TestArchive returns a sample stored conversation for testing
func TestArchive() []storage.Message {
	return []storage.Message{
		{ID: "m1", Role: "user", Content: "Hello, how are you?"},
		{ID: "m2", Role: "assistant", Content: "I'm doing well, thank you!"},
		{ID: "m3", Role: "user", Content: "Can you help me with a task?"},
		{ID: "m4", Role: "assistant", Content: "Of course. What do you need?"},
	}
}

// CompletionBody builds a 2xx chat completion payload with a single choice.
func CompletionBody(role, content string) string {
	body := map[string]any{
		"id":     "gen-test",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    role,
					"content": content,
				},
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 7,
			"total_tokens":      19,
		},
	}
	b, _ := json.Marshal(body)
	return string(b)
}

// ErrorBody builds the {"error":{...}} payload OpenRouter sends on failure.
func ErrorBody(message string) string {
	return fmt.Sprintf(`{"error":{"message":%q,"type":"invalid_request_error"}}`, message)
}
