package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"vaultchat/config"
)

// ArchiveFileName is the conversation archive inside the data directory.
const ArchiveFileName = "conversation.json"

// Message is the on-disk form of one chat message.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Archive mirrors the conversation to a single JSON file.
type Archive struct {
	path string
}

// NewArchive creates an archive rooted in dataDir (0700 - user-only access).
func NewArchive(dataDir string) (*Archive, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Archive{
		path: filepath.Join(dataDir, ArchiveFileName),
	}, nil
}

// Path returns the archive file location.
func (a *Archive) Path() string {
	return a.path
}

// Save replaces the archive with messages.
func (a *Archive) Save(messages []Message) error {
	if messages == nil {
		messages = []Message{}
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	// 0600 - the archive contains the conversation history
	if err := writeFileAtomic(a.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write conversation archive: %w", err)
	}

	a.log().WithField("messages", len(messages)).Debug("archive saved")
	return nil
}

// Load returns the archived messages. A missing or unreadable archive yields
// an empty conversation; the file is left untouched.
func (a *Archive) Load() []Message {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if !os.IsNotExist(err) {
			a.log().WithError(err).Warn("failed to read archive, starting empty")
		}
		return []Message{}
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		a.log().WithError(err).Warn("archive is corrupted, starting empty")
		return []Message{}
	}
	if messages == nil {
		return []Message{}
	}

	return messages
}

// Delete removes the archive. Deleting a missing archive succeeds.
func (a *Archive) Delete() error {
	err := os.Remove(a.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete conversation archive: %w", err)
	}
	a.log().Debug("archive deleted")
	return nil
}

// Export writes the current archive contents to exportPath.
func (a *Archive) Export(exportPath string) error {
	data, err := json.MarshalIndent(a.Load(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	// 0600 - exports contain the conversation history
	if err := writeFileAtomic(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	return nil
}

// GenerateExportPath returns ~/Downloads/vaultchat-<timestamp>.json.
func GenerateExportPath() string {
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("vaultchat-%s.json", timestamp)
	return filepath.Join(config.GetHomeDir(), "Downloads", filename)
}

func (a *Archive) log() *logrus.Entry {
	return config.Log.WithFields(logrus.Fields{
		"component": "archive",
		"path":      a.path,
	})
}
