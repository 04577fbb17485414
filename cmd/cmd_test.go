package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"vaultchat/provider/testutil"
	"vaultchat/storage"
)

type cliEnv struct {
	dataDir  string
	requests *atomic.Int32
}

// setupCLI isolates HOME, the data directory and the keyring, and points the
// endpoint at a local server answering with status and body.
func setupCLI(t *testing.T, status int, body string) cliEnv {
	t.Helper()
	keyring.MockInit()

	home := t.TempDir()
	dataDir := filepath.Join(home, "data")

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("HOME", home)
	t.Setenv("VAULTCHAT_DATA_DIR", dataDir)
	t.Setenv("VAULTCHAT_ENDPOINT", srv.URL+"/api/v1")
	t.Setenv("VAULTCHAT_MODEL", "")
	t.Setenv("VAULTCHAT_DEBUG", "")

	return cliEnv{dataDir: dataDir, requests: &requests}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestKeyCommands(t *testing.T) {
	setupCLI(t, http.StatusOK, testutil.CompletionBody("assistant", "unused"))

	out, err := run(t, "", "key", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not set")

	out, err = run(t, testutil.TestAPIKey+"\n", "key", "set")
	require.NoError(t, err)
	assert.Contains(t, out, "saved")
	assert.NotContains(t, out, testutil.TestAPIKey)

	stored, err := keyring.Get("vaultchat", "openrouter-api-key")
	require.NoError(t, err)
	assert.Equal(t, testutil.TestAPIKey, stored)

	out, err = run(t, "", "key", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "present")

	_, err = run(t, "", "key", "clear")
	require.NoError(t, err)

	out, err = run(t, "", "key", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not set")
}

func TestKeySetRejectsEmptyInput(t *testing.T) {
	setupCLI(t, http.StatusOK, "{}")

	_, err := run(t, "   \n", "key", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")

	_, getErr := keyring.Get("vaultchat", "openrouter-api-key")
	assert.ErrorIs(t, getErr, keyring.ErrNotFound)
}

func TestAsk(t *testing.T) {
	t.Run("no key makes no request", func(t *testing.T) {
		env := setupCLI(t, http.StatusOK, testutil.CompletionBody("assistant", "Hello!"))

		_, err := run(t, "", "ask", "Hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vaultchat key set")
		assert.Equal(t, int32(0), env.requests.Load())
		assert.NoFileExists(t, filepath.Join(env.dataDir, storage.ArchiveFileName))
	})

	t.Run("prints the reply and stores both messages", func(t *testing.T) {
		env := setupCLI(t, http.StatusOK, testutil.CompletionBody("assistant", "Hello!"))
		require.NoError(t, keyring.Set("vaultchat", "openrouter-api-key", testutil.TestAPIKey))

		out, err := run(t, "", "ask", "Hi", "there")
		require.NoError(t, err)
		assert.Equal(t, "Hello!\n", out)
		assert.Equal(t, int32(1), env.requests.Load())

		archive, err := storage.NewArchive(env.dataDir)
		require.NoError(t, err)
		stored := archive.Load()
		require.Len(t, stored, 2)
		assert.Equal(t, "Hi there", stored[0].Content)
		assert.Equal(t, "Hello!", stored[1].Content)
	})

	t.Run("remote error rolls back", func(t *testing.T) {
		env := setupCLI(t, http.StatusUnauthorized, testutil.ErrorBody("invalid key"))
		require.NoError(t, keyring.Set("vaultchat", "openrouter-api-key", testutil.TestAPIKey))

		_, err := run(t, "", "ask", "Hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 401")
		assert.Contains(t, err.Error(), "invalid key")
		assert.NotContains(t, err.Error(), testutil.TestAPIKey)

		archive, err := storage.NewArchive(env.dataDir)
		require.NoError(t, err)
		assert.Empty(t, archive.Load())
	})
}

func TestHistoryCommands(t *testing.T) {
	env := setupCLI(t, http.StatusOK, testutil.CompletionBody("assistant", "Hello!"))
	require.NoError(t, keyring.Set("vaultchat", "openrouter-api-key", testutil.TestAPIKey))

	_, err := run(t, "", "ask", "Hi")
	require.NoError(t, err)

	exportPath := filepath.Join(t.TempDir(), "nested", "export.json")
	out, err := run(t, "", "history", "export", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 messages")

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	var exported []storage.Message
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Len(t, exported, 2)

	_, err = run(t, "", "history", "clear")
	require.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(env.dataDir, storage.ArchiveFileName))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))

	// Clearing history leaves the key alone
	out, err = run(t, "", "key", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "present")
}

func TestUsageCommand(t *testing.T) {
	setupCLI(t, http.StatusOK, testutil.CompletionBody("assistant", "Hello!"))
	require.NoError(t, keyring.Set("vaultchat", "openrouter-api-key", testutil.TestAPIKey))

	out, err := run(t, "", "usage")
	require.NoError(t, err)
	assert.Contains(t, out, "No usage recorded yet.")

	_, err = run(t, "", "ask", "--model", "test/model-a", "Hi")
	require.NoError(t, err)

	out, err = run(t, "", "usage")
	require.NoError(t, err)
	assert.Contains(t, out, "test/model-a")
	assert.Contains(t, out, "TOTAL")

	out, err = run(t, "", "usage", "--json")
	require.NoError(t, err)
	var parsed struct {
		Models []struct {
			Model            string `json:"model"`
			Requests         int64  `json:"requests"`
			PromptTokens     int64  `json:"prompt_tokens"`
			CompletionTokens int64  `json:"completion_tokens"`
		} `json:"models"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	require.Len(t, parsed.Models, 1)
	assert.Equal(t, int64(1), parsed.Models[0].Requests)
	assert.Equal(t, int64(12), parsed.Models[0].PromptTokens)
	assert.Equal(t, int64(7), parsed.Models[0].CompletionTokens)

	out, err = run(t, "", "usage", "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")

	out, err = run(t, "", "usage")
	require.NoError(t, err)
	assert.Contains(t, out, "No usage recorded yet.")
}

func TestReadSecret(t *testing.T) {
	var prompt bytes.Buffer

	value, err := readSecret(strings.NewReader("  sk-or-abc  \nsecond line\n"), &prompt)
	require.NoError(t, err)
	assert.Equal(t, "sk-or-abc", value)
	assert.Empty(t, prompt.String())

	value, err = readSecret(strings.NewReader("no-newline"), &prompt)
	require.NoError(t, err)
	assert.Equal(t, "no-newline", value)
}
