package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestCredentialStoreLifecycle(t *testing.T) {
	keyring.MockInit()
	store := NewCredentialStore()

	value, ok, err := store.Get()
	require.NoError(t, err)
	assert.False(t, ok, "first run has no credential")
	assert.Empty(t, value)

	require.NoError(t, store.Set("sk-live-abc"))
	value, ok, err = store.Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk-live-abc", value)

	has, err := store.Has()
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, store.Clear())
	_, ok, err = store.Get()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialStoreSetOverwrites(t *testing.T) {
	keyring.MockInit()
	store := NewCredentialStoreFor("vaultchat-test", "overwrite")

	require.NoError(t, store.Set("first"))
	require.NoError(t, store.Set("second"))

	value, ok, err := store.Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestCredentialStoreClearAbsent(t *testing.T) {
	keyring.MockInit()
	store := NewCredentialStoreFor("vaultchat-test", "absent")

	assert.NoError(t, store.Clear())
	assert.NoError(t, store.Clear())
}

func TestCredentialStoreErrorsDoNotLeakValue(t *testing.T) {
	secret := "sk-should-never-appear"
	keyring.MockInitWithError(errors.New("backend exploded while handling " + secret))
	store := NewCredentialStore()

	tests := []struct {
		name string
		op   func() error
	}{
		{"set", func() error { return store.Set(secret) }},
		{"get", func() error { _, _, err := store.Get(); return err }},
		{"clear", func() error { return store.Clear() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			require.Error(t, err)

			var serr *SecretStoreError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.name, serr.Op)
			assert.Equal(t, StatusUnknown, serr.Status)
			assert.NotContains(t, err.Error(), secret)
		})
	}
}

func TestSecretStoreErrorStatusMapping(t *testing.T) {
	assert.Equal(t, StatusUnsupportedPlatform, newSecretStoreError("get", keyring.ErrUnsupportedPlatform).Status)
	assert.Equal(t, StatusValueTooLarge, newSecretStoreError("set", keyring.ErrSetDataTooBig).Status)
	assert.Equal(t, StatusUnknown, newSecretStoreError("set", errors.New("boom")).Status)
}
