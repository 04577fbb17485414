package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageLedger(t *testing.T) {
	ledger, err := NewUsageLedger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	totals, err := ledger.Totals()
	require.NoError(t, err)
	assert.Empty(t, totals)

	require.NoError(t, ledger.Record(Usage{Model: "openai/gpt-4o-mini", PromptTokens: 10, CompletionTokens: 5}))
	require.NoError(t, ledger.Record(Usage{Model: "openai/gpt-4o-mini", PromptTokens: 20, CompletionTokens: 7}))
	require.NoError(t, ledger.Record(Usage{Model: "meta-llama/llama-3-8b-instruct", PromptTokens: 1, CompletionTokens: 1}))

	totals, err = ledger.Totals()
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, ModelUsage{Model: "openai/gpt-4o-mini", Requests: 2, PromptTokens: 30, CompletionTokens: 12}, totals[0])
	assert.Equal(t, ModelUsage{Model: "meta-llama/llama-3-8b-instruct", Requests: 1, PromptTokens: 1, CompletionTokens: 1}, totals[1])

	require.NoError(t, ledger.Reset())
	totals, err = ledger.Totals()
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestUsageLedgerPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()

	ledger, err := NewUsageLedger(dir)
	require.NoError(t, err)
	require.NoError(t, ledger.Record(Usage{Model: "m", PromptTokens: 3, CompletionTokens: 4}))
	require.NoError(t, ledger.Close())

	reopened, err := NewUsageLedger(dir)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	totals, err := reopened.Totals()
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, int64(7), totals[0].PromptTokens+totals[0].CompletionTokens)
}
