package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmodel "vaultchat/model"
)

func TestPreprocessLinks(t *testing.T) {
	in := "See [the docs](https://openrouter.ai/docs) and [local](./file.md)."
	assert.Equal(t, "See https://openrouter.ai/docs and [local](./file.md).", preprocessLinks(in))
}

func TestFixInlineCode(t *testing.T) {
	in := "run \x1b[44;3mgo test\x1b[0m now"
	assert.Equal(t, "run \x1b[31mgo test\x1b[0m now", fixInlineCode(in))
}

func TestFrameCodeBlocks(t *testing.T) {
	in := strings.Join([]string{
		"before",
		"  ┃ line one",
		"  ┃ line two",
		"after",
	}, "\n")

	out := frameCodeBlocks(in, 40)
	lines := strings.Split(out, "\n")

	assert.NotContains(t, out, codeBlockBar)
	assert.Contains(t, out, "[code]")
	assert.Contains(t, lines, "line one")
	assert.Contains(t, lines, "line two")
	assert.Equal(t, "before", lines[0])
	assert.Equal(t, "after", lines[len(lines)-1])
}

func TestFrameCodeBlocksUnterminated(t *testing.T) {
	out := frameCodeBlocks("┃ tail", 20)
	assert.True(t, strings.HasSuffix(out, "\n"), "closing border is followed by a blank line")
	assert.Contains(t, out, "tail")
}

func TestColorURLsSkipsCode(t *testing.T) {
	out := colorURLs("visit https://example.com\n┃ curl https://example.com")
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "\x1b[31mhttps://example.com\x1b[0m")
	assert.Equal(t, "┃ curl https://example.com", lines[1])
}

func TestRenderMarkdown(t *testing.T) {
	out := renderMarkdown("# Title\n\nSome **bold** text.", 80)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
}

func TestFormatUserMessage(t *testing.T) {
	out := formatUserMessage("You", "first\nsecond")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Contains(t, line, "┃")
	}
	assert.Contains(t, lines[2], "second")
}

func TestLastReply(t *testing.T) {
	msgs := []appmodel.Message{
		{ID: "1", Role: appmodel.RoleUser, Content: "q1"},
		{ID: "2", Role: appmodel.RoleAssistant, Content: "a1"},
		{ID: "3", Role: appmodel.RoleUser, Content: "q2"},
	}

	reply, ok := lastReply(msgs)
	require.True(t, ok)
	assert.Equal(t, "a1", reply)

	_, ok = lastReply(msgs[:1])
	assert.False(t, ok)
}

func TestConversationText(t *testing.T) {
	msgs := []appmodel.Message{
		{ID: "1", Role: appmodel.RoleUser, Content: "Hi"},
		{ID: "2", Role: appmodel.RoleAssistant, Content: "Hello!"},
	}
	assert.Equal(t, "You:\nHi\n\nAssistant:\nHello!\n", conversationText(msgs))
}

func TestTruncateToWidth(t *testing.T) {
	assert.Equal(t, "short", truncateToWidth("short", 10))
	assert.LessOrEqual(t, len([]rune(truncateToWidth("a much longer status line", 10))), 10)
}
