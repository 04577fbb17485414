package ui

import (
	"vaultchat/model"
)

// Message type aliases - these are defined in model package
type completionDoneMsg = model.CompletionDoneMsg
type clipboardCopiedMsg = model.ClipboardCopiedMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg
type flashClearMsg = model.FlashClearMsg
