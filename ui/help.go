package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"vaultchat/config"
)

func (a AppView) renderHelpModal(width, height int) string {
	kb := a.keys

	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("vaultchat - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	chatActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat"),
		fmt.Sprintf("• %-13s Send message", kb.DisplayActionKey(config.ActionSend)),
		fmt.Sprintf("• %-13s New line", kb.DisplayActionKey(config.ActionNewLine)),
		fmt.Sprintf("• %-13s Copy last reply", kb.DisplayActionKey(config.ActionCopyReply)),
		fmt.Sprintf("• %-13s Copy conversation", kb.DisplayActionKey(config.ActionCopyConversation)),
		fmt.Sprintf("• %-13s Clear history", kb.DisplayActionKey(config.ActionClearHistory)),
		fmt.Sprintf("• %-13s Dismiss error", kb.DisplayActionKey(config.ActionDismiss)),
	)

	keyActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## API Key"),
		fmt.Sprintf("• %-13s Enter or replace key", kb.DisplayActionKey(config.ActionCredentialPrompt)),
		fmt.Sprintf("• %-13s Remove key", kb.DisplayActionKey(config.ActionClearCredential)),
	)

	navigation := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Navigation"),
		fmt.Sprintf("• %-13s Scroll up", kb.DisplayActionKey(config.ActionScrollUp)),
		fmt.Sprintf("• %-13s Scroll down", kb.DisplayActionKey(config.ActionScrollDown)),
		fmt.Sprintf("• %-13s Page up", kb.DisplayActionKey(config.ActionPageUp)),
		fmt.Sprintf("• %-13s Page down", kb.DisplayActionKey(config.ActionPageDown)),
		fmt.Sprintf("• %-13s Jump to top", kb.DisplayActionKey(config.ActionScrollToTop)),
		fmt.Sprintf("• %-13s Jump to bottom", kb.DisplayActionKey(config.ActionScrollToBottom)),
		fmt.Sprintf("• %-13s Quit", kb.DisplayActionKey(config.ActionQuit)),
	)

	columnStyle := lipgloss.NewStyle().Width(42).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, chatActions, "", keyActions)),
		columnStyle.Render(navigation),
	)

	footer := DimStyle.Render(fmt.Sprintf("Press %s or %s to close this help",
		kb.DisplayActionKey(config.ActionHelp),
		kb.DisplayActionKey(config.ActionDismiss)))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
