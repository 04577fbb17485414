package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"vaultchat/config"
	appmodel "vaultchat/model"
)

// go-term-markdown prefixes code block lines with this bar
const codeBlockBar = "┃"

// Pre-compiled regex patterns
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s\x1b]+)`)
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	if len(a.state.Messages) == 0 && !a.state.Busy {
		a.viewport.SetContent(DimStyle.Render("No messages yet. Start chatting!"))
		return
	}

	var content strings.Builder

	for _, msg := range a.state.Messages {
		body := msg.Content
		if r, ok := a.rendered[msg.ID]; ok {
			body = r
		}

		switch msg.Role {
		case appmodel.RoleUser:
			content.WriteString(formatUserMessage(UserStyle.Render("You"), msg.Content))
		case appmodel.RoleAssistant:
			content.WriteString(fmt.Sprintf("%s\n%s\n\n", AssistantStyle.Render("Assistant"), body))
		default:
			content.WriteString(fmt.Sprintf("%s\n%s\n\n", DimStyle.Render("System"), body))
		}
	}

	if a.state.Busy {
		content.WriteString(fmt.Sprintf("%s\n%s Waiting for response...\n", AssistantStyle.Render("Assistant"), a.loadingSpinner.View()))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// formatUserMessage draws the user's text behind a green vertical bar.
func formatUserMessage(role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s\n", bar, role))
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

// renderPending returns commands rendering every assistant message that has
// no cached rendering at the current width.
func (a *AppView) renderPending() tea.Cmd {
	if a.renderedWidth != a.width {
		a.rendered = make(map[string]string)
		a.renderedWidth = a.width
	}

	var cmds []tea.Cmd
	for _, msg := range a.state.Messages {
		if msg.Role != appmodel.RoleAssistant {
			continue
		}
		if _, ok := a.rendered[msg.ID]; ok {
			continue
		}
		cmds = append(cmds, renderMarkdownAsync(msg.ID, msg.Content, a.width))
	}
	return tea.Batch(cmds...)
}

func renderMarkdownAsync(messageID, content string, width int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		rendered := renderMarkdown(content, width)

		config.Log.WithFields(map[string]any{
			"component":  "ui",
			"message_id": messageID,
			"chars":      len(content),
			"elapsed":    time.Since(start).String(),
		}).Debug("markdown rendered")

		return markdownRenderedMsg{
			MessageID: messageID,
			Width:     width,
			Rendered:  rendered,
		}
	}
}

// renderMarkdown renders content for a terminal of the given width.
func renderMarkdown(content string, width int) string {
	renderWidth := width - 4
	if renderWidth < 20 {
		renderWidth = 20
	}

	// Plain URLs stay plain so the terminal can make them clickable
	content = preprocessLinks(content)
	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	doc := p.Parse([]byte(content))
	out := gomarkdown.Render(doc, markdown.NewRenderer(renderWidth, 0))

	return postProcessMarkdown(strings.TrimRight(string(out), "\n"), width)
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = colorURLs(rendered)
	rendered = frameCodeBlocks(rendered, width)
	return rendered
}

// preprocessLinks strips [text](url) down to url.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode turns the blue-background inline code style into red text.
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func colorURLs(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !strings.Contains(line, codeBlockBar) {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}
	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the per-line bar of code blocks with a labelled
// horizontal frame, which survives mouse selection better.
func frameCodeBlocks(s string, width int) string {
	darkGray := "\x1b[90m"
	reset := "\x1b[0m"

	lineLen := width - 4
	if lineLen < 10 {
		lineLen = 10
	}

	label := "[code]"
	leftLen := (lineLen - len(label)) / 2
	rightLen := lineLen - len(label) - leftLen
	topBorder := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset
	bottomBorder := darkGray + strings.Repeat("━", lineLen) + reset

	var result []string
	inCodeBlock := false

	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, codeBlockBar) {
			if !inCodeBlock {
				inCodeBlock = true
				result = append(result, "", topBorder, "")
			}
			result = append(result, stripCodeBlockPrefix(line))
			continue
		}
		if inCodeBlock {
			result = append(result, "", bottomBorder, "")
			inCodeBlock = false
		}
		result = append(result, line)
	}

	if inCodeBlock {
		result = append(result, "", bottomBorder, "")
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, codeBlockBar)
	if idx < 0 {
		return line
	}
	after := idx + len(codeBlockBar)
	if after < len(line) && line[after] == ' ' {
		after++
	}
	return line[after:]
}
