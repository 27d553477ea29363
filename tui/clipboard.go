package tui

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	copyLabel       = "Copy transcript"
	copiedLabel     = "Copied!"
	copyFailMessage = "Unable to copy transcript"

	// CopiedResetDelay is how long the "Copied!" acknowledgement stays up
	CopiedResetDelay = 1500 * time.Millisecond
)

// ClipboardWriter puts text on the system clipboard
type ClipboardWriter func(text string) error

// SystemClipboard writes through the OS clipboard utilities
var SystemClipboard ClipboardWriter = clipboard.WriteAll

type copyResultMsg struct {
	err error
}

type copyResetMsg struct {
	tag int
}

// copyButton owns the copy action's enabled state and acknowledgement label
type copyButton struct {
	enabled bool
	copied  bool
	label   string
	tag     int
	delay   time.Duration
	write   ClipboardWriter
}

func newCopyButton(write ClipboardWriter) copyButton {
	if write == nil {
		write = SystemClipboard
	}
	return copyButton{label: copyLabel, delay: CopiedResetDelay, write: write}
}

// reset puts the label back and enables the action only for non-empty text
func (b copyButton) reset(text string) copyButton {
	b.tag++
	b.enabled = text != ""
	b.copied = false
	b.label = copyLabel
	return b
}

func (b copyButton) disable() copyButton {
	b.tag++
	b.enabled = false
	b.copied = false
	b.label = copyLabel
	return b
}

// copy returns the clipboard write command, or nil when there is nothing
// to copy.
func (b copyButton) copy(text string) tea.Cmd {
	if !b.enabled || strings.TrimSpace(text) == "" {
		return nil
	}
	write := b.write
	return func() tea.Msg {
		return copyResultMsg{err: write(text)}
	}
}

// acknowledge marks success and schedules the label to revert
func (b copyButton) acknowledge() (copyButton, tea.Cmd) {
	b.tag++
	b.copied = true
	b.label = copiedLabel
	tag := b.tag
	return b, tea.Tick(b.delay, func(time.Time) tea.Msg {
		return copyResetMsg{tag: tag}
	})
}

func (b copyButton) revert(msg copyResetMsg) copyButton {
	if msg.tag != b.tag {
		return b
	}
	b.copied = false
	b.label = copyLabel
	return b
}

func (b copyButton) View() string {
	switch {
	case !b.enabled:
		return DisabledButtonStyle.Render("[c] " + b.label)
	case b.copied:
		return CopiedBadgeStyle.Render(b.label)
	default:
		return ButtonStyle.Render("[c] " + b.label)
	}
}
