// Package reader provides the message reading view component for the TUI.
package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/messages"
	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/styles"
	"github.com/epistle-sh/epistle/internal/core/ports/driving"
)

// View shows one rendered message with a scrollable body.
type View struct {
	styles  *styles.Styles
	service driving.MessageService
	ctx     context.Context

	viewport viewport.Model
	mailbox  string
	seqNum   uint32
	loading  bool
	err      error
	ready    bool
}

// NewView creates a new reader view.
func NewView(s *styles.Styles, service driving.MessageService) *View {
	return &View{
		styles:  s,
		ctx:     context.Background(),
		service: service,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) {
	v.ctx = ctx
}

// SetDimensions updates the terminal size.
func (v *View) SetDimensions(width, height int) {
	headerLines := 6
	if !v.ready {
		v.viewport = viewport.New(width, max(height-headerLines, 1))
		v.ready = true
	} else {
		v.viewport.Width = width
		v.viewport.Height = max(height-headerLines, 1)
	}
}

// SetMessage loads one message for reading.
func (v *View) SetMessage(mailbox string, seqNum uint32) tea.Cmd {
	v.mailbox = mailbox
	v.seqNum = seqNum
	v.err = nil
	v.loading = true
	return func() tea.Msg {
		rendered, err := v.service.Read(v.ctx, mailbox, seqNum)
		return messages.MessageLoaded{SeqNum: seqNum, Rendered: rendered, Err: err}
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the reader.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.MessageLoaded:
		if msg.SeqNum != v.seqNum {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.viewport.SetContent(v.renderMessage(msg))
		v.viewport.GotoTop()
		return v, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) renderMessage(msg messages.MessageLoaded) string {
	e := msg.Rendered.Envelope
	var b strings.Builder
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("From:    %s", e.From)))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Date:    %s", e.Date)))
	b.WriteString("\n")
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("Subject: %s", e.Subject)))
	b.WriteString("\n\n")
	b.WriteString(msg.Rendered.Body)
	return b.String()
}

// View renders the reader.
func (v *View) View() string {
	var b strings.Builder
	title := fmt.Sprintf("%s · message %d", v.mailbox, v.seqNum)
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("error: %v", v.err)))
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	default:
		b.WriteString(v.viewport.View())
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("↑/↓ scroll · esc back · q quit"))
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
