// Package headers provides the message list view component for the TUI.
package headers

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/keymap"
	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/messages"
	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/styles"
	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driving"
)

// View is the message list of one mailbox.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	service driving.MessageService
	ctx     context.Context

	mailbox   string
	envelopes []domain.Envelope
	selected  int
	width     int
	height    int
	loading   bool
	err       error
}

// NewView creates a new message list view.
func NewView(s *styles.Styles, service driving.MessageService) *View {
	return &View{
		styles:  s,
		keys:    keymap.DefaultKeyMap(),
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
	v.width = width
	v.height = height
}

// SetMailbox switches the view to a mailbox and loads its headers.
func (v *View) SetMailbox(mailbox string) tea.Cmd {
	v.mailbox = mailbox
	v.envelopes = nil
	v.selected = 0
	v.err = nil
	return v.load()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// load returns a command that fetches the mailbox headers.
func (v *View) load() tea.Cmd {
	mailbox := v.mailbox
	v.loading = true
	return func() tea.Msg {
		envelopes, err := v.service.Headers(v.ctx, mailbox, "1:*")
		return messages.HeadersLoaded{Mailbox: mailbox, Envelopes: envelopes, Err: err}
	}
}

// Update handles messages for the message list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.HeadersLoaded:
		if msg.Mailbox != v.mailbox {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.envelopes = msg.Envelopes
		if v.selected >= len(v.envelopes) {
			v.selected = 0
		}
		return v, nil

	case messages.MessageDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.load()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.selected > 0 {
				v.selected--
			}
		case key.Matches(msg, v.keys.Down):
			if v.selected < len(v.envelopes)-1 {
				v.selected++
			}
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load()
		case key.Matches(msg, v.keys.Select):
			if len(v.envelopes) > 0 {
				seq := v.envelopes[v.selected].SeqNum
				mailbox := v.mailbox
				return v, func() tea.Msg {
					return messages.MessageSelected{Mailbox: mailbox, SeqNum: seq}
				}
			}
		case key.Matches(msg, v.keys.Delete):
			if len(v.envelopes) > 0 {
				return v, v.deleteSelected()
			}
		}
	}
	return v, nil
}

// deleteSelected marks the highlighted message \Deleted.
func (v *View) deleteSelected() tea.Cmd {
	seq := v.envelopes[v.selected].SeqNum
	mailbox := v.mailbox
	return func() tea.Msg {
		_, err := v.service.Delete(v.ctx, mailbox, fmt.Sprintf("%d", seq), false)
		return messages.MessageDeleted{SeqNum: seq, Err: err}
	}
}

// View renders the message list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.mailbox))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("error: %v", v.err)))
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case len(v.envelopes) == 0:
		b.WriteString(v.styles.Muted.Render("No messages."))
	default:
		for i, e := range v.envelopes {
			b.WriteString(v.renderRow(e, i == v.selected))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("↑/↓ move · enter read · d delete · r refresh · esc back"))
	return b.String()
}

func (v *View) renderRow(e domain.Envelope, highlighted bool) string {
	subject := e.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	row := fmt.Sprintf("%4d  %-28.28s  %s", e.SeqNum, e.From, subject)

	switch {
	case highlighted:
		return v.styles.Selected.Render(row)
	case e.HasFlag(domain.FlagDeleted):
		return v.styles.Deleted.Render(row)
	case !e.HasFlag(domain.FlagSeen):
		return v.styles.Unseen.Render(row)
	default:
		return v.styles.Normal.Render(row)
	}
}

// Selected returns the highlighted envelope, or nil.
func (v *View) Selected() *domain.Envelope {
	if len(v.envelopes) == 0 {
		return nil
	}
	return &v.envelopes[v.selected]
}
