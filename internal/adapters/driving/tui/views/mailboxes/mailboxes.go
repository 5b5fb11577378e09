// Package mailboxes provides the mailbox list view component for the TUI.
package mailboxes

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

// View is the mailbox list.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	service driving.MailboxService
	ctx     context.Context

	mailboxes []domain.MailboxInfo
	selected  int
	width     int
	height    int
	loading   bool
	err       error
}

// NewView creates a new mailbox list view.
func NewView(s *styles.Styles, service driving.MailboxService) *View {
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

// Init starts loading the mailbox list.
func (v *View) Init() tea.Cmd {
	return v.load()
}

// load returns a command that fetches the mailbox list.
func (v *View) load() tea.Cmd {
	v.loading = true
	return func() tea.Msg {
		mailboxes, err := v.service.List(v.ctx, "", "*")
		return messages.MailboxesLoaded{Mailboxes: mailboxes, Err: err}
	}
}

// Update handles messages for the mailbox list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.MailboxesLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.mailboxes = selectable(msg.Mailboxes)
		if v.selected >= len(v.mailboxes) {
			v.selected = 0
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.selected > 0 {
				v.selected--
			}
		case key.Matches(msg, v.keys.Down):
			if v.selected < len(v.mailboxes)-1 {
				v.selected++
			}
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load()
		case key.Matches(msg, v.keys.Select):
			if len(v.mailboxes) > 0 {
				name := v.mailboxes[v.selected].Name
				return v, func() tea.Msg {
					return messages.MailboxSelected{Name: name}
				}
			}
		}
	}
	return v, nil
}

// View renders the mailbox list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Mailboxes"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("error: %v", v.err)))
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case len(v.mailboxes) == 0:
		b.WriteString(v.styles.Muted.Render("No mailboxes."))
	default:
		for i, mb := range v.mailboxes {
			line := "  " + mb.Name
			if i == v.selected {
				line = v.styles.Selected.Render("> " + mb.Name)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("↑/↓ move · enter open · r refresh · q quit"))
	return b.String()
}

// Selected returns the highlighted mailbox name, or "".
func (v *View) Selected() string {
	if len(v.mailboxes) == 0 {
		return ""
	}
	return v.mailboxes[v.selected].Name
}

// selectable filters out mailboxes that cannot be opened.
func selectable(all []domain.MailboxInfo) []domain.MailboxInfo {
	var out []domain.MailboxInfo
	for _, mb := range all {
		if mb.Selectable() {
			out = append(out, mb)
		}
	}
	return out
}
