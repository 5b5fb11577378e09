package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/keymap"
	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/messages"
	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/styles"
	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/views/headers"
	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/views/mailboxes"
	"github.com/epistle-sh/epistle/internal/adapters/driving/tui/views/reader"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	keys  *keymap.KeyMap

	mailboxesView *mailboxes.View
	headersView   *headers.View
	readerView    *reader.View

	currentView messages.ViewType
	width       int
	height      int
	ready       bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := styles.DefaultStyles()
	return &App{
		ports:         ports,
		keys:          keymap.DefaultKeyMap(),
		mailboxesView: mailboxes.NewView(s, ports.Mailboxes),
		headersView:   headers.NewView(s, ports.Messages),
		readerView:    reader.NewView(s, ports.Messages),
		currentView:   messages.ViewMailboxes,
	}, nil
}

// WithContext sets the context for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.mailboxesView.WithContext(ctx)
	a.headersView.WithContext(ctx)
	a.readerView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("epistle"),
		a.mailboxesView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.mailboxesView.SetDimensions(msg.Width, msg.Height)
		a.headersView.SetDimensions(msg.Width, msg.Height)
		a.readerView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case messages.MailboxSelected:
		a.currentView = messages.ViewHeaders
		return a, a.headersView.SetMailbox(msg.Name)

	case messages.MessageSelected:
		a.currentView = messages.ViewReader
		return a, a.readerView.SetMessage(msg.Mailbox, msg.SeqNum)

	case messages.MailboxesLoaded:
		a.mailboxesView, cmd = a.mailboxesView.Update(msg)
		return a, cmd

	case messages.HeadersLoaded, messages.MessageDeleted:
		a.headersView, cmd = a.headersView.Update(msg)
		return a, cmd

	case messages.MessageLoaded:
		a.readerView, cmd = a.readerView.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) && a.currentView != messages.ViewReader {
			return a, tea.Quit
		}
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if key.Matches(msg, a.keys.Back) {
			return a, a.back()
		}
		return a, a.forwardKey(msg)
	}

	return a, nil
}

// back moves one view up the stack.
func (a *App) back() tea.Cmd {
	switch a.currentView {
	case messages.ViewReader:
		a.currentView = messages.ViewHeaders
	case messages.ViewHeaders:
		a.currentView = messages.ViewMailboxes
	case messages.ViewMailboxes:
		return tea.Quit
	}
	return nil
}

// forwardKey sends a key press to the active view.
func (a *App) forwardKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMailboxes:
		a.mailboxesView, cmd = a.mailboxesView.Update(msg)
	case messages.ViewHeaders:
		a.headersView, cmd = a.headersView.Update(msg)
	case messages.ViewReader:
		a.readerView, cmd = a.readerView.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Starting..."
	}
	switch a.currentView {
	case messages.ViewHeaders:
		return a.headersView.View()
	case messages.ViewReader:
		return a.readerView.View()
	default:
		return a.mailboxesView.View()
	}
}

// CurrentView returns the active view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}
