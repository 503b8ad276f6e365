package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/bookbot/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/bookbot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/bookbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/bookbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/bookbot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bookbot/internal/core/domain"
)

const (
	// cartPanelWidth is the outer width of the cart side panel.
	cartPanelWidth = 34

	// chromeHeight is the number of lines taken by header, input and status bar.
	chromeHeight = 6
)

type speaker int

const (
	speakerUser speaker = iota
	speakerBot
)

// entry is one line of the transcript.
type entry struct {
	speaker speaker
	text    string

	// command marks a reply produced by a cart operation.
	command bool
	failed  bool
}

// App is the chat window following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports   *Ports
	ctx     context.Context
	session string

	styles *styles.Styles
	keymap *keymap.KeyMap

	input    *input.MessageInput
	status   *status.Bar
	viewport viewport.Model

	transcript []entry
	cart       domain.Cart
	showCart   bool

	// pending is true while a message is being answered.
	pending bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat window for one session.
func NewApp(ports *Ports, session string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	session = domain.NormaliseSession(session)
	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	bar := status.NewBar(s, km)
	bar.SetSession(session)

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		session:  session,
		styles:   s,
		keymap:   km,
		input:    input.NewMessageInput(s),
		status:   bar,
		viewport: viewport.New(80, 20),
		showCart: true,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle("bookbot"),
		a.loadCart(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keymap.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keymap.Send):
			return a, a.send()
		case key.Matches(msg, a.keymap.ToggleCart):
			a.showCart = !a.showCart
			a.layout()
			return a, nil
		case key.Matches(msg, a.keymap.ScrollUp):
			a.viewport.LineUp(a.viewport.Height)
			return a, nil
		case key.Matches(msg, a.keymap.ScrollDown):
			a.viewport.LineDown(a.viewport.Height)
			return a, nil
		}
		a.input, cmd = a.input.Update(msg)
		return a, cmd

	case messages.ReplyReceived:
		a.pending = false
		if msg.Err != nil {
			a.status.SetState(status.StateError)
			a.status.SetMessage(msg.Err.Error())
			a.appendEntry(entry{speaker: speakerBot, text: msg.Err.Error(), failed: true})
			return a, nil
		}
		a.status.Clear()
		a.appendEntry(entry{speaker: speakerBot, text: msg.Reply.Text, command: msg.Reply.IsCommand()})
		if msg.Reply.IsCommand() {
			return a, a.loadCart()
		}
		return a, nil

	case messages.CartLoaded:
		if msg.Err != nil {
			a.status.SetState(status.StateError)
			a.status.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.cart = msg.Cart
		a.status.SetCartItems(len(msg.Cart))
		return a, nil
	}

	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// send submits the typed message unless one is already being answered.
func (a *App) send() tea.Cmd {
	text := strings.TrimSpace(a.input.Value())
	if text == "" || a.pending {
		return nil
	}

	a.input.Reset()
	a.pending = true
	a.status.SetState(status.StateThinking)
	a.appendEntry(entry{speaker: speakerUser, text: text})
	return a.ask(text)
}

func (a *App) ask(text string) tea.Cmd {
	ctx, chat, session := a.ctx, a.ports.Chat, a.session
	return func() tea.Msg {
		reply, err := chat.Ask(ctx, session, text)
		return messages.ReplyReceived{Query: text, Reply: reply, Err: err}
	}
}

func (a *App) loadCart() tea.Cmd {
	ctx, cart, session := a.ctx, a.ports.Cart, a.session
	return func() tea.Msg {
		items, err := cart.Items(ctx, session)
		return messages.CartLoaded{Cart: items, Err: err}
	}
}

func (a *App) appendEntry(e entry) {
	a.transcript = append(a.transcript, e)
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.styles.Title.Render("bookbot") + a.styles.Muted.Render("  kitap asistanı")

	body := a.viewport.View()
	if a.showCart {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, a.renderCart())
	}

	return strings.Join([]string{header, body, a.input.View(), a.status.View()}, "\n")
}

func (a *App) renderTranscript() string {
	if len(a.transcript) == 0 {
		return a.styles.Muted.Render("Merhaba! Kitaplar hakkında soru sorabilir ya da sepetinize kitap ekleyebilirsiniz.")
	}

	wrap := lipgloss.NewStyle().Width(max(a.viewport.Width-2, 10))
	lines := make([]string, 0, len(a.transcript))
	for _, e := range a.transcript {
		var label, text string
		switch e.speaker {
		case speakerUser:
			label = a.styles.UserLabel.Render("Sen: ")
			text = a.styles.Normal.Render(e.text)
		default:
			label = a.styles.BotLabel.Render("Bot: ")
			switch {
			case e.failed:
				text = a.styles.Error.Render(e.text)
			case e.command:
				text = a.styles.Command.Render(e.text)
			default:
				text = a.styles.Normal.Render(e.text)
			}
		}
		lines = append(lines, wrap.Render(label+text))
	}
	return strings.Join(lines, "\n\n")
}

func (a *App) renderCart() string {
	var sb strings.Builder
	sb.WriteString(a.styles.Title.Render("Sepet"))
	sb.WriteString("\n\n")

	if len(a.cart) == 0 {
		sb.WriteString(a.styles.Muted.Render("Sepetiniz boş."))
	} else {
		for i, item := range a.cart {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, item.Title)
			sb.WriteString(a.styles.Muted.Render(fmt.Sprintf("   %s TL", domain.FormatPrice(item.Price))))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(a.styles.Command.Render(fmt.Sprintf("Toplam: %s TL", domain.FormatPrice(a.cart.Total()))))
	}

	return a.styles.CartPanel.
		Width(cartPanelWidth - 2).
		Height(max(a.viewport.Height-2, 1)).
		Render(sb.String())
}

// layout sizes the transcript and input for the current terminal.
func (a *App) layout() {
	width := a.width
	if a.showCart {
		width -= cartPanelWidth
	}
	a.viewport.Width = max(width, 20)
	a.viewport.Height = max(a.height-chromeHeight, 3)
	a.input.SetWidth(a.width)
	a.status.SetWidth(a.width)
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

// Run starts the chat window.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Session returns the session the window chats in.
func (a *App) Session() string {
	return a.session
}

// Cart returns the last loaded cart.
func (a *App) Cart() domain.Cart {
	return a.cart
}

// Pending reports whether a message is being answered.
func (a *App) Pending() bool {
	return a.pending
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.layout()
}
