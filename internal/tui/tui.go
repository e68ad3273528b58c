// Package tui is an interactive terminal client for a local blackjack
// session.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/blackjackd/internal/blackjack"
	"github.com/lox/blackjackd/internal/protocol"
)

type mode int

const (
	modeBetting mode = iota
	modeActing
)

// Model is the bubbletea model for solo play against the house.
type Model struct {
	session  *blackjack.Session
	betInput textinput.Model
	mode     mode
	message  string
	errText  string
}

// New creates a play model over the given session.
func New(session *blackjack.Session) Model {
	input := textinput.New()
	input.Placeholder = "bet amount"
	input.CharLimit = 8
	input.Width = 12
	input.Focus()

	return Model{
		session:  session,
		betInput: input,
		mode:     modeBetting,
		message:  "Place a bet to start a round.",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.betInput, cmd = m.betInput.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "ctrl+c", "q":
		if m.mode == modeBetting {
			return m, tea.Quit
		}
	case "esc":
		return m, tea.Quit
	}

	switch m.mode {
	case modeBetting:
		return m.updateBetting(keyMsg)
	case modeActing:
		return m.updateActing(keyMsg)
	}
	return m, nil
}

func (m Model) updateBetting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		amount, err := strconv.Atoi(strings.TrimSpace(m.betInput.Value()))
		if err != nil {
			m.errText = "enter a whole number"
			return m, nil
		}
		res, err := m.session.PlaceBet(amount)
		if err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.errText = ""
		m.betInput.Reset()
		m.message = protocol.Describe(protocol.OpPlaceBet, res)
		if res == nil {
			m.mode = modeActing
		}
		return m, nil
	case "a":
		// Quick top-up for a busted bankroll.
		if err := m.session.AddCredits(50); err == nil {
			m.message = "Added 50 credits."
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.betInput, cmd = m.betInput.Update(msg)
	return m, cmd
}

func (m Model) updateActing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		res *blackjack.Result
		err error
		op  string
	)

	switch msg.String() {
	case "h":
		op = protocol.OpHit
		res, err = m.session.Hit()
	case "s":
		op = protocol.OpStand
		res, err = m.session.Stand()
	case "d":
		op = protocol.OpDoubleDown
		res, err = m.session.DoubleDown()
	default:
		return m, nil
	}

	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.errText = ""
	m.message = protocol.Describe(op, res)
	if res != nil {
		m.mode = modeBetting
		m.betInput.Focus()
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	state := m.session.View()

	var b strings.Builder
	b.WriteString(headerStyle.Render("blackjackd"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Dealer:"), renderHand(state.DealerHand))
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("You:   "), renderHand(state.PlayerHand))

	fmt.Fprintf(&b, "%s %d    %s %d    %s %d\n",
		labelStyle.Render("Credits:"), state.Credits,
		labelStyle.Render("Bet:"), state.CurrentBet,
		labelStyle.Render("Shoe:"), state.ShoeRemaining,
	)

	if m.message != "" {
		style := winStyle
		if state.LastResult != nil && isLoss(state.LastResult.Outcome) {
			style = lossStyle
		}
		b.WriteString("\n" + style.Render(m.message) + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n" + lossStyle.Render("! "+m.errText) + "\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeBetting:
		b.WriteString(m.betInput.View() + "\n")
		b.WriteString(helpStyle.Render("enter: bet • a: add 50 credits • q: quit"))
	case modeActing:
		help := "h: hit • s: stand"
		if state.CanDouble {
			help += " • d: double down"
		}
		b.WriteString(helpStyle.Render(help + " • esc: quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func isLoss(o blackjack.Outcome) bool {
	switch o {
	case blackjack.OutcomeDealerWin, blackjack.OutcomePlayerBust, blackjack.OutcomeDealerBlackjack:
		return true
	}
	return false
}

// renderHand colors card strings by suit; the hole placeholder stays plain.
func renderHand(cards []string) string {
	if len(cards) == 0 {
		return infoStyle.Render("(none)")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		switch {
		case c == blackjack.HoleCard:
			parts[i] = infoStyle.Render(c)
		case strings.HasSuffix(c, "♥") || strings.HasSuffix(c, "♦"):
			parts[i] = redCardStyle.Render(c)
		default:
			parts[i] = blackCardStyle.Render(c)
		}
	}
	return strings.Join(parts, " ")
}
