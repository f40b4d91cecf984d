// Package display renders game events as styled lines on a terminal. The
// renderer is a passive event sink; it never touches game state.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muggins/cribbage/internal/deck"
	"github.com/muggins/cribbage/internal/game"
)

// Renderer writes a running commentary of a game to w. It implements
// game.EventSubscriber. Styling degrades to plain text automatically when
// w is not a terminal.
type Renderer struct {
	w   io.Writer
	lip *lipgloss.Renderer

	header  lipgloss.Style
	points  lipgloss.Style
	muted   lipgloss.Style
	redCard lipgloss.Style

	names  []string
	reveal map[int]bool
	all    bool
}

// Option configures a renderer
type Option func(*Renderer)

// WithRevealedSeat shows the given seat's dealt hand. By default no hands
// are shown, which is what a table of non-human strategies wants.
func WithRevealedSeat(seat int) Option {
	return func(r *Renderer) { r.reveal[seat] = true }
}

// WithAllHandsRevealed shows every dealt hand, for spectating or replays
func WithAllHandsRevealed() Option {
	return func(r *Renderer) { r.all = true }
}

// New creates a renderer writing to w.
func New(w io.Writer, opts ...Option) *Renderer {
	lip := lipgloss.NewRenderer(w)
	r := &Renderer{
		w:       w,
		lip:     lip,
		header:  lip.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		points:  lip.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		muted:   lip.NewStyle().Foreground(lipgloss.Color("8")),
		redCard: lip.NewStyle().Foreground(lipgloss.Color("9")),
		reveal:  make(map[int]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnEvent renders one event. Implements game.EventSubscriber.
func (r *Renderer) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.GameStartEvent:
		r.names = make([]string, len(e.Players))
		roster := make([]string, len(e.Players))
		for i, p := range e.Players {
			r.names[p.Index] = p.Name
			roster[i] = fmt.Sprintf("%s (%s)", p.Name, p.Strategy)
		}
		r.printf("%s\n", r.header.Render(fmt.Sprintf("Cribbage to %d: %s", e.TargetScore, strings.Join(roster, " vs "))))

	case game.RoundStartEvent:
		r.printf("\n%s\n", r.header.Render(fmt.Sprintf("— Round %d — %s deals", e.Number, r.name(e.Dealer))))

	case game.HandDealtEvent:
		if r.all || r.reveal[e.Player] {
			r.printf("%s is dealt %s\n", r.name(e.Player), r.cards(e.Cards))
		}

	case game.CribFormedEvent:
		extra := ""
		if e.ExtraCard {
			extra = " (topped up from the deck)"
		}
		r.printf("%s\n", r.muted.Render(fmt.Sprintf("Crib goes to %s%s", r.name(e.Dealer), extra)))

	case game.TurnUpEvent:
		line := fmt.Sprintf("Turn-up: %s", r.card(e.Card))
		if e.HeelsPoints > 0 {
			line += fmt.Sprintf("  %s", r.points.Render(fmt.Sprintf("his heels, %d for %s", e.HeelsPoints, r.name(e.Dealer))))
		}
		r.printf("%s\n", line)

	case game.CardPlayedEvent:
		line := fmt.Sprintf("%s plays %s for %d", r.name(e.Player), r.card(e.Card), e.Count)
		if e.Points > 0 {
			line += "  " + r.points.Render(fmt.Sprintf("+%d", e.Points))
		}
		r.printf("%s\n", line)

	case game.GoEvent:
		r.printf("%s\n", r.muted.Render(fmt.Sprintf("%s says go", r.name(e.Player))))

	case game.SubRoundEndEvent:
		var why string
		switch e.Reason {
		case game.ReasonThirtyOne:
			why = "thirty-one"
		case game.ReasonAllGo:
			why = "all go"
		case game.ReasonLastCard:
			why = "last card"
		}
		r.printf("%s %s\n",
			r.muted.Render(fmt.Sprintf("%s,", why)),
			r.points.Render(fmt.Sprintf("+%d %s", e.Bonus, r.name(e.LastPlayer))))

	case game.HandScoredEvent:
		r.printf("%s's hand %s with %s: %s\n",
			r.name(e.Player), r.cards(e.Cards), r.card(e.TurnUp),
			r.points.Render(fmt.Sprintf("%d points", e.Points)))

	case game.CribScoredEvent:
		r.printf("%s's crib %s with %s: %s\n",
			r.name(e.Dealer), r.cards(e.Cards), r.card(e.TurnUp),
			r.points.Render(fmt.Sprintf("%d points", e.Points)))

	case game.RoundEndEvent:
		r.printf("%s\n", r.muted.Render("Totals: "+r.scoreboard(e.Totals)))

	case game.GameEndEvent:
		r.printf("\n%s\n", r.header.Render(fmt.Sprintf("%s wins after %d rounds  %s",
			r.name(e.Winner), e.Rounds, r.scoreboard(e.Scores))))

	case game.GameAbandonedEvent:
		r.printf("\n%s\n", r.muted.Render(fmt.Sprintf("Game abandoned (%s)  %s", e.Reason, r.scoreboard(e.Scores))))
	}
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) name(seat int) string {
	if seat >= 0 && seat < len(r.names) {
		return r.names[seat]
	}
	return fmt.Sprintf("player %d", seat)
}

func (r *Renderer) card(c deck.Card) string {
	if c.Suit.IsRed() {
		return r.redCard.Render(c.String())
	}
	return c.String()
}

func (r *Renderer) cards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = r.card(c)
	}
	return strings.Join(parts, " ")
}

func (r *Renderer) scoreboard(scores []int) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%s %d", r.name(i), s)
	}
	return strings.Join(parts, ", ")
}
