package game

import "github.com/muggins/cribbage/internal/deck"

// Pass is returned from SelectPlay when the player says "Go".
const Pass = -1

// DiscardRequest is the read-only state handed to a strategy when crib
// cards are chosen.
type DiscardRequest struct {
	Hand     []deck.Card // snapshot of the player's dealt hand
	Keep     int         // how many cards must remain after discarding
	IsDealer bool        // whether the discards land in the player's own crib
}

// PlayRequest is the read-only state handed to a strategy during the play
// phase.
type PlayRequest struct {
	Hand   []deck.Card // snapshot of the player's remaining cards
	Count  int         // running count before the play
	InPlay []deck.Card // cards played since the last reset, in play order
	TurnUp deck.Card
}

// Strategy makes decisions for a player. Implementations receive immutable
// snapshots and return positions into them; the round owns all state
// mutation and validates every proposal before applying it.
type Strategy interface {
	// Name identifies the strategy in events, logs and statistics.
	Name() string

	// SelectDiscard returns the hand positions to discard to the crib.
	// len(result) must equal len(req.Hand) - req.Keep.
	SelectDiscard(req DiscardRequest) ([]int, error)

	// SelectPlay returns the hand position of the card to play, or Pass
	// when no card can legally be played.
	SelectPlay(req PlayRequest) (int, error)
}

// Retryable marks strategies that may be re-queried after an invalid
// proposal (humans mistype, language models hallucinate). Strategies
// without it — scripted test sequences — fail hard instead, since their
// move data is presumed correct.
type Retryable interface {
	Retryable() bool
}

func canRetry(s Strategy) bool {
	r, ok := s.(Retryable)
	return ok && r.Retryable()
}

// Player binds a seat to a strategy and holds the per-round card piles.
type Player struct {
	Index    int
	Name     string
	Strategy Strategy
	Hand     *deck.Hand
	Played   *deck.Hand // cards played this round, accumulated for hand scoring
}

// NewPlayer creates a player for the given seat
func NewPlayer(index int, name string, strategy Strategy) *Player {
	return &Player{
		Index:    index,
		Name:     name,
		Strategy: strategy,
		Hand:     deck.NewHand(),
		Played:   deck.NewHand(),
	}
}

// ResetForRound clears the player's card piles for a fresh round
func (p *Player) ResetForRound() {
	p.Hand.Reset()
	p.Played.Reset()
}
