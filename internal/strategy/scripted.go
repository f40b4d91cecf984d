package strategy

import (
	"errors"

	"github.com/muggins/cribbage/internal/game"
)

// ErrScriptExhausted is returned when a scripted strategy runs out of moves
var ErrScriptExhausted = errors.New("scripted strategy: move sequence exhausted")

// Scripted replays a fixed sequence of hand positions, for tests and
// deterministic scenarios. Discards consume one position per discarded
// card; plays consume one position each, with game.Pass (-1) for a Go.
// It is deliberately not retryable: an invalid scripted move means the
// script itself is wrong, which must surface as a hard error.
type Scripted struct {
	moves []int
	pos   int
}

// NewScripted creates a scripted strategy from the given move sequence
func NewScripted(moves ...int) *Scripted {
	return &Scripted{moves: moves}
}

// Name implements game.Strategy
func (s *Scripted) Name() string { return "scripted" }

// SelectDiscard pops one scripted position per required discard
func (s *Scripted) SelectDiscard(req game.DiscardRequest) ([]int, error) {
	n := len(req.Hand) - req.Keep
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		move, err := s.next()
		if err != nil {
			return nil, err
		}
		out = append(out, move)
	}
	return out, nil
}

// SelectPlay pops the next scripted position
func (s *Scripted) SelectPlay(req game.PlayRequest) (int, error) {
	return s.next()
}

func (s *Scripted) next() (int, error) {
	if s.pos >= len(s.moves) {
		return 0, ErrScriptExhausted
	}
	move := s.moves[s.pos]
	s.pos++
	return move, nil
}
