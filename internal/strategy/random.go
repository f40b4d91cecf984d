// Package strategy provides the player implementations that plug into the
// game's Strategy interface: random and heuristic bots, the exhaustive
// discard optimizer, scripted test sequences, a human prompt adapter and an
// LLM-backed opponent.
package strategy

import (
	rand "math/rand/v2"

	"github.com/muggins/cribbage/internal/game"
)

// Random picks uniformly among legal moves. Mostly useful as a baseline
// opponent in simulations.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a random strategy using the given RNG
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

// Name implements game.Strategy
func (r *Random) Name() string { return "random" }

// Retryable implements game.Retryable
func (r *Random) Retryable() bool { return true }

// SelectDiscard discards a uniformly random subset of the hand
func (r *Random) SelectDiscard(req game.DiscardRequest) ([]int, error) {
	indices := r.rng.Perm(len(req.Hand))
	return indices[:len(req.Hand)-req.Keep], nil
}

// SelectPlay plays a uniformly random legal card, or passes
func (r *Random) SelectPlay(req game.PlayRequest) (int, error) {
	legal := make([]int, 0, len(req.Hand))
	for i, c := range req.Hand {
		if req.Count+c.Count() <= 31 {
			legal = append(legal, i)
		}
	}
	if len(legal) == 0 {
		return game.Pass, nil
	}
	return legal[r.rng.IntN(len(legal))], nil
}
