package strategy

import (
	"sort"

	"github.com/muggins/cribbage/internal/game"
)

// Greedy uses cheap heuristics: discard the lowest-counting cards and play
// the highest legal card. Deterministic, so it also serves as the fallback
// when a slower or flakier strategy fails.
type Greedy struct{}

// NewGreedy creates a greedy strategy
func NewGreedy() *Greedy {
	return &Greedy{}
}

// Name implements game.Strategy
func (g *Greedy) Name() string { return "greedy" }

// Retryable implements game.Retryable
func (g *Greedy) Retryable() bool { return true }

// SelectDiscard discards the lowest-counting cards
func (g *Greedy) SelectDiscard(req game.DiscardRequest) ([]int, error) {
	indices := make([]int, len(req.Hand))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return req.Hand[indices[a]].Count() < req.Hand[indices[b]].Count()
	})
	return indices[:len(req.Hand)-req.Keep], nil
}

// SelectPlay plays the highest-counting legal card, or passes
func (g *Greedy) SelectPlay(req game.PlayRequest) (int, error) {
	best := game.Pass
	bestCount := -1
	for i, c := range req.Hand {
		if req.Count+c.Count() <= 31 && c.Count() > bestCount {
			best = i
			bestCount = c.Count()
		}
	}
	return best, nil
}
