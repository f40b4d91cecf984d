package strategy

import (
	"github.com/muggins/cribbage/internal/deck"
	"github.com/muggins/cribbage/internal/game"
	"github.com/muggins/cribbage/internal/score"
)

// Exhaustive chooses crib discards by brute force: for every way of keeping
// the required cards it sums the hand score over all 46 unseen turn-up
// candidates and keeps the combination with the highest total. Ties resolve
// to the earliest combination in lexicographic position order, making the
// choice deterministic. During the play phase it falls back to greedy play.
type Exhaustive struct {
	greedy Greedy
}

// NewExhaustive creates an exhaustive-search strategy
func NewExhaustive() *Exhaustive {
	return &Exhaustive{}
}

// Name implements game.Strategy
func (e *Exhaustive) Name() string { return "exhaustive" }

// Retryable implements game.Retryable
func (e *Exhaustive) Retryable() bool { return true }

// SelectDiscard returns the discard set whose kept complement has the
// highest expected hand value over all possible turn-ups.
func (e *Exhaustive) SelectDiscard(req game.DiscardRequest) ([]int, error) {
	unseen := deck.Unseen(req.Hand)

	var bestKeep []int
	bestTotal := -1

	kept := make([]deck.Card, req.Keep)
	for _, keep := range combinations(len(req.Hand), req.Keep) {
		for i, idx := range keep {
			kept[i] = req.Hand[idx]
		}
		total := 0
		for _, turnUp := range unseen {
			total += score.Hand(kept, turnUp)
		}
		if total > bestTotal {
			bestTotal = total
			bestKeep = append(bestKeep[:0], keep...)
		}
	}

	return complement(bestKeep, len(req.Hand)), nil
}

// SelectPlay plays greedily; the exhaustive search only informs discards
func (e *Exhaustive) SelectPlay(req game.PlayRequest) (int, error) {
	return e.greedy.SelectPlay(req)
}

// combinations returns all k-element index subsets of [0,n) in
// lexicographic order.
func combinations(n, k int) [][]int {
	var out [][]int
	combo := make([]int, k)
	var build func(start, pos int)
	build = func(start, pos int) {
		if pos == k {
			out = append(out, append([]int(nil), combo...))
			return
		}
		for i := start; i <= n-(k-pos); i++ {
			combo[pos] = i
			build(i+1, pos+1)
		}
	}
	build(0, 0)
	return out
}

// complement returns the indices of [0,n) not present in keep, ascending
func complement(keep []int, n int) []int {
	kept := make(map[int]bool, len(keep))
	for _, i := range keep {
		kept[i] = true
	}
	out := make([]int, 0, n-len(keep))
	for i := 0; i < n; i++ {
		if !kept[i] {
			out = append(out, i)
		}
	}
	return out
}
