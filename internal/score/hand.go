// Package score implements cribbage scoring as pure functions over card
// values. Nothing here mutates its inputs, so the exhaustive discard search
// can call these repeatedly during lookahead.
package score

import (
	"math/bits"
	"sort"

	"github.com/muggins/cribbage/internal/deck"
)

// Hand scores a player's hand against the turn-up: fifteens, pairs, runs,
// flush and nobs. The flush needs only the hand's own cards to share a suit
// (the turn-up adds a fifth point when it matches).
func Hand(cards []deck.Card, turnUp deck.Card) int {
	return count(cards, turnUp, false)
}

// Crib scores the crib against the turn-up. Identical to Hand except the
// flush must include the turn-up: four matching crib cards alone score
// nothing.
func Crib(cards []deck.Card, turnUp deck.Card) int {
	return count(cards, turnUp, true)
}

func count(cards []deck.Card, turnUp deck.Card, strictFlush bool) int {
	all := make([]deck.Card, len(cards), len(cards)+1)
	copy(all, cards)
	all = append(all, turnUp)

	total := fifteens(all) + pairs(all) + runs(all)

	// Flush: the hand's own cards must share a suit. The crib variant also
	// requires the turn-up to match before anything is scored.
	flush := len(cards) > 0
	for _, c := range cards {
		if c.Suit != cards[0].Suit {
			flush = false
			break
		}
	}
	if flush {
		switch {
		case turnUp.Suit == cards[0].Suit:
			total += len(cards) + 1
		case !strictFlush:
			total += len(cards)
		}
	}

	// Nobs: a Jack in hand matching the turn-up's suit.
	for _, c := range cards {
		if c.Rank == deck.Jack && c.Suit == turnUp.Suit {
			total++
			break
		}
	}

	return total
}

// fifteens awards 2 points for every subset of 2+ cards whose counting
// values sum to exactly 15.
func fifteens(all []deck.Card) int {
	total := 0
	for mask := 1; mask < 1<<len(all); mask++ {
		sum, size := 0, 0
		for i, c := range all {
			if mask&(1<<i) != 0 {
				sum += c.Count()
				size++
			}
		}
		if size >= 2 && sum == 15 {
			total += 2
		}
	}
	return total
}

// pairs awards 2 points per same-rank pair. Counting pairwise means trips
// and quads fall out as 6 and 12 without a separate table.
func pairs(all []deck.Card) int {
	total := 0
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[i].Rank == all[j].Rank {
				total += 2
			}
		}
	}
	return total
}

// runs finds the longest run length L >= 3 present in any subset and awards
// L points for every distinct subset of exactly that size forming a run.
// Shorter runs embedded in a longer one score nothing, but duplicated ranks
// yield multiple qualifying subsets (the classic double run).
func runs(all []deck.Card) int {
	for length := len(all); length >= 3; length-- {
		matches := 0
		for mask := 1; mask < 1<<len(all); mask++ {
			if bits.OnesCount(uint(mask)) != length {
				continue
			}
			ranks := make([]int, 0, length)
			for i, c := range all {
				if mask&(1<<i) != 0 {
					ranks = append(ranks, int(c.Rank))
				}
			}
			if isRun(ranks) {
				matches++
			}
		}
		if matches > 0 {
			return length * matches
		}
	}
	return 0
}

// isRun reports whether the ranks form a consecutive, gap-free sequence.
// Duplicate ranks break the sequence.
func isRun(ranks []int) bool {
	sort.Ints(ranks)
	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]+1 {
			return false
		}
	}
	return true
}
