package score

import "github.com/muggins/cribbage/internal/deck"

// Pegging scores the most recently played card during the play phase.
// played is every card played since the last count reset, in play order,
// ending with the card just played; count is the running count after that
// play. Three independent contributions add up:
//
//   - 2 points when the count lands exactly on 15 or 31
//   - trailing same-rank matches: pair 2, triple 6, quadruple 12
//   - the longest trailing suffix whose ranks form a consecutive run,
//     scored once at its full length
func Pegging(played []deck.Card, count int) int {
	total := 0

	if count == 15 || count == 31 {
		total += 2
	}

	total += trailingMatches(played)
	total += trailingRun(played)

	return total
}

func trailingMatches(played []deck.Card) int {
	if len(played) < 2 {
		return 0
	}
	last := played[len(played)-1].Rank
	matches := 1
	for i := len(played) - 2; i >= 0 && played[i].Rank == last; i-- {
		matches++
	}
	switch matches {
	case 2:
		return 2
	case 3:
		return 6
	case 4:
		return 12
	default:
		return 0
	}
}

// trailingRun scans suffixes from longest to shortest and scores the first
// one whose ranks are consecutive. A shorter run embedded in the winning
// suffix scores nothing extra.
func trailingRun(played []deck.Card) int {
	for length := len(played); length >= 3; length-- {
		ranks := make([]int, 0, length)
		for _, c := range played[len(played)-length:] {
			ranks = append(ranks, int(c.Rank))
		}
		if isRun(ranks) {
			return length
		}
	}
	return 0
}
