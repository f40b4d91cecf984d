// Package statistics aggregates batch self-play results: per-seat win
// rates, victory margins and skunk counts, with enough distribution math to
// judge whether one strategy actually beats another.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// Skunk thresholds for a standard 121-point game. A loser under 91 is
// skunked; under 61, double-skunked.
const (
	SkunkLine       = 91
	DoubleSkunkLine = 61
)

// GameResult is the outcome of one simulated game
type GameResult struct {
	Winner      int   // winning seat
	Scores      []int // final scores by seat
	Rounds      int   // rounds played
	Seed        int64 // RNG seed for replay
	FirstDealer int   // seat that dealt the first round
}

// SeatStats tracks per-seat aggregates
type SeatStats struct {
	Games        int // games where this seat participated
	Wins         int
	DealtFirst   int // games where this seat dealt first
	WinsAsDealer int // wins when this seat dealt first
	SumScore     float64
	Skunks       int // wins where some loser was skunked
	DoubleSkunks int
}

// Statistics aggregates simulated game results
type Statistics struct {
	Games   int
	Rounds  int       // total rounds across all games
	Margins []float64 // winner score minus best losing score, per game

	sumMargin  float64
	sumMargin2 float64

	Seats []SeatStats // indexed by seat
}

// New creates statistics for the given number of seats
func New(seats int) *Statistics {
	return &Statistics{Seats: make([]SeatStats, seats)}
}

// Add incorporates one game result
func (s *Statistics) Add(result GameResult) {
	s.Games++
	s.Rounds += result.Rounds

	bestLoser := 0
	for seat, score := range result.Scores {
		s.Seats[seat].Games++
		s.Seats[seat].SumScore += float64(score)
		if seat != result.Winner && score > bestLoser {
			bestLoser = score
		}
	}

	margin := float64(result.Scores[result.Winner] - bestLoser)
	s.Margins = append(s.Margins, margin)
	s.sumMargin += margin
	s.sumMargin2 += margin * margin

	w := &s.Seats[result.Winner]
	w.Wins++
	for seat, score := range result.Scores {
		if seat == result.Winner {
			continue
		}
		if score < DoubleSkunkLine {
			w.DoubleSkunks++
		} else if score < SkunkLine {
			w.Skunks++
		}
	}

	s.Seats[result.FirstDealer].DealtFirst++
	if result.FirstDealer == result.Winner {
		s.Seats[result.FirstDealer].WinsAsDealer++
	}
}

// WinRate returns the fraction of games the seat won
func (s *Statistics) WinRate(seat int) float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Seats[seat].Wins) / float64(s.Games)
}

// MeanScore returns the seat's mean final score
func (s *Statistics) MeanScore(seat int) float64 {
	st := s.Seats[seat]
	if st.Games == 0 {
		return 0
	}
	return st.SumScore / float64(st.Games)
}

// MeanRounds returns the mean rounds per game
func (s *Statistics) MeanRounds() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Rounds) / float64(s.Games)
}

// MeanMargin returns the mean victory margin
func (s *Statistics) MeanMargin() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.sumMargin / float64(s.Games)
}

// Variance returns the sample variance of victory margins
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.MeanMargin()
	return (s.sumMargin2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of victory margins
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean margin
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// WinRateInterval95 returns a 95% confidence interval for the seat's win
// rate using a normal approximation.
func (s *Statistics) WinRateInterval95(seat int) (float64, float64) {
	if s.Games == 0 {
		return 0, 0
	}
	p := s.WinRate(seat)
	margin := 1.96 * math.Sqrt(p*(1-p)/float64(s.Games))
	return math.Max(0, p-margin), math.Min(1, p+margin)
}

// MedianMargin returns the median victory margin
func (s *Statistics) MedianMargin() float64 {
	if len(s.Margins) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Margins))
	copy(sorted, s.Margins)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// MarginPercentile returns the victory margin at the given percentile
// (0.0 to 1.0), linearly interpolated.
func (s *Statistics) MarginPercentile(p float64) float64 {
	if len(s.Margins) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Margins))
	copy(sorted, s.Margins)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the aggregate for internal consistency
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid game count: %d", s.Games)
	}
	if len(s.Margins) != s.Games {
		return fmt.Errorf("margin count (%d) does not match game count (%d)", len(s.Margins), s.Games)
	}

	wins, dealtFirst := 0, 0
	for _, seat := range s.Seats {
		wins += seat.Wins
		dealtFirst += seat.DealtFirst
		if seat.Games != s.Games {
			return fmt.Errorf("seat played %d of %d games", seat.Games, s.Games)
		}
		if seat.WinsAsDealer > seat.Wins {
			return fmt.Errorf("dealer wins (%d) exceed total wins (%d)", seat.WinsAsDealer, seat.Wins)
		}
	}
	if wins != s.Games {
		return fmt.Errorf("total wins (%d) do not match game count (%d)", wins, s.Games)
	}
	if dealtFirst != s.Games {
		return fmt.Errorf("first-dealer total (%d) does not match game count (%d)", dealtFirst, s.Games)
	}
	return nil
}
