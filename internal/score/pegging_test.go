package score

import (
	"testing"

	"github.com/muggins/cribbage/internal/deck"
)

func TestPegging(t *testing.T) {
	tests := []struct {
		name   string
		played string
		count  int
		want   int
	}{
		{
			name:   "single card",
			played: "7h",
			count:  7,
			want:   0,
		},
		{
			name:   "fifteen",
			played: "7h8d",
			count:  15,
			want:   2,
		},
		{
			name:   "thirty one",
			played: "KhQdJsAc",
			count:  31,
			want:   2,
		},
		{
			name:   "pair",
			played: "Th5h5d",
			count:  20,
			want:   2,
		},
		{
			name:   "pair making fifteen",
			played: "5h5d5s",
			count:  15,
			want:   8, // trips 6 + fifteen 2
		},
		{
			name:   "quadruple",
			played: "6h6d6s6c",
			count:  24,
			want:   12,
		},
		{
			name:   "run of three",
			played: "5h6d7s",
			count:  18,
			want:   3,
		},
		{
			name:   "run of three out of order",
			played: "7s5h6d",
			count:  18,
			want:   3,
		},
		{
			name:   "run of four scores only four",
			played: "5h6d7s8c",
			count:  26,
			want:   4,
		},
		{
			name:   "run of four with leading card out of order",
			played: "9c6h7d8s",
			count:  30,
			want:   4,
		},
		{
			// The king sits inside every suffix of three or more, so the
			// 6-7 tail never reaches run length.
			name:   "run broken by interloper",
			played: "5hKd6s7c",
			count:  28,
			want:   0,
		},
		{
			// Last three are 7-7-8: the duplicate kills the run.
			name:   "duplicate rank breaks the suffix",
			played: "6h7d7s8c",
			count:  28,
			want:   0,
		},
		{
			name:   "run and fifteen together",
			played: "4h5d6s",
			count:  15,
			want:   5,
		},
		{
			name:   "no trailing score after earlier pair",
			played: "7h7d8s",
			count:  22,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			played := deck.MustParseCards(tt.played)
			if got := Pegging(played, tt.count); got != tt.want {
				t.Errorf("Pegging(%s, %d) = %d, want %d", tt.played, tt.count, got, tt.want)
			}
		})
	}
}
