package main

import (
	"context"
	"fmt"

	"github.com/muggins/cribbage/internal/history"
)

// HistoryCmd lists recorded games from the history database
type HistoryCmd struct {
	DB string `default:"cribbage.db" help:"Path to the history database"`
}

func (c *HistoryCmd) Run() error {
	rec, err := history.Open(c.DB)
	if err != nil {
		return err
	}
	defer func() { _ = rec.Close() }()

	games, err := rec.Games(context.Background())
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Println("No recorded games.")
		return nil
	}

	for _, g := range games {
		line := fmt.Sprintf("#%d  %s  to %d  %s",
			g.ID, g.StartedAt.Local().Format("2006-01-02 15:04"), g.TargetScore, g.Completion)
		if g.Completion == history.CompletionCompleted {
			line += fmt.Sprintf("  winner seat %d  scores %v", g.Winner, g.FinalScores)
		} else if len(g.FinalScores) > 0 {
			line += fmt.Sprintf("  scores %v", g.FinalScores)
		}
		fmt.Println(line)
	}
	return nil
}
