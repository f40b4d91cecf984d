package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/muggins/cribbage/internal/config"
	"github.com/muggins/cribbage/internal/game"
	"github.com/muggins/cribbage/internal/randutil"
	"github.com/muggins/cribbage/internal/strategy"
)

// buildStrategy constructs one seat's strategy from configuration. The seed
// is mixed per seat so two random seats do not mirror each other.
func buildStrategy(p config.PlayerConfig, cfg *config.Config, seed int64, seat int, logger *log.Logger) (game.Strategy, error) {
	var s game.Strategy

	switch p.Strategy {
	case "human":
		s = strategy.NewHuman(p.Name, promptDiscard(p.Name), promptPlay(p.Name))
	case "random":
		s = strategy.NewRandom(randutil.New(seed + int64(seat)))
	case "greedy":
		s = strategy.NewGreedy()
	case "exhaustive":
		s = strategy.NewExhaustive()
	case "llm":
		llmCfg := strategy.LLMConfig{
			URL:    cfg.LLM.URL,
			Model:  cfg.LLM.Model,
			APIKey: os.Getenv(cfg.LLM.APIKeyEnv),
		}
		s = strategy.NewLLM(llmCfg, logger)
	default:
		return nil, fmt.Errorf("unknown strategy %q", p.Strategy)
	}

	if p.TimeoutMS > 0 && p.Strategy != "human" {
		s = strategy.NewTimeout(s, time.Duration(p.TimeoutMS)*time.Millisecond, quartz.NewReal(), logger)
	}
	return s, nil
}

// promptDiscard asks a human for crib discards on stdin
func promptDiscard(name string) strategy.DiscardPrompt {
	return func(req game.DiscardRequest) ([]int, error) {
		n := len(req.Hand) - req.Keep
		whose := "opponent's"
		if req.IsDealer {
			whose = "your"
		}
		fmt.Printf("\n%s, your hand:\n", name)
		for i, c := range req.Hand {
			fmt.Printf("  %d: %s\n", i, c)
		}
		fmt.Printf("Discard %d to %s crib (e.g. \"0 3\"): ", n, whose)

		line, err := readLine()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		indices := make([]int, 0, len(fields))
		for _, f := range fields {
			idx, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("not a card index: %q", f)
			}
			indices = append(indices, idx)
		}
		return indices, nil
	}
}

// promptPlay asks a human for a pegging play on stdin
func promptPlay(name string) strategy.PlayPrompt {
	return func(req game.PlayRequest) (int, error) {
		fmt.Printf("\n%s, count is %d. Your cards:\n", name, req.Count)
		for i, c := range req.Hand {
			marker := ""
			if req.Count+c.Count() > 31 {
				marker = " (too high)"
			}
			fmt.Printf("  %d: %s%s\n", i, c, marker)
		}
		fmt.Print("Play which card? (index, or \"go\"): ")

		line, err := readLine()
		if err != nil {
			return 0, err
		}
		line = strings.TrimSpace(line)
		if strings.EqualFold(line, "go") {
			return game.Pass, nil
		}
		idx, err := strconv.Atoi(line)
		if err != nil {
			return 0, fmt.Errorf("not a card index: %q", line)
		}
		return idx, nil
	}
}

var stdin = bufio.NewReader(os.Stdin)

func readLine() (string, error) {
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
