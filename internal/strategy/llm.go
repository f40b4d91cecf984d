package strategy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/muggins/cribbage/internal/deck"
	"github.com/muggins/cribbage/internal/game"
)

const defaultCompletionsURL = "https://api.openai.com/v1/chat/completions"

var digits = regexp.MustCompile(`-?\d+`)

// LLMConfig configures the language-model opponent
type LLMConfig struct {
	URL        string // chat-completions endpoint; defaults to OpenAI's
	Model      string
	APIKey     string
	HTTPClient *http.Client // defaults to a client with a 15s timeout
}

// LLM asks a chat-completions endpoint for moves. Replies are parsed
// leniently (first integer wins) but validated strictly; any network
// failure, malformed reply or illegal move falls back to the deterministic
// greedy strategy so a flaky model can never stall or corrupt a game.
type LLM struct {
	cfg      LLMConfig
	fallback *Greedy
	logger   *log.Logger
}

// NewLLM creates an LLM strategy
func NewLLM(cfg LLMConfig, logger *log.Logger) *LLM {
	if cfg.URL == "" {
		cfg.URL = defaultCompletionsURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &LLM{
		cfg:      cfg,
		fallback: NewGreedy(),
		logger:   logger.WithPrefix("llm").With("model", cfg.Model),
	}
}

// Name implements game.Strategy
func (l *LLM) Name() string { return "llm:" + l.cfg.Model }

// Retryable implements game.Retryable
func (l *LLM) Retryable() bool { return true }

// SelectDiscard asks the model for discard positions
func (l *LLM) SelectDiscard(req game.DiscardRequest) ([]int, error) {
	n := len(req.Hand) - req.Keep
	prompt := fmt.Sprintf(
		"You are playing cribbage. Your hand is %s (positions 0-%d). "+
			"You are %sthe dealer. Choose %d card(s) to discard to the crib. "+
			"Reply with ONLY the position number(s) separated by spaces.",
		describeHand(req.Hand), len(req.Hand)-1, dealerPrefix(req.IsDealer), n)

	text, err := l.ask(prompt)
	if err != nil {
		l.logger.Warn("falling back to greedy discard", "error", err)
		return l.fallback.SelectDiscard(req)
	}

	indices := parseInts(text, n)
	if indices == nil || !validDiscard(indices, len(req.Hand)) {
		l.logger.Warn("unusable discard reply, falling back", "reply", text)
		return l.fallback.SelectDiscard(req)
	}
	return indices, nil
}

// SelectPlay asks the model for a card position
func (l *LLM) SelectPlay(req game.PlayRequest) (int, error) {
	legal := make([]int, 0, len(req.Hand))
	for i, c := range req.Hand {
		if req.Count+c.Count() <= 31 {
			legal = append(legal, i)
		}
	}
	if len(legal) == 0 {
		return game.Pass, nil
	}

	prompt := fmt.Sprintf(
		"You are playing cribbage, in the play phase. The running count is %d. "+
			"Your hand is %s (positions 0-%d). Playing a card must not take the "+
			"count past 31. Choose ONE card position to play. Reply with ONLY the number.",
		req.Count, describeHand(req.Hand), len(req.Hand)-1)

	text, err := l.ask(prompt)
	if err != nil {
		l.logger.Warn("falling back to greedy play", "error", err)
		return l.fallback.SelectPlay(req)
	}

	indices := parseInts(text, 1)
	if indices != nil {
		for _, lg := range legal {
			if indices[0] == lg {
				return indices[0], nil
			}
		}
	}
	l.logger.Warn("unusable play reply, falling back", "reply", text)
	return l.fallback.SelectPlay(req)
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (l *LLM) ask(prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:     l.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: 50,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, l.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if l.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+l.cfg.APIKey)
	}

	resp, err := l.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completions call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("completions call: status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// parseInts extracts the first n integers from free-form model output, or
// nil when fewer are present.
func parseInts(text string, n int) []int {
	matches := digits.FindAllString(text, n)
	if len(matches) < n {
		return nil
	}
	out := make([]int, n)
	for i, m := range matches {
		v, err := strconv.Atoi(m)
		if err != nil {
			return nil
		}
		out[i] = v
	}
	return out
}

func validDiscard(indices []int, handLen int) bool {
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= handLen || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}

// describeHand renders a hand as "0:5h 1:Jd 2:Kc" for prompts
func describeHand(hand []deck.Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = fmt.Sprintf("%d:%s", i, c.Code())
	}
	return strings.Join(parts, " ")
}

func dealerPrefix(isDealer bool) string {
	if isDealer {
		return ""
	}
	return "not "
}
