// Package config loads game configuration from HCL files.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete game configuration
type Config struct {
	Game    GameSettings   `hcl:"game,block"`
	Players []PlayerConfig `hcl:"player,block"`
	LLM     *LLMSettings   `hcl:"llm,block"`
}

// GameSettings contains game-level configuration
type GameSettings struct {
	TargetScore int    `hcl:"target_score,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	HistoryPath string `hcl:"history_path,optional"`
	Listen      string `hcl:"listen,optional"` // spectator WebSocket address, empty disables
	ShowHands   bool   `hcl:"show_hands,optional"`
}

// PlayerConfig defines one seat
type PlayerConfig struct {
	Name      string `hcl:"name,label"`
	Strategy  string `hcl:"strategy"`
	TimeoutMS int    `hcl:"timeout_ms,optional"` // 0 means no per-decision timeout
}

// LLMSettings configures the llm strategy
type LLMSettings struct {
	URL       string `hcl:"url,optional"`
	Model     string `hcl:"model"`
	APIKeyEnv string `hcl:"api_key_env,optional"`
}

// Default returns the default configuration: two computer players to 121
func Default() *Config {
	return &Config{
		Game: GameSettings{
			TargetScore: 121,
			LogLevel:    "info",
		},
		Players: []PlayerConfig{
			{Name: "Exhaustive", Strategy: "exhaustive"},
			{Name: "Greedy", Strategy: "greedy"},
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the
// default configuration.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Game.TargetScore == 0 {
		config.Game.TargetScore = 121
	}
	if config.Game.LogLevel == "" {
		config.Game.LogLevel = "info"
	}
	if len(config.Players) == 0 {
		config.Players = Default().Players
	}
	for i := range config.Players {
		if config.Players[i].Strategy == "" {
			config.Players[i].Strategy = "greedy"
		}
	}
	if config.LLM != nil && config.LLM.APIKeyEnv == "" {
		config.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}

	return &config, nil
}

// validStrategies are the strategy names seats can be configured with
var validStrategies = map[string]bool{
	"human":      true,
	"random":     true,
	"greedy":     true,
	"exhaustive": true,
	"llm":        true,
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Game.TargetScore <= 0 {
		return fmt.Errorf("target score must be positive, got %d", c.Game.TargetScore)
	}

	if len(c.Players) < 2 || len(c.Players) > 4 {
		return fmt.Errorf("need 2-4 players, got %d", len(c.Players))
	}

	seen := make(map[string]bool, len(c.Players))
	for _, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("player name must not be empty")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate player name %q", p.Name)
		}
		seen[p.Name] = true

		if !validStrategies[p.Strategy] {
			return fmt.Errorf("player %s: invalid strategy %q", p.Name, p.Strategy)
		}
		if p.TimeoutMS < 0 {
			return fmt.Errorf("player %s: timeout must not be negative", p.Name)
		}
		if p.Strategy == "llm" && c.LLM == nil {
			return fmt.Errorf("player %s uses the llm strategy but no llm block is configured", p.Name)
		}
	}

	if c.LLM != nil && c.LLM.Model == "" {
		return fmt.Errorf("llm model must not be empty")
	}
	return nil
}

// Names returns the configured player names in seat order
func (c *Config) Names() []string {
	names := make([]string, len(c.Players))
	for i, p := range c.Players {
		names[i] = p.Name
	}
	return names
}
