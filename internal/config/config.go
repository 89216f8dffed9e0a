package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig tunes table behavior. Values absent from the file keep their
// defaults; per-match overrides arrive through Nakama match params.
type GameConfig struct {
	// TargetScore is the cumulative team score that ends a match.
	TargetScore int `json:"target_score"`
	// ChatMaxLength caps relayed chat messages, in runes.
	ChatMaxLength int `json:"chat_max_length"`

	BotsEnabled             bool `json:"bots_enabled"`
	BotMinDelaySeconds      int  `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds      int  `json:"bot_max_delay_seconds"`
	BotAutoFillDelaySeconds int  `json:"bot_auto_fill_delay_seconds"`
}

const (
	defaultTargetScore      = 50
	defaultChatMaxLength    = 256
	defaultBotMinDelay      = 1
	defaultBotMaxDelay      = 3
	defaultBotAutoFillDelay = 15
)

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path, once per
// process.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		c, err := parseGameConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

func parseGameConfig(data []byte) (*GameConfig, error) {
	c := defaultGameConfig()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if c.TargetScore <= 0 {
		c.TargetScore = defaultTargetScore
	}
	if c.ChatMaxLength <= 0 {
		c.ChatMaxLength = defaultChatMaxLength
	}
	if c.BotMinDelaySeconds <= 0 {
		c.BotMinDelaySeconds = defaultBotMinDelay
	}
	if c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		c.BotMaxDelaySeconds = c.BotMinDelaySeconds + defaultBotMaxDelay - defaultBotMinDelay
	}
	if c.BotAutoFillDelaySeconds <= 0 {
		c.BotAutoFillDelaySeconds = defaultBotAutoFillDelay
	}
	return c, nil
}

func defaultGameConfig() *GameConfig {
	return &GameConfig{
		TargetScore:             defaultTargetScore,
		ChatMaxLength:           defaultChatMaxLength,
		BotMinDelaySeconds:      defaultBotMinDelay,
		BotMaxDelaySeconds:      defaultBotMaxDelay,
		BotAutoFillDelaySeconds: defaultBotAutoFillDelay,
	}
}

// GetGameConfig returns the loaded configuration, or the defaults when no
// file was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return defaultGameConfig()
	}
	return cfg
}
