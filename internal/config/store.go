package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/your-org/var-trade-bot/pkg/logger"
)

// Store is the bot configuration store: a registry file mapping bot names
// to per-bot JSON records, each replaced wholesale on save. Single writer
// per bot is assumed; there is no merge.
type Store struct {
	registryPath string
}

// NewStore creates a Store over the given registry file.
func NewStore(registryPath string) *Store {
	return &Store{registryPath: registryPath}
}

// List returns the bot name -> config path registry mapping.
func (s *Store) List() (map[string]string, error) {
	raw, err := os.ReadFile(s.registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot registry %s: %w", s.registryPath, err)
	}
	paths := make(map[string]string)
	if err := json.Unmarshal(raw, &paths); err != nil {
		return nil, fmt.Errorf("failed to parse bot registry %s: %w", s.registryPath, err)
	}
	return paths, nil
}

// Load reads one bot record from its config path.
func (s *Store) Load(path string) (*BotConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot config %s: %w", path, err)
	}
	bot := &BotConfig{}
	if err := json.Unmarshal(raw, bot); err != nil {
		return nil, fmt.Errorf("failed to parse bot config %s: %w", path, err)
	}
	bot.ConfigPath = path
	return bot, nil
}

// LoadAll loads every registered bot. Bots whose record is unreadable are
// logged and skipped; an error is returned only when no bot loads at all.
func (s *Store) LoadAll() ([]*BotConfig, error) {
	paths, err := s.List()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	bots := make([]*BotConfig, 0, len(names))
	for _, name := range names {
		bot, err := s.Load(paths[name])
		if err != nil {
			logger.Errorf("Skipping bot %s: %v", name, err)
			continue
		}
		if bot.Name == "" {
			bot.Name = name
		}
		bots = append(bots, bot)
	}
	if len(bots) == 0 {
		return nil, fmt.Errorf("no loadable bot configs in registry %s", s.registryPath)
	}
	return bots, nil
}

// Save replaces the bot's stored record with the in-memory one.
// Last writer wins.
func (s *Store) Save(bot *BotConfig) error {
	if bot.ConfigPath == "" {
		return fmt.Errorf("bot %s has no config path", bot.Name)
	}
	raw, err := json.MarshalIndent(bot, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal bot config %s: %w", bot.Name, err)
	}
	if err := os.WriteFile(bot.ConfigPath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write bot config %s: %w", bot.ConfigPath, err)
	}
	return nil
}
