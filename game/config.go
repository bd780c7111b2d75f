package game

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"pokertable.io/server/poker"
)

type TableConfig struct {
	MaxPlayers           int `yaml:"maxPlayers"`
	MinPlayers           int `yaml:"minPlayers"`
	TableCacheSize       int `yaml:"tableCacheSize"`
	ScoringAttempts      int `yaml:"scoringAttempts"`
	ScoringRetryMillis   int `yaml:"scoringRetryMillis"`
	ScoringTimeoutMillis int `yaml:"scoringTimeoutMillis"`

	// a player who folded may only fold again until the next stage
	FoldedStaysFolded bool `yaml:"foldedStaysFolded"`
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MaxPlayers:           3,
		MinPlayers:           2,
		TableCacheSize:       10000,
		ScoringAttempts:      3,
		ScoringRetryMillis:   200,
		ScoringTimeoutMillis: 2000,
	}
}

// ParseTableConfig reads a YAML table config. Keys missing from the file
// keep their default values.
func ParseTableConfig(configFile string) (TableConfig, error) {
	bytes, err := ioutil.ReadFile(configFile)
	if err != nil {
		return TableConfig{}, errors.Wrap(err, fmt.Sprintf("Error reading table config file [%s]", configFile))
	}

	data := DefaultTableConfig()
	err = yaml.Unmarshal(bytes, &data)
	if err != nil {
		return TableConfig{}, errors.Wrap(err, fmt.Sprintf("Error parsing table config YAML file [%s]", configFile))
	}

	if err := data.Validate(); err != nil {
		return TableConfig{}, errors.Wrap(err, fmt.Sprintf("Invalid table config file [%s]", configFile))
	}
	return data, nil
}

func (c TableConfig) Validate() error {
	if c.MinPlayers < 2 {
		return fmt.Errorf("minPlayers must be at least 2, got %d", c.MinPlayers)
	}
	if c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("maxPlayers (%d) must not be less than minPlayers (%d)", c.MaxPlayers, c.MinPlayers)
	}
	if needed := c.MaxPlayers*PocketCardsPerPlayer + MaxCommunityCards; needed > poker.NumCards {
		return fmt.Errorf("maxPlayers %d needs %d cards, more than a deck holds", c.MaxPlayers, needed)
	}
	if c.TableCacheSize <= 0 {
		return fmt.Errorf("tableCacheSize must be positive, got %d", c.TableCacheSize)
	}
	if c.ScoringAttempts <= 0 {
		return fmt.Errorf("scoringAttempts must be positive, got %d", c.ScoringAttempts)
	}
	return nil
}

func (c TableConfig) ScoringRetryInterval() time.Duration {
	return time.Duration(c.ScoringRetryMillis) * time.Millisecond
}

func (c TableConfig) ScoringTimeout() time.Duration {
	return time.Duration(c.ScoringTimeoutMillis) * time.Millisecond
}
