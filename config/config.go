// Package config loads intcode.toml.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Log     Log     `toml:"log"`
	API     API     `toml:"api"`
	Console Console `toml:"console"`
}

type Log struct {
	// debug, info, warn or error
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type API struct {
	ListenAddr string `toml:"listen_addr"`
	// highest memory address a served machine may write, 0 for no limit
	MaxAddress int64 `toml:"max_address"`
}

type Console struct {
	Prompt      string `toml:"prompt"`
	HistoryFile string `toml:"history_file"`
	// render output as text and send input lines as text
	ASCII bool `toml:"ascii"`
}

func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
	if c.Console.Prompt == "" {
		c.Console.Prompt = "> "
	}
}

// Load reads a TOML file. Unset fields get their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.setDefaults()

	return &c, nil
}
