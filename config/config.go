// Package config loads a YAML description of a model's event alphabet and
// a handful of operational knobs — which events exist, which of them are
// uncontrollable, the synthcache size, the runstore path, the log level —
// following the raw-struct-then-validate YAML pattern used elsewhere in
// this codebase's configuration loaders.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/desrw/monosup/eventset"
	"github.com/desrw/monosup/eventtable"
)

// Config is a parsed and validated alphabet description plus its
// operational knobs.
type Config struct {
	Events         []string `yaml:"events"`
	Uncontrollable []string `yaml:"uncontrollable"`
	CacheSize      int      `yaml:"cacheSize"`
	RunStorePath   string   `yaml:"runStorePath"`
	LogLevel       string   `yaml:"logLevel"`
}

// Load reads and parses the YAML config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a YAML config document from data and validates that every
// name in Uncontrollable also appears in Events.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: yaml parse: %w", err)
	}
	if len(c.Events) == 0 {
		return nil, fmt.Errorf("config: events must declare at least one event")
	}

	byName := make(map[string]struct{}, len(c.Events))
	for _, name := range c.Events {
		if name == "" {
			return nil, fmt.Errorf("config: event entry must not be empty")
		}
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("config: duplicate event name %q", name)
		}
		byName[name] = struct{}{}
	}
	for _, name := range c.Uncontrollable {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("config: uncontrollable event %q is not declared in events", name)
		}
	}

	return &c, nil
}

// EventTable resolves Events into a dense eventtable.Table, assigning ids
// in declaration order.
func (c *Config) EventTable() (*eventtable.Table, error) {
	tbl := eventtable.New()
	for _, name := range c.Events {
		tbl.Register(name)
	}
	return tbl, nil
}

// UncontrollableSet resolves Uncontrollable into an eventset.Set sized to
// len(Events), using the same id assignment as EventTable.
func (c *Config) UncontrollableSet() (*eventset.Set, error) {
	tbl, err := c.EventTable()
	if err != nil {
		return nil, err
	}
	uc := eventset.New(tbl.Len())
	for _, name := range c.Uncontrollable {
		id, ok := tbl.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("config: uncontrollable event %q not found in event table", name)
		}
		uc.Set(id)
	}
	return uc, nil
}
