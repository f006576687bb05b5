package theme

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog maps tickers to tracked trend themes, loaded once at startup
// from a YAML file. Lookups are read-only and safe for concurrent use.
// File order defines priority: a ticker listed under several themes
// keeps the first one.
type Catalog struct {
	names   []string
	tags    map[string]string
	tickers map[string][]string
}

type catalogFile struct {
	Themes []struct {
		Name    string   `yaml:"name"`
		Tickers []string `yaml:"tickers"`
	} `yaml:"themes"`
}

// Load reads and validates the theme catalog
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse theme catalog: %w", err)
	}
	if len(file.Themes) == 0 {
		return nil, fmt.Errorf("theme catalog is empty: %s", path)
	}

	c := &Catalog{
		tags:    make(map[string]string),
		tickers: make(map[string][]string),
	}
	for _, th := range file.Themes {
		if th.Name == "" {
			return nil, fmt.Errorf("theme entry without name: %s", path)
		}
		c.names = append(c.names, th.Name)
		c.tickers[th.Name] = th.Tickers
		for _, ticker := range th.Tickers {
			if _, seen := c.tags[ticker]; !seen {
				c.tags[ticker] = th.Name
			}
		}
	}
	return c, nil
}

// GetTag returns the theme name for a ticker, or "" when untagged
func (c *Catalog) GetTag(ticker string) string {
	return c.tags[ticker]
}

// Names returns theme names in file order
func (c *Catalog) Names() []string {
	return c.names
}

// Tickers returns the tickers tracked under one theme
func (c *Catalog) Tickers(name string) []string {
	return c.tickers[name]
}

// AllTickers returns the deduplicated set of every tracked ticker
func (c *Catalog) AllTickers() []string {
	out := make([]string, 0, len(c.tags))
	for ticker := range c.tags {
		out = append(out, ticker)
	}
	return out
}
