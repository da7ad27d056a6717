package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/freeze"
	"github.com/fwojciec/freeze/crawl"
	freezehttp "github.com/fwojciec/freeze/http"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the resolved build configuration.
type Config struct {
	Server       string         `yaml:"server" validate:"required,url"`
	Out          string         `yaml:"out" validate:"required"`
	Base         string         `yaml:"base" validate:"omitempty,startswith=/"`
	Routes       []string       `yaml:"routes" validate:"min=1,dive,startswith=/"`
	Discover     DiscoverConfig `yaml:"discover"`
	MaxResources int            `yaml:"maxResources" validate:"gte=0"`
	Timeout      time.Duration  `yaml:"timeout" validate:"gt=0"`
	Concurrency  int            `yaml:"concurrency" validate:"gte=1,lte=64"`
	RPS          float64        `yaml:"rps" validate:"gte=0"`
	Retries      int            `yaml:"retries" validate:"gte=0,lte=10"`
	UserAgent    string         `yaml:"userAgent" validate:"required"`
	Sitemap      bool           `yaml:"sitemap"`
	Robots       bool           `yaml:"robots"`
	Markdown     bool           `yaml:"markdown"`
}

// DiscoverConfig is either a boolean or a discovery policy in YAML:
//
//	discover: false
//	discover:
//	  maxDepth: 3
//	  ignore: ["/admin/*"]
type DiscoverConfig struct {
	Enabled bool
	Policy  freeze.DiscoverPolicy
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DiscoverConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&d.Enabled)
	}
	d.Enabled = true
	return node.Decode(&d.Policy)
}

// PolicyOrNil returns the policy when discovery is enabled.
func (d DiscoverConfig) PolicyOrNil() *freeze.DiscoverPolicy {
	if !d.Enabled {
		return nil
	}
	p := d.Policy
	return &p
}

// DefaultConfig returns the configuration used when neither a file nor a
// flag sets a field.
func DefaultConfig() *Config {
	return &Config{
		Out:         "dist",
		Routes:      []string{"/"},
		Discover:    DiscoverConfig{Enabled: true},
		Timeout:     10 * time.Second,
		Concurrency: 4,
		UserAgent:   freezehttp.DefaultUserAgent,
	}
}

// LoadConfigFile decodes the YAML file at path over cfg. Unknown keys are
// rejected.
func LoadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return freeze.Errorf(freeze.EINVALID, "config %s: %v", path, err)
	}
	return nil
}

var validate = validator.New()

// Validate checks struct tags and the discovery policy.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return freeze.Errorf(freeze.EINVALID, "invalid config: %s", strings.Join(msgs, ", "))
		}
		return err
	}
	if err := (freeze.Server{Origin: c.Server}).Validate(); err != nil {
		return err
	}
	if _, err := crawl.NewPolicy(c.Discover.Policy); err != nil {
		return err
	}
	return nil
}

// Resolve layers defaults, the config file and explicitly set flags.
func (c *BuildCmd) Resolve() (*Config, error) {
	cfg := DefaultConfig()
	if c.Config != "" {
		if err := LoadConfigFile(c.Config, cfg); err != nil {
			return nil, err
		}
	}

	if c.Server != "" {
		cfg.Server = c.Server
	}
	if c.Out != "" {
		cfg.Out = c.Out
	}
	if c.Base != "" {
		cfg.Base = c.Base
	}
	if len(c.Route) > 0 {
		cfg.Routes = c.Route
	}
	if c.NoDiscover {
		cfg.Discover.Enabled = false
	}
	if c.MaxDepth >= 0 {
		depth := c.MaxDepth
		cfg.Discover.Policy.MaxDepth = &depth
	}
	if len(c.Ignore) > 0 {
		cfg.Discover.Policy.Ignore = append(cfg.Discover.Policy.Ignore, c.Ignore...)
	}
	if c.MaxResources > 0 {
		cfg.MaxResources = c.MaxResources
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if c.Concurrency > 0 {
		cfg.Concurrency = c.Concurrency
	}
	if c.RPS > 0 {
		cfg.RPS = c.RPS
	}
	if c.Retries > 0 {
		cfg.Retries = c.Retries
	}
	cfg.Sitemap = cfg.Sitemap || c.Sitemap
	cfg.Robots = cfg.Robots || c.Robots
	cfg.Markdown = cfg.Markdown || c.Markdown

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
