// Package siteconfig loads the declarative site configuration: metadata plus
// the ordered list of plugin activations. It is read once when a build or the
// server starts.
package siteconfig

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/narsaynorath/ramblings/plugin"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid site configuration")

// Config is the whole site configuration document.
type Config struct {
	Metadata SiteMetadata `yaml:"siteMetadata"`
	Plugins  plugin.List  `yaml:"plugins" validate:"required,min=1"`
}

// SiteMetadata describes the site for templates, feeds and the manifest.
type SiteMetadata struct {
	Title       string `yaml:"title" validate:"required,max=200"`
	Author      Author `yaml:"author"`
	Description string `yaml:"description,omitempty"`
	SiteURL     string `yaml:"siteUrl" validate:"required,site_url"`
	Social      Social `yaml:"social,omitempty"`
}

// Author is the person the blog belongs to.
type Author struct {
	Name    string `yaml:"name" validate:"required"`
	Summary string `yaml:"summary,omitempty"`
}

// Social holds social profile identifiers.
type Social struct {
	GitHub string `yaml:"github,omitempty" validate:"omitempty,github_handle"`
}

// ParseError reports a configuration file that could not be decoded.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Load reads, decodes and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return Parse(path, data)
}

// Parse decodes and validates a configuration document. name is used in errors.
func Parse(name string, data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: name, Line: extractLine(err), Err: err}
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes cfg back into YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func extractLine(err error) int {
	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}
	line, convErr := strconv.Atoi(matches[1])
	if convErr != nil {
		return 0
	}
	return line
}
