// Package plugin describes the ordered plugin activations of a site configuration.
//
// An activation is either a bare plugin identifier or an identifier paired with an
// options record. The package only carries the structure; the engine decides what
// each kind does.
package plugin

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPlugin is returned for activations naming a kind the engine cannot resolve.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Kind identifies a build-time extension.
type Kind string

const (
	SourceFilesystem       Kind = "source-filesystem"
	TransformerRemark      Kind = "transformer-remark"
	RemarkImages           Kind = "remark-images"
	RemarkResponsiveIframe Kind = "remark-responsive-iframe"
	RemarkPrismJS          Kind = "remark-prismjs"
	RemarkCopyLinkedFiles  Kind = "remark-copy-linked-files"
	RemarkSmartypants      Kind = "remark-smartypants"
	NetlifyCMS             Kind = "netlify-cms"
	DarkMode               Kind = "dark-mode"
	TransformerSharp       Kind = "transformer-sharp"
	PluginSharp            Kind = "sharp"
	Manifest               Kind = "manifest"
	ReactHelmet            Kind = "react-helmet"
	Offline                Kind = "offline"
)

var known = map[Kind]struct{}{
	SourceFilesystem:       {},
	TransformerRemark:      {},
	RemarkImages:           {},
	RemarkResponsiveIframe: {},
	RemarkPrismJS:          {},
	RemarkCopyLinkedFiles:  {},
	RemarkSmartypants:      {},
	NetlifyCMS:             {},
	DarkMode:               {},
	TransformerSharp:       {},
	PluginSharp:            {},
	Manifest:               {},
	ReactHelmet:            {},
	Offline:                {},
}

// remarkOnly kinds are valid only inside transformer-remark's plugin list.
var remarkOnly = map[Kind]struct{}{
	RemarkImages:           {},
	RemarkResponsiveIframe: {},
	RemarkPrismJS:          {},
	RemarkCopyLinkedFiles:  {},
	RemarkSmartypants:      {},
}

// ParseKind normalizes a plugin identifier. The "gatsby-" and "gatsby-plugin-"
// prefixes are accepted so configurations written for Gatsby keep working.
func ParseKind(s string) Kind {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "gatsby-")
	s = strings.TrimPrefix(s, "plugin-")
	return Kind(s)
}

// Known reports whether the engine can resolve k.
func (k Kind) Known() bool {
	_, ok := known[k]
	return ok
}

// RemarkOnly reports whether k is a transformer-remark sub-plugin.
func (k Kind) RemarkOnly() bool {
	_, ok := remarkOnly[k]
	return ok
}

func (k Kind) String() string { return string(k) }

// Activation is one entry of the plugin list.
type Activation struct {
	Kind    Kind
	Resolve string         // identifier as written in the configuration
	Options map[string]any // nil for bare activations
}

// New returns an activation for kind with the given options.
func New(kind Kind, options map[string]any) Activation {
	return Activation{Kind: kind, Resolve: string(kind), Options: options}
}

// Bare returns an activation without options.
func Bare(kind Kind) Activation {
	return Activation{Kind: kind, Resolve: string(kind)}
}

type activationDoc struct {
	Resolve string         `yaml:"resolve"`
	Options map[string]any `yaml:"options,omitempty"`
}

// UnmarshalYAML accepts either a scalar identifier or a {resolve, options} mapping.
func (a *Activation) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("line %d: empty plugin identifier", value.Line)
		}
		*a = Activation{Kind: ParseKind(name), Resolve: name}
		return nil
	case yaml.MappingNode:
		var doc activationDoc
		if err := value.Decode(&doc); err != nil {
			return err
		}
		if strings.TrimSpace(doc.Resolve) == "" {
			return fmt.Errorf("line %d: plugin entry without resolve", value.Line)
		}
		*a = Activation{Kind: ParseKind(doc.Resolve), Resolve: doc.Resolve, Options: doc.Options}
		return nil
	default:
		return fmt.Errorf("line %d: plugin entry must be a string or a mapping", value.Line)
	}
}

// MarshalYAML writes the same shape that UnmarshalYAML accepts.
func (a Activation) MarshalYAML() (any, error) {
	resolve := a.Resolve
	if resolve == "" {
		resolve = string(a.Kind)
	}
	if a.Options == nil {
		return resolve, nil
	}
	return activationDoc{Resolve: resolve, Options: a.Options}, nil
}

// Decode copies the activation options into a typed options struct.
func (a Activation) Decode(into any) error {
	if a.Options == nil {
		return nil
	}
	raw, err := yaml.Marshal(a.Options)
	if err != nil {
		return fmt.Errorf("%s: encode options: %w", a.Kind, err)
	}
	if err := yaml.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("%s: decode options: %w", a.Kind, err)
	}
	return nil
}

// List is an ordered list of activations.
type List []Activation

// Find returns the first activation of kind.
func (l List) Find(kind Kind) (Activation, bool) {
	for _, a := range l {
		if a.Kind == kind {
			return a, true
		}
	}
	return Activation{}, false
}

// FindAll returns every activation of kind in configuration order.
func (l List) FindAll(kind Kind) []Activation {
	var out []Activation
	for _, a := range l {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Has reports whether kind is activated.
func (l List) Has(kind Kind) bool {
	_, ok := l.Find(kind)
	return ok
}

// Kinds lists the activated kinds in order.
func (l List) Kinds() []Kind {
	out := make([]Kind, 0, len(l))
	for _, a := range l {
		out = append(out, a.Kind)
	}
	return out
}
