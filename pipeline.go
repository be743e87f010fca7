package ramblings

import (
	"fmt"
	"path/filepath"

	"github.com/narsaynorath/ramblings/content"
	"github.com/narsaynorath/ramblings/markdown"
	"github.com/narsaynorath/ramblings/plugin"
	"github.com/narsaynorath/ramblings/siteconfig"
)

// Well-known source names.
const (
	BlogSource   = "blog"
	AssetsSource = "assets"
)

// Pipeline is the plugin list resolved into components. Fields stay zero for
// plugins that are not activated.
type Pipeline struct {
	Sources  []content.Source
	Renderer *markdown.Renderer // transformer-remark

	// ProcessImages resizes images referenced from posts (transformer-sharp).
	// Without it they are copied as they are.
	ProcessImages bool
	Sharp         *plugin.SharpOptions    // plugin-sharp
	Manifest      *plugin.ManifestOptions // manifest

	DarkMode bool // dark-mode
	CMS      bool // netlify-cms
	Helmet   bool // react-helmet
	Offline  bool // offline, accepted and inert
}

// Resolve binds every activation of cfg to its component. Source paths and
// icons are resolved against root.
func Resolve(cfg *siteconfig.Config, root string) (*Pipeline, error) {
	if err := siteconfig.Validate(cfg); err != nil {
		return nil, err
	}
	p := &Pipeline{}
	for _, a := range cfg.Plugins {
		switch a.Kind {
		case plugin.SourceFilesystem:
			var o plugin.SourceFilesystemOptions
			if err := a.Decode(&o); err != nil {
				return nil, fmt.Errorf("%s: %w", a.Resolve, err)
			}
			p.Sources = append(p.Sources, content.Source{
				Name:   o.Name,
				Path:   resolvePath(root, o.Path),
				Ignore: o.Ignore,
			})
		case plugin.TransformerRemark:
			var o plugin.RemarkOptions
			if err := a.Decode(&o); err != nil {
				return nil, fmt.Errorf("%s: %w", a.Resolve, err)
			}
			opts, err := markdown.FromPlugins(o.Plugins)
			if err != nil {
				return nil, err
			}
			p.Renderer = markdown.New(opts)
		case plugin.TransformerSharp:
			p.ProcessImages = true
		case plugin.PluginSharp:
			var o plugin.SharpOptions
			if err := a.Decode(&o); err != nil {
				return nil, fmt.Errorf("%s: %w", a.Resolve, err)
			}
			if o.Icon != "" {
				o.Icon = resolvePath(root, o.Icon)
			}
			p.Sharp = &o
		case plugin.Manifest:
			var o plugin.ManifestOptions
			if err := a.Decode(&o); err != nil {
				return nil, fmt.Errorf("%s: %w", a.Resolve, err)
			}
			p.Manifest = &o
		case plugin.DarkMode:
			p.DarkMode = true
		case plugin.NetlifyCMS:
			p.CMS = true
		case plugin.ReactHelmet:
			p.Helmet = true
		case plugin.Offline:
			p.Offline = true
		default:
			return nil, fmt.Errorf("%s: %w", a.Resolve, plugin.ErrUnknownPlugin)
		}
	}
	return p, nil
}

// Source returns the source registered under name.
func (p *Pipeline) Source(name string) (content.Source, bool) {
	for _, s := range p.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return content.Source{}, false
}

// PostSources are the sources whose markdown documents become posts: every
// source except the shared assets directory.
func (p *Pipeline) PostSources() []content.Source {
	var out []content.Source
	for _, s := range p.Sources {
		if s.Name != AssetsSource {
			out = append(out, s)
		}
	}
	return out
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}
