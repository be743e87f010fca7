package siteconfig

import "github.com/narsaynorath/ramblings/plugin"

// Default returns the configuration the blog ships with. `ramblings new`
// writes it out as the starting site.yaml.
func Default() *Config {
	return &Config{
		Metadata: SiteMetadata{
			Title: "ramblings",
			Author: Author{
				Name:    "Nar Saynorath",
				Summary: "a software developer living in Toronto who likes to talk about things.",
			},
			Description: "A personal blog where I can write about my opinions",
			SiteURL:     "https://amazing-wozniak-829c73.netlify.app/",
			Social:      Social{GitHub: "narsaynorath"},
		},
		Plugins: plugin.List{
			plugin.New(plugin.SourceFilesystem, map[string]any{
				"path": "content/blog",
				"name": "blog",
			}),
			plugin.New(plugin.SourceFilesystem, map[string]any{
				"path": "content/assets",
				"name": "assets",
			}),
			plugin.New(plugin.TransformerRemark, map[string]any{
				"plugins": []any{
					map[string]any{
						"resolve": string(plugin.RemarkImages),
						"options": map[string]any{"maxWidth": 630},
					},
					map[string]any{
						"resolve": string(plugin.RemarkResponsiveIframe),
						"options": map[string]any{"wrapperStyle": "margin-bottom: 1.0725rem"},
					},
					string(plugin.RemarkPrismJS),
					string(plugin.RemarkCopyLinkedFiles),
					string(plugin.RemarkSmartypants),
				},
			}),
			plugin.Bare(plugin.NetlifyCMS),
			plugin.Bare(plugin.DarkMode),
			plugin.Bare(plugin.TransformerSharp),
			plugin.New(plugin.PluginSharp, map[string]any{
				"icon": "static/favicons/favicon.ico",
			}),
			plugin.New(plugin.Manifest, map[string]any{
				"name":             "ramblings",
				"short_name":       "ramblings",
				"start_url":        "/",
				"background_color": "#ffffff",
				"theme_color":      "#663399",
				"display":          "minimal-ui",
				"icon":             "static/favicons/favicon-32x32.png",
			}),
			plugin.Bare(plugin.ReactHelmet),
		},
	}
}

// Sources returns the decoded source-filesystem activations in order.
func (c *Config) Sources() ([]plugin.SourceFilesystemOptions, error) {
	var out []plugin.SourceFilesystemOptions
	for _, a := range c.Plugins.FindAll(plugin.SourceFilesystem) {
		var opts plugin.SourceFilesystemOptions
		if err := a.Decode(&opts); err != nil {
			return nil, err
		}
		out = append(out, opts)
	}
	return out, nil
}

// Source returns the source-filesystem activation registered under name.
func (c *Config) Source(name string) (plugin.SourceFilesystemOptions, bool) {
	sources, err := c.Sources()
	if err != nil {
		return plugin.SourceFilesystemOptions{}, false
	}
	for _, s := range sources {
		if s.Name == name {
			return s, true
		}
	}
	return plugin.SourceFilesystemOptions{}, false
}

// RemarkPlugins returns the sub-plugins of transformer-remark, or nil when
// markdown transformation is not activated.
func (c *Config) RemarkPlugins() (plugin.List, bool, error) {
	a, ok := c.Plugins.Find(plugin.TransformerRemark)
	if !ok {
		return nil, false, nil
	}
	var opts plugin.RemarkOptions
	if err := a.Decode(&opts); err != nil {
		return nil, true, err
	}
	return opts.Plugins, true, nil
}

// Manifest returns the manifest options when the plugin is activated.
func (c *Config) Manifest() (plugin.ManifestOptions, bool, error) {
	a, ok := c.Plugins.Find(plugin.Manifest)
	if !ok {
		return plugin.ManifestOptions{}, false, nil
	}
	var opts plugin.ManifestOptions
	if err := a.Decode(&opts); err != nil {
		return opts, true, err
	}
	return opts, true, nil
}

// Sharp returns the shared image processor options when activated.
func (c *Config) Sharp() (plugin.SharpOptions, bool, error) {
	a, ok := c.Plugins.Find(plugin.PluginSharp)
	if !ok {
		return plugin.SharpOptions{}, false, nil
	}
	var opts plugin.SharpOptions
	if err := a.Decode(&opts); err != nil {
		return opts, true, err
	}
	return opts, true, nil
}
