package plugin

// SourceFilesystemOptions configure a content source directory.
type SourceFilesystemOptions struct {
	Path   string   `yaml:"path" validate:"required"`
	Name   string   `yaml:"name" validate:"required"`
	Ignore []string `yaml:"ignore,omitempty"`
}

// RemarkOptions configure the markdown transformer and its sub-plugins.
type RemarkOptions struct {
	Plugins List `yaml:"plugins,omitempty"`
}

// RemarkImagesOptions constrain images referenced from markdown.
type RemarkImagesOptions struct {
	MaxWidth int `yaml:"maxWidth" validate:"omitempty,min=1,max=8192"`
}

// ResponsiveIframeOptions style the wrapper placed around embedded iframes.
type ResponsiveIframeOptions struct {
	WrapperStyle string `yaml:"wrapperStyle,omitempty"`
}

// SharpOptions configure the shared image processor.
type SharpOptions struct {
	Icon string `yaml:"icon,omitempty"`
}

// ManifestOptions describe the generated web app manifest.
type ManifestOptions struct {
	Name            string `yaml:"name" validate:"required"`
	ShortName       string `yaml:"short_name,omitempty"`
	StartURL        string `yaml:"start_url,omitempty"`
	BackgroundColor string `yaml:"background_color,omitempty" validate:"omitempty,hexcolor"`
	ThemeColor      string `yaml:"theme_color,omitempty" validate:"omitempty,hexcolor"`
	Display         string `yaml:"display,omitempty" validate:"omitempty,oneof=fullscreen standalone minimal-ui browser"`
	Icon            string `yaml:"icon,omitempty"`
}

// Defaults applied when a remark-images activation omits maxWidth.
const DefaultImageMaxWidth = 650

// Options returns a zero-valued typed options struct for kind, or nil when
// the kind takes no options.
func Options(kind Kind) any {
	switch kind {
	case SourceFilesystem:
		return &SourceFilesystemOptions{}
	case TransformerRemark:
		return &RemarkOptions{}
	case RemarkImages:
		return &RemarkImagesOptions{}
	case RemarkResponsiveIframe:
		return &ResponsiveIframeOptions{}
	case PluginSharp:
		return &SharpOptions{}
	case Manifest:
		return &ManifestOptions{}
	default:
		return nil
	}
}
