package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"gatsby-source-filesystem", SourceFilesystem},
		{"source-filesystem", SourceFilesystem},
		{"  Gatsby-Plugin-Manifest ", Manifest},
		{"gatsby-plugin-dark-mode", DarkMode},
		{"gatsby-plugin-sharp", PluginSharp},
		{"gatsby-transformer-sharp", TransformerSharp},
		{"gatsby-remark-smartypants", RemarkSmartypants},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseKind(tt.in), tt.in)
	}
}

func TestActivationUnmarshalMixedList(t *testing.T) {
	doc := `
- resolve: gatsby-source-filesystem
  options:
    path: content/blog
    name: blog
- gatsby-transformer-sharp
- resolve: gatsby-transformer-remark
  options:
    plugins:
      - resolve: gatsby-remark-images
        options:
          maxWidth: 630
      - gatsby-remark-prismjs
`
	var list List
	require.NoError(t, yaml.Unmarshal([]byte(doc), &list))
	require.Len(t, list, 3)

	assert.Equal(t, SourceFilesystem, list[0].Kind)
	assert.Equal(t, "gatsby-source-filesystem", list[0].Resolve)
	assert.Equal(t, TransformerSharp, list[1].Kind)
	assert.Nil(t, list[1].Options)

	var src SourceFilesystemOptions
	require.NoError(t, list[0].Decode(&src))
	assert.Equal(t, "content/blog", src.Path)
	assert.Equal(t, "blog", src.Name)

	var remark RemarkOptions
	require.NoError(t, list[2].Decode(&remark))
	require.Len(t, remark.Plugins, 2)
	assert.Equal(t, RemarkImages, remark.Plugins[0].Kind)
	assert.Equal(t, RemarkPrismJS, remark.Plugins[1].Kind)

	var images RemarkImagesOptions
	require.NoError(t, remark.Plugins[0].Decode(&images))
	assert.Equal(t, 630, images.MaxWidth)
}

func TestActivationRejectsBadShapes(t *testing.T) {
	for _, doc := range []string{
		`- ""`,
		`- options: {path: x}`,
		`- [a, b]`,
	} {
		var list List
		assert.Error(t, yaml.Unmarshal([]byte(doc), &list), doc)
	}
}

func TestActivationMarshalKeepsShape(t *testing.T) {
	list := List{
		Bare(DarkMode),
		New(RemarkImages, map[string]any{"maxWidth": 630}),
	}
	out, err := yaml.Marshal(list)
	require.NoError(t, err)

	var back List
	require.NoError(t, yaml.Unmarshal(out, &back))
	require.Len(t, back, 2)
	assert.Equal(t, DarkMode, back[0].Kind)
	assert.Nil(t, back[0].Options)
	assert.Equal(t, RemarkImages, back[1].Kind)
	assert.Equal(t, 630, back[1].Options["maxWidth"])
}

func TestListLookups(t *testing.T) {
	list := List{
		New(SourceFilesystem, map[string]any{"name": "blog"}),
		Bare(DarkMode),
		New(SourceFilesystem, map[string]any{"name": "assets"}),
	}

	a, ok := list.Find(SourceFilesystem)
	require.True(t, ok)
	assert.Equal(t, "blog", a.Options["name"])

	all := list.FindAll(SourceFilesystem)
	require.Len(t, all, 2)
	assert.Equal(t, "assets", all[1].Options["name"])

	assert.True(t, list.Has(DarkMode))
	assert.False(t, list.Has(Manifest))
	assert.Equal(t, []Kind{SourceFilesystem, DarkMode, SourceFilesystem}, list.Kinds())
}

func TestKnownAndRemarkOnly(t *testing.T) {
	assert.True(t, DarkMode.Known())
	assert.False(t, Kind("sitemap").Known())
	assert.True(t, RemarkSmartypants.RemarkOnly())
	assert.False(t, Manifest.RemarkOnly())
}
