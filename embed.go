package ramblings

import "embed"

// EmbeddedAssets contains static assets shipped with the engine:
// style.css and theme.js
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
