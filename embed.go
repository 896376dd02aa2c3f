package guidepress

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// guide.js, the loader for the scroll-spy and structured-data wasm client.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
