// Package archiveconfig defines the archival engine's configuration
// value object and its YAML loading. Config is constructed by NewConfig
// and optionally overlaid from a YAML file found by FindConfigFile; every
// other package receives a *Config explicitly rather than reading global
// state.
package archiveconfig
