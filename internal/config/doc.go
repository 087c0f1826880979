// Package config holds the settings for a frenscrape run.
//
// Values come from three layers, later layers winning: the defaults from
// NewConfig, an optional YAML file (see FindConfigFile), and the command
// line flags the user set explicitly.
package config
