// Package config defines the extforge configuration file and its defaults.
//
// The file is YAML. Values left out keep their defaults; command-line flags
// are merged on top by the CLI.
package config
