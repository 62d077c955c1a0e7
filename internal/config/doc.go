// Package config provides the configuration of nogrok: command line
// options gathered into Config, and the optional .nogrok YAML file that
// sets the target domain, extra redirect keys, the gray-mode label and
// user-defined search providers.
package config
