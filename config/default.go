package config

import _ "embed"

// DefaultConfigYAML built-in defaults, overridden by an external file or env
//
//go:embed default.yaml
var DefaultConfigYAML []byte
