package config

import (
	"embed"
)

// service config
//
//go:embed default.config.yml
var DefaultConfigYml string

// static token lists, one json file per chain id
//
//go:embed tokenlists/*.json
var TokenLists embed.FS
