package data

import (
	_ "embed"
)

//go:embed defaults/site_config.json
var DefaultSiteConfig []byte
