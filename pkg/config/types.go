package config

import (
	"time"
)

type AssetSettings struct {
	// Directory containing one subdirectory per pack
	Base        string
	DefaultPack string
}

type RedisSettings struct {
	Address string
	DB      int
	TTL     string
}

// Expiry is the parsed TTL, or zero for the store default.
func (r RedisSettings) Expiry() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(r.TTL)
}

type CacheSettings struct {
	Directory string
	Redis     RedisSettings
}

type Config struct {
	Assets AssetSettings
	Cache  CacheSettings
}
