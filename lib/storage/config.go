package storage

import (
	"net/url"
	"path/filepath"
	"strings"

	"boscoin.io/govern/lib/errors"
)

// Config describes where a `LevelDBBackend` keeps its data.
//
//	file:///var/lib/govern/db   on disk
//	memory://                   in memory, lost on `Close`
type Config struct {
	Scheme string
	Path   string
	Query  url.Values
}

func NewConfigFromString(s string) (*Config, error) {
	s = strings.TrimSpace(s)
	if len(s) < 1 {
		return nil, errors.InvalidStorageConfig.Clone().SetData("reason", "empty")
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.InvalidStorageConfig.Wrap(err)
	}

	config := &Config{Scheme: u.Scheme, Query: u.Query()}
	switch u.Scheme {
	case "memory":
	case "file":
		path := u.Path
		if len(u.Host) > 0 { // "file://db" is relative
			path = u.Host + u.Path
		}
		if len(path) < 1 {
			return nil, errors.InvalidStorageConfig.Clone().SetData("reason", "empty path")
		}
		if path, err = filepath.Abs(path); err != nil {
			return nil, errors.InvalidStorageConfig.Wrap(err)
		}
		config.Path = path
	default:
		return nil, errors.InvalidStorageConfig.Clone().SetData("scheme", u.Scheme)
	}

	return config, nil
}

func (c Config) String() string {
	if c.Scheme == "memory" {
		return "memory://"
	}

	return c.Scheme + "://" + c.Path
}
