package cmd

import (
	"os"
	"path/filepath"

	"github.com/pterodactyl/transactfs/config"
)

// FindConfiguration looks through the places a configuration file usually
// lives and returns the first one that exists. This is only used when the
// --config flag was not passed. If none of the locations has a file
// os.ErrNotExist is returned, which lets the caller fall back to defaults.
func FindConfiguration() (string, error) {
	check := []string{config.DefaultLocation}
	if d, err := os.UserConfigDir(); err == nil {
		check = append(check, filepath.Join(d, "transactfs", "config.yml"))
	}
	check = append(check, "transactfs.yml")

	for _, p := range check {
		if s, err := os.Stat(p); err != nil {
			if !os.IsNotExist(err) {
				return "", err
			}
		} else if !s.IsDir() {
			return p, nil
		}
	}

	return "", os.ErrNotExist
}
