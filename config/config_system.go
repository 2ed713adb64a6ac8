package config

import (
	"os"

	"emperror.dev/errors"
	"github.com/apex/log"
)

// RecycleBinConfiguration defines where staged deletions are kept until a
// transaction is committed or rolled back.
type RecycleBinConfiguration struct {
	// Directory where staged entries are stored. When left empty the system
	// temporary directory is used. Staging is performed with a rename, so this
	// directory should live on the same device as the files being modified.
	Directory string `json:"directory" yaml:"directory"`
}

// PermissionsConfiguration defines the permission bits applied to newly
// created files and directories. These are applied after creation so the
// process umask does not affect them.
type PermissionsConfiguration struct {
	File      os.FileMode `default:"0644" json:"file" yaml:"file"`
	Directory os.FileMode `default:"0755" json:"directory" yaml:"directory"`
}

// GetRecycleBinDirectory returns the directory staged entries are moved into.
func (rc *RecycleBinConfiguration) GetRecycleBinDirectory() string {
	if rc.Directory == "" {
		return os.TempDir()
	}
	return rc.Directory
}

// ConfigureDirectories ensures that the directories used by the application
// exist on the system. These directories are created so that only the owner
// can read the data, and no other users.
func (c *Configuration) ConfigureDirectories() error {
	if c.RecycleBin.Directory != "" {
		log.WithField("path", c.RecycleBin.Directory).Debug("ensuring recycle bin directory exists")
		if err := os.MkdirAll(c.RecycleBin.Directory, 0o700); err != nil {
			return errors.Wrap(err, "config: failed to create recycle bin directory")
		}
	}

	if c.LogDirectory != "" {
		log.WithField("path", c.LogDirectory).Debug("ensuring log directory exists")
		if err := os.MkdirAll(c.LogDirectory, 0o700); err != nil {
			return errors.Wrap(err, "config: failed to create log directory")
		}
	}

	return nil
}
