package config

import (
	"os"
	"sync"

	"emperror.dev/errors"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v2"
)

const DefaultLocation = "/etc/transactfs/config.yml"

var (
	mu      sync.RWMutex
	_config *Configuration
)

type Configuration struct {
	// The location from which this configuration instance was instantiated.
	path string

	// Determines if the application should be running in debug mode. This value
	// is ignored if the debug flag is passed through the command line arguments.
	Debug bool `json:"debug" yaml:"debug"`

	// Directory where log files are written to. When left empty log output is
	// only sent to the terminal.
	LogDirectory string `json:"log_directory" yaml:"log_directory"`

	RecycleBin  RecycleBinConfiguration  `json:"recycle_bin" yaml:"recycle_bin"`
	Permissions PermissionsConfiguration `json:"permissions" yaml:"permissions"`

	// Protected is a list of gitignore style patterns. Any path matching one of
	// these patterns cannot be deleted, overwritten or moved.
	Protected []string `json:"protected" yaml:"protected"`
}

// NewAtPath creates a new struct and set the path where it should be stored.
// This function does not modify the currently stored global configuration.
func NewAtPath(path string) (*Configuration, error) {
	var c Configuration
	// Configures the default values for many of the configuration options present
	// in the structs. Values set in the configuration file will overwrite these
	// values.
	if err := defaults.Set(&c); err != nil {
		return nil, err
	}
	c.path = path
	return &c, nil
}

// Set the global configuration instance. This is a blocking operation such that
// anything trying to set a different configuration value, or read the configuration
// will be paused until it is complete.
func Set(c *Configuration) {
	mu.Lock()
	defer mu.Unlock()
	_config = c
}

// Get returns the global configuration instance. This is a thread-safe operation
// that will block if the configuration is presently being modified.
//
// Be aware that you CANNOT make modifications to the currently stored configuration
// by modifying the struct returned by this function. The only way to make
// modifications is by using the Update() function and passing data through in
// the callback.
//
// When no configuration has been set a configuration containing only default
// values is returned.
func Get() *Configuration {
	mu.RLock()
	defer mu.RUnlock()
	if _config == nil {
		c, err := NewAtPath("")
		if err != nil {
			panic(errors.WithMessage(err, "config: failed to apply default values"))
		}
		return c
	}
	// Create a copy of the struct so that all modifications made beyond this
	// point are immutable.
	//
	//goland:noinspection GoVetCopyLock
	c := *_config
	c.Protected = append([]string(nil), _config.Protected...)
	return &c
}

// Update performs an in-situ update of the global configuration object using
// a thread-safe mutex lock. This is the correct way to make modifications to
// the global configuration.
func Update(callback func(c *Configuration)) {
	mu.Lock()
	defer mu.Unlock()
	if _config == nil {
		c, err := NewAtPath("")
		if err != nil {
			panic(errors.WithMessage(err, "config: failed to apply default values"))
		}
		_config = c
	}
	callback(_config)
}

// GetPath returns the path where the configuration file was loaded from.
func (c *Configuration) GetPath() string {
	return c.path
}

// FromFile reads the configuration from the provided file and stores it in the
// global singleton for this instance.
func FromFile(path string) error {
	c, err := Load(path)
	if err != nil {
		return err
	}
	Set(c)
	return nil
}

// Load reads the configuration from the provided file and returns it without
// touching the global configuration.
func Load(path string) (*Configuration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	c, err := NewAtPath(path)
	if err != nil {
		return nil, err
	}

	// Replace environment variables within the configuration file with their
	// values from the host system.
	b = []byte(os.ExpandEnv(string(b)))

	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrap(err, "config: failed to parse configuration file")
	}
	return c, nil
}
